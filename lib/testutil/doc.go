// Copyright 2026 The Canvas Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for canvas packages.
//
// [RequireReceive] and [RequireSend] encapsulate the timeout safety
// valve pattern (select with time.After fallback) so individual tests
// do not need direct time.After calls when talking to the hub's
// channels.
//
// [SocketDir] creates a temporary directory in /tmp suitable for Unix
// domain sockets. Unix sockets have a 108-byte path limit (sun_path
// in sockaddr_un) and some CI systems point TEST_TMPDIR at deeply
// nested paths that exceed it, making t.TempDir() unsuitable for
// socket files.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
package testutil
