// Copyright 2026 The Canvas Authors
// SPDX-License-Identifier: Apache-2.0

// Package service provides the server plumbing shared by canvas
// binaries: an HTTP server with graceful shutdown for the public sync
// API, and a Unix-socket CBOR request/response server plus matching
// client for the admin protocol.
//
// Both servers follow the same lifecycle: Serve(ctx) blocks until the
// context is cancelled, then drains in-flight work before returning.
// Ready() lets callers (and tests) wait for the listener to be bound
// before connecting.
package service
