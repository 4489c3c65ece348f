// Copyright 2026 The Canvas Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the canvas project's standard CBOR encoding
// configuration.
//
// The project uses two serialization formats with a clear boundary:
//
//   - JSON for the external HTTP surface: the event stream, mutation
//     ingest, bootstrap snapshots, and upload responses consumed by
//     browser clients.
//   - CBOR for the internal admin socket protocol between
//     canvas-sync-service and canvasctl.
//
// This package holds the shared CBOR modes so both sides of the
// socket agree on encoding details. Encoding is Core Deterministic
// (RFC 8949 §4.2): the same logical request always produces identical
// bytes. Decoding ignores unknown fields so older canvasctl builds
// keep working against newer services.
package codec
