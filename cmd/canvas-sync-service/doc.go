// Copyright 2026 The Canvas Authors
// SPDX-License-Identifier: Apache-2.0

// Canvas-sync-service keeps one shared canvas document synchronized
// across connected clients in near real time. It holds authoritative
// state in memory, stamps every accepted mutation with a globally
// ordered sequence id, and fans the resulting event out to every live
// subscriber. State is intentionally volatile: a restart starts from
// an empty canvas (or a --seed document), and clients re-bootstrap.
//
// # HTTP API
//
// Browser clients talk JSON over HTTP:
//
//	GET  /api/canvas/sync/sse          server-sent event stream
//	POST /api/canvas/sync/events       ordered mutation batch
//	POST /api/canvas/sync/full         authoritative full-state replace
//	GET  /api/canvas/sync/full_data    bootstrap snapshot + sequence id
//	GET  /api/canvas/sync/debug        introspection
//	POST /api/canvas/sync/reset        wipe state and counter
//	POST /api/canvas/sync/inject_image server-authored image mutation
//	POST /api/upload/image             image upload
//	GET  /uploads/{file}               uploaded image access
//
// The event stream opens with a {"type":"connected"} marker, then
// carries {"type":"sync_event","data":<envelope>} frames in sequence
// order, interleaved with ": heartbeat" comments on idle.
//
// # Ordering
//
// Sequence allocation, the state merge, and fan-out to subscriber
// queues all happen under one lock acquisition, so every subscriber
// observes envelopes in sequence-id order even across concurrent
// ingest requests, and a caller holding a sequence id knows the
// matching mutation is applied.
//
// # Admin socket
//
// Operators and canvasctl connect to a Unix socket and send one CBOR
// request per connection. The "action" field routes: status,
// snapshot, reset, inject-image.
package main
