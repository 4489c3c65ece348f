// Copyright 2026 The Canvas Authors
// SPDX-License-Identifier: Apache-2.0

package canvas

// Object is one drawable entity on the shared canvas. The payload is
// opaque to the server: geometry, style, and metadata are interpreted
// only by clients. An object without an id is never applied to state.
//
// JSON tags double as CBOR field names on the admin socket (fxamacker
// falls back to json tags), so the same type serves both surfaces.
type Object struct {
	ID      string         `json:"id"`
	Payload map[string]any `json:"payload,omitempty"`
}
