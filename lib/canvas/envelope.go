// Copyright 2026 The Canvas Authors
// SPDX-License-Identifier: Apache-2.0

package canvas

// EventType tags the semantic meaning of an envelope's payload. The
// set is closed: ingest rejects requests carrying anything else.
type EventType string

const (
	// EventObjectUpserted is a client-submitted object add or update.
	EventObjectUpserted EventType = "object_upserted"

	// EventImageInjected is a server-authored image insertion (the
	// inject debug utility). The object payload carries the image
	// URLs under "urls".
	EventImageInjected EventType = "image_injected"
)

// Valid reports whether t is a member of the closed event type set.
func (t EventType) Valid() bool {
	switch t {
	case EventObjectUpserted, EventImageInjected:
		return true
	}
	return false
}

// Envelope is the immutable unit of broadcast: one accepted mutation,
// stamped with its sequence id. Ordering between envelopes is defined
// by Seq alone.
type Envelope struct {
	Seq  uint64    `json:"sequence_id"`
	Type EventType `json:"event_type"`
	Data Object    `json:"event_data"`
}
