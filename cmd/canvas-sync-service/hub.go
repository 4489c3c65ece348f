// Copyright 2026 The Canvas Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"sort"

	"github.com/google/uuid"

	"github.com/canvas-foundation/canvas/lib/canvas"
)

// subscriber is one live event stream connection. The queue carries
// pre-serialized frames and is owned exclusively by the connection's
// stream loop; the stop channel is closed exactly once, when the
// subscriber is removed from the registry.
type subscriber struct {
	// id identifies the connection in logs and debug output. It is
	// generated by the hub and is not a client identity.
	id    string
	queue chan []byte
	stop  chan struct{}
}

// streamFrame is the JSON payload of one SSE data line.
type streamFrame struct {
	Type string           `json:"type"`
	Data *canvas.Envelope `json:"data,omitempty"`
}

// register creates a subscriber with an empty queue and adds it to
// the registry. The subscriber receives every envelope published
// after register returns; envelopes published before it are only
// reachable through the bootstrap snapshot.
func (s *SyncService) register() *subscriber {
	sub := &subscriber{
		id:    uuid.NewString(),
		queue: make(chan []byte, s.bufferSize),
		stop:  make(chan struct{}),
	}

	s.mu.Lock()
	s.subscribers[sub.id] = sub
	count := len(s.subscribers)
	s.mu.Unlock()

	s.logger.Info("subscriber connected", "connection_id", sub.id, "connections", count)
	return sub
}

// unregister removes a subscriber and signals its stream loop to
// stop. Idempotent: the overflow path in broadcastLocked and the
// stream handler's deferred cleanup may both get here.
func (s *SyncService) unregister(sub *subscriber) {
	s.mu.Lock()
	_, present := s.subscribers[sub.id]
	if present {
		delete(s.subscribers, sub.id)
		close(sub.stop)
	}
	count := len(s.subscribers)
	s.mu.Unlock()

	if present {
		s.logger.Info("subscriber disconnected", "connection_id", sub.id, "connections", count)
	}
}

// broadcastLocked serializes each envelope once and enqueues it onto
// every registered subscriber queue, in envelope order. Must be
// called with s.mu held: publishing under the same acquisition as
// sequence allocation is what makes delivery order equal sequence
// order across concurrent requests.
//
// Delivery is best-effort per subscriber. A full queue means the
// connection stopped draining (stuck or dead transport); that
// subscriber is dropped on the spot and nobody else is affected.
func (s *SyncService) broadcastLocked(envelopes []canvas.Envelope) {
	for i := range envelopes {
		frame, err := json.Marshal(streamFrame{Type: "sync_event", Data: &envelopes[i]})
		if err != nil {
			s.logger.Error("marshaling envelope", "sequence_id", envelopes[i].Seq, "error", err)
			continue
		}

		for id, sub := range s.subscribers {
			select {
			case sub.queue <- frame:
			default:
				delete(s.subscribers, id)
				close(sub.stop)
				s.logger.Warn("subscriber queue overflow, dropping connection",
					"connection_id", id)
			}
		}

		s.logger.Debug("broadcast",
			"sequence_id", envelopes[i].Seq,
			"event_type", envelopes[i].Type,
			"connections", len(s.subscribers),
		)
	}
}

// connectionIDsLocked returns the active connection ids, sorted for
// stable debug output. Must be called with s.mu held.
func (s *SyncService) connectionIDsLocked() []string {
	ids := make([]string, 0, len(s.subscribers))
	for id := range s.subscribers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
