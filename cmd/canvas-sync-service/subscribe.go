// Copyright 2026 The Canvas Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// connectedFrame is the first data message on every stream. Clients
// treat it as "the stream is live; anything published from now on
// will arrive here".
var connectedFrame = []byte(`{"type":"connected"}`)

// handleSubscribe serves the server-sent event stream. The subscriber
// is registered before the connected marker is written, so no
// envelope published after the client observes the marker can be
// missed; cleanup runs on every exit path so the registry never
// holds a dead connection.
func (s *SyncService) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	sub := s.register()
	defer s.unregister(sub)

	s.streamEvents(r.Context(), w, flusher.Flush, sub)
}

// streamEvents pumps a subscriber's queue to the transport until the
// client disconnects, a write fails, the hub drops the subscriber, or
// the server shuts down. The heartbeat is an idle window: when nothing
// has been delivered for a full interval, a comment line keeps the
// connection alive. Each data frame restarts the window, so a busy
// stream carries no heartbeats.
func (s *SyncService) streamEvents(ctx context.Context, w io.Writer, flush func(), sub *subscriber) {
	heartbeat := s.clock.NewTicker(s.heartbeatInterval)
	defer heartbeat.Stop()

	if err := writeStreamData(w, connectedFrame); err != nil {
		s.logger.Debug("stream write error on connect", "connection_id", sub.id, "error", err)
		return
	}
	flush()

	for {
		select {
		case <-ctx.Done():
			return

		case <-sub.stop:
			// Dropped by the hub (queue overflow). The client will
			// reconnect and re-bootstrap from a fresh snapshot.
			return

		case frame := <-sub.queue:
			heartbeat.Reset(s.heartbeatInterval)
			if err := writeStreamData(w, frame); err != nil {
				s.logger.Debug("stream write error", "connection_id", sub.id, "error", err)
				return
			}
			flush()

		case <-heartbeat.C:
			if _, err := io.WriteString(w, ": heartbeat\n\n"); err != nil {
				s.logger.Debug("stream heartbeat error", "connection_id", sub.id, "error", err)
				return
			}
			flush()
		}
	}
}

// writeStreamData writes one SSE data message.
func writeStreamData(w io.Writer, payload []byte) error {
	_, err := fmt.Fprintf(w, "data: %s\n\n", payload)
	return err
}
