// Copyright 2026 The Canvas Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"net/http"

	"github.com/canvas-foundation/canvas/lib/canvas"
)

// snapshotResult is the bootstrap payload: the full document plus the
// sequence position it corresponds to, collected atomically. JSON
// tags also serve the CBOR admin protocol.
type snapshotResult struct {
	Objects    []canvas.Object `json:"objects"`
	SequenceID uint64          `json:"sequence_id"`
}

// snapshot collects state and counter under one lock acquisition so a
// bootstrapping client never sees half of a concurrent merge.
func (s *SyncService) snapshot() snapshotResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshotResult{
		Objects:    s.state.Snapshot(),
		SequenceID: s.seq.Current(),
	}
}

// handleSnapshot serves new-client bootstrap.
func (s *SyncService) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.snapshot())
}

type fullSyncRequest struct {
	ClientID string          `json:"client_id"`
	Objects  []canvas.Object `json:"objects"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

// handleFullSync installs a client's authoritative full document:
// wholesale replace, no merge semantics, counter untouched, nothing
// broadcast. Used when a client brings a divergent or newly-authored
// canvas.
func (s *SyncService) handleFullSync(w http.ResponseWriter, r *http.Request) {
	var request fullSyncRequest
	if err := decodeJSON(r, &request); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	s.state.Replace(request.Objects)
	s.mu.Unlock()

	s.logger.Info("full sync installed",
		"client_id", request.ClientID,
		"objects", len(request.Objects),
	)
	s.writeJSON(w, http.StatusOK, okResponse{OK: true})
}

// resetAll wipes canvas state and the sequence counter together.
// Subscribers are not notified; a client that keeps its stream open
// across a reset renders stale state until it re-bootstraps.
func (s *SyncService) resetAll() {
	s.mu.Lock()
	s.state.Reset()
	s.seq.Reset()
	s.mu.Unlock()
	s.logger.Info("state reset")
}

// handleReset is a debug/test operation.
func (s *SyncService) handleReset(w http.ResponseWriter, r *http.Request) {
	s.resetAll()
	s.writeJSON(w, http.StatusOK, okResponse{OK: true})
}

// statusResult is the debug introspection payload.
type statusResult struct {
	SequenceID    uint64          `json:"sequence_id"`
	ObjectCount   int             `json:"object_count"`
	Objects       []canvas.Object `json:"objects"`
	Connections   []string        `json:"connections"`
	UptimeSeconds int64           `json:"uptime_seconds"`
}

func (s *SyncService) status() statusResult {
	uptime := int64(s.clock.Now().Sub(s.startedAt).Seconds())

	s.mu.Lock()
	defer s.mu.Unlock()
	return statusResult{
		SequenceID:    s.seq.Current(),
		ObjectCount:   s.state.Len(),
		Objects:       s.state.Snapshot(),
		Connections:   s.connectionIDsLocked(),
		UptimeSeconds: uptime,
	}
}

// handleDebug serves read-only introspection. Diagnostic only; not
// part of the sync contract clients rely on.
func (s *SyncService) handleDebug(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.status())
}
