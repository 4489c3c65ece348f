// Copyright 2026 The Canvas Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/canvas-foundation/canvas/lib/canvas"
)

// mutationItem is one entry in an ingest batch.
type mutationItem struct {
	EventType canvas.EventType `json:"event_type"`
	EventData canvas.Object    `json:"event_data"`
}

type pushEventsRequest struct {
	Events []mutationItem `json:"events"`
}

type pushEventsResponse struct {
	OK         bool   `json:"ok"`
	SequenceID uint64 `json:"sequence_id"`
}

// handlePushEvents is the mutation ingest path. Request-level
// validation is all-or-nothing: a parse failure or an unknown event
// type rejects the batch before any sequence id is allocated or any
// state changes.
func (s *SyncService) handlePushEvents(w http.ResponseWriter, r *http.Request) {
	var request pushEventsRequest
	if err := decodeJSON(r, &request); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	for _, item := range request.Events {
		if !item.EventType.Valid() {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown event_type %q", item.EventType))
			return
		}
	}

	sequenceID := s.applyMutations(request.Events)
	s.writeJSON(w, http.StatusOK, pushEventsResponse{OK: true, SequenceID: sequenceID})
}

// applyMutations runs the allocate→merge→broadcast path for an
// ordered batch and returns the highest sequence id allocated so far
// (the current counter when every item was dropped). Items without an
// object id are logged and skipped without consuming a sequence id.
func (s *SyncService) applyMutations(items []mutationItem) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	envelopes := make([]canvas.Envelope, 0, len(items))
	for _, item := range items {
		if item.EventData.ID == "" {
			s.logger.Warn("mutation without object id dropped", "event_type", item.EventType)
			continue
		}
		sequenceID := s.seq.Next()
		s.state.Merge(item.EventData)
		envelopes = append(envelopes, canvas.Envelope{
			Seq:  sequenceID,
			Type: item.EventType,
			Data: item.EventData,
		})
	}

	s.broadcastLocked(envelopes)
	return s.seq.Current()
}

type injectImageRequest struct {
	URLs []string `json:"urls"`
}

type injectImageResponse struct {
	OK         bool     `json:"ok"`
	SequenceID uint64   `json:"sequence_id"`
	URLs       []string `json:"urls"`
}

// handleInjectImage is the server-authored mutation path: no client
// submitter, same allocate→merge→broadcast discipline. An empty body
// is allowed and means "pick something from the upload directory".
func (s *SyncService) handleInjectImage(w http.ResponseWriter, r *http.Request) {
	var request injectImageRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &request); err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	urls, sequenceID, err := s.injectImage(request.URLs)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, injectImageResponse{OK: true, SequenceID: sequenceID, URLs: urls})
}

// injectImage builds an image_injected object for the given URLs
// (falling back to a random uploaded image) and applies it through
// the normal mutation path. Shared by the HTTP handler and the admin
// socket action.
func (s *SyncService) injectImage(urls []string) ([]string, uint64, error) {
	if len(urls) == 0 {
		url, err := s.randomUploadURL()
		if err != nil {
			return nil, 0, err
		}
		urls = []string{url}
	}

	object := canvas.Object{
		ID:      "image-" + uuid.NewString(),
		Payload: map[string]any{"urls": urls},
	}

	s.mu.Lock()
	sequenceID := s.seq.Next()
	s.state.Merge(object)
	s.broadcastLocked([]canvas.Envelope{{
		Seq:  sequenceID,
		Type: canvas.EventImageInjected,
		Data: object,
	}})
	s.mu.Unlock()

	s.logger.Info("image injected", "sequence_id", sequenceID, "urls", urls)
	return urls, sequenceID, nil
}
