// Copyright 2026 The Canvas Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/gzhttp"

	"github.com/canvas-foundation/canvas/lib/canvas"
	"github.com/canvas-foundation/canvas/lib/clock"
	"github.com/canvas-foundation/canvas/lib/config"
)

// SyncService is the single owned aggregate behind every request
// handler: canvas state, the sequence counter, and the subscriber
// registry, with one mutex serializing access to all three.
type SyncService struct {
	clock  clock.Clock
	logger *slog.Logger

	baseURL           string
	uploadDir         string
	maxUploadBytes    int64
	heartbeatInterval time.Duration
	bufferSize        int
	startedAt         time.Time

	// mu guards state, seq, and subscribers together. Sequence
	// allocation, the merge it describes, and fan-out to subscriber
	// queues happen under one acquisition — that is the ordering
	// guarantee, not an optimization.
	mu          sync.Mutex
	state       *canvas.State
	seq         canvas.Sequencer
	subscribers map[string]*subscriber
}

// NewSyncService builds a service with empty canvas state.
func NewSyncService(cfg config.Config, clk clock.Clock, logger *slog.Logger) *SyncService {
	return &SyncService{
		clock:             clk,
		logger:            logger,
		baseURL:           strings.TrimRight(cfg.BaseURL, "/"),
		uploadDir:         cfg.UploadDir,
		maxUploadBytes:    cfg.MaxUploadBytes,
		heartbeatInterval: time.Duration(cfg.HeartbeatInterval),
		bufferSize:        cfg.SubscriberBuffer,
		startedAt:         clk.Now(),
		state:             canvas.NewState(),
		subscribers:       make(map[string]*subscriber),
	}
}

// routes builds the HTTP handler tree. Snapshot and debug responses
// are gzipped (they carry the whole document); the event stream is
// not — its frames must reach the client unbuffered.
func (s *SyncService) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/canvas/sync/sse", s.handleSubscribe)
	mux.HandleFunc("POST /api/canvas/sync/events", s.handlePushEvents)
	mux.HandleFunc("POST /api/canvas/sync/full", s.handleFullSync)
	mux.Handle("GET /api/canvas/sync/full_data", gzhttp.GzipHandler(http.HandlerFunc(s.handleSnapshot)))
	mux.Handle("GET /api/canvas/sync/debug", gzhttp.GzipHandler(http.HandlerFunc(s.handleDebug)))
	mux.HandleFunc("POST /api/canvas/sync/reset", s.handleReset)
	mux.HandleFunc("POST /api/canvas/sync/inject_image", s.handleInjectImage)
	mux.HandleFunc("POST /api/upload/image", s.handleUpload)
	mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(s.uploadDir))))
	return withCORS(mux)
}

// withCORS applies the permissive CORS policy the canvas frontend
// expects and answers preflight requests.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// errorResponse is the JSON failure envelope, mirroring the admin
// socket's Response shape.
type errorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

func (s *SyncService) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debug("writing response body", "error", err)
	}
}

func (s *SyncService) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, errorResponse{OK: false, Error: message})
}

// decodeJSON parses a request body, surfacing parse errors before any
// state is touched (request-level validation is all-or-nothing).
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// installSeed replaces the canvas with a seed document. Same
// semantics as full-sync: verbatim install, counter untouched.
func (s *SyncService) installSeed(objects []canvas.Object) {
	s.mu.Lock()
	s.state.Replace(objects)
	s.mu.Unlock()
	s.logger.Info("seed document installed", "objects", len(objects))
}
