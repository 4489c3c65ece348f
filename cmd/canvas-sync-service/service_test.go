// Copyright 2026 The Canvas Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/canvas-foundation/canvas/lib/canvas"
	"github.com/canvas-foundation/canvas/lib/clock"
	"github.com/canvas-foundation/canvas/lib/config"
)

// testEpoch is the fixed time the fake clock starts at.
var testEpoch = time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

// newTestService builds a SyncService on a fake clock with a
// throwaway upload directory. The fake clock means heartbeat tickers
// never fire unless a test advances time explicitly.
func newTestService(t *testing.T) (*SyncService, *clock.FakeClock) {
	t.Helper()
	cfg := config.Default()
	cfg.UploadDir = t.TempDir()
	cfg.BaseURL = "http://canvas.test"

	fake := clock.Fake(testEpoch)
	return NewSyncService(cfg, fake, slog.New(slog.NewTextHandler(io.Discard, nil))), fake
}

// pushEvents POSTs a mutation batch through the full HTTP stack and
// returns the decoded response.
func pushEvents(t *testing.T, server *httptest.Server, items []mutationItem) pushEventsResponse {
	t.Helper()

	body, err := json.Marshal(pushEventsRequest{Events: items})
	if err != nil {
		t.Fatalf("marshaling request: %v", err)
	}
	response, err := http.Post(server.URL+"/api/canvas/sync/events", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST events: %v", err)
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(response.Body)
		t.Fatalf("POST events: status %d, body %s", response.StatusCode, raw)
	}

	var decoded pushEventsResponse
	if err := json.NewDecoder(response.Body).Decode(&decoded); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return decoded
}

// getSnapshot fetches the bootstrap snapshot through HTTP.
func getSnapshot(t *testing.T, server *httptest.Server) snapshotResult {
	t.Helper()

	response, err := http.Get(server.URL + "/api/canvas/sync/full_data")
	if err != nil {
		t.Fatalf("GET full_data: %v", err)
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		t.Fatalf("GET full_data: status %d", response.StatusCode)
	}

	var decoded snapshotResult
	if err := json.NewDecoder(response.Body).Decode(&decoded); err != nil {
		t.Fatalf("decoding snapshot: %v", err)
	}
	return decoded
}

// upsertItem builds an object_upserted mutation.
func upsertItem(id string, payload map[string]any) mutationItem {
	return mutationItem{
		EventType: canvas.EventObjectUpserted,
		EventData: canvas.Object{ID: id, Payload: payload},
	}
}

// decodeFrame parses one broadcast frame from a subscriber queue.
func decodeFrame(t *testing.T, raw []byte) streamFrame {
	t.Helper()
	var frame streamFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		t.Fatalf("decoding frame %s: %v", raw, err)
	}
	return frame
}

// syncBuffer is a goroutine-safe io.Writer for observing a stream
// loop's output from the test goroutine.
type syncBuffer struct {
	mu     sync.Mutex
	buffer bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buffer.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buffer.String()
}

// waitForOutput polls until the buffer contains want, or fails the
// test after two seconds.
func waitForOutput(t *testing.T, buffer *syncBuffer, want string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		if strings.Contains(buffer.String(), want) {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("stream output never contained %q; got:\n%s", want, buffer.String())
		}
		time.Sleep(5 * time.Millisecond)
	}
}
