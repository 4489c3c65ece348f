// Copyright 2026 The Canvas Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/canvas-foundation/canvas/lib/canvas"
)

func TestPushEventsCreatesObject(t *testing.T) {
	s, _ := newTestService(t)
	server := httptest.NewServer(s.routes())
	defer server.Close()

	response := pushEvents(t, server, []mutationItem{
		upsertItem("rect-1", map[string]any{"x": float64(10)}),
	})
	if !response.OK || response.SequenceID != 1 {
		t.Fatalf("push response = %+v, want ok with sequence 1", response)
	}

	snapshot := getSnapshot(t, server)
	if snapshot.SequenceID != 1 {
		t.Errorf("snapshot sequence = %d, want 1", snapshot.SequenceID)
	}
	if len(snapshot.Objects) != 1 || snapshot.Objects[0].ID != "rect-1" {
		t.Fatalf("snapshot objects = %+v, want single rect-1", snapshot.Objects)
	}
	if got := snapshot.Objects[0].Payload["x"]; got != float64(10) {
		t.Errorf("payload x = %v, want 10", got)
	}
}

func TestPushEventsUpsertsInPlace(t *testing.T) {
	s, _ := newTestService(t)
	server := httptest.NewServer(s.routes())
	defer server.Close()

	pushEvents(t, server, []mutationItem{
		upsertItem("rect-1", map[string]any{"x": float64(1)}),
		upsertItem("rect-2", map[string]any{"x": float64(2)}),
	})
	response := pushEvents(t, server, []mutationItem{
		upsertItem("rect-1", map[string]any{"x": float64(99)}),
	})
	if response.SequenceID != 3 {
		t.Errorf("sequence after upsert = %d, want 3", response.SequenceID)
	}

	snapshot := getSnapshot(t, server)
	if len(snapshot.Objects) != 2 {
		t.Fatalf("object count = %d, want 2 (upsert must not duplicate)", len(snapshot.Objects))
	}
	// Replacement keeps the object's original position.
	if snapshot.Objects[0].ID != "rect-1" || snapshot.Objects[1].ID != "rect-2" {
		t.Errorf("object order = [%s %s], want [rect-1 rect-2]",
			snapshot.Objects[0].ID, snapshot.Objects[1].ID)
	}
	if got := snapshot.Objects[0].Payload["x"]; got != float64(99) {
		t.Errorf("updated payload x = %v, want 99", got)
	}
}

func TestPushEventsSkipsItemsWithoutID(t *testing.T) {
	s, _ := newTestService(t)
	server := httptest.NewServer(s.routes())
	defer server.Close()

	// A batch mixing a valid item and an id-less one: the valid item
	// is applied, the id-less one consumes no sequence id.
	response := pushEvents(t, server, []mutationItem{
		upsertItem("rect-1", map[string]any{"x": float64(1)}),
		{EventType: canvas.EventObjectUpserted, EventData: canvas.Object{Payload: map[string]any{"x": float64(2)}}},
	})
	if response.SequenceID != 1 {
		t.Errorf("sequence = %d, want 1 (id-less item must not allocate)", response.SequenceID)
	}

	snapshot := getSnapshot(t, server)
	if len(snapshot.Objects) != 1 || snapshot.SequenceID != 1 {
		t.Errorf("snapshot = %d objects at sequence %d, want 1 at 1",
			len(snapshot.Objects), snapshot.SequenceID)
	}
}

func TestPushEventsRejectsUnknownEventType(t *testing.T) {
	s, _ := newTestService(t)
	server := httptest.NewServer(s.routes())
	defer server.Close()

	body := `{"events":[` +
		`{"event_type":"object_upserted","event_data":{"id":"rect-1"}},` +
		`{"event_type":"object_exploded","event_data":{"id":"rect-2"}}]}`
	response, err := http.Post(server.URL+"/api/canvas/sync/events", "application/json",
		strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST events: %v", err)
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", response.StatusCode)
	}

	var failure errorResponse
	if err := json.NewDecoder(response.Body).Decode(&failure); err != nil {
		t.Fatalf("decoding error body: %v", err)
	}
	if failure.OK || !strings.Contains(failure.Error, "object_exploded") {
		t.Errorf("error body = %+v, want mention of the bad event type", failure)
	}

	// All-or-nothing: the valid first item must not have been applied.
	snapshot := getSnapshot(t, server)
	if len(snapshot.Objects) != 0 || snapshot.SequenceID != 0 {
		t.Errorf("state changed by a rejected batch: %d objects at sequence %d",
			len(snapshot.Objects), snapshot.SequenceID)
	}
}

func TestPushEventsRejectsMalformedBody(t *testing.T) {
	s, _ := newTestService(t)
	server := httptest.NewServer(s.routes())
	defer server.Close()

	response, err := http.Post(server.URL+"/api/canvas/sync/events", "application/json",
		strings.NewReader("{not json"))
	if err != nil {
		t.Fatalf("POST events: %v", err)
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", response.StatusCode)
	}
}

func TestInjectImageWithExplicitURLs(t *testing.T) {
	s, _ := newTestService(t)
	server := httptest.NewServer(s.routes())
	defer server.Close()

	sub := s.register()

	body := `{"urls":["http://canvas.test/uploads/cat.png"]}`
	response, err := http.Post(server.URL+"/api/canvas/sync/inject_image", "application/json",
		strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST inject_image: %v", err)
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", response.StatusCode)
	}

	var decoded injectImageResponse
	if err := json.NewDecoder(response.Body).Decode(&decoded); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !decoded.OK || decoded.SequenceID != 1 {
		t.Errorf("response = %+v, want ok with sequence 1", decoded)
	}
	if len(decoded.URLs) != 1 || decoded.URLs[0] != "http://canvas.test/uploads/cat.png" {
		t.Errorf("urls = %v, want the submitted url echoed", decoded.URLs)
	}

	// Injection goes through the normal broadcast path.
	frame := decodeFrame(t, <-sub.queue)
	if frame.Data.Type != canvas.EventImageInjected {
		t.Errorf("broadcast event type = %q, want image_injected", frame.Data.Type)
	}
	if !strings.HasPrefix(frame.Data.Data.ID, "image-") {
		t.Errorf("injected object id = %q, want image- prefix", frame.Data.Data.ID)
	}

	snapshot := getSnapshot(t, server)
	if len(snapshot.Objects) != 1 {
		t.Fatalf("snapshot objects = %d, want 1", len(snapshot.Objects))
	}
}

func TestInjectImageWithoutUploadsFails(t *testing.T) {
	s, _ := newTestService(t)
	server := httptest.NewServer(s.routes())
	defer server.Close()

	// Empty body, empty upload directory: nothing to inject.
	response, err := http.Post(server.URL+"/api/canvas/sync/inject_image", "application/json", nil)
	if err != nil {
		t.Fatalf("POST inject_image: %v", err)
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", response.StatusCode)
	}

	snapshot := getSnapshot(t, server)
	if snapshot.SequenceID != 0 {
		t.Errorf("failed injection consumed sequence id %d", snapshot.SequenceID)
	}
}
