// Copyright 2026 The Canvas Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestStreamConnectedThenEnvelopes(t *testing.T) {
	s, _ := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := s.register()
	buffer := &syncBuffer{}
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.streamEvents(ctx, buffer, func() {}, sub)
	}()

	waitForOutput(t, buffer, `data: {"type":"connected"}`)

	s.applyMutations([]mutationItem{upsertItem("rect-1", map[string]any{"x": float64(1)})})
	waitForOutput(t, buffer, `"sequence_id":1`)

	output := buffer.String()
	if !strings.Contains(output, `"type":"sync_event"`) {
		t.Errorf("stream output missing sync_event frame:\n%s", output)
	}
	if strings.Index(output, "connected") > strings.Index(output, "sync_event") {
		t.Error("sync_event frame written before the connected marker")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream loop did not exit on context cancellation")
	}
}

func TestStreamHeartbeatOnIdle(t *testing.T) {
	s, fake := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := s.register()
	buffer := &syncBuffer{}
	go s.streamEvents(ctx, buffer, func() {}, sub)

	// The heartbeat ticker is created before the connected marker is
	// written, so once the marker is visible the ticker is registered
	// with the fake clock and an advance will reach it.
	waitForOutput(t, buffer, "connected")

	fake.Advance(s.heartbeatInterval)
	waitForOutput(t, buffer, ": heartbeat")

	fake.Advance(s.heartbeatInterval)
	deadline := time.Now().Add(2 * time.Second)
	for strings.Count(buffer.String(), ": heartbeat") < 2 {
		if time.Now().After(deadline) {
			t.Fatal("second heartbeat never written")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// TestStreamHeartbeatRestartsAfterDelivery: the heartbeat is an idle
// window, not a fixed period. A data frame delivered mid-window pushes
// the next heartbeat a full interval out.
func TestStreamHeartbeatRestartsAfterDelivery(t *testing.T) {
	s, fake := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := s.register()
	buffer := &syncBuffer{}
	go s.streamEvents(ctx, buffer, func() {}, sub)
	waitForOutput(t, buffer, "connected")

	// Deliver a frame halfway through the window. The window restarts
	// before the frame is written, so once the frame is visible the
	// old deadline is gone.
	fake.Advance(s.heartbeatInterval / 2)
	s.applyMutations([]mutationItem{upsertItem("rect-1", map[string]any{"x": float64(1)})})
	waitForOutput(t, buffer, `"sequence_id":1`)

	fake.Advance(s.heartbeatInterval / 2)
	time.Sleep(50 * time.Millisecond)
	if strings.Contains(buffer.String(), ": heartbeat") {
		t.Fatal("heartbeat fired at the pre-delivery deadline")
	}

	fake.Advance(s.heartbeatInterval / 2)
	waitForOutput(t, buffer, ": heartbeat")
}

func TestStreamExitsWhenDropped(t *testing.T) {
	s, _ := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := s.register()
	buffer := &syncBuffer{}
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.streamEvents(ctx, buffer, func() {}, sub)
	}()
	waitForOutput(t, buffer, "connected")

	s.unregister(sub)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream loop did not exit after the hub dropped the subscriber")
	}
}

// TestSubscribeEndToEnd exercises the SSE endpoint over a real HTTP
// connection: connected marker first, then a pushed mutation arriving
// as a sync_event frame, then unregistration when the client hangs up.
func TestSubscribeEndToEnd(t *testing.T) {
	s, _ := newTestService(t)
	server := httptest.NewServer(s.routes())
	defer server.Close()

	response, err := http.Get(server.URL + "/api/canvas/sync/sse")
	if err != nil {
		t.Fatalf("GET sse: %v", err)
	}
	defer response.Body.Close()

	if got := response.Header.Get("Content-Type"); got != "text/event-stream" {
		t.Errorf("Content-Type = %q, want text/event-stream", got)
	}

	reader := bufio.NewReader(response.Body)
	if frame := readStreamFrame(t, reader); frame.Type != "connected" {
		t.Fatalf("first frame type = %q, want connected", frame.Type)
	}

	pushEvents(t, server, []mutationItem{upsertItem("rect-1", map[string]any{"x": float64(5)})})

	frame := readStreamFrame(t, reader)
	if frame.Type != "sync_event" || frame.Data == nil {
		t.Fatalf("second frame = %+v, want sync_event with data", frame)
	}
	if frame.Data.Seq != 1 || frame.Data.Data.ID != "rect-1" {
		t.Errorf("envelope = seq %d id %q, want seq 1 id rect-1", frame.Data.Seq, frame.Data.Data.ID)
	}

	response.Body.Close()
	deadline := time.Now().Add(2 * time.Second)
	for {
		s.mu.Lock()
		remaining := len(s.subscribers)
		s.mu.Unlock()
		if remaining == 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("%d subscribers still registered after client disconnect", remaining)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// readStreamFrame reads lines until one SSE data message is complete
// and returns its decoded payload. Comment lines (heartbeats) are
// skipped.
func readStreamFrame(t *testing.T, reader *bufio.Reader) streamFrame {
	t.Helper()
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("reading stream: %v", err)
		}
		line = strings.TrimRight(line, "\n")
		if payload, ok := strings.CutPrefix(line, "data: "); ok {
			var frame streamFrame
			if err := json.Unmarshal([]byte(payload), &frame); err != nil {
				t.Fatalf("decoding stream frame %q: %v", payload, err)
			}
			return frame
		}
	}
}
