// Copyright 2026 The Canvas Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"

	"github.com/canvas-foundation/canvas/lib/codec"
	"github.com/canvas-foundation/canvas/lib/service"
)

// adminInjectResult is the inject-image action's response payload.
type adminInjectResult struct {
	SequenceID uint64   `json:"sequence_id"`
	URLs       []string `json:"urls"`
}

// registerActions wires the admin socket protocol. The actions are
// the service's debug operations, reachable for operators (canvasctl)
// without going through the public HTTP surface.
func (s *SyncService) registerActions(server *service.SocketServer) {
	server.Handle("status", func(ctx context.Context, raw []byte) (any, error) {
		return s.status(), nil
	})

	server.Handle("snapshot", func(ctx context.Context, raw []byte) (any, error) {
		return s.snapshot(), nil
	})

	server.Handle("reset", func(ctx context.Context, raw []byte) (any, error) {
		s.resetAll()
		return nil, nil
	})

	server.Handle("inject-image", func(ctx context.Context, raw []byte) (any, error) {
		var request struct {
			URLs []string `json:"urls"`
		}
		if err := codec.Unmarshal(raw, &request); err != nil {
			return nil, err
		}
		urls, sequenceID, err := s.injectImage(request.URLs)
		if err != nil {
			return nil, err
		}
		return adminInjectResult{SequenceID: sequenceID, URLs: urls}, nil
	})
}
