// Copyright 2026 The Canvas Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"

	"github.com/canvas-foundation/canvas/lib/canvas"
)

// loadSeed reads a seed document: a JSONC array of canvas objects
// (JSON with comments and trailing commas, since seed files are
// written and annotated by hand). Every object must carry an id.
func loadSeed(path string) ([]canvas.Object, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed document: %w", err)
	}

	var objects []canvas.Object
	if err := json.Unmarshal(jsonc.ToJSON(data), &objects); err != nil {
		return nil, fmt.Errorf("parsing seed document %s: %w", path, err)
	}

	for i, object := range objects {
		if object.ID == "" {
			return nil, fmt.Errorf("seed document %s: object %d has no id", path, i)
		}
	}
	return objects, nil
}
