// Copyright 2026 The Canvas Authors
// SPDX-License-Identifier: Apache-2.0

package canvas

// MergeResult reports what a Merge call did to the state.
type MergeResult struct {
	// Applied is false when the object had no id and was dropped.
	Applied bool

	// Replaced is true when an object with the same id already
	// existed and was overwritten in place.
	Replaced bool
}

// State is the authoritative ordered collection of canvas objects,
// keyed by id. Insertion order is first-seen order: an update to an
// existing id keeps its original position, a new id is appended.
//
// State is not safe for concurrent use. The owning service guards it
// with its aggregate mutex.
type State struct {
	objects []Object
	index   map[string]int
}

// NewState returns an empty State.
func NewState() *State {
	return &State{
		index: make(map[string]int),
	}
}

// Merge applies one object with upsert semantics. An object whose id
// matches an existing one replaces it in place; a new id is appended.
// An object with an empty id is not applied — the caller logs and
// moves on, per the ingest error policy.
//
// Merging the same object twice is idempotent: same id means
// overwrite, never duplicate.
func (s *State) Merge(object Object) MergeResult {
	if object.ID == "" {
		return MergeResult{}
	}
	if position, exists := s.index[object.ID]; exists {
		s.objects[position] = object
		return MergeResult{Applied: true, Replaced: true}
	}
	s.index[object.ID] = len(s.objects)
	s.objects = append(s.objects, object)
	return MergeResult{Applied: true}
}

// Replace discards the current state and installs the given ordered
// collection verbatim. Ids are assumed unique within the input; no
// merge semantics are applied. Used by full-sync and seed loading.
func (s *State) Replace(objects []Object) {
	s.objects = make([]Object, len(objects))
	copy(s.objects, objects)
	s.index = make(map[string]int, len(objects))
	for position, object := range s.objects {
		s.index[object.ID] = position
	}
}

// Reset discards all objects.
func (s *State) Reset() {
	s.objects = nil
	s.index = make(map[string]int)
}

// Snapshot returns a copy of the object list in insertion order. The
// slice is the caller's to keep; payload maps are shared with the
// state and must not be mutated.
func (s *State) Snapshot() []Object {
	snapshot := make([]Object, len(s.objects))
	copy(snapshot, s.objects)
	return snapshot
}

// Len returns the number of objects currently in the state.
func (s *State) Len() int {
	return len(s.objects)
}
