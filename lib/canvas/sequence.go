// Copyright 2026 The Canvas Authors
// SPDX-License-Identifier: Apache-2.0

package canvas

// Sequencer issues the process-wide mutation sequence. Values are
// strictly increasing and never reused; Reset starts the sequence
// again from 1. A client that has been handed a sequence id is
// guaranteed the matching state mutation is already applied, because
// the owner allocates and merges under the same lock.
//
// Sequencer is not safe for concurrent use on its own; the owning
// service serializes calls.
type Sequencer struct {
	last uint64
}

// Next allocates and returns the next sequence id. The first value
// after construction or Reset is 1.
func (s *Sequencer) Next() uint64 {
	s.last++
	return s.last
}

// Current returns the most recently allocated id, or 0 when nothing
// has been allocated since the last Reset.
func (s *Sequencer) Current() uint64 {
	return s.last
}

// Reset restarts the sequence. The next Next call returns 1.
func (s *Sequencer) Reset() {
	s.last = 0
}
