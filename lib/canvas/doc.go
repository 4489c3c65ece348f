// Copyright 2026 The Canvas Authors
// SPDX-License-Identifier: Apache-2.0

// Package canvas holds the authoritative in-memory model of the shared
// canvas document: the ordered object collection, the mutation
// sequence counter, and the broadcast envelope type.
//
// None of the types in this package perform their own locking. The
// sync service owns exactly one State and one Sequencer and serializes
// all access through its aggregate mutex, so a sequence allocation and
// the state mutation it describes are always observed together. This
// mirrors how the service's subscriber registry is guarded: one lock,
// one owner, no hidden shared state.
package canvas
