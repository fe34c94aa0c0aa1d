// Copyright (C) 2024 The go-perlin Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package vocab implements the bidirectional term-to-id mapping the
// indexing pipeline and query builder share: every distinct term
// sighted during a run is interned exactly once and given a stable,
// monotonically increasing TermId.
package vocab

import (
	"sync"

	"golang.org/x/exp/maps"
)

// ID identifies one interned term. IDs are assigned in first-sighting
// order starting at zero and are stable for the lifetime of the
// Vocabulary; they are never reused or reassigned.
type ID uint64

// Vocabulary is a concurrency-safe, append-only term interner. The
// zero value is ready to use.
type Vocabulary[T comparable] struct {
	mu       sync.RWMutex
	toID     map[T]ID
	interned []T
}

// New constructs an empty Vocabulary.
func New[T comparable]() *Vocabulary[T] {
	return &Vocabulary[T]{toID: make(map[T]ID)}
}

// GetOrAdd returns the existing ID for term, interning it and
// assigning the next ID if it has not been seen before.
func (v *Vocabulary[T]) GetOrAdd(term T) ID {
	v.mu.RLock()
	id, ok := v.toID[term]
	v.mu.RUnlock()
	if ok {
		return id
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	// Re-check: another goroutine may have interned term while we
	// waited for the write lock.
	if id, ok := v.toID[term]; ok {
		return id
	}
	if v.toID == nil {
		v.toID = make(map[T]ID)
	}
	id = ID(len(v.interned))
	v.toID[term] = id
	v.interned = append(v.interned, term)
	return id
}

// Get returns the ID for term without interning it.
func (v *Vocabulary[T]) Get(term T) (ID, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	id, ok := v.toID[term]
	return id, ok
}

// Term returns the term associated with id, if any.
func (v *Vocabulary[T]) Term(id ID) (T, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if int(id) >= len(v.interned) {
		var zero T
		return zero, false
	}
	return v.interned[id], true
}

// Len returns the number of distinct terms interned so far.
func (v *Vocabulary[T]) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.interned)
}

// Terms returns a snapshot of every interned term, ordered by ID.
func (v *Vocabulary[T]) Terms() []T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]T, len(v.interned))
	copy(out, v.interned)
	return out
}

// Snapshot returns a plain map copy of the current term->ID mapping,
// useful for callers that want to inspect the vocabulary without
// holding a reference into the live Vocabulary.
func (v *Vocabulary[T]) Snapshot() map[T]ID {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return maps.Clone(v.toID)
}
