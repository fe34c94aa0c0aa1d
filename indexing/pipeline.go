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

package indexing

import (
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/go-perlin/perlin/internal/atomicext"
	"github.com/go-perlin/perlin/postings"
	"github.com/go-perlin/perlin/vocab"
)

// batch is one producer-numbered slice of triples awaiting sorting.
type batch struct {
	id      uint64
	triples []Triple
}

// sortedBatch is a batch after sorting and grouping, still tagged
// with its producer-assigned id so the merger receives batches in
// the order documents were read, regardless of which sorter finished
// first.
type sortedBatch struct {
	id     uint64
	groups []group
}

// Run indexes docs through a producer/sorter-pool/merger pipeline:
// the calling goroutine tokenizes documents into (term, doc,
// position) triples and interns terms in vocabulary as it goes;
// cfg.Sorters goroutines sort and group batches of triples by term
// concurrently; a single merger goroutine appends the grouped
// postings to store strictly in batch order, so the final store
// content never depends on how the sorters happened to be scheduled.
//
// Run and Sequential produce byte-identical postings for the same
// document stream; Run only changes how the work is scheduled.
func Run[T comparable](docs Documents[T], vocabulary *vocab.Vocabulary[T], store *postings.Store, cfg Config) (Stats, error) {
	cfg = cfg.withDefaults()

	batches := make(chan batch, cfg.BatchQueueCapacity)
	merged := make(chan sortedBatch, cfg.MergeQueueCapacity)

	var handoff uint64 // next batch id allowed to publish to merged
	var panicOnce sync.Once
	var panicErr error
	var wg sync.WaitGroup
	wg.Add(cfg.Sorters)
	for i := 0; i < cfg.Sorters; i++ {
		go func() {
			defer wg.Done()
			for b := range batches {
				if !sortBatch(b, &handoff, merged, &panicOnce, &panicErr) {
					// Discard the rest so the producer never blocks
					// on a queue no sorter is reading.
					for range batches {
					}
					return
				}
			}
		}()
	}

	mergeDone := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				panicOnce.Do(func() { panicErr = threadPanicError(r) })
				for range merged {
				}
				mergeDone <- nil
				return
			}
		}()
		err := mergeLoop(merged, store)
		// Keep draining after an early error return so sorters blocked
		// sending to merged can finish.
		for range merged {
		}
		mergeDone <- err
	}()

	var docCount uint64
	var buf []Triple
	var batchID uint64
	var readErr error

	for {
		doc, ok, err := docs.Next()
		if err != nil {
			readErr = err
			break
		}
		if !ok {
			break
		}
		for pos, term := range doc {
			id := vocabulary.GetOrAdd(term)
			buf = append(buf, Triple{Term: id, Doc: postings.DocID(docCount), Pos: uint32(pos)})
		}
		docCount++
		if docCount%uint64(cfg.BatchSize) == 0 {
			batches <- batch{id: batchID, triples: buf}
			batchID++
			buf = nil
		}
	}
	if readErr == nil && len(buf) > 0 {
		batches <- batch{id: batchID, triples: buf}
	}
	close(batches)
	wg.Wait()
	close(merged)
	mergeErr := <-mergeDone

	if readErr != nil {
		return Stats{}, readErr
	}
	if panicErr != nil {
		return Stats{}, panicErr
	}
	if mergeErr != nil {
		return Stats{}, mergeErr
	}
	return Stats{Documents: docCount, Terms: vocabulary.Len()}, nil
}

// sortBatch sorts and groups one batch and hands it to the merger,
// recovering from a panic in either step. On panic it records the
// first panicErr seen across all sorters and still advances handoff
// so sibling sorters waiting on this batch's turn are not stuck
// forever; it reports false so the caller's goroutine stops sorting
// further batches, since the run is already doomed.
func sortBatch(b batch, handoff *uint64, merged chan<- sortedBatch, once *sync.Once, panicErr *error) (ok bool) {
	ok = true
	defer func() {
		if r := recover(); r != nil {
			once.Do(func() { *panicErr = threadPanicError(r) })
			// The run is already doomed; release every sorter that
			// might be waiting for its turn instead of trying to
			// preserve handoff order, or they would block forever.
			atomicext.SetUint64(handoff, ^uint64(0))
			ok = false
		}
	}()
	groups := sortAndGroup(b.triples)
	// Batches may finish sorting in any order; block until it is this
	// batch's turn to be merged, so the merger always sees batches in
	// submission order.
	atomicext.WaitForUint64(handoff, b.id)
	merged <- sortedBatch{id: b.id, groups: groups}
	// Advance handoff, but leave it at its maximum once an aborting
	// sorter has set it there, so every later waiter is released too.
	for {
		cur := atomic.LoadUint64(handoff)
		if cur == ^uint64(0) || atomic.CompareAndSwapUint64(handoff, cur, cur+1) {
			break
		}
	}
	return ok
}

// ErrThreadPanic is returned by Run when a sorter or merger goroutine
// panicked. The store may hold a partial set of postings and must not
// be trusted; callers should discard it.
var ErrThreadPanic = fmt.Errorf("indexing: worker panic")

func threadPanicError(r any) error {
	return fmt.Errorf("%w: %v\n%s", ErrThreadPanic, r, debug.Stack())
}

// ErrWrite wraps a backing-store failure observed while appending
// grouped postings to the term store, distinguishing it from a
// Documents source failure encountered on the read side of the same
// Run/Sequential call.
var ErrWrite = fmt.Errorf("indexing: failed to write postings")

func wrapWriteErr(err error) error {
	return fmt.Errorf("%w: %v", ErrWrite, err)
}

// mergeLoop appends every group arriving on merged to store, in the
// order they arrive. Callers must guarantee merged delivers batches
// in producer order.
func mergeLoop(merged <-chan sortedBatch, store *postings.Store) error {
	for b := range merged {
		for _, g := range b.groups {
			if !store.Has(g.term) {
				if err := store.NewChunk(g.term); err != nil {
					return wrapWriteErr(err)
				}
			}
			if err := store.AppendListing(g.term, g.listing); err != nil {
				return wrapWriteErr(err)
			}
		}
	}
	return nil
}
