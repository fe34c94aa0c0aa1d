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

// Package indexing implements the indexing pipeline (C5): turning a
// stream of documents, each an ordered sequence of terms, into
// per-term postings appended to a postings.Store. Run drives a
// producer/sorter-pool/merger pipeline that keeps term interning and
// batch sorting concurrent while still writing postings to the store
// in the single strict order the documents were read in; Sequential
// does the same work on one goroutine and is the reference Run's
// output is checked against.
package indexing

import (
	"github.com/go-perlin/perlin/postings"
	"github.com/go-perlin/perlin/vocab"
)

// Documents is the input contract for indexing a collection: a
// pull-based iterator of documents, each document itself an ordered
// slice of terms in positional order. Next returns ok=false once the
// collection is exhausted.
type Documents[T any] interface {
	Next() (doc []T, ok bool, err error)
}

// Triple is one (term, document, position) occurrence, the unit the
// producer emits and the sorters group into postings.
type Triple struct {
	Term vocab.ID
	Doc  postings.DocID
	Pos  uint32
}

// group is a term's postings gathered from one batch of documents,
// ready to append to the term's chunk chain in the store.
type group struct {
	term    vocab.ID
	listing postings.Listing
}

// Stats summarizes a completed indexing run.
type Stats struct {
	Documents uint64
	Terms     int
}

// Config controls the concurrency and batching of Run.
type Config struct {
	// Sorters is the number of concurrent sort-and-group workers.
	Sorters int
	// BatchSize is the number of documents grouped into one triple
	// batch before it is handed to a sorter.
	BatchSize int
	// BatchQueueCapacity sizes the channel batches are queued to
	// sorters through.
	BatchQueueCapacity int
	// MergeQueueCapacity sizes the channel sorters hand sorted batches
	// to the merger through.
	MergeQueueCapacity int
}

// Defaults for Config's zero-valued fields.
const (
	DefaultSorters            = 4
	DefaultBatchSize          = 256
	DefaultBatchQueueCapacity = 1
	DefaultMergeQueueCapacity = 2
)

func (c Config) withDefaults() Config {
	if c.Sorters <= 0 {
		c.Sorters = DefaultSorters
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.BatchQueueCapacity <= 0 {
		c.BatchQueueCapacity = DefaultBatchQueueCapacity
	}
	if c.MergeQueueCapacity <= 0 {
		c.MergeQueueCapacity = DefaultMergeQueueCapacity
	}
	return c
}
