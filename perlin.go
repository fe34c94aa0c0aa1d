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

// Package perlin is an embeddable, in-process positional inverted
// index: feed it documents (ordered sequences of terms), then run
// boolean and phrase queries back against what was indexed. See
// Open, Index.Add, Index.AddConcurrent, and Index.Query.
package perlin

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/go-perlin/perlin/indexing"
	"github.com/go-perlin/perlin/page"
	"github.com/go-perlin/perlin/postings"
	"github.com/go-perlin/perlin/query"
	"github.com/go-perlin/perlin/vocab"
)

// Index is a term-interned, positionally-queryable inverted index
// over documents made of terms of type T (string terms are the usual
// case, but any comparable type works - integers in the test suite,
// interned symbol ids in an embedder that already has its own
// dictionary).
//
// An Index is safe for concurrent Query calls once indexing has
// finished; Add/AddConcurrent must not run concurrently with each
// other or with a Query, matching the single-writer/many-reader
// contract of the underlying page.Store.
type Index[T comparable] struct {
	// RunID uniquely identifies this Index's lifetime, for diagnostics.
	// It is not used in naming or locating file-backed storage.
	RunID uuid.UUID

	vocabulary *vocab.Vocabulary[T]
	store      *postings.Store
	pages      page.Store
	cfg        Config
	docCount   uint64
	indexed    bool
}

// Open constructs an empty Index backed by pages. Pass page.NewRAM(n)
// for an in-memory index, or page.OpenFile for one backed by a file
// on disk. cfg.ChunkSize is not consulted here since pages already
// carries its own fixed page size; use OpenFile or OpenRAM to build
// the backing store from cfg.ChunkSize directly.
func Open[T comparable](pages page.Store, cfg Config) *Index[T] {
	return &Index[T]{
		RunID:      uuid.New(),
		vocabulary: vocab.New[T](),
		store:      postings.NewStore(pages),
		pages:      pages,
		cfg:        cfg.withDefaults(),
	}
}

// OpenRAM constructs an in-memory Index whose page size comes from
// cfg.ChunkSize (or DefaultChunkSize at the zero value).
func OpenRAM[T comparable](cfg Config) *Index[T] {
	cfg = cfg.withDefaults()
	return Open[T](page.NewRAM(cfg.ChunkSize), cfg)
}

// OpenFile constructs an Index backed by a file at path, sized per
// cfg.ChunkSize, truncating any existing contents. The returned Index
// owns the file and must be Closed when the caller is done with it.
func OpenFile[T comparable](path string, cfg Config) (*Index[T], error) {
	cfg = cfg.withDefaults()
	fs, err := page.OpenFile(path, page.FileOptions{PageSize: cfg.ChunkSize})
	if err != nil {
		return nil, &IOError{Cause: err}
	}
	return Open[T](fs, cfg), nil
}

// Close releases the backing store's file handle, for an Index opened
// with OpenFile. It is a no-op for a store (such as page.NewRAM) that
// does not hold an OS resource.
func (ix *Index[T]) Close() error {
	c, ok := ix.pages.(interface{ Close() error })
	if !ok {
		return nil
	}
	if err := c.Close(); err != nil {
		return &IOError{Cause: err}
	}
	return nil
}

// Add tokenizes and indexes docs on the calling goroutine. Use this
// for small collections or where a predictable, single-threaded cost
// matters more than throughput.
func (ix *Index[T]) Add(docs indexing.Documents[T]) (indexing.Stats, error) {
	if ix.indexed {
		return indexing.Stats{}, ErrAlreadyIndexed
	}
	stats, err := indexing.Sequential[T](docs, ix.vocabulary, ix.store)
	if err == nil {
		ix.docCount = stats.Documents
		ix.indexed = true
		return stats, nil
	}
	return stats, wrapIndexErr(err)
}

// AddConcurrent indexes docs through the concurrent sort/merge
// pipeline, using ix's Config. It produces byte-identical postings to
// Add for the same document stream; only the scheduling differs.
func (ix *Index[T]) AddConcurrent(docs indexing.Documents[T]) (indexing.Stats, error) {
	if ix.indexed {
		return indexing.Stats{}, ErrAlreadyIndexed
	}
	stats, err := indexing.Run[T](docs, ix.vocabulary, ix.store, ix.cfg.indexingConfig())
	if err == nil {
		ix.docCount = stats.Documents
		ix.indexed = true
		return stats, nil
	}
	if errors.Is(err, indexing.ErrThreadPanic) {
		return stats, fmt.Errorf("%w: %v", ErrThreadPanic, err)
	}
	return stats, wrapIndexErr(err)
}

// wrapIndexErr remaps an indexing-package write failure to the
// package-level WriteError so callers can errors.As against one type
// regardless of whether Add or AddConcurrent produced it.
func wrapIndexErr(err error) error {
	if errors.Is(err, indexing.ErrWrite) {
		return &WriteError{Cause: err}
	}
	return err
}

// Query compiles node and returns every matching DocID in ascending
// order. An atom over a term never indexed returns an empty result,
// never an error.
func (ix *Index[T]) Query(node query.Node[T]) ([]postings.DocID, error) {
	it, err := query.Compile[T](node, ix.store, ix.vocabulary)
	if err != nil {
		return nil, err
	}
	docs, err := query.Execute(it)
	if err != nil {
		return nil, wrapQueryErr(err)
	}
	return docs, nil
}

// Cursor compiles node and returns a Cursor over its matches, for
// callers that want to stop early or interleave retrieval with other
// work instead of collecting every match up front.
func (ix *Index[T]) Cursor(node query.Node[T]) (*Cursor, error) {
	it, err := query.Compile[T](node, ix.store, ix.vocabulary)
	if err != nil {
		return nil, err
	}
	return &Cursor{inner: query.NewCursor(it)}, nil
}

// Cursor wraps a query.Cursor, remapping a corrupted-chain failure to
// ErrInvariantViolation the same way Query does.
type Cursor struct {
	inner *query.Cursor
}

// Next returns the next matching DocId, ascending and duplicate-free.
func (c *Cursor) Next() (postings.DocID, bool, error) {
	doc, ok, err := c.inner.Next()
	if err != nil {
		return 0, false, wrapQueryErr(err)
	}
	return doc, ok, nil
}

// wrapQueryErr remaps a corrupted chunk-chain failure surfaced while
// decoding postings to the package-level ErrInvariantViolation: it
// can only mean the store and its recorded counts disagree, which is
// a bug in the engine rather than anything the caller did.
func wrapQueryErr(err error) error {
	if errors.Is(err, postings.ErrCorrupted) {
		return fmt.Errorf("%w: %v", ErrInvariantViolation, err)
	}
	return err
}

// Postings returns the full, decoded posting list for term: every
// DocId it appears in, with positions. Unlike Query, an unindexed
// term is an error here rather than an empty result, since Postings
// is a direct lookup rather than a query that can legitimately match
// nothing.
func (ix *Index[T]) Postings(term T) (postings.Listing, error) {
	id, ok := ix.vocabulary.Get(term)
	if !ok {
		return nil, ErrKeyNotFound
	}
	listing, err := postings.Decode(ix.store, id)
	if err != nil {
		return nil, wrapQueryErr(err)
	}
	return listing, nil
}

// Stats reports the document and term counts of the completed run, or
// a zero Stats before Add/AddConcurrent has been called.
func (ix *Index[T]) Stats() indexing.Stats {
	return indexing.Stats{Documents: ix.docCount, Terms: ix.vocabulary.Len()}
}
