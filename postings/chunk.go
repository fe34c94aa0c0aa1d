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

package postings

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/go-perlin/perlin/page"
	"github.com/go-perlin/perlin/vbyte"
	"github.com/go-perlin/perlin/vocab"
)

// headerLen is the size, in bytes, of the per-chunk header embedded
// at the start of every page: used_bytes(uint32) + next_chunk(uint64)
// + last_doc_id(uint64).
const headerLen = 4 + 8 + 8

// ErrAlreadyExists is returned by NewChunk when term already has
// storage.
var ErrAlreadyExists = fmt.Errorf("postings: term already has chunk storage")

// ErrNoStorage is returned when a term with no chunk storage is
// queried for its current chunk or iterated.
var ErrNoStorage = fmt.Errorf("postings: term has no chunk storage")

// term tracks the bookkeeping the Store needs per interned term: the
// head of its chunk chain, the current mutable tail, the delta base
// for the next append, and the number of postings written so far
// (used by the decoder to know when the chain is exhausted).
type term struct {
	head    page.ID
	tail    page.ID
	lastDoc DocID
	count   uint64
}

// Store is the chunked per-term posting storage (C3). It allocates
// fixed-size chunks from a backing page.Store, links overflow chunks
// per term, and tracks the last-written DocID per term as the delta
// base for the next append.
//
// Store is safe for a single writer (the indexing merger) concurrent
// with many readers (query evaluation), matching the single-writer
// policy the backing page.Store requires.
type Store struct {
	pages page.Store
	size  int

	mu    sync.RWMutex
	terms []term // indexed by vocab.ID
}

// NewStore constructs a Store backed by pages.
func NewStore(pages page.Store) *Store {
	return &Store{pages: pages, size: pages.PageSize()}
}

// Len returns the number of terms that currently have storage.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.terms)
}

// Has reports whether t already has chunk storage.
func (s *Store) Has(t vocab.ID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int(t) < len(s.terms)
}

// NewChunk allocates a head chunk for a term not yet present. It
// fails with ErrAlreadyExists if the term already has storage.
//
// Terms must be introduced in order: NewChunk expects t to equal the
// current Len() (the indexing merger grows current_term_count by
// exactly one each time it meets a previously-unseen TermId).
func (s *Store) NewChunk(t vocab.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if int(t) < len(s.terms) {
		return ErrAlreadyExists
	}
	id, err := s.pages.Allocate()
	if err != nil {
		return err
	}
	if err := s.writeHeader(id, 0, page.Nil, 0); err != nil {
		return err
	}
	for int(t) > len(s.terms) {
		// terms are assigned in first-sighting order by the caller's
		// vocabulary; this only pads for terms skipped due to an
		// out-of-order caller and should not occur in practice.
		s.terms = append(s.terms, term{})
	}
	s.terms = append(s.terms, term{head: id, tail: id})
	return nil
}

// SetLastDocID records doc as the delta base for term's next append.
func (s *Store) SetLastDocID(t vocab.ID, doc DocID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.terms[t].lastDoc = doc
}

// GetLastDocID returns the delta base recorded for term, or zero if
// term has no storage yet.
func (s *Store) GetLastDocID(t vocab.ID) DocID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if int(t) >= len(s.terms) {
		return 0
	}
	return s.terms[t].lastDoc
}

// Count returns the number of postings written for term so far.
func (s *Store) Count(t vocab.ID) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if int(t) >= len(s.terms) {
		return 0
	}
	return s.terms[t].count
}

// AppendListing appends every Posting in listing to term's chunk
// chain, allocating overflow chunks as needed. The listing must be
// ascending in DocID relative to whatever is already stored (the
// caller — the indexing merger — guarantees this by construction).
func (s *Store) AppendListing(t vocab.ID, listing Listing) error {
	for _, p := range listing {
		if err := s.appendPosting(t, p); err != nil {
			return err
		}
	}
	return nil
}

// appendPosting writes a single (doc, positions) record, using the
// term's current last-written DocID as the delta base, then updates
// that base. The usual case is that the record fits in the remaining
// space of the current tail chunk, or needs at most one overflow
// chunk linked after it. A record larger than a whole empty chunk
// (an unusually long positions list) is written across as many
// overflow chunks as it takes: the byte stream may cross a chunk
// boundary as long as the boundary chunk's next-chunk pointer is set,
// so the decoder (which reads a chain's payload as one continuous
// stream) never has to know how many chunks a single record touched.
func (s *Store) appendPosting(t vocab.ID, p Posting) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if int(t) >= len(s.terms) {
		return ErrNoStorage
	}
	base := s.terms[t].lastDoc
	rec := encodeRecord(base, p)

	if err := s.writeRecord(t, rec); err != nil {
		return err
	}
	tail := s.terms[t].tail
	buf, err := s.pages.Read(tail)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(buf[12:20], uint64(p.Doc))
	if err := s.pages.Write(tail, buf); err != nil {
		return err
	}
	s.terms[t].lastDoc = p.Doc
	s.terms[t].count++
	return nil
}

// writeRecord appends rec's bytes to term t's tail chunk, allocating
// and linking fresh overflow chunks whenever the current tail fills
// up before all of rec has been written.
func (s *Store) writeRecord(t vocab.ID, rec []byte) error {
	for len(rec) > 0 {
		tail := s.terms[t].tail
		used, _, _, err := s.readHeader(tail)
		if err != nil {
			return err
		}
		capacity := s.size - headerLen - int(used)
		if capacity == 0 {
			newID, err := s.pages.Allocate()
			if err != nil {
				return err
			}
			if err := s.writeHeader(newID, 0, page.Nil, 0); err != nil {
				return err
			}
			if err := s.linkNext(tail, newID); err != nil {
				return err
			}
			s.terms[t].tail = newID
			continue
		}

		n := len(rec)
		if n > capacity {
			n = capacity
		}
		if err := s.appendPayload(s.terms[t].tail, used, rec[:n]); err != nil {
			return err
		}
		rec = rec[n:]
	}
	return nil
}

// encodeRecord produces the vbyte bytes for one posting relative to
// base: delta_doc, n_positions, then successive position deltas
// (first delta is from zero).
func encodeRecord(base DocID, p Posting) []byte {
	var rec []byte
	rec = vbyte.Encode(rec, uint64(p.Doc-base))
	rec = vbyte.Encode(rec, uint64(len(p.Positions)))
	var last uint32
	for _, pos := range p.Positions {
		rec = vbyte.Encode(rec, uint64(pos-last))
		last = pos
	}
	return rec
}

func (s *Store) readHeader(id page.ID) (used uint32, next page.ID, lastDoc DocID, err error) {
	buf, err := s.pages.Read(id)
	if err != nil {
		return 0, 0, 0, err
	}
	used = binary.LittleEndian.Uint32(buf[0:4])
	next = page.ID(binary.LittleEndian.Uint64(buf[4:12]))
	lastDoc = DocID(binary.LittleEndian.Uint64(buf[12:20]))
	return used, next, lastDoc, nil
}

func (s *Store) writeHeader(id page.ID, used uint32, next page.ID, lastDoc DocID) error {
	buf := make([]byte, s.size)
	binary.LittleEndian.PutUint32(buf[0:4], used)
	binary.LittleEndian.PutUint64(buf[4:12], uint64(next))
	binary.LittleEndian.PutUint64(buf[12:20], uint64(lastDoc))
	return s.pages.Write(id, buf)
}

func (s *Store) linkNext(id, next page.ID) error {
	buf, err := s.pages.Read(id)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(buf[4:12], uint64(next))
	if err := s.pages.Write(id, buf); err != nil {
		return err
	}
	return s.pages.Flush(id) // this chunk is now interior and immutable
}

func (s *Store) appendPayload(id page.ID, used uint32, rec []byte) error {
	buf, err := s.pages.Read(id)
	if err != nil {
		return err
	}
	copy(buf[headerLen+int(used):], rec)
	newUsed := used + uint32(len(rec))
	binary.LittleEndian.PutUint32(buf[0:4], newUsed)
	return s.pages.Write(id, buf)
}

// Flush seals the current tail chunk of every term with storage, so
// a file-backed page.Store durably persists the run's final state.
func (s *Store) Flush() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.terms {
		if s.terms[i].head == page.Nil {
			continue
		}
		if err := s.pages.Flush(s.terms[i].tail); err != nil {
			return err
		}
	}
	return nil
}

// chain returns the ordered chunk ids for term's chunk chain.
func (s *Store) chain(t vocab.ID) ([]page.ID, error) {
	s.mu.RLock()
	head := page.Nil
	if int(t) < len(s.terms) {
		head = s.terms[t].head
	}
	s.mu.RUnlock()
	if head == page.Nil {
		return nil, ErrNoStorage
	}
	var ids []page.ID
	for id := head; id != page.Nil; {
		ids = append(ids, id)
		_, next, _, err := s.readHeader(id)
		if err != nil {
			return nil, err
		}
		id = next
	}
	return ids, nil
}
