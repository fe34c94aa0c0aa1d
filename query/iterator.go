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

// Package query implements the lazy, seeking/peeking posting
// iterators (C7) and the query tree builder/executor (C8): atoms
// backed by a posting decoder, composed into n-ary AND, OR and
// InOrder operators.
//
// Every iterator here returns Postings by value rather than by
// reference: the source this is ported from hands out borrowed
// postings through interior-mutable peek caches and raw pointers,
// which Go's ownership model has no equivalent for and doesn't need —
// a Posting is cheap enough to copy.
package query

import "github.com/go-perlin/perlin/postings"

// Posting is a (document, positions) occurrence, as produced by a
// posting decoder.
type Posting = postings.Posting

// Iterator is the lazy, seeking/peeking contract every query node
// implements, whether it is a leaf wrapping a single term's postings
// or a composite AND/OR/InOrder node over other Iterators.
type Iterator interface {
	// Peek returns the current head without consuming it. Calling
	// Peek repeatedly without an intervening Next or seek returns the
	// same result.
	Peek() (Posting, bool)
	// Next advances and returns the head.
	Next() (Posting, bool)
	// NextSeek discards postings with DocId below target, then
	// behaves as Next.
	NextSeek(target postings.DocID) (Posting, bool)
	// PeekSeek is Peek after an implicit seek to target.
	PeekSeek(target postings.DocID) (Posting, bool)
	// EstimateLength is an upper-bound cardinality estimate used to
	// order AND operands (rarest operand first).
	EstimateLength() int
	// Err returns the first error encountered while advancing, once
	// the iterator has been exhausted. It is nil until then.
	Err() error
}

// PositionalIterator is an Iterator that additionally knows its fixed
// position within the original query, the offset InOrder composition
// aligns positions against.
type PositionalIterator interface {
	Iterator
	RelativePosition() int
}

// base turns any advance-only posting source into the full
// peek/next/seek contract: Peek and Next memoize exactly one pending
// posting, and the two seek variants are uniformly "discard while
// behind target, then behave as Next/Peek" — true whether the source
// underneath is a leaf decoder or a composite node, since seeking a
// composite node just means seeking every operand via its own Next.
type base struct {
	advance func() (Posting, bool)
	errFn   func() error
	peeked  *Posting
	done    bool
}

func (b *base) Peek() (Posting, bool) {
	if b.peeked == nil && !b.done {
		if p, ok := b.advance(); ok {
			b.peeked = &p
		} else {
			b.done = true
		}
	}
	if b.peeked == nil {
		return Posting{}, false
	}
	return *b.peeked, true
}

func (b *base) Next() (Posting, bool) {
	p, ok := b.Peek()
	if ok {
		b.peeked = nil
	}
	return p, ok
}

func (b *base) NextSeek(target postings.DocID) (Posting, bool) {
	for {
		p, ok := b.Peek()
		if !ok || p.Doc >= target {
			return b.Next()
		}
		b.Next()
	}
}

func (b *base) PeekSeek(target postings.DocID) (Posting, bool) {
	for {
		p, ok := b.Peek()
		if !ok || p.Doc >= target {
			return p, ok
		}
		b.Next()
	}
}

func (b *base) Err() error {
	if b.errFn == nil {
		return nil
	}
	return b.errFn()
}

// emptyIterator is the canonical result for an atom whose term was
// never seen at index time: queries never fail on an unknown term,
// they just contribute nothing.
type emptyIterator struct{}

func (emptyIterator) Peek() (Posting, bool)                   { return Posting{}, false }
func (emptyIterator) Next() (Posting, bool)                   { return Posting{}, false }
func (emptyIterator) NextSeek(postings.DocID) (Posting, bool) { return Posting{}, false }
func (emptyIterator) PeekSeek(postings.DocID) (Posting, bool) { return Posting{}, false }
func (emptyIterator) EstimateLength() int                    { return 0 }
func (emptyIterator) Err() error                              { return nil }
func (emptyIterator) RelativePosition() int                   { return 0 }

var (
	_ Iterator           = emptyIterator{}
	_ PositionalIterator = emptyIterator{}
)
