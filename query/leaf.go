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

package query

import (
	"github.com/go-perlin/perlin/postings"
	"github.com/go-perlin/perlin/vocab"
)

// leaf wraps a posting decoder for one TermId. Its next_seek (via
// base) skips linearly over decoded postings; chunks are small enough
// that this is acceptable without a block-skip index.
type leaf struct {
	base
	dec     *postings.Decoder
	relPos  int
	length  int
	lastErr error
}

// newLeaf returns a leaf iterator over term, or emptyIterator if the
// term has no storage: an unseen term is not an error, it is a query
// that matches nothing.
func newLeaf(store *postings.Store, term vocab.ID, relPos int) (PositionalIterator, error) {
	if !store.Has(term) {
		return emptyIterator{}, nil
	}
	dec, err := postings.NewDecoder(store, term)
	if err != nil {
		return nil, err
	}
	l := &leaf{dec: dec, relPos: relPos, length: int(store.Count(term))}
	l.base = base{advance: l.decodeNext, errFn: func() error { return l.lastErr }}
	return l, nil
}

func (l *leaf) decodeNext() (Posting, bool) {
	p, ok, err := l.dec.Next()
	if err != nil {
		l.lastErr = err
		return Posting{}, false
	}
	return p, ok
}

func (l *leaf) EstimateLength() int   { return l.length }
func (l *leaf) RelativePosition() int { return l.relPos }

var _ PositionalIterator = (*leaf)(nil)
