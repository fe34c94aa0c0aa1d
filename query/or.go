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
	"github.com/go-perlin/perlin/heap"
)

// orIterator is the n-ary OR operator: every operand whose peeked head
// is the smallest current DocId is advanced, so operands sharing a
// document are merged into a single result rather than duplicated.
// ops is kept in min-heap order by peeked DocId (exhausted operands
// sort last), so finding and draining every operand tied for the
// minimum costs O(k log n) rather than an O(n) scan per call.
type orIterator struct {
	base
	ops []Iterator
}

func newOr(ops []Iterator) Iterator {
	if len(ops) == 0 {
		return emptyIterator{}
	}
	o := &orIterator{ops: append([]Iterator(nil), ops...)}
	heap.OrderSlice(o.ops, o.less)
	o.base = base{advance: o.advance, errFn: o.firstErr}
	return o
}

// less orders by peeked DocId ascending; an exhausted operand (no
// peek left) is always greater than one that still has postings.
func (o *orIterator) less(a, b Iterator) bool {
	pa, oka := a.Peek()
	pb, okb := b.Peek()
	switch {
	case !oka:
		return false
	case !okb:
		return true
	default:
		return pa.Doc < pb.Doc
	}
}

func (o *orIterator) advance() (Posting, bool) {
	p0, ok0 := o.ops[0].Peek()
	if !ok0 {
		return Posting{}, false
	}
	min := p0.Doc

	var result Posting
	var got bool
	for {
		p, ok := o.ops[0].Peek()
		if !ok || p.Doc != min {
			break
		}
		result, got = o.ops[0].Next()
		heap.FixSlice(o.ops, 0, o.less)
	}
	return result, got
}

func (o *orIterator) firstErr() error {
	for _, op := range o.ops {
		if err := op.Err(); err != nil {
			return err
		}
	}
	return nil
}

// EstimateLength returns the sum of every operand's estimate: an
// upper bound on an OR's result count, reached only when no two
// operands ever share a document.
func (o *orIterator) EstimateLength() int {
	n := 0
	for _, op := range o.ops {
		n += op.EstimateLength()
	}
	return n
}

var _ Iterator = (*orIterator)(nil)
