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

import "sort"

// andIterator is the n-ary AND operator: operands are sorted
// ascending by EstimateLength (rarest first) so a non-matching
// document is rejected after touching the fewest postings possible.
type andIterator struct {
	base
	ops []Iterator
}

func newAnd(ops []Iterator) Iterator {
	if len(ops) == 0 {
		return emptyIterator{}
	}
	sorted := append([]Iterator(nil), ops...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].EstimateLength() < sorted[j].EstimateLength() })
	a := &andIterator{ops: sorted}
	a.base = base{advance: a.advance, errFn: a.firstErr}
	return a
}

// advance holds a focus candidate from operand 0 and walks the
// remaining operands seeking it; any operand that jumps past focus
// becomes the new focus and restarts the walk, so a full pass with no
// operand moving past focus means every operand agrees on it.
func (a *andIterator) advance() (Posting, bool) {
	focus, ok := a.ops[0].Next()
	if !ok {
		return Posting{}, false
	}
	last := 0
outer:
	for {
		for i, op := range a.ops {
			if i == last {
				continue
			}
			v, ok := op.NextSeek(focus.Doc)
			if !ok {
				return Posting{}, false
			}
			if v.Doc > focus.Doc {
				focus = v
				last = i
				continue outer
			}
		}
		return focus, true
	}
}

func (a *andIterator) firstErr() error {
	for _, op := range a.ops {
		if err := op.Err(); err != nil {
			return err
		}
	}
	return nil
}

func (a *andIterator) EstimateLength() int { return a.ops[0].EstimateLength() }

var _ Iterator = (*andIterator)(nil)
