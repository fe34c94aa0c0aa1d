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

// inOrderIterator is the positional phrase operator: operands stay in
// their original query order (term 0, term 1, ...) rather than being
// sorted by length, since RelativePosition is what anchors the
// allowed offset window between adjacent operands.
type inOrderIterator struct {
	base
	ops []PositionalIterator
}

func newInOrder(ops []PositionalIterator) Iterator {
	if len(ops) == 0 {
		return emptyIterator{}
	}
	io := &inOrderIterator{ops: ops}
	io.base = base{advance: io.advance, errFn: io.firstErr}
	return io
}

func (io *inOrderIterator) EstimateLength() int { return io.ops[0].EstimateLength() }

func (io *inOrderIterator) firstErr() error {
	for _, op := range io.ops {
		if err := op.Err(); err != nil {
			return err
		}
	}
	return nil
}

// advance walks the operands looking for a document where every
// operand's positions align with a consistent offset relative to the
// first operand that set the current focus. A position-intersection
// mismatch or a newly-jumped-ahead document restarts the scan.
func (io *inOrderIterator) advance() (Posting, bool) {
	var focus Posting
	var focusPositions []uint32
	haveFocus := false
	lastDocIter := -1
	lastRelPos := 0

restart:
	for {
		for i, op := range io.ops {
			for {
				if lastDocIter == i {
					break
				}
				v, ok := op.Next()
				if !ok {
					return Posting{}, false
				}
				switch {
				case !haveFocus:
					focus, focusPositions, haveFocus = v, clonePositions(v.Positions), true
					lastDocIter, lastRelPos = i, op.RelativePosition()
				case v.Doc < focus.Doc:
					continue
				case v.Doc == focus.Doc:
					offset := int64(lastRelPos) - int64(op.RelativePosition())
					pairs := PositionalIntersect(focusPositions, v.Positions, offset, offset)
					if len(pairs) == 0 {
						v2, ok := op.Next()
						if !ok {
							return Posting{}, false
						}
						focus, focusPositions, haveFocus = v2, clonePositions(v2.Positions), true
						lastDocIter, lastRelPos = i, op.RelativePosition()
						continue restart
					}
					// The new focus positions are expressed in the
					// operand just matched (rhs of the intersection),
					// since the next offset is computed relative to
					// whichever operand last_relPos now refers to.
					next := make([]uint32, 0, len(pairs))
					for _, pr := range pairs {
						next = append(next, pr.Right)
					}
					focusPositions = next
					lastRelPos = op.RelativePosition()
				default: // v.Doc > focus.Doc
					focus, focusPositions, haveFocus = v, clonePositions(v.Positions), true
					lastDocIter, lastRelPos = i, op.RelativePosition()
					continue restart
				}
				break
			}
		}
		focus.Positions = focusPositions
		return focus, true
	}
}

func clonePositions(p []uint32) []uint32 {
	out := make([]uint32, len(p))
	copy(out, p)
	return out
}

var _ Iterator = (*inOrderIterator)(nil)

// PosPair is one aligned pair of positions from two intersected
// position lists.
type PosPair struct {
	Left, Right uint32
}

// PositionalIntersect finds every pair (l, r) with l from lhs and r
// from rhs such that l-r falls within the closed interval [lo, hi].
// Both lhs and rhs must be sorted ascending. The two-pointer walk
// visits each (i, j) candidate at most once, so no pair is emitted
// twice; results are in the order the walk discovers them, not
// necessarily sorted by l or r.
func PositionalIntersect(lhs, rhs []uint32, lo, hi int64) []PosPair {
	var result []PosPair
	i, j := 0, 0
	for i < len(lhs) && j < len(rhs) {
		lval, rval := int64(lhs[i]), int64(rhs[j])
		diff := lval - rval
		if diff >= lo && diff <= hi {
			result = append(result, PosPair{lhs[i], rhs[j]})

			for d := i + 1; d < len(lhs) && int64(lhs[d])-rval <= hi; d++ {
				result = append(result, PosPair{lhs[d], rhs[j]})
			}
			for r := j + 1; r < len(rhs) && lval-int64(rhs[r]) >= lo; r++ {
				result = append(result, PosPair{lhs[i], rhs[r]})
			}

			i++
			j++
			continue
		}
		if diff >= hi {
			j++
		}
		if diff <= lo {
			i++
		}
	}
	return result
}
