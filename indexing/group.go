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
	"golang.org/x/exp/slices"

	"github.com/go-perlin/perlin/postings"
)

// sortAndGroup stably sorts triples by term and, within each term,
// groups consecutive triples that share a document into a single
// Posting whose positions accumulate in the order they were seen.
// Triples belonging to the same (term, doc) pair are never dropped or
// deduplicated: every position contributes to the resulting listing.
//
// The stable sort preserves each term's triples in document order,
// since the producer only ever appends triples for increasing
// document ids within a batch.
func sortAndGroup(triples []Triple) []group {
	slices.SortStableFunc(triples, func(a, b Triple) bool { return a.Term < b.Term })

	var groups []group
	for _, t := range triples {
		n := len(groups)
		if n == 0 || groups[n-1].term != t.Term {
			groups = append(groups, group{
				term:    t.Term,
				listing: postings.Listing{{Doc: t.Doc, Positions: []uint32{t.Pos}}},
			})
			continue
		}
		lst := groups[n-1].listing
		last := len(lst) - 1
		if lst[last].Doc == t.Doc {
			lst[last].Positions = append(lst[last].Positions, t.Pos)
		} else {
			groups[n-1].listing = append(lst, postings.Posting{Doc: t.Doc, Positions: []uint32{t.Pos}})
		}
	}
	return groups
}
