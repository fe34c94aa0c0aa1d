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
	"testing"

	"github.com/go-perlin/perlin/indexing"
	"github.com/go-perlin/perlin/page"
	"github.com/go-perlin/perlin/postings"
	"github.com/go-perlin/perlin/vocab"
)

func intRange(lo, hi int) []int {
	out := make([]int, 0, hi-lo)
	for i := lo; i < hi; i++ {
		out = append(out, i)
	}
	return out
}

func buildIndex[T comparable](t *testing.T, docs [][]T) (*vocab.Vocabulary[T], *postings.Store) {
	t.Helper()
	v := vocab.New[T]()
	store := postings.NewStore(page.NewRAM(4096))
	if _, err := indexing.Sequential[T](indexing.NewSliceDocuments(docs), v, store); err != nil {
		t.Fatalf("Sequential: %v", err)
	}
	return v, store
}

func runQuery[T comparable](t *testing.T, v *vocab.Vocabulary[T], store *postings.Store, node Node[T]) []postings.DocID {
	t.Helper()
	it, err := Compile[T](node, store, v)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	got, err := Execute(it)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	return got
}

func assertDocIDs(t *testing.T, got []postings.DocID, want ...postings.DocID) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

// TestAtomQueryThreeDocuments mirrors spec scenario 1: documents
// [0..10), [0..15), [10..34); querying term 4 matches only the first
// two documents.
func TestAtomQueryThreeDocuments(t *testing.T) {
	docs := [][]int{intRange(0, 10), intRange(0, 15), intRange(10, 34)}
	v, store := buildIndex(t, docs)

	got := runQuery[int](t, v, store, Atom[int]{Term: 4})
	assertDocIDs(t, got, 0, 1)
}

// TestBooleanAndPositionalThreeDocuments mirrors spec scenario 2:
// documents {0:"a b c", 1:"a c", 2:"b c a"}.
func TestBooleanAndPositionalThreeDocuments(t *testing.T) {
	docs := [][]string{
		{"a", "b", "c"},
		{"a", "c"},
		{"b", "c", "a"},
	}
	v, store := buildIndex(t, docs)

	and := runQuery[string](t, v, store, And[string]{Operands: []Node[string]{
		Atom[string]{Term: "a"}, Atom[string]{Term: "b"},
	}})
	assertDocIDs(t, and, 0, 2)

	or := runQuery[string](t, v, store, Or[string]{Operands: []Node[string]{
		Atom[string]{Term: "a"}, Atom[string]{Term: "b"},
	}})
	assertDocIDs(t, or, 0, 1, 2)

	inOrder := runQuery[string](t, v, store, InOrder[string]{Terms: []string{"a", "b"}})
	assertDocIDs(t, inOrder, 0)
}

// TestAtomQueryOverlappingDocuments mirrors spec scenario 6: document
// i contains terms i..i+200; after indexing, term 99 is present in
// exactly documents 0 through 99.
func TestAtomQueryOverlappingDocuments(t *testing.T) {
	docs := make([][]int, 200)
	for i := range docs {
		docs[i] = intRange(i, i+200)
	}
	v, store := buildIndex(t, docs)

	got := runQuery[int](t, v, store, Atom[int]{Term: 99})
	if len(got) != 100 {
		t.Fatalf("got %d results, want 100", len(got))
	}
	for i, doc := range got {
		if doc != postings.DocID(i) {
			t.Fatalf("result %d = %d, want %d", i, doc, i)
		}
	}
}

// TestAtomQueryUnknownTermIsEmpty checks that querying a term never
// seen at index time returns an empty result, not an error.
func TestAtomQueryUnknownTermIsEmpty(t *testing.T) {
	v, store := buildIndex(t, [][]string{{"a", "b"}})
	got := runQuery[string](t, v, store, Atom[string]{Term: "nowhere"})
	if len(got) != 0 {
		t.Fatalf("got %v, want empty", got)
	}
}

// TestPositionalIntersect mirrors spec scenario 5: L=[1,3,4,8],
// R=[0,4,5,7], bounds (-1,1). Scenario 5's written pair list omits
// {1,0} (1-0=1 is within the closed bound), which the two-pointer
// walk correctly emits (matches nary_query_iterator.rs's reference
// behavior at the same bounds); the expectation here includes it.
func TestPositionalIntersect(t *testing.T) {
	lhs := []uint32{1, 3, 4, 8}
	rhs := []uint32{0, 4, 5, 7}
	got := PositionalIntersect(lhs, rhs, -1, 1)

	want := map[PosPair]bool{
		{1, 0}: true,
		{3, 4}: true,
		{4, 4}: true,
		{4, 5}: true,
		{8, 7}: true,
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want pairs from %v", got, want)
	}
	for _, p := range got {
		if !want[p] {
			t.Errorf("unexpected pair %v", p)
		}
		delete(want, p)
	}
	if len(want) != 0 {
		t.Errorf("missing pairs: %v", want)
	}
}

// TestInOrderThreeTerms checks a three-term phrase and that breaking
// the adjacency (even if all three terms co-occur) excludes the
// document.
func TestInOrderThreeTerms(t *testing.T) {
	docs := [][]string{
		{"the", "quick", "brown", "fox"}, // "quick brown fox" is a phrase
		{"the", "brown", "quick", "fox"}, // same terms, wrong order
	}
	v, store := buildIndex(t, docs)

	got := runQuery[string](t, v, store, InOrder[string]{Terms: []string{"quick", "brown", "fox"}})
	assertDocIDs(t, got, 0)
}
