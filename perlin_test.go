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

package perlin

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/go-perlin/perlin/indexing"
	"github.com/go-perlin/perlin/page"
	"github.com/go-perlin/perlin/postings"
	"github.com/go-perlin/perlin/query"
)

func intRange(lo, hi int) []int {
	out := make([]int, 0, hi-lo)
	for i := lo; i < hi; i++ {
		out = append(out, i)
	}
	return out
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

// TestAtomQueryThreeDocuments mirrors spec scenario 1 through the
// public Index API: documents [0..10), [0..15), [10..34); term 4
// matches only the first two documents.
func TestAtomQueryThreeDocuments(t *testing.T) {
	docs := [][]int{intRange(0, 10), intRange(0, 15), intRange(10, 34)}

	ix := Open[int](page.NewRAM(4096), Config{})
	if _, err := ix.Add(indexing.NewSliceDocuments(docs)); err != nil {
		t.Fatalf("Add: %v", err)
	}

	got, err := ix.Query(query.Atom[int]{Term: 4})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	assertDocIDs(t, got, 0, 1)
}

// TestAtomQueryOverlappingDocumentsConcurrent mirrors spec scenario 6,
// indexed through AddConcurrent rather than Add: document i contains
// terms i..i+200, so term 99 is present in exactly documents 0..99.
func TestAtomQueryOverlappingDocumentsConcurrent(t *testing.T) {
	docs := make([][]int, 200)
	for i := range docs {
		docs[i] = intRange(i, i+200)
	}

	ix := Open[int](page.NewRAM(4096), Config{SortWorkers: 3, DocsPerChunk: 17})
	stats, err := ix.AddConcurrent(indexing.NewSliceDocuments(docs))
	if err != nil {
		t.Fatalf("AddConcurrent: %v", err)
	}
	if stats.Documents != 200 {
		t.Fatalf("Documents = %d, want 200", stats.Documents)
	}

	got, err := ix.Query(query.Atom[int]{Term: 99})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(got) != 100 {
		t.Fatalf("got %d results, want 100", len(got))
	}
	for i, doc := range got {
		if doc != postings.DocID(i) {
			t.Fatalf("result %d = %d, want %d", i, doc, i)
		}
	}
}

// TestBooleanAndPhraseQueries mirrors spec scenario 2: documents
// {0:"a b c", 1:"a c", 2:"b c a"}.
func TestBooleanAndPhraseQueries(t *testing.T) {
	docs := [][]string{
		{"a", "b", "c"},
		{"a", "c"},
		{"b", "c", "a"},
	}

	ix := Open[string](page.NewRAM(4096), Config{})
	if _, err := ix.Add(indexing.NewSliceDocuments(docs)); err != nil {
		t.Fatalf("Add: %v", err)
	}

	and, err := ix.Query(query.And[string]{Operands: []query.Node[string]{
		query.Atom[string]{Term: "a"}, query.Atom[string]{Term: "b"},
	}})
	if err != nil {
		t.Fatalf("Query(And): %v", err)
	}
	assertDocIDs(t, and, 0, 2)

	phrase, err := ix.Query(query.InOrder[string]{Terms: []string{"a", "b"}})
	if err != nil {
		t.Fatalf("Query(InOrder): %v", err)
	}
	assertDocIDs(t, phrase, 0)
}

// TestAddTwiceRejected checks that a second Add on an already-built
// Index is rejected rather than silently reassigning DocIds from zero.
func TestAddTwiceRejected(t *testing.T) {
	ix := Open[string](page.NewRAM(4096), Config{})
	docs := indexing.NewSliceDocuments([][]string{{"a"}})
	if _, err := ix.Add(docs); err != nil {
		t.Fatalf("first Add: %v", err)
	}
	if _, err := ix.Add(docs); err != ErrAlreadyIndexed {
		t.Fatalf("second Add = %v, want ErrAlreadyIndexed", err)
	}
}

// TestQueryUnknownTermIsEmpty checks that querying a term never seen
// at index time returns an empty result, not an error.
func TestQueryUnknownTermIsEmpty(t *testing.T) {
	ix := Open[string](page.NewRAM(4096), Config{})
	if _, err := ix.Add(indexing.NewSliceDocuments([][]string{{"a", "b"}})); err != nil {
		t.Fatalf("Add: %v", err)
	}
	got, err := ix.Query(query.Atom[string]{Term: "nowhere"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %v, want empty", got)
	}
}

// TestCursorMatchesQuery checks that draining a Cursor by hand
// produces the same DocIds as Query.
func TestCursorMatchesQuery(t *testing.T) {
	docs := [][]string{{"x", "y"}, {"y"}, {"x", "y"}}
	ix := Open[string](page.NewRAM(4096), Config{})
	if _, err := ix.Add(indexing.NewSliceDocuments(docs)); err != nil {
		t.Fatalf("Add: %v", err)
	}

	cur, err := ix.Cursor(query.Atom[string]{Term: "x"})
	if err != nil {
		t.Fatalf("Cursor: %v", err)
	}
	var got []postings.DocID
	for {
		doc, ok, err := cur.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			break
		}
		got = append(got, doc)
	}
	assertDocIDs(t, got, 0, 2)
}

// TestPostingsReturnsListing checks that Postings surfaces the full
// decoded (doc, positions) listing for an indexed term.
func TestPostingsReturnsListing(t *testing.T) {
	docs := [][]string{{"a", "b", "a"}, {"b"}}
	ix := Open[string](page.NewRAM(4096), Config{})
	if _, err := ix.Add(indexing.NewSliceDocuments(docs)); err != nil {
		t.Fatalf("Add: %v", err)
	}

	listing, err := ix.Postings("a")
	if err != nil {
		t.Fatalf("Postings: %v", err)
	}
	if len(listing) != 1 || listing[0].Doc != 0 {
		t.Fatalf("got %v, want a single posting for doc 0", listing)
	}
	if got := listing[0].Positions; len(got) != 2 || got[0] != 0 || got[1] != 2 {
		t.Fatalf("positions = %v, want [0 2]", got)
	}
}

// TestPostingsUnknownTermIsKeyNotFound checks that Postings, unlike
// Query, treats an unindexed term as an error rather than an empty
// result: it is a direct lookup, not a query.
func TestPostingsUnknownTermIsKeyNotFound(t *testing.T) {
	ix := Open[string](page.NewRAM(4096), Config{})
	if _, err := ix.Add(indexing.NewSliceDocuments([][]string{{"a"}})); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := ix.Postings("nowhere"); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("Postings(nowhere) = %v, want ErrKeyNotFound", err)
	}
}

// TestOpenRAMUsesChunkSize checks that OpenRAM builds its backing
// store at the requested page size rather than ignoring ChunkSize.
func TestOpenRAMUsesChunkSize(t *testing.T) {
	ix := OpenRAM[string](Config{ChunkSize: 256})
	if got := ix.pages.PageSize(); got != 256 {
		t.Fatalf("PageSize() = %d, want 256", got)
	}
	if _, err := ix.Add(indexing.NewSliceDocuments([][]string{{"a", "b"}})); err != nil {
		t.Fatalf("Add: %v", err)
	}
	got, err := ix.Query(query.Atom[string]{Term: "a"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	assertDocIDs(t, got, 0)
}

// TestOpenFileRoundTrip checks that an Index backed by a real file can
// be built, queried, and closed without error.
func TestOpenFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.perlin")
	ix, err := OpenFile[string](path, Config{ChunkSize: 512})
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer ix.Close()

	if _, err := ix.Add(indexing.NewSliceDocuments([][]string{{"a", "b"}, {"b"}})); err != nil {
		t.Fatalf("Add: %v", err)
	}
	got, err := ix.Query(query.Atom[string]{Term: "b"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	assertDocIDs(t, got, 0, 1)

	if err := ix.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

// TestOpenFileBadPathIsIOError checks that a failure to create the
// backing file surfaces as IOError rather than a raw os error.
func TestOpenFileBadPathIsIOError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-dir", "index.perlin")
	_, err := OpenFile[string](path, Config{})
	var ioErr *IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("OpenFile err = %v, want *IOError", err)
	}
}

// TestRunIDIsUnique checks that two Index values get distinct RunIDs.
func TestRunIDIsUnique(t *testing.T) {
	a := Open[string](page.NewRAM(4096), Config{})
	b := Open[string](page.NewRAM(4096), Config{})
	if a.RunID == b.RunID {
		t.Fatalf("RunID collision: %v", a.RunID)
	}
}
