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
	"github.com/go-perlin/perlin/postings"
	"github.com/go-perlin/perlin/vocab"
)

// Sequential indexes docs on the calling goroutine: no sorter pool,
// no merge handoff. It tokenizes the whole stream into triples, sorts
// and groups them once, then appends the result to store.
//
// Sequential groups every occurrence of a (term, doc) pair into one
// Posting, the same as Run: it does not drop or collapse repeated
// positions, and a document that uses the same term twice yields a
// Posting with both positions rather than just the first or last one.
func Sequential[T comparable](docs Documents[T], vocabulary *vocab.Vocabulary[T], store *postings.Store) (Stats, error) {
	var triples []Triple
	var docCount uint64
	for {
		doc, ok, err := docs.Next()
		if err != nil {
			return Stats{}, err
		}
		if !ok {
			break
		}
		for pos, term := range doc {
			id := vocabulary.GetOrAdd(term)
			triples = append(triples, Triple{Term: id, Doc: postings.DocID(docCount), Pos: uint32(pos)})
		}
		docCount++
	}

	for _, g := range sortAndGroup(triples) {
		if !store.Has(g.term) {
			if err := store.NewChunk(g.term); err != nil {
				return Stats{}, wrapWriteErr(err)
			}
		}
		if err := store.AppendListing(g.term, g.listing); err != nil {
			return Stats{}, wrapWriteErr(err)
		}
	}
	return Stats{Documents: docCount, Terms: vocabulary.Len()}, nil
}
