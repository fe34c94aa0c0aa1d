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

// SliceDocuments adapts an in-memory collection of documents to the
// Documents interface, for callers that already have every document
// in hand (tests, small batch jobs).
type SliceDocuments[T any] struct {
	docs [][]T
	pos  int
}

// NewSliceDocuments returns a Documents over docs, in order.
func NewSliceDocuments[T any](docs [][]T) *SliceDocuments[T] {
	return &SliceDocuments[T]{docs: docs}
}

func (s *SliceDocuments[T]) Next() ([]T, bool, error) {
	if s.pos >= len(s.docs) {
		return nil, false, nil
	}
	doc := s.docs[s.pos]
	s.pos++
	return doc, true, nil
}
