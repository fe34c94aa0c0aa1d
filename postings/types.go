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

// Package postings implements the chunked, per-term posting storage
// (C3) and its streaming decoder (C6): a singly linked list of
// fixed-size chunks per term, each holding delta+vbyte-encoded
// (doc, positions) records.
package postings

// DocID is a monotonically assigned, never-reused document
// identifier, starting at zero for the first document indexed in a
// run.
type DocID uint64

// Posting is the set of positions at which one term occurs in one
// document. Positions must be strictly ascending and unique within a
// Posting.
type Posting struct {
	Doc       DocID
	Positions []uint32
}

// Listing is an ordered run of Postings for a single term, strictly
// ascending by Doc with no duplicate Docs.
type Listing []Posting
