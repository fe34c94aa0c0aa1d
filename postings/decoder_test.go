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

package postings

import (
	"testing"

	"github.com/go-perlin/perlin/page"
	"github.com/go-perlin/perlin/vocab"
)

func TestDecoderIsRestartable(t *testing.T) {
	s := NewStore(page.NewRAM(4096))
	term := vocab.ID(0)
	s.NewChunk(term)
	s.AppendListing(term, Listing{
		{Doc: 0, Positions: []uint32{16}},
		{Doc: 1, Positions: []uint32{12, 25}},
	})

	first, err := Decode(s, term)
	if err != nil {
		t.Fatalf("first Decode: %v", err)
	}
	second, err := Decode(s, term)
	if err != nil {
		t.Fatalf("second Decode: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("decoders disagree on length: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Doc != second[i].Doc || !equalPositions(first[i].Positions, second[i].Positions) {
			t.Errorf("posting %d differs between decodes: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestDecoderOverOverflowingPosting(t *testing.T) {
	// Mirrors original_source's overflowing_posting test: a single
	// posting whose position list alone spans multiple chunks.
	s := NewStore(page.NewRAM(64))
	term := vocab.ID(0)
	s.NewChunk(term)

	positions := make([]uint32, 200)
	for i := range positions {
		positions[i] = uint32(i)
	}
	if err := s.AppendListing(term, Listing{{Doc: 0, Positions: positions}}); err != nil {
		t.Fatalf("AppendListing: %v", err)
	}

	got, err := Decode(s, term)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d postings, want 1", len(got))
	}
	if !equalPositions(got[0].Positions, positions) {
		t.Fatalf("positions mismatch: got %v", got[0].Positions)
	}
}

func TestDecodeUnknownTermErrors(t *testing.T) {
	s := NewStore(page.NewRAM(64))
	if _, err := Decode(s, vocab.ID(5)); err == nil {
		t.Fatal("expected error decoding a term with no storage")
	}
}

func TestDecoderFiniteEvenWithTrailingBytes(t *testing.T) {
	s := NewStore(page.NewRAM(4096))
	term := vocab.ID(0)
	s.NewChunk(term)
	s.AppendListing(term, Listing{{Doc: 0, Positions: []uint32{1}}})

	d, err := NewDecoder(s, term)
	if err != nil {
		t.Fatalf("NewDecoder: %v", err)
	}
	_, ok, err := d.Next()
	if err != nil || !ok {
		t.Fatalf("expected one posting, got ok=%v err=%v", ok, err)
	}
	_, ok, err = d.Next()
	if err != nil || ok {
		t.Fatalf("expected exhaustion after recorded count, got ok=%v err=%v", ok, err)
	}
}
