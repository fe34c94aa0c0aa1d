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

package vbyte

import (
	"bytes"
	"io"
	"testing"
)

func TestEncodeFixedPoints(t *testing.T) {
	cases := []struct {
		v    uint64
		want []byte
	}{
		{0, []byte{0x80}},
		{127, []byte{0xFF}},
		{128, []byte{0x00, 0x81}},
	}
	for _, c := range cases {
		got := Encode(nil, c.v)
		if !bytes.Equal(got, c.want) {
			t.Errorf("Encode(%d) = %x, want %x", c.v, got, c.want)
		}
		if len(got) != Len(c.v) {
			t.Errorf("Len(%d) = %d, want %d", c.v, Len(c.v), len(got))
		}
	}
}

func TestRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 2, 126, 127, 128, 129, 16383, 16384, 1 << 20, 1 << 40, ^uint64(0)}
	for _, v := range values {
		buf := Encode(nil, v)
		got, err := Decode(bytes.NewReader(buf))
		if err != nil {
			t.Fatalf("Decode(Encode(%d)): %v", v, err)
		}
		if got != v {
			t.Errorf("round trip %d -> %x -> %d", v, buf, got)
		}
	}
}

func TestEncodedLenMatchesConcatenation(t *testing.T) {
	xs := []uint64{0, 1, 127, 128, 300, 1 << 20}
	var buf []byte
	for _, v := range xs {
		buf = Encode(buf, v)
	}
	if got, want := len(buf), EncodedLen(xs); got != want {
		t.Errorf("total encoded bytes = %d, EncodedLen = %d", got, want)
	}
}

func TestDecoderYieldsSequence(t *testing.T) {
	xs := []uint64{0, 3, 0, 1, 1, 1, 3, 1, 1, 1}
	var buf []byte
	for _, v := range xs {
		buf = Encode(buf, v)
	}
	d := NewDecoder(bytes.NewReader(buf))
	var got []uint64
	for {
		v, ok := d.Next()
		if !ok {
			break
		}
		got = append(got, v)
	}
	if d.Err() != nil {
		t.Fatalf("unexpected decode error: %v", d.Err())
	}
	if len(got) != len(xs) {
		t.Fatalf("got %v, want %v", got, xs)
	}
	for i := range xs {
		if got[i] != xs[i] {
			t.Errorf("index %d: got %d, want %d", i, got[i], xs[i])
		}
	}
}

func TestDecodeTruncatedErrors(t *testing.T) {
	// A byte with the high bit clear never terminates.
	_, err := Decode(bytes.NewReader([]byte{0x00}))
	if err != io.ErrUnexpectedEOF {
		t.Errorf("Decode(truncated) = %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestDecodeEmptySourceIsEOF(t *testing.T) {
	_, err := Decode(bytes.NewReader(nil))
	if err != io.EOF {
		t.Errorf("Decode(empty) = %v, want io.EOF", err)
	}
}
