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

// Package vbyte implements the variable-byte integer encoding used to
// delta-compress document ids and positions throughout the postings
// store. Each byte carries 7 bits of payload; the high bit is set only
// on the terminating byte of a number.
package vbyte

import "io"

// MaxLen is the largest number of bytes Encode can produce for a
// 64-bit value.
const MaxLen = 10

// Len returns the number of bytes Encode(v) would produce.
func Len(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}

// Encode appends the vbyte encoding of v to dst and returns the
// extended slice.
func Encode(dst []byte, v uint64) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v&0x7f))
		v >>= 7
	}
	return append(dst, byte(v)|0x80)
}

// EncodedLen returns the total encoded length of every value in xs,
// i.e. the length Encode would produce for each element summed.
func EncodedLen(xs []uint64) int {
	n := 0
	for _, v := range xs {
		n += Len(v)
	}
	return n
}

// ByteSource is a pull source of raw bytes, satisfied by a
// *bytes.Reader, *bufio.Reader, or any io.ByteReader.
type ByteSource interface {
	ReadByte() (byte, error)
}

// Decode reads one vbyte-encoded value from src.
//
// It returns io.EOF only when src is exhausted before any byte of the
// number has been read. A number that starts but does not terminate
// before src is exhausted is a truncation error, distinct from a
// clean end-of-stream.
func Decode(src ByteSource) (uint64, error) {
	var result uint64
	var shift uint
	for {
		b, err := src.ReadByte()
		if err != nil {
			if err == io.EOF && shift != 0 {
				return 0, io.ErrUnexpectedEOF
			}
			return 0, err
		}
		result |= uint64(b&0x7f) << shift
		if b&0x80 != 0 {
			return result, nil
		}
		shift += 7
		if shift >= 64 {
			return 0, io.ErrUnexpectedEOF
		}
	}
}

// Decoder is a restartable pull iterator over a ByteSource that
// yields successive vbyte-decoded values until the source is
// exhausted.
type Decoder struct {
	src ByteSource
	err error
}

// NewDecoder wraps src in a Decoder.
func NewDecoder(src ByteSource) *Decoder {
	return &Decoder{src: src}
}

// Next returns the next decoded value, or ok=false once src is
// cleanly exhausted. A truncated final number is reported through
// Err, not by a silent ok=false.
func (d *Decoder) Next() (v uint64, ok bool) {
	if d.err != nil {
		return 0, false
	}
	v, err := Decode(d.src)
	if err != nil {
		if err != io.EOF {
			d.err = err
		}
		return 0, false
	}
	return v, true
}

// Err returns the first decode error encountered, if any. It is nil
// on clean exhaustion of the source.
func (d *Decoder) Err() error {
	return d.err
}
