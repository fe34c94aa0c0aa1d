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

package page

import (
	"fmt"

	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
)

// Compressor is the interface a File store needs an algorithm to
// implement in order to shrink sealed (immutable, interior) pages
// before they are appended to the cold segment of the backing file.
type Compressor interface {
	// Name identifies the algorithm; it is stored alongside each
	// compressed page so Decompression(Name()) finds the matching
	// Decompressor on read.
	Name() string
	// Compress appends the compressed form of src to dst and
	// returns the extended slice.
	Compress(src, dst []byte) []byte
}

// Decompressor reverses a Compressor of the same Name.
type Decompressor interface {
	Name() string
	// Decompress decompresses src into dst, which must already be
	// sized to hold the original (uncompressed) page.
	Decompress(src, dst []byte) error
}

type s2Compressor struct{}

func (s2Compressor) Name() string { return "s2" }

func (s2Compressor) Compress(src, dst []byte) []byte {
	return append(dst, s2.EncodeBetter(nil, src)...)
}

func (s2Compressor) Decompress(src, dst []byte) error {
	ret, err := s2.Decode(dst[:0:len(dst)], src)
	if err != nil {
		return err
	}
	if len(ret) != len(dst) {
		return fmt.Errorf("page: s2 decompress produced %d bytes, want %d", len(ret), len(dst))
	}
	return nil
}

type zstdCompressor struct {
	enc *zstd.Encoder
}

func (z zstdCompressor) Name() string { return "zstd" }

func (z zstdCompressor) Compress(src, dst []byte) []byte {
	return z.enc.EncodeAll(src, dst)
}

type zstdDecompressor struct {
	dec *zstd.Decoder
}

func (z zstdDecompressor) Name() string { return "zstd" }

func (z zstdDecompressor) Decompress(src, dst []byte) error {
	ret, err := z.dec.DecodeAll(src, dst[:0:len(dst)])
	if err != nil {
		return err
	}
	if len(ret) != len(dst) {
		return fmt.Errorf("page: zstd decompress produced %d bytes, want %d", len(ret), len(dst))
	}
	return nil
}

// Compression selects a Compressor by name, or nil for an unknown
// name (the caller should then fall back to storing pages raw).
func Compression(name string) Compressor {
	switch name {
	case "s2":
		return s2Compressor{}
	case "zstd":
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
		if err != nil {
			return nil
		}
		return zstdCompressor{enc}
	default:
		return nil
	}
}

// Decompression selects a Decompressor by name, or nil for an
// unknown name.
func Decompression(name string) Decompressor {
	switch name {
	case "s2":
		return s2Compressor{}
	case "zstd":
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil
		}
		return zstdDecompressor{dec}
	default:
		return nil
	}
}
