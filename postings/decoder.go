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
	"encoding/binary"
	"fmt"
	"io"

	"github.com/go-perlin/perlin/page"
	"github.com/go-perlin/perlin/vbyte"
	"github.com/go-perlin/perlin/vocab"
)

// ErrCorrupted is returned by a Decoder when a chunk chain's byte
// stream runs out before the term's recorded posting count is
// reached. It means the chain and its count disagree with each other,
// which a correctly-operating Store never produces.
var ErrCorrupted = fmt.Errorf("postings: chunk chain exhausted before recorded posting count")

// chunkByteSource streams the payload bytes (header stripped) of a
// chunk chain, in chain order, as a vbyte.ByteSource.
type chunkByteSource struct {
	pages page.Store
	ids   []page.ID
	idx   int
	buf   []byte // current chunk's payload bytes
	pos   int
}

func newChunkByteSource(pages page.Store, ids []page.ID) (*chunkByteSource, error) {
	src := &chunkByteSource{pages: pages, ids: ids}
	if len(ids) > 0 {
		if err := src.loadChunk(0); err != nil {
			return nil, err
		}
	}
	return src, nil
}

func (c *chunkByteSource) loadChunk(i int) error {
	raw, err := c.pages.Read(c.ids[i])
	if err != nil {
		return err
	}
	used := binary.LittleEndian.Uint32(raw[0:4])
	c.buf = raw[headerLen : headerLen+int(used)]
	c.pos = 0
	c.idx = i
	return nil
}

func (c *chunkByteSource) ReadByte() (byte, error) {
	for c.pos >= len(c.buf) {
		if c.idx+1 >= len(c.ids) {
			return 0, io.EOF
		}
		if err := c.loadChunk(c.idx + 1); err != nil {
			return 0, err
		}
	}
	b := c.buf[c.pos]
	c.pos++
	return b, nil
}

// Decoder reconstructs a Listing from a term's chunk chain. A Decoder
// is restartable (NewDecoder always starts a fresh read over the
// chain) and finite: it yields exactly the number of postings that
// were written for the term, even if trailing garbage bytes existed
// in the final chunk's unused space.
type Decoder struct {
	src     *chunkByteSource
	dec     *vbyte.Decoder
	base    DocID
	lastPos uint32
	remain  uint64
}

// NewDecoder returns a fresh Decoder over term's chunk chain.
func NewDecoder(s *Store, t vocab.ID) (*Decoder, error) {
	ids, err := s.chain(t)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	count := s.terms[t].count
	s.mu.RUnlock()
	src, err := newChunkByteSource(s.pages, ids)
	if err != nil {
		return nil, err
	}
	return &Decoder{src: src, dec: vbyte.NewDecoder(src), remain: count}, nil
}

// Next returns the next Posting in the chain, or ok=false once the
// recorded posting count has been exhausted.
func (d *Decoder) Next() (Posting, bool, error) {
	if d.remain == 0 {
		return Posting{}, false, nil
	}
	deltaDoc, ok := d.dec.Next()
	if !ok {
		return Posting{}, false, d.decodeErr()
	}
	d.base += DocID(deltaDoc)

	n, ok := d.dec.Next()
	if !ok {
		return Posting{}, false, d.decodeErr()
	}
	positions := make([]uint32, 0, n)
	var last uint32
	for i := uint64(0); i < n; i++ {
		delta, ok := d.dec.Next()
		if !ok {
			return Posting{}, false, d.decodeErr()
		}
		last += uint32(delta)
		positions = append(positions, last)
	}
	d.remain--
	return Posting{Doc: d.base, Positions: positions}, true, nil
}

func (d *Decoder) decodeErr() error {
	if err := d.dec.Err(); err != nil {
		return err
	}
	return fmt.Errorf("%w: %v", ErrCorrupted, io.ErrUnexpectedEOF)
}

// Decode fully drains a fresh Decoder for term into a Listing. It is
// a convenience used by tests and by the non-lazy batch-indexing
// comparisons; query evaluation uses Decoder directly so it never
// materializes a whole Listing.
func Decode(s *Store, t vocab.ID) (Listing, error) {
	d, err := NewDecoder(s, t)
	if err != nil {
		return nil, err
	}
	var out Listing
	for {
		p, ok, err := d.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, p)
	}
}
