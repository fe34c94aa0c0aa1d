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
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dchest/siphash"
)

// segment describes where one flushed page's bytes live in the
// backing file, and how to get back to PageSize() raw bytes.
type segment struct {
	offset   int64
	length   int64 // length of the stored (possibly compressed) payload
	codec    string
	checksum uint64 // siphash-2-4 of the uncompressed page contents
}

const fileRecordHeaderLen = 4 + 8 // payload_len(uint32) + checksum(uint64), codec name is fixed per-store

// File is a Store that appends flushed pages to a single backing
// file, keyed by an in-memory offset table (see segment). Unflushed
// writes are held in memory so that a page remains mutable, per the
// Store contract, until Flush is called.
//
// Sealed pages may optionally be shrunk with a page.Compressor before
// they are appended; every stored record is guarded by a siphash-2-4
// checksum of its uncompressed contents, checked on every Read.
type File struct {
	size int
	f    *os.File

	compressor   Compressor
	decompressor Decompressor

	k0, k1 uint64 // siphash key, fixed for the lifetime of the store

	mu     sync.Mutex
	nextID ID
	dirty  map[ID][]byte
	index  map[ID]segment
	end    int64
}

// FileOptions configures a File store.
type FileOptions struct {
	// PageSize is the fixed page size; <= 0 selects DefaultSize.
	PageSize int
	// Codec names a page.Compressor/Decompressor pair ("s2", "zstd")
	// to apply to sealed pages, or "" to store pages raw.
	Codec string
	// ChecksumKey0/ChecksumKey1 seed the siphash checksum. Both zero
	// (the default) is fine for a single-process run; embedders that
	// want a stable on-disk checksum across reopens should set both.
	ChecksumKey0, ChecksumKey1 uint64
}

// OpenFile creates or truncates f's backing store at path.
func OpenFile(path string, opts FileOptions) (*File, error) {
	size := opts.PageSize
	if size <= 0 {
		size = DefaultSize
	}
	fh, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("page: opening backing file: %w", err)
	}
	fs := &File{
		size:         size,
		f:            fh,
		compressor:   Compression(opts.Codec),
		decompressor: Decompression(opts.Codec),
		k0:           opts.ChecksumKey0,
		k1:           opts.ChecksumKey1,
		dirty:        make(map[ID][]byte),
		index:        make(map[ID]segment),
		nextID:       1, // id 0 is reserved as the "no next chunk" sentinel
	}
	return fs, nil
}

func (fs *File) PageSize() int { return fs.size }

func (fs *File) Close() error {
	return fs.f.Close()
}

func (fs *File) Allocate() (ID, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	id := fs.nextID
	fs.nextID++
	fs.dirty[id] = make([]byte, fs.size)
	return id, nil
}

func (fs *File) Write(id ID, data []byte) error {
	if len(data) != fs.size {
		return &WriteError{ID: id, Cause: ErrSize}
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.dirty[id] = cp
	return nil
}

func (fs *File) Read(id ID) ([]byte, error) {
	fs.mu.Lock()
	if d, ok := fs.dirty[id]; ok {
		out := make([]byte, len(d))
		copy(out, d)
		fs.mu.Unlock()
		return out, nil
	}
	seg, ok := fs.index[id]
	fs.mu.Unlock()
	if !ok {
		return nil, &ReadError{ID: id, Cause: ErrNotFound}
	}
	raw := make([]byte, seg.length)
	if _, err := fs.f.ReadAt(raw, seg.offset); err != nil {
		return nil, &ReadError{ID: id, Cause: err}
	}
	out := make([]byte, fs.size)
	if seg.codec == "" {
		copy(out, raw)
	} else {
		dec := fs.decompressor
		if dec == nil || dec.Name() != seg.codec {
			return nil, &ReadError{ID: id, Cause: fmt.Errorf("page: no decompressor registered for codec %q", seg.codec)}
		}
		if err := dec.Decompress(raw, out); err != nil {
			return nil, &ReadError{ID: id, Cause: err}
		}
	}
	if got := siphash.Hash(fs.k0, fs.k1, out); got != seg.checksum {
		return nil, &ReadError{ID: id, Cause: fmt.Errorf("page: checksum mismatch for id %d", id)}
	}
	return out, nil
}

// Flush durably appends the dirty contents of page id to the backing
// file and records its location in the in-memory offset index. A
// page that has already been flushed and not written to again is a
// no-op.
func (fs *File) Flush(id ID) error {
	fs.mu.Lock()
	data, dirty := fs.dirty[id]
	if !dirty {
		_, known := fs.index[id]
		fs.mu.Unlock()
		if known {
			return nil
		}
		return &WriteError{ID: id, Cause: ErrNotFound}
	}
	fs.mu.Unlock()

	checksum := siphash.Hash(fs.k0, fs.k1, data)
	payload := data
	codec := ""
	if fs.compressor != nil {
		compressed := fs.compressor.Compress(data, nil)
		if len(compressed) < len(data) {
			payload = compressed
			codec = fs.compressor.Name()
		}
	}

	header := make([]byte, fileRecordHeaderLen)
	binary.LittleEndian.PutUint32(header[0:4], uint32(len(payload)))
	binary.LittleEndian.PutUint64(header[4:12], checksum)

	fs.mu.Lock()
	defer fs.mu.Unlock()
	offset := fs.end
	if _, err := fs.f.WriteAt(header, offset); err != nil {
		return &WriteError{ID: id, Cause: err}
	}
	if _, err := fs.f.WriteAt(payload, offset+fileRecordHeaderLen); err != nil {
		return &WriteError{ID: id, Cause: err}
	}
	if err := syncPage(fs.f); err != nil {
		return &WriteError{ID: id, Cause: err}
	}
	fs.index[id] = segment{
		offset:   offset + fileRecordHeaderLen,
		length:   int64(len(payload)),
		codec:    codec,
		checksum: checksum,
	}
	fs.end = offset + fileRecordHeaderLen + int64(len(payload))
	delete(fs.dirty, id)
	return nil
}

var _ io.Closer = (*File)(nil)
