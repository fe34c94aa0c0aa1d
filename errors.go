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

import "fmt"

// ErrKeyNotFound is returned by Index.Postings when the requested term
// was never interned, so it has no chunk storage to read.
var ErrKeyNotFound = fmt.Errorf("perlin: key not found")

// ErrThreadPanic is returned when a sorter or merger goroutine in the
// indexing pipeline aborted. The partial index is not published: an
// Index whose Add returned this error should be discarded.
var ErrThreadPanic = fmt.Errorf("perlin: indexing worker aborted")

// ErrInvariantViolation is returned by Query/Cursor/Postings when a
// term's chunk chain disagrees with its recorded posting count
// (postings.ErrCorrupted). That can only happen from a bug in the
// engine itself, never a caller mistake, and is never recovered from:
// callers that observe it should treat the Index as unusable.
var ErrInvariantViolation = fmt.Errorf("perlin: internal invariant violation")

// ErrAlreadyIndexed is returned by Index.Add/AddConcurrent when the
// Index has already completed one indexing run. DocIds are assigned
// monotonically from zero within a single run, so an Index does not
// support appending a second document stream on top of an
// already-built one.
var ErrAlreadyIndexed = fmt.Errorf("perlin: index already built")

// ReadError wraps a backing-store or codec failure encountered while
// reading, preserving Cause for errors.Unwrap/errors.Is.
type ReadError struct {
	Cause error
}

func (e *ReadError) Error() string { return fmt.Sprintf("perlin: read: %v", e.Cause) }
func (e *ReadError) Unwrap() error { return e.Cause }

// WriteError wraps a backing-store failure encountered while
// appending postings during Add/AddConcurrent (indexing.ErrWrite).
type WriteError struct {
	Cause error
}

func (e *WriteError) Error() string { return fmt.Sprintf("perlin: write: %v", e.Cause) }
func (e *WriteError) Unwrap() error { return e.Cause }

// IOError wraps a failure opening or closing a file-backed store, as
// returned by OpenFile and Index.Close.
type IOError struct {
	Cause error
}

func (e *IOError) Error() string { return fmt.Sprintf("perlin: io: %v", e.Cause) }
func (e *IOError) Unwrap() error { return e.Cause }
