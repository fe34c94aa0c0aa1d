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

package atomicext

import (
	"runtime"
	"sync/atomic"
)

// WaitForUint64 busy-waits until *ptr is at least want, yielding the
// processor between checks via runtime.Gosched rather than spinning
// tight. It is used by the indexing pipeline's sorters to hand their
// sorted batch to the merger strictly in submission order without a
// channel-per-batch allocation: *ptr only ever advances by one at a
// time in the non-error path, so ">=" and "==" agree there, but ">="
// also lets an aborting sorter release every waiter at once by
// jumping *ptr straight to its maximum value.
func WaitForUint64(ptr *uint64, want uint64) {
	for atomic.LoadUint64(ptr) < want {
		runtime.Gosched()
	}
}

// IncrementUint64 atomically adds one to *ptr and returns the new
// value.
func IncrementUint64(ptr *uint64) uint64 {
	return atomic.AddUint64(ptr, 1)
}

// SetUint64 atomically stores val into *ptr.
func SetUint64(ptr *uint64, val uint64) {
	atomic.StoreUint64(ptr, val)
}
