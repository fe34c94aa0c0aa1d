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

//go:build linux && amd64

package page

import (
	"os"

	"golang.org/x/sys/unix"
)

// syncPage flushes recently appended bytes to stable storage without
// the metadata-sync overhead of a full fsync, the same tradeoff
// ion/blockfmt's platform-specific file paths make for durability-
// sensitive writes.
func syncPage(f *os.File) error {
	return unix.Fdatasync(int(f.Fd()))
}
