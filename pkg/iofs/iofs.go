// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package iofs is the file I/O substrate the cache layer treats as an
// external collaborator. It wraps a go-billy filesystem so the cache never
// touches os.ReadFile directly, production wires osfs, tests wire memfs.
package iofs

import (
	"errors"
	"io"
	"io/fs"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
)

// FS is the minimal surface the cache needs from a filesystem.
type FS interface {
	ReadFile(path string) ([]byte, error)
}

// billyFS adapts a billy.Filesystem (which has no ReadFile convenience
// method) to FS.
type billyFS struct {
	fs billy.Filesystem
}

// OS returns an FS rooted at dir, backed by the real filesystem.
func OS(dir string) FS {
	return billyFS{fs: osfs.New(dir)}
}

// Memory returns an empty in-memory FS, for tests and for overlay buffers
// that should never touch disk.
func Memory() FS {
	return billyFS{fs: memfs.New()}
}

// ReadFile reads path in full. A missing file is reported via the returned
// error; callers implementing a "missing files yield empty bytes" policy
// should treat any error (not just fs.ErrNotExist) as empty.
func (b billyFS) ReadFile(path string) ([]byte, error) {
	f, err := b.fs.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// bom is the UTF-8 byte order mark, stripped from every read
var bom = []byte{0xEF, 0xBB, 0xBF}

// StripBOM removes a leading UTF-8 BOM from buf, if present.
func StripBOM(buf []byte) []byte {
	if len(buf) >= 3 && buf[0] == bom[0] && buf[1] == bom[1] && buf[2] == bom[2] {
		return buf[3:]
	}
	return buf
}
