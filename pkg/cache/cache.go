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

// Package cache implements the File Cache: the process-wide owner of every
// IndexedSource allocation, keeping a raw and a masked registration per
// known file, with arena-backed slot reuse deferred to generation
// boundaries.
package cache

import (
	"log/slog"
	"sync"
	"unicode/utf8"

	"github.com/RoaringBitmap/roaring"

	"github.com/kraklabs/pathway/pkg/iofs"
	"github.com/kraklabs/pathway/pkg/lexfacility"
	"github.com/kraklabs/pathway/pkg/metrics"
	"github.com/kraklabs/pathway/pkg/source"
)

// slot is one arena-owned IndexedSource allocation plus the content hash it
// was last built from (used to short-circuit identical re-registrations).
type slot struct {
	src  *source.IndexedSource
	hash string
}

// FileCache owns every IndexedSource the process has built, for every file
// it knows about, in two independent registrations (raw, masked). It is
// not safe for concurrent use by more than one session at a time: the
// mutex here only keeps each single call's bookkeeping consistent, not
// a sequence of calls made by different sessions.
type FileCache struct {
	mu sync.Mutex

	fs     iofs.FS
	logger *slog.Logger
	metr   *metrics.Registry

	arena []slot

	rawSlot    map[string]int
	maskedSlot map[string]int

	// freed holds slot indices superseded by a re-registration, not yet
	// safe to reuse. available holds slot indices that ARE safe to reuse,
	// refilled from freed exactly once per generation.
	//
	// Note on the Go rendering of the arena trick: views returned by this
	// cache hold a direct *source.IndexedSource pointer, not a slot index,
	// so reusing a slot index for bookkeeping never invalidates a live
	// view, the old object simply stays reachable (and thus alive) for as
	// long as some view still points at it. The bitmaps exist to bound
	// arena growth and to make the generation contract auditable, not
	// because Go needs them for memory safety the way the arena does.
	freed     *roaring.Bitmap
	available *roaring.Bitmap
}

// New creates an empty FileCache backed by fs. metr may be nil, in which
// case cache hit/miss counters are simply not recorded.
func New(fs iofs.FS, logger *slog.Logger, metr *metrics.Registry) *FileCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileCache{
		fs:         fs,
		logger:     logger,
		metr:       metr,
		rawSlot:    make(map[string]int),
		maskedSlot: make(map[string]int),
		freed:      roaring.New(),
		available:  roaring.New(),
	}
}

func (c *FileCache) recordHit(hit bool) {
	if c.metr == nil {
		return
	}
	if hit {
		c.metr.CacheHits.Inc()
	} else {
		c.metr.CacheMisses.Inc()
	}
}

// CacheFile re-registers path as both raw and masked source, built from buf.
// The previous registrations, if any, are moved to the freed list rather
// than reclaimed immediately. Re-registering identical content is a no-op.
func (c *FileCache) CacheFile(path string, buf []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cacheFileLocked(path, buf)
}

func (c *FileCache) cacheFileLocked(path string, buf []byte) {
	h := contentHash(buf)
	if id, ok := c.rawSlot[path]; ok && c.arena[id].hash == h {
		return // identical content: invariant 6, nothing changes.
	}

	text := string(buf)
	raw := source.New(text, lexfacility.CodeChunks)
	masked := source.WithChunks(lexfacility.MaskComments(text), raw.Chunks)

	if old, ok := c.rawSlot[path]; ok {
		c.freed.Add(uint32(old))
	}
	if old, ok := c.maskedSlot[path]; ok {
		c.freed.Add(uint32(old))
	}

	c.rawSlot[path] = c.allocSlot(slot{src: raw, hash: h})
	c.maskedSlot[path] = c.allocSlot(slot{src: masked, hash: h})
}

// allocSlot reuses a slot from `available` if one exists, otherwise grows
// the arena. Caller must hold c.mu.
func (c *FileCache) allocSlot(s slot) int {
	if !c.available.IsEmpty() {
		id := int(c.available.Minimum())
		c.available.Remove(uint32(id))
		c.arena[id] = s
		return id
	}
	c.arena = append(c.arena, s)
	return len(c.arena) - 1
}

// LoadRaw returns a view over path's raw text, reading and registering it
// on first access.
func (c *FileCache) LoadRaw(path string) source.View {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id, ok := c.rawSlot[path]; ok {
		c.recordHit(true)
		return c.arena[id].src.ViewOf()
	}
	c.recordHit(false)
	buf := c.readFileLocked(path)
	c.cacheFileLocked(path, buf)
	return c.arena[c.rawSlot[path]].src.ViewOf()
}

// LoadMasked returns a view over path's masked text: the raw text with
// comment and string-literal bodies blanked, byte-aligned with the raw
// text so offsets are interchangeable.
func (c *FileCache) LoadMasked(path string) source.View {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id, ok := c.maskedSlot[path]; ok {
		c.recordHit(true)
		return c.arena[id].src.ViewOf()
	}
	c.recordHit(false)
	buf := c.readFileLocked(path)
	c.cacheFileLocked(path, buf)
	return c.arena[c.maskedSlot[path]].src.ViewOf()
}

// readFileLocked reads path via the filesystem collaborator, stripping a
// leading BOM. Missing files and non-UTF-8 content both degrade to empty
// text with a logged diagnostic rather than a hard error.
func (c *FileCache) readFileLocked(path string) []byte {
	buf, err := c.fs.ReadFile(path)
	if err != nil {
		c.logger.Warn("cache.read_failed", "path", path, "err", err)
		return nil
	}
	buf = iofs.StripBOM(buf)
	if !utf8.Valid(buf) {
		c.logger.Warn("cache.non_utf8", "path", path)
		return nil
	}
	return buf
}

// EndGeneration refills `available` from `freed`. This must only be called
// at a session's destruction, when no views from that session's generation
// can still be outstanding.
func (c *FileCache) EndGeneration() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.available.Or(c.freed)
	c.freed.Clear()
}

// Stats reports arena occupancy, as printed by the warm CLI.
func (c *FileCache) Stats() (slots, freed, available int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.arena), int(c.freed.GetCardinality()), int(c.available.GetCardinality())
}
