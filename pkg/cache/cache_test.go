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

package cache

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/kraklabs/pathway/pkg/metrics"
)

// fakeFS is a minimal in-memory iofs.FS for tests, avoiding the need to
// exercise go-billy's real filesystem machinery for pure cache-bookkeeping
// behavior.
type fakeFS struct {
	files map[string][]byte
}

func (f fakeFS) ReadFile(path string) ([]byte, error) {
	buf, ok := f.files[path]
	if !ok {
		return nil, errors.New("not found")
	}
	return buf, nil
}

func newTestCache(files map[string][]byte, metr *metrics.Registry) *FileCache {
	return New(fakeFS{files: files}, slog.Default(), metr)
}

func TestCacheFileDirectRegistration(t *testing.T) {
	c := newTestCache(nil, nil)
	c.CacheFile("a.rs", []byte("fn main() {}"))
	raw := c.LoadRaw("a.rs")
	assert.Equal(t, "fn main() {}", raw.Text())
}

func TestLoadRawLazilyReadsThroughFS(t *testing.T) {
	c := newTestCache(map[string][]byte{"b.rs": []byte("struct S;")}, nil)
	raw := c.LoadRaw("b.rs")
	assert.Equal(t, "struct S;", raw.Text())
}

func TestLoadMaskedBlanksComments(t *testing.T) {
	c := newTestCache(map[string][]byte{"c.rs": []byte("fn f() {} // secret")}, nil)
	masked := c.LoadMasked("c.rs")
	assert.NotContains(t, masked.Text(), "secret")
	assert.Equal(t, len(c.LoadRaw("c.rs").Text()), len(masked.Text()))
}

func TestCacheFileIdenticalContentIsNoOp(t *testing.T) {
	c := newTestCache(nil, nil)
	c.CacheFile("a.rs", []byte("fn main() {}"))
	slotsBefore, _, _ := c.Stats()
	c.CacheFile("a.rs", []byte("fn main() {}"))
	slotsAfter, _, _ := c.Stats()
	assert.Equal(t, slotsBefore, slotsAfter)
}

func TestCacheFileChangedContentFreesOldSlot(t *testing.T) {
	c := newTestCache(nil, nil)
	c.CacheFile("a.rs", []byte("fn main() {}"))
	c.CacheFile("a.rs", []byte("fn main() { changed(); }"))
	_, freed, _ := c.Stats()
	assert.Equal(t, 2, freed) // raw + masked slot both superseded
}

func TestEndGenerationRecyclesFreedSlots(t *testing.T) {
	c := newTestCache(nil, nil)
	c.CacheFile("a.rs", []byte("fn main() {}"))
	c.CacheFile("a.rs", []byte("fn main() { changed(); }"))
	c.EndGeneration()
	_, freed, available := c.Stats()
	assert.Equal(t, 0, freed)
	assert.Equal(t, 2, available)
}

func TestMissingFileDegradesToEmptyText(t *testing.T) {
	c := newTestCache(nil, nil)
	view := c.LoadRaw("missing.rs")
	assert.Equal(t, "", view.Text())
}

func TestCacheRecordsHitMissMetrics(t *testing.T) {
	metr := metrics.New()
	c := newTestCache(map[string][]byte{"a.rs": []byte("fn main() {}")}, metr)

	c.LoadRaw("a.rs") // miss: first read
	c.LoadRaw("a.rs") // hit: already registered

	assert.Equal(t, float64(1), testutil.ToFloat64(metr.CacheMisses))
	assert.Equal(t, float64(1), testutil.ToFloat64(metr.CacheHits))
}
