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

package astbridge

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/pathway/pkg/cache"
	"github.com/kraklabs/pathway/pkg/iofs"
	"github.com/kraklabs/pathway/pkg/resolve"
	"github.com/kraklabs/pathway/pkg/session"
)

func newTestBridge(t *testing.T, text string) (*Bridge, *session.Session, *resolve.Resolver) {
	t.Helper()
	c := cache.New(iofs.Memory(), slog.Default(), nil)
	c.CacheFile("main.rs", []byte(text))
	masked := c.LoadMasked("main.rs").Text()

	world := resolve.NewWorld(nil, nil)
	world.Build("main.rs", masked)

	resolver := resolve.NewResolver(world)
	sess := session.New(c, "main.rs")
	return New(resolver), sess, resolver
}

func TestTypeOfPlainIdentifierResolvesToStruct(t *testing.T) {
	text := `
struct Point {
    x: i32,
}
`
	b, sess, _ := newTestBridge(t, text)
	ty, err := b.TypeOf("Point", "main.rs", strings.Index(text, "Point"), sess)
	require.NoError(t, err)
	assert.Equal(t, resolve.TyMatch, ty.Tag)
	assert.Equal(t, "Point", ty.Match.Name)
}

func TestTypeOfFieldChainResolvesThroughSelf(t *testing.T) {
	text := `
struct Point {
    x: i32,
    y: i32,
}

impl Point {
    fn dist(&self) -> i32 {
        Self.x
    }
}
`
	b, sess, _ := newTestBridge(t, text)
	cursor := strings.Index(text, "Self.x")

	ty, err := b.TypeOf("Self.x", "main.rs", cursor, sess)
	require.NoError(t, err)
	assert.Equal(t, "x", ty.Match.Name)
	assert.Equal(t, resolve.KindStructField, ty.Match.Kind)
}

func TestTypeOfMethodChainResolvesThroughImplMembers(t *testing.T) {
	text := `
struct Counter {
    total: i32,
}

impl Counter {
    fn doubled(&self) -> i32 {
        self.total * 2
    }

    fn current(&self) -> i32 {
        Self.doubled()
    }
}
`
	b, sess, _ := newTestBridge(t, text)
	cursor := strings.Index(text, "Self.doubled()")

	ty, err := b.TypeOf("Self.doubled()", "main.rs", cursor, sess)
	require.NoError(t, err)
	assert.Equal(t, "doubled", ty.Match.Name)
	assert.Equal(t, resolve.KindFunction, ty.Match.Kind)
}

func TestTypeOfUnresolvedHeadReturnsErrUnresolved(t *testing.T) {
	text := `struct Point { x: i32 }`
	b, sess, _ := newTestBridge(t, text)

	_, err := b.TypeOf("NoSuchName", "main.rs", 0, sess)
	assert.ErrorIs(t, err, ErrUnresolved)
}

func TestTypeOfUnresolvableSegmentDegradesToUnsupported(t *testing.T) {
	text := `
struct Point {
    x: i32,
}
`
	b, sess, _ := newTestBridge(t, text)
	cursor := strings.Index(text, "struct Point")

	ty, err := b.TypeOf("Point.not_a_field", "main.rs", cursor, sess)
	require.NoError(t, err)
	assert.Equal(t, resolve.TyUnsupported, ty.Tag)
}
