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

package engine

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/pathway/pkg/astbridge"
	"github.com/kraklabs/pathway/pkg/cache"
	"github.com/kraklabs/pathway/pkg/iofs"
	"github.com/kraklabs/pathway/pkg/metrics"
	"github.com/kraklabs/pathway/pkg/resolve"
	"github.com/kraklabs/pathway/pkg/session"
)

func newTestEngine(t *testing.T, text string) (*Engine, *session.Session) {
	t.Helper()
	c := cache.New(iofs.Memory(), slog.Default(), nil)
	c.CacheFile("main.rs", []byte(text))
	masked := c.LoadMasked("main.rs").Text()

	world := resolve.NewWorld(nil, nil)
	world.Build("main.rs", masked)

	resolver := resolve.NewResolver(world)
	sess := session.New(c, "main.rs")
	return New(sess, resolver, astbridge.New(resolver), nil), sess
}

func names(matches []resolve.Match) []string {
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Name
	}
	return out
}

func TestCompleteSuggestsLocalLetBinding(t *testing.T) {
	text := `
fn run() {
    let total = 0;
    let count = 1;
    to
}
`
	eng, _ := newTestEngine(t, text)
	cursor := strings.Index(text, "    to\n") + len("    to")

	matches := eng.Complete("main.rs", cursor)
	assert.Contains(t, names(matches), "total")
}

func TestFindDefinitionResolvesGlobalFunctionPath(t *testing.T) {
	text := `
fn helper() {}

fn main() {
    helper();
}
`
	eng, _ := newTestEngine(t, text)
	cursor := strings.Index(text, "helper();")

	match := eng.FindDefinition("main.rs", cursor)
	require.NotNil(t, match)
	assert.Equal(t, "helper", match.Name)
	assert.Equal(t, resolve.KindFunction, match.Kind)
}

func TestCompleteFieldAccessOnStruct(t *testing.T) {
	text := `
struct Point {
    x: i32,
    y: i32,
}

impl Point {
    fn dist(&self) -> i32 {
        Self.
    }
}
`
	eng, _ := newTestEngine(t, text)
	cursor := strings.Index(text, "Self.\n") + len("Self.")

	matches := eng.Complete("main.rs", cursor)
	assert.ElementsMatch(t, []string{"x", "y", "dist"}, names(matches))
}

func TestFindDefinitionOnEnumVariant(t *testing.T) {
	text := `
enum Shape {
    Circle,
    Square,
}

fn area(s: Shape) {
    let c = Shape::Circle;
}
`
	eng, _ := newTestEngine(t, text)
	cursor := strings.Index(text, "Shape::Circle") + len("Shape::Circle")

	match := eng.FindDefinition("main.rs", cursor)
	require.NotNil(t, match)
	assert.Equal(t, "Circle", match.Name)
	assert.Equal(t, resolve.KindEnumVariant, match.Kind)
}

func TestFindDefinitionNoMatchReturnsNil(t *testing.T) {
	text := `fn main() { nope(); }`
	eng, _ := newTestEngine(t, text)
	cursor := strings.Index(text, "nope")

	match := eng.FindDefinition("main.rs", cursor)
	assert.Nil(t, match)
}

func TestCompleteWithOverlayUsesSubstituteFile(t *testing.T) {
	c := cache.New(iofs.Memory(), slog.Default(), nil)
	c.CacheFile("main.rs", []byte("fn on_disk() {}"))
	c.CacheFile("overlay://main.rs", []byte("fn on_disk() {}\nfn edited_only() {}\nedi"))
	masked := c.LoadMasked("overlay://main.rs").Text()

	world := resolve.NewWorld(nil, nil)
	world.Build("main.rs", masked)
	resolver := resolve.NewResolver(world)

	sess := session.NewWithOverlay(c, "main.rs", "overlay://main.rs")
	eng := New(sess, resolver, astbridge.New(resolver), nil)

	cursor := strings.LastIndex(masked, "edi") + len("edi")
	matches := eng.Complete("main.rs", cursor)
	assert.Contains(t, names(matches), "edited_only")
}

func TestEngineRecordsQueryMetrics(t *testing.T) {
	c := cache.New(iofs.Memory(), slog.Default(), nil)
	c.CacheFile("main.rs", []byte("fn helper() {}"))
	masked := c.LoadMasked("main.rs").Text()
	world := resolve.NewWorld(nil, nil)
	world.Build("main.rs", masked)
	resolver := resolve.NewResolver(world)
	sess := session.New(c, "main.rs")

	metr := metrics.New()
	eng := New(sess, resolver, astbridge.New(resolver), metr)
	eng.Complete("main.rs", strings.Index(masked, "helper"))

	assert.Equal(t, float64(1), testutil.ToFloat64(metr.QueriesTotal.WithLabelValues("complete")))
}
