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

package resolve

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/pathway/pkg/metrics"
)

func names(matches []Match) []string {
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Name
	}
	return out
}

func TestResolvePathGlobalPathFindsCrateRoot(t *testing.T) {
	w := NewWorld(nil, map[string]string{"std": "std/lib.rs"})
	r := NewResolver(w)

	ps := ParsePathSearch("::std", Scope{File: "main.rs", Offset: 0})
	matches := r.ResolvePath("", ps, NSType, ExactMatch)
	require.Len(t, matches, 1)
	assert.Equal(t, "std", matches[0].Name)
	assert.Equal(t, KindCrate, matches[0].Kind)
}

func TestResolvePathModulePathWalksSegments(t *testing.T) {
	w := NewWorld(nil, nil)
	masked := `
mod shapes {
    struct Circle {
        radius: i32,
    }
}
`
	w.Build("main.rs", masked)

	ps := ParsePathSearch("shapes::Circle", Scope{File: "main.rs", Offset: 0})
	matches := NewResolver(w).ResolvePath(masked, ps, NSType, ExactMatch)
	require.Len(t, matches, 1)
	assert.Equal(t, "Circle", matches[0].Name)
	assert.Equal(t, KindStruct, matches[0].Kind)
}

func TestResolvePathSelfResolvesToImplType(t *testing.T) {
	w := NewWorld(nil, nil)
	masked := `
struct Point {
    x: i32,
    y: i32,
}

impl Point {
    fn dist(&self) -> i32 {
        self.x
    }
}
`
	w.Build("main.rs", masked)

	cursor := strings.Index(masked, "self.x") + len("self.")
	ps := ParsePathSearch("Self", Scope{File: "main.rs", Offset: cursor})
	matches := NewResolver(w).ResolvePath(masked, ps, NSType, ExactMatch)
	require.Len(t, matches, 1)
	assert.Equal(t, "Point", matches[0].Name)
}

func TestResolvePathEnumVariantFindDefinition(t *testing.T) {
	w := NewWorld(nil, nil)
	masked := `
enum Shape {
    Circle,
    Square,
}
`
	w.Build("main.rs", masked)

	ps := ParsePathSearch("Shape::Circle", Scope{File: "main.rs", Offset: 0})
	matches := NewResolver(w).ResolvePath(masked, ps, NSValue, ExactMatch)
	require.Len(t, matches, 1)
	assert.Equal(t, "Circle", matches[0].Name)
	assert.Equal(t, KindEnumVariant, matches[0].Kind)
}

func TestResolvePathStartsWithCompletion(t *testing.T) {
	w := NewWorld(nil, nil)
	masked := `
fn handle_request() {}
fn handle_response() {}
fn other() {}
`
	w.Build("main.rs", masked)

	ps := ParsePathSearch("handle", Scope{File: "main.rs", Offset: 0})
	matches := NewResolver(w).ResolvePath(masked, ps, NSValue, StartsWith)
	assert.ElementsMatch(t, []string{"handle_request", "handle_response"}, names(matches))
}

func TestResolvePathNoMatchReturnsEmpty(t *testing.T) {
	w := NewWorld(nil, nil)
	ps := ParsePathSearch("nonexistent", Scope{File: "main.rs", Offset: 0})
	matches := NewResolver(w).ResolvePath("", ps, NSValue, ExactMatch)
	assert.Empty(t, matches)
}

func TestResolvePathRecordsMetrics(t *testing.T) {
	w := NewWorld(nil, nil)
	r := NewResolver(w).WithMetrics(metrics.New())

	ps := ParsePathSearch("missing", Scope{File: "main.rs", Offset: 0})
	matches := r.ResolvePath("", ps, NSValue, ExactMatch)
	assert.Empty(t, matches)
}

func TestPathEqual(t *testing.T) {
	a := ParsePath("std::collections::HashMap<K, V>")
	b := ParsePath("std::collections::HashMap<K, V>")
	c := ParsePath("std::collections::HashMap<K>")
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}
