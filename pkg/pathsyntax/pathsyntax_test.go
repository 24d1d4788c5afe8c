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

package pathsyntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSimplePath(t *testing.T) {
	p := Parse("std::mem::swap")
	require.False(t, p.Global)
	require.Len(t, p.Segments, 3)
	assert.Equal(t, "std", p.Segments[0].Name)
	assert.Equal(t, "mem", p.Segments[1].Name)
	assert.Equal(t, "swap", p.Segments[2].Name)
}

func TestParseGlobalPath(t *testing.T) {
	p := Parse("::std::mem::swap")
	assert.True(t, p.Global)
	require.Len(t, p.Segments, 3)
	assert.Equal(t, "std", p.Segments[0].Name)
}

func TestParseGenericArgs(t *testing.T) {
	p := Parse("HashMap<K, V>")
	require.Len(t, p.Segments, 1)
	assert.Equal(t, "HashMap", p.Segments[0].Name)
	assert.Equal(t, []string{"K", "V"}, p.Segments[0].TypeArgs)
}

func TestParseDoubleColonInsideGenericArgsNotSplit(t *testing.T) {
	p := Parse("Vec<std::string::String>")
	require.Len(t, p.Segments, 1)
	assert.Equal(t, "Vec", p.Segments[0].Name)
	assert.Equal(t, []string{"std::string::String"}, p.Segments[0].TypeArgs)
}

func TestParseNestedGenericArgsWithCommaTuples(t *testing.T) {
	p := Parse("HashMap<K, Fn(A, B) -> C>")
	require.Len(t, p.Segments, 1)
	args := p.Segments[0].TypeArgs
	require.Len(t, args, 2)
	assert.Equal(t, "K", args[0])
	assert.Equal(t, "Fn(A, B) -> C", args[1])
}

func TestParseSegmentFollowedByGenericThenPath(t *testing.T) {
	p := Parse("HashMap<K, V>::new")
	require.Len(t, p.Segments, 2)
	assert.Equal(t, "HashMap", p.Segments[0].Name)
	assert.Equal(t, []string{"K", "V"}, p.Segments[0].TypeArgs)
	assert.Equal(t, "new", p.Segments[1].Name)
}

func TestParseEmptyString(t *testing.T) {
	p := Parse("")
	assert.False(t, p.Global)
	assert.Empty(t, p.Segments)
}

func TestParseEmptyGenericArgList(t *testing.T) {
	p := Parse("Vec<>")
	require.Len(t, p.Segments, 1)
	assert.Empty(t, p.Segments[0].TypeArgs)
}
