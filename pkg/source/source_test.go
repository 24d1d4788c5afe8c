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

package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClampsAndMergesOverlappingChunks(t *testing.T) {
	text := "let x = 1; // comment"
	chunker := func(string) []Range {
		return []Range{
			{Start: -5, End: 10},
			{Start: 8, End: 14},
			{Start: 100, End: 200},
		}
	}
	src := New(text, chunker)
	require.Len(t, src.Chunks, 1)
	assert.Equal(t, Range{Start: 0, End: 14}, src.Chunks[0])
}

func TestViewTextAndLen(t *testing.T) {
	src := WithChunks("hello world", []Range{{Start: 0, End: 11}})
	v := src.ViewOf()
	assert.Equal(t, 11, v.Len())
	assert.Equal(t, "hello world", v.Text())

	sub := v.FromTo(6, 11)
	assert.Equal(t, "world", sub.Text())
}

func TestViewChunksTranslatesToViewLocalOffsets(t *testing.T) {
	src := WithChunks("aaXXbbbb", []Range{{Start: 0, End: 2}, {Start: 4, End: 8}})
	v := src.ViewOf().FromTo(2, 8)
	chunks := v.Chunks()
	require.Len(t, chunks, 1)
	assert.Equal(t, Range{Start: 2, End: 6}, chunks[0])
}

func TestIsCodeOffset(t *testing.T) {
	src := WithChunks("//comment\ncode", []Range{{Start: 10, End: 14}})
	v := src.ViewOf()
	assert.False(t, v.IsCodeOffset(0))
	assert.False(t, v.IsCodeOffset(9))
	assert.True(t, v.IsCodeOffset(10))
	assert.True(t, v.IsCodeOffset(13))
}

func TestFromToClampsToSourceBounds(t *testing.T) {
	src := WithChunks("short", nil)
	v := src.ViewOf().FromTo(-10, 1000)
	assert.Equal(t, 0, v.From)
	assert.Equal(t, 5, v.To)
}
