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

package lexfacility

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/pathway/pkg/source"
)

func TestCodeChunksSkipsLineComment(t *testing.T) {
	text := `let x = 1; // a comment
let y = 2;`
	chunks := CodeChunks(text)
	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.NotContains(t, text[c.Start:c.End], "a comment")
	}
}

func TestCodeChunksSkipsBlockComment(t *testing.T) {
	text := `let x = 1; /* block */ let y = 2;`
	chunks := CodeChunks(text)
	for _, c := range chunks {
		assert.NotContains(t, text[c.Start:c.End], "block")
	}
}

func TestCodeChunksSkipsStringLiteralBody(t *testing.T) {
	text := `let s = "a comment-like // value"; let y = 2;`
	chunks := CodeChunks(text)
	for _, c := range chunks {
		assert.NotContains(t, text[c.Start:c.End], "comment-like")
	}
	// "let y = 2;" after the string should still be code.
	found := false
	for _, c := range chunks {
		if strings.Contains(text[c.Start:c.End], "y = 2") {
			found = true
		}
	}
	assert.True(t, found)
}

func TestCodeChunksLifetimeAnnotationStaysCode(t *testing.T) {
	text := `fn f<'a>(x: &'a str) -> &'a str { x }`
	chunks := CodeChunks(text)
	require.Len(t, chunks, 1)
	assert.Equal(t, text, text[chunks[0].Start:chunks[0].End])
}

func TestCodeChunksStaticLifetimeStaysCode(t *testing.T) {
	text := `let s: &'static str = "hi";`
	chunks := CodeChunks(text)
	var code string
	for _, c := range chunks {
		code += text[c.Start:c.End]
	}
	assert.Contains(t, code, "&'static str")
}

func TestCodeChunksCharLiteralAfterLifetimeStillDetected(t *testing.T) {
	text := `fn f<'a>(c: char) -> bool { c == 'x' }`
	chunks := CodeChunks(text)
	for _, c := range chunks {
		assert.NotContains(t, text[c.Start:c.End], "'x'")
	}
}

func TestMaskCommentsLifetimeAnnotationUnchanged(t *testing.T) {
	text := `fn f<'a>(x: &'a str) -> &'a str { x }`
	masked := MaskComments(text)
	assert.Equal(t, text, masked)
}

func TestMaskCommentsCharLiteralAfterLifetimeStillMasked(t *testing.T) {
	text := `fn f<'a>(c: char) -> bool { c == 'x' }`
	masked := MaskComments(text)
	assert.NotContains(t, masked, "'x'")
	assert.Contains(t, masked, "fn f<'a>")
	assert.Equal(t, len(text), len(masked))
}

func TestMaskCommentsPreservesLength(t *testing.T) {
	text := "let x = 1; // comment\nlet y = 2;"
	masked := MaskComments(text)
	assert.Equal(t, len(text), len(masked))
}

func TestMaskCommentsBlanksLineComment(t *testing.T) {
	text := "x(); // secret\ny();"
	masked := MaskComments(text)
	assert.NotContains(t, masked, "secret")
	assert.Contains(t, masked, "x();")
	assert.Contains(t, masked, "y();")
}

func TestMaskCommentsBlanksBlockComment(t *testing.T) {
	text := "a /* hidden\nmore */ b"
	masked := MaskComments(text)
	assert.NotContains(t, masked, "hidden")
	assert.NotContains(t, masked, "more")
	assert.Contains(t, masked, "a ")
	assert.Contains(t, masked, " b")
}

func TestMaskCommentsBlanksStringBodyKeepsQuotes(t *testing.T) {
	text := `msg("hello world")`
	masked := MaskComments(text)
	assert.NotContains(t, masked, "hello world")
	assert.Contains(t, masked, `msg("`)
	assert.Equal(t, len(text), len(masked))
}

func TestMaskCommentsEscapedQuoteStaysInString(t *testing.T) {
	text := `"a\"b" code_after`
	masked := MaskComments(text)
	assert.Contains(t, masked, "code_after")
}

func TestCodeChunksUsableBySourceIndexedSource(t *testing.T) {
	text := "fn main() {} // trailing"
	src := source.New(text, CodeChunks)
	v := src.ViewOf()
	assert.True(t, v.IsCodeOffset(0))
	assert.False(t, v.IsCodeOffset(len(text)-3))
}
