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

package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStartOfSearchExprStopsAtUnpairedOpener(t *testing.T) {
	src := "foo(bar.baz"
	start := StartOfSearchExpr(src, len(src))
	assert.Equal(t, "bar.baz", src[start:])
}

func TestStartOfSearchExprCrossesBalancedBrackets(t *testing.T) {
	src := "a::b(1, 2).field"
	start := StartOfSearchExpr(src, len(src))
	assert.Equal(t, src, src[start:])
}

func TestStartOfSearchExprStopsAtWhitespace(t *testing.T) {
	src := "let x = foo.bar"
	start := StartOfSearchExpr(src, len(src))
	assert.Equal(t, "foo.bar", src[start:])
}

func TestExpandSearchExprCoversIdentUnderCursor(t *testing.T) {
	src := "foo.bar_baz"
	start, end := ExpandSearchExpr(src, 5) // cursor mid "bar_baz"
	assert.Equal(t, "foo.bar_baz", src[start:end])
}

func TestSplitIntoContextAndCompletionPath(t *testing.T) {
	ctx, search, kind := SplitIntoContextAndCompletion("std::collections::Hash")
	assert.Equal(t, "std::collections", ctx)
	assert.Equal(t, "Hash", search)
	assert.Equal(t, KindPath, kind)
}

func TestSplitIntoContextAndCompletionBarePath(t *testing.T) {
	ctx, search, kind := SplitIntoContextAndCompletion("Hash")
	assert.Equal(t, "", ctx)
	assert.Equal(t, "Hash", search)
	assert.Equal(t, KindPath, kind)
}

func TestSplitIntoContextAndCompletionField(t *testing.T) {
	ctx, search, kind := SplitIntoContextAndCompletion("foo.ba")
	assert.Equal(t, "foo", ctx)
	assert.Equal(t, "ba", search)
	assert.Equal(t, KindField, kind)
}

func TestSplitIntoContextAndCompletionFieldEmptyTail(t *testing.T) {
	ctx, search, kind := SplitIntoContextAndCompletion("foo.")
	assert.Equal(t, "foo", ctx)
	assert.Equal(t, "", search)
	assert.Equal(t, KindField, kind)
}

func TestSplitIntoContextAndCompletionPathAfterDottedContext(t *testing.T) {
	ctx, search, kind := SplitIntoContextAndCompletion("foo.bar::Ba")
	assert.Equal(t, "foo.bar", ctx)
	assert.Equal(t, "Ba", search)
	assert.Equal(t, KindPath, kind)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "path", KindPath.String())
	assert.Equal(t, "field", KindField.String())
}
