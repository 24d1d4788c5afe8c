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

// Package scope implements the pure, dependency-free scope utilities:
// carving the completion expression out of masked source text around a
// cursor offset, and splitting it into a context expression and a
// trailing search string.
//
// These operate byte-by-byte with explicit bracket-depth counters, the same
// dependency-free technique pkg/pathsyntax uses for signature/path parsing,
// with no regexp and no parser dependency.
package scope

import "strings"

// Kind distinguishes the two shapes split_into_context_and_completion can
// produce.
type Kind int

const (
	// KindPath is chosen when the tail is preceded by "::", or the
	// expression contains no ".".
	KindPath Kind = iota
	// KindField is chosen when the tail is preceded by ".".
	KindField
)

func (k Kind) String() string {
	if k == KindField {
		return "field"
	}
	return "path"
}

// isIdentByte reports whether b can appear in an identifier.
func isIdentByte(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}

var closers = map[byte]byte{')': '(', ']': '[', '}': '{'}
var openers = map[byte]byte{'(': ')', '[': ']', '{': '}'}

// StartOfSearchExpr scans backward from pos over src (expected to be masked
// text) and returns the start offset of the maximal expression ending at
// pos: identifier characters, "::", "." and balanced brackets are part of
// the expression; an unpaired opening bracket, whitespace at depth 0, or
// expression-terminating punctuation stops the scan.
func StartOfSearchExpr(src string, pos int) int {
	if pos > len(src) {
		pos = len(src)
	}
	i := pos
	depth := 0
	for i > 0 {
		c := src[i-1]
		_, isCloser := closers[c]
		_, isOpener := openers[c]

		switch {
		case isCloser:
			depth++
			i--
		case isOpener:
			if depth == 0 {
				return i // unpaired opener: stop before it
			}
			depth--
			i--
		case depth > 0:
			i-- // anything inside a balanced bracket pair is part of the expr
		case isIdentByte(c):
			i--
		case c == ':' || c == '.':
			i--
		case c == '!':
			// trailing macro bang, e.g. `vec!`, is part of the expression
			i--
		default:
			return i
		}
	}
	return i
}

// ExpandSearchExpr symmetrically expands around pos to cover the identifier
// (or dotted/scoped chain) under the cursor, returning [start, end).
func ExpandSearchExpr(src string, pos int) (int, int) {
	if pos > len(src) {
		pos = len(src)
	}
	start := StartOfSearchExpr(src, pos)

	end := pos
	for end < len(src) && isIdentByte(src[end]) {
		end++
	}
	return start, end
}

// SplitIntoContextAndCompletion cuts expr into (context, search, kind):
// kind is KindPath when the tail is preceded by "::" or expr has no ".",
// KindField when preceded by ".". If the tail is empty and the separator
// is ".", kind is KindField with an empty search (list all fields/methods).
func SplitIntoContextAndCompletion(expr string) (context, search string, kind Kind) {
	if !strings.Contains(expr, ".") {
		if idx := strings.LastIndex(expr, "::"); idx >= 0 {
			return expr[:idx], expr[idx+2:], KindPath
		}
		return "", expr, KindPath
	}

	dotIdx := strings.LastIndex(expr, ".")
	colonIdx := strings.LastIndex(expr, "::")

	if colonIdx > dotIdx {
		return expr[:colonIdx], expr[colonIdx+2:], KindPath
	}
	return expr[:dotIdx], expr[dotIdx+1:], KindField
}
