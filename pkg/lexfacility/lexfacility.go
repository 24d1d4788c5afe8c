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

// Package lexfacility provides the default binding of the "lexer
// collaborator" used to derive code chunks and mask comments/strings out of
// raw source text: CodeChunks and MaskComments.
//
// Current implementation:
// This uses a single-pass byte scanner tracking comment/string state, not a
// real tokenizer or AST. It handles the common cases (line comments, block
// comments, double- and single-quoted literals, backslash escapes, and
// lifetime annotations) but has limitations:
//   - Nested block comments are supported, but malformed/unterminated
//     comments or strings consume the rest of the file.
//   - Raw string literals (e.g. r"...", r#"..."#) are not specially
//     recognized; their bodies are treated as ordinary double-quoted text,
//     so a literal containing an unescaped quote will desynchronize the
//     scanner for the remainder of the file.
//   - A `'` is disambiguated from a char-literal open by looking ahead: if
//     it's followed by an identifier longer than one byte, or by an
//     identifier byte not immediately followed by a closing `'`, it's
//     treated as a lifetime (`'a`, `&'a str`) and left as code rather than
//     entering char-literal state.
//
// Future improvement: swap this for a real lexer/tree-sitter grammar for the
// target language. Deferred because no such grammar is wired into this
// module (see DESIGN.md).
package lexfacility

import "github.com/kraklabs/pathway/pkg/source"

type scanState int

const (
	stateCode scanState = iota
	stateLineComment
	stateBlockComment
	stateString
	stateChar
)

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentByte(b byte) bool {
	return isIdentStart(b) || (b >= '0' && b <= '9')
}

// isLifetimeStart reports whether the `'` at src[i] opens a lifetime
// annotation ('a, 'static) rather than a char literal ('a', '\n'). A `'`
// followed by an escape or by a single identifier byte immediately closed
// by another `'` is a char literal; anything else starting with an
// identifier byte is a lifetime.
func isLifetimeStart[T ~string | ~[]byte](src T, i int) bool {
	n := len(src)
	if i+1 >= n || !isIdentStart(src[i+1]) {
		return false
	}
	j := i + 1
	for j < n && isIdentByte(src[j]) {
		j++
	}
	identLen := j - (i + 1)
	return !(identLen == 1 && j < n && src[j] == '\'')
}

// CodeChunks returns the ordered, non-overlapping byte ranges of text that
// are real code: not inside a line comment, block comment, or string/char
// literal body. Delimiters (quotes, `//`, `/*`, `*/`) are themselves treated
// as non-code, matching the body-only masking semantics of MaskComments.
func CodeChunks(text string) []source.Range {
	var chunks []source.Range
	codeStart := -1
	n := len(text)
	blockDepth := 0

	flush := func(end int) {
		if codeStart >= 0 && end > codeStart {
			chunks = append(chunks, source.Range{Start: codeStart, End: end})
		}
		codeStart = -1
	}

	state := stateCode
	i := 0
	for i < n {
		c := text[i]
		switch state {
		case stateCode:
			switch {
			case c == '/' && i+1 < n && text[i+1] == '/':
				flush(i)
				state = stateLineComment
				i += 2
				continue
			case c == '/' && i+1 < n && text[i+1] == '*':
				flush(i)
				state = stateBlockComment
				blockDepth = 1
				i += 2
				continue
			case c == '"':
				flush(i)
				state = stateString
				i++
				continue
			case c == '\'' && isLifetimeStart(text, i):
				if codeStart < 0 {
					codeStart = i
				}
				i++
				continue
			case c == '\'':
				flush(i)
				state = stateChar
				i++
				continue
			default:
				if codeStart < 0 {
					codeStart = i
				}
				i++
			}
		case stateLineComment:
			if c == '\n' {
				state = stateCode
			}
			i++
		case stateBlockComment:
			if c == '/' && i+1 < n && text[i+1] == '*' {
				blockDepth++
				i += 2
				continue
			}
			if c == '*' && i+1 < n && text[i+1] == '/' {
				blockDepth--
				i += 2
				if blockDepth == 0 {
					state = stateCode
				}
				continue
			}
			i++
		case stateString:
			if c == '\\' && i+1 < n {
				i += 2
				continue
			}
			if c == '"' {
				state = stateCode
			}
			i++
		case stateChar:
			if c == '\\' && i+1 < n {
				i += 2
				continue
			}
			if c == '\'' {
				state = stateCode
			}
			i++
		}
	}
	flush(n)
	return chunks
}

// MaskComments returns a copy of text with comment and string/char literal
// *body* bytes replaced by a space, preserving length, delimiters, and all
// non-literal bytes untouched, so offsets computed against the masked text
// remain valid against the raw text.
func MaskComments(text string) string {
	out := []byte(text)
	n := len(out)
	state := stateCode
	blockDepth := 0
	i := 0
	for i < n {
		c := out[i]
		switch state {
		case stateCode:
			switch {
			case c == '/' && i+1 < n && out[i+1] == '/':
				state = stateLineComment
				i += 2
				continue
			case c == '/' && i+1 < n && out[i+1] == '*':
				state = stateBlockComment
				blockDepth = 1
				i += 2
				continue
			case c == '"':
				state = stateString
				i++
				continue
			case c == '\'' && isLifetimeStart(out, i):
				i++
				continue
			case c == '\'':
				state = stateChar
				i++
				continue
			default:
				i++
			}
		case stateLineComment:
			if c == '\n' {
				state = stateCode
				i++
				continue
			}
			out[i] = ' '
			i++
		case stateBlockComment:
			if c == '/' && i+1 < n && out[i+1] == '*' {
				blockDepth++
				out[i], out[i+1] = ' ', ' '
				i += 2
				continue
			}
			if c == '*' && i+1 < n && out[i+1] == '/' {
				blockDepth--
				if blockDepth == 0 {
					state = stateCode
				} else {
					out[i], out[i+1] = ' ', ' '
				}
				i += 2
				continue
			}
			if c != '\n' {
				out[i] = ' '
			}
			i++
		case stateString:
			if c == '\\' && i+1 < n {
				out[i] = ' '
				out[i+1] = ' '
				i += 2
				continue
			}
			if c == '"' {
				state = stateCode
				i++
				continue
			}
			if c != '\n' {
				out[i] = ' '
			}
			i++
		case stateChar:
			if c == '\\' && i+1 < n {
				out[i] = ' '
				out[i+1] = ' '
				i += 2
				continue
			}
			if c == '\'' {
				state = stateCode
				i++
				continue
			}
			if c != '\n' {
				out[i] = ' '
			}
			i++
		}
	}
	return string(out)
}
