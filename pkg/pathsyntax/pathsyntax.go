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

// Package pathsyntax parses the textual form of a scoped path, such as
// "std::mem::swap", "::std::mem::swap", "Vec<T>", or "HashMap<K, V>::new",
// into the segment/type-argument structure pkg/resolve's Path needs.
//
// It is dependency-free and byte-scanning, adapted from
// pkg/sigparse (which parsed Go function signatures the same way: no
// tokenizer, explicit bracket-depth counters, split-at-top-level-separator
// helpers). The signature-specific logic has been replaced with path and
// generic-argument splitting; the depth-counting technique survives even
// though the domain does not.
package pathsyntax

import "strings"

// Segment is one "::"-separated component of a path, plus its raw,
// unparsed type-argument text (each item between the angle brackets,
// split at top-level commas). Parsing those into nested paths is the
// resolve package's job.
type Segment struct {
	Name     string
	TypeArgs []string
}

// Parsed is the raw result of splitting a path string: whether it was
// rooted ("::foo"), and its segments.
type Parsed struct {
	Global   bool
	Segments []Segment
}

// Parse splits s into its segments and, for each, its raw generic-argument
// text. It does not resolve or even syntax-check the argument text beyond
// balancing angle brackets.
func Parse(s string) Parsed {
	s = strings.TrimSpace(s)
	global := strings.HasPrefix(s, "::")
	if global {
		s = s[2:]
	}
	if s == "" {
		return Parsed{Global: global}
	}

	parts := splitAtTopLevelDoubleColons(s)
	segs := make([]Segment, 0, len(parts))
	for _, p := range parts {
		name, args := splitNameAndArgs(p)
		segs = append(segs, Segment{Name: name, TypeArgs: args})
	}
	return Parsed{Global: global, Segments: segs}
}

// splitNameAndArgs splits "Name<Arg1, Arg2>" into ("Name", ["Arg1", "Arg2"]).
// A segment with no "<" has no type arguments.
func splitNameAndArgs(s string) (string, []string) {
	lt := strings.IndexByte(s, '<')
	if lt < 0 {
		return s, nil
	}
	gt := findMatchingAngleBracket(s, lt)
	if gt < 0 {
		return s[:lt], nil
	}
	name := s[:lt]
	inner := s[lt+1 : gt]
	if strings.TrimSpace(inner) == "" {
		return name, nil
	}
	raw := splitAtTopLevelCommas(inner)
	args := make([]string, 0, len(raw))
	for _, a := range raw {
		a = strings.TrimSpace(a)
		if a != "" {
			args = append(args, a)
		}
	}
	return name, args
}

func findMatchingAngleBracket(s string, pos int) int {
	depth := 0
	for i := pos; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			if i > 0 && s[i-1] == '-' {
				continue
			}
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// splitAtTopLevelDoubleColons splits s on "::" that occurs outside any
// <...> nesting.
func splitAtTopLevelDoubleColons(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			if depth > 0 {
				depth--
			}
		case ':':
			if depth == 0 && i+1 < len(s) && s[i+1] == ':' {
				parts = append(parts, s[start:i])
				start = i + 2
				i++
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}

// splitAtTopLevelCommas splits s on commas outside any <...> or (...)
// nesting (generic args can themselves be tuples, e.g. "Fn(A, B) -> C").
func splitAtTopLevelCommas(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<', '(', '[':
			depth++
		case '>', ')', ']':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}
