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
	"regexp"
	"sort"
)

var (
	reLet      = regexp.MustCompile(`\blet\s+(?:mut\s+)?([A-Za-z_]\w*)`)
	reIfLet    = regexp.MustCompile(`\bif\s+let\s+(?:mut\s+)?([A-Za-z_]\w*)`)
	reWhileLet = regexp.MustCompile(`\bwhile\s+let\s+(?:mut\s+)?([A-Za-z_]\w*)`)
	reForVar   = regexp.MustCompile(`\bfor\s+(?:mut\s+)?([A-Za-z_]\w*)\s+in\b`)
	reMatchArm = regexp.MustCompile(`(?:^|[{,|(])\s*([A-Za-z_]\w*)\s*=>`)
	reFnSig    = regexp.MustCompile(`\bfn\s+[A-Za-z_]\w*\s*(?:<[^>{]*>)?\s*\(([^)]*)\)`)
	reFnArg    = regexp.MustCompile(`(?:^|,)\s*(?:mut\s+)?([A-Za-z_]\w*)\s*:`)
)

// LocalScopeChain returns the local bindings visible at offset within file:
// let/if-let/while-let bindings and for-loop variables bound before offset
// in the enclosing function's body, its fn arguments, and (least specific)
// match-arm bindings, in that priority order.
//
// It scans forward from the enclosing function's body start up to offset
// rather than a true scope-tree walk: a let inside a sibling block that
// closed before offset is still visible by this approximation, matching
// a parser philosophy of accepting a conservative over-match
// rather than building a full block-scope tree.
func LocalScopeChain(w *World, file, masked string, offset int) []Match {
	enclosing, ok := w.EnclosingItem(file, offset)
	if !ok || enclosing.match.Kind != KindFunction {
		return nil
	}
	bodyStart, bodyEnd := enclosing.bodyStart, enclosing.bodyEnd
	if bodyEnd > 0 && bodyEnd < len(masked) && offset < bodyEnd {
		bodyEnd = offset
	} else if offset < len(masked) {
		bodyEnd = offset
	}
	if bodyStart < 0 || bodyStart > bodyEnd || bodyEnd > len(masked) {
		return nil
	}
	body := masked[bodyStart:bodyEnd]

	var out []Match
	out = append(out, scanBindings(body, bodyStart, file, reLet, KindLetBinding)...)
	out = append(out, scanBindings(body, bodyStart, file, reIfLet, KindIfLet)...)
	out = append(out, scanBindings(body, bodyStart, file, reWhileLet, KindWhileLet)...)
	out = append(out, scanBindings(body, bodyStart, file, reForVar, KindForLoopVar)...)

	// Nearest binding first: later occurrences shadow earlier ones.
	sort.SliceStable(out, func(i, j int) bool { return out[i].Offset < out[j].Offset })
	reverse(out)

	if kw := lastIndexBefore(masked, "fn", enclosing.match.Offset); kw >= 0 {
		out = append(out, fnArgs(masked, kw, file)...)
	}

	// Match-arm bindings are the least specific source: only offered when
	// offset sits inside a `match` body, approximated the same way as the
	// body-prefix scan above.
	if inMatchBody(masked, bodyStart, offset) {
		out = append(out, scanBindings(body, bodyStart, file, reMatchArm, KindMatchArm)...)
	}
	return out
}

func scanBindings(body string, bodyOffset int, file string, re *regexp.Regexp, kind Kind) []Match {
	var out []Match
	for _, m := range re.FindAllStringSubmatchIndex(body, -1) {
		if m[2] < 0 {
			continue
		}
		name := body[m[2]:m[3]]
		if name == "_" {
			continue
		}
		out = append(out, Match{Name: name, File: file, Offset: bodyOffset + m[2], Local: true, Kind: kind})
	}
	return out
}

// fnArgs parses the parameter list of the function whose `fn` keyword
// starts at fnKeywordOffset.
func fnArgs(masked string, fnKeywordOffset int, file string) []Match {
	tail := masked[fnKeywordOffset:]
	loc := reFnSig.FindStringSubmatchIndex(tail)
	if loc == nil {
		return nil
	}
	params := tail[loc[2]:loc[3]]
	paramsOffset := fnKeywordOffset + loc[2]
	var out []Match
	cursor := 0
	for _, part := range splitTopLevelCommas(params) {
		partStart := cursor
		cursor += len(part) + 1
		m := reFnArg.FindStringSubmatchIndex(part)
		if m == nil || m[2] < 0 {
			continue
		}
		name := part[m[2]:m[3]]
		if name == "self" || name == "_" {
			continue
		}
		out = append(out, Match{Name: name, File: file, Offset: paramsOffset + partStart + m[2], Kind: KindFnArg, Local: true})
	}
	return out
}

func inMatchBody(masked string, bodyStart, offset int) bool {
	idx := lastIndexBefore(masked, "match", offset)
	return idx >= bodyStart
}

func lastIndexBefore(s, sub string, before int) int {
	if before > len(s) {
		before = len(s)
	}
	return lastIndexInRange(s[:before], sub)
}

func lastIndexInRange(s, sub string) int {
	best := -1
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			best = i
		}
	}
	return best
}

func reverse(m []Match) {
	for i, j := 0, len(m)-1; i < j; i, j = i+1, j-1 {
		m[i], m[j] = m[j], m[i]
	}
}
