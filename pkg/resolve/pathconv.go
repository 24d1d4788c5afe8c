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

import "github.com/kraklabs/pathway/pkg/pathsyntax"

// ParsePath converts raw path text ("std::collections::HashMap<K, V>")
// into this package's Path, recursively converting each segment's generic
// argument text into nested Paths. Resolution of those arguments is left
// to the caller, this is structural parsing only, not a lookup.
func ParsePath(text string) Path {
	parsed := pathsyntax.Parse(text)
	return fromParsed(parsed)
}

// ParsePathSearch parses text and anchors it to scope, ready for
// Resolver.ResolvePath.
func ParsePathSearch(text string, scope Scope) PathSearch {
	return PathSearch{Path: ParsePath(text), Scope: scope}
}

func fromParsed(p pathsyntax.Parsed) Path {
	segs := make([]PathSegment, 0, len(p.Segments))
	for _, s := range p.Segments {
		args := make([]Path, 0, len(s.TypeArgs))
		for _, raw := range s.TypeArgs {
			args = append(args, ParsePath(raw))
		}
		segs = append(segs, PathSegment{Name: s.Name, TypeArgs: args})
	}
	return Path{Global: p.Global, Segments: segs}
}
