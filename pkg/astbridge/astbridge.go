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

// Package astbridge is the default binding of the "AST bridge" collaborator
// the name resolver treats as external: given an arbitrary expression's
// text and the cursor position it appears at, determine its Ty without a
// full type checker.
//
// No AST library is wired here (see DESIGN.md on why go-tree-sitter, while
// present in the retrieved corpus, isn't grounded to this component): it
// resolves the expression's head identifier through pkg/resolve and walks
// any trailing `.field`/`.method()` chain with pkg/resolve.ResolveField,
// the same simplified-parsing philosophy the rest of this module uses.
package astbridge

import (
	"errors"
	"strings"

	"github.com/kraklabs/pathway/pkg/resolve"
	"github.com/kraklabs/pathway/pkg/session"
)

// ErrUnresolved is returned when exprText's head identifier can't be
// resolved at all, a caller asking TypeOf for a misspelled or not-yet-
// declared name, rather than a parse failure.
var ErrUnresolved = errors.New("astbridge: could not resolve expression")

// Bridge answers TypeOf queries against a Resolver's World.
type Bridge struct {
	resolver *resolve.Resolver
}

// New wraps r for type-of queries.
func New(r *resolve.Resolver) *Bridge {
	return &Bridge{resolver: r}
}

// TypeOf determines the Ty of exprText as it appears at pos in file,
// within sess's overlay view. exprText is the already-extracted context
// expression from pkg/scope (the part before the trailing search string),
// e.g. "foo.bar()" or "self.items".
//
// Resolution walks segments: "foo" first, resolved via pkg/resolve with the
// first match taken whatever its kind ("self" is looked up as "Self"), then
// ".bar"/".baz()" segments resolved against the current Ty's fields and
// methods via pkg/resolve.ResolveField. Array/tuple/reference syntax ("&x",
// "[a, b][0]") is not parsed: a head that does not resolve yields
// ErrUnresolved, and a chain segment that does not resolve yields
// resolve.TyUnsupportedValue.
func (b *Bridge) TypeOf(exprText, file string, pos int, sess *session.Session) (*resolve.Ty, error) {
	masked := sess.LoadMasked(file).Text()
	head, rest := splitHeadAndChain(exprText)
	if head == "" {
		return nil, ErrUnresolved
	}
	if head == "self" {
		head = "Self"
	}

	scope := resolve.Scope{File: file, Offset: pos}
	ps := resolve.ParsePathSearch(head, scope)
	matches := b.resolver.ResolvePath(masked, ps, resolve.NSBoth, resolve.ExactMatch)
	if len(matches) == 0 {
		return nil, ErrUnresolved
	}
	ty := resolve.TyOfMatch(matches[0])

	for _, segName := range rest {
		segName = strings.TrimSuffix(segName, "()")
		fields := resolve.ResolveField(b.resolver.World(), ty, segName, resolve.ExactMatch)
		if len(fields) == 0 {
			unsupported := resolve.TyUnsupportedValue()
			return &unsupported, nil
		}
		ty = resolve.TyOfMatch(fields[0])
	}
	return &ty, nil
}

// splitHeadAndChain splits "foo.bar().baz" into ("foo", ["bar()", "baz"]).
// It does not attempt to handle nested parens/brackets within a single
// segment, callers pass a pre-trimmed context expression from pkg/scope,
// which already excludes the trailing partial search token.
func splitHeadAndChain(expr string) (string, []string) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return "", nil
	}
	parts := splitTopLevelDots(expr)
	if len(parts) == 0 {
		return "", nil
	}
	return parts[0], parts[1:]
}

// splitTopLevelDots splits on '.' outside any bracket/paren nesting.
func splitTopLevelDots(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			if depth > 0 {
				depth--
			}
		case '.':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}
