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

// Package engine wires pkg/scope, pkg/resolve, and pkg/astbridge into the
// two queries this module exists to answer: Complete and FindDefinition.
package engine

import (
	"github.com/kraklabs/pathway/pkg/astbridge"
	"github.com/kraklabs/pathway/pkg/metrics"
	"github.com/kraklabs/pathway/pkg/resolve"
	"github.com/kraklabs/pathway/pkg/scope"
	"github.com/kraklabs/pathway/pkg/session"
)

// Engine answers queries against one session, sharing a Resolver/Bridge
// pair that may be reused across many sessions built on the same World.
type Engine struct {
	sess     *session.Session
	resolver *resolve.Resolver
	bridge   *astbridge.Bridge
	metr     *metrics.Registry
}

// New binds sess to resolver/bridge for querying. metr may be nil.
func New(sess *session.Session, resolver *resolve.Resolver, bridge *astbridge.Bridge, metr *metrics.Registry) *Engine {
	return &Engine{sess: sess, resolver: resolver, bridge: bridge, metr: metr}
}

// Complete returns every Match whose name starts with the identifier (or
// field/path segment) ending at pos in file, the candidate list an
// editor would render as a completion popup. Order follows the resolver's
// source priority: nearer scopes first.
func (e *Engine) Complete(file string, pos int) []resolve.Match {
	if e.metr != nil {
		e.metr.QueriesTotal.WithLabelValues("complete").Inc()
	}
	return e.query(file, pos, false)
}

// FindDefinition returns the nearest Match exactly named by the identifier
// at pos in file, or nil if none resolves. When it returns non-nil, that
// Match also appears in Complete's candidate list for the same prefix.
func (e *Engine) FindDefinition(file string, pos int) *resolve.Match {
	if e.metr != nil {
		e.metr.QueriesTotal.WithLabelValues("find_definition").Inc()
	}
	matches := e.query(file, pos, true)
	if len(matches) == 0 {
		return nil
	}
	return &matches[0]
}

func (e *Engine) query(file string, pos int, exact bool) []resolve.Match {
	masked := e.sess.LoadMasked(file).Text()

	var exprStart, exprEnd int
	if exact {
		exprStart, exprEnd = scope.ExpandSearchExpr(masked, pos)
	} else {
		exprStart, exprEnd = scope.StartOfSearchExpr(masked, pos), pos
	}
	if exprStart >= exprEnd {
		return nil
	}
	expr := masked[exprStart:exprEnd]

	context, search, kind := scope.SplitIntoContextAndCompletion(expr)
	mk := resolve.StartsWith
	if exact {
		mk = resolve.ExactMatch
	}

	if kind == scope.KindField {
		if context == "" {
			return nil
		}
		ty, err := e.bridge.TypeOf(context, file, exprStart, e.sess)
		if err != nil {
			return nil
		}
		return resolve.ResolveField(e.resolver.World(), *ty, search, mk)
	}

	if expr == "" {
		return nil
	}
	scopePt := resolve.Scope{File: file, Offset: exprStart}
	ps := resolve.ParsePathSearch(expr, scopePt)
	return e.resolver.ResolvePath(masked, ps, resolve.NSBoth, mk)
}
