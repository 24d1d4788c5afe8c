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
	"runtime"
	"sync"
	"time"

	"github.com/kraklabs/pathway/pkg/metrics"
)

// Resolver walks a World to answer path and field lookups. It holds no
// state of its own beyond the World reference, so one Resolver can be
// shared by every session built on the same World.
type Resolver struct {
	world *World
	metr  *metrics.Registry
}

// NewResolver wraps w for path/field resolution.
func NewResolver(w *World) *Resolver { return &Resolver{world: w} }

// WithMetrics attaches a metrics.Registry that ResolvePath records
// per-call latency and failure counts to. Returns r for chaining.
func (r *Resolver) WithMetrics(m *metrics.Registry) *Resolver {
	r.metr = m
	return r
}

// World returns the Resolver's underlying index, for callers (such as the
// AST bridge) that need direct access to the declaration model.
func (r *Resolver) World() *World { return r.world }

// ResolvePath resolves ps, a "::"-separated path anchored at ps.Scope,
// against ns and mk. masked is the content of ps.Scope.File, needed for
// the local-scope-chain source.
//
// Multi-segment paths are walked left to right: every non-terminal
// segment is resolved in the type namespace with ExactMatch (you can't
// complete on "partial module name" mid-path), and its resolved item's
// internal scope (module children, enum variants, associated items)
// becomes the candidate set for the next segment. The terminal segment
// uses the caller's ns and mk. A leading "Self" resolves against the
// enclosing impl's Self type; a global path ("::foo") only searches crate
// roots for its first segment.
func (r *Resolver) ResolvePath(masked string, ps PathSearch, ns Namespace, mk MatchKind) []Match {
	if r.metr == nil {
		return r.resolvePath(masked, ps, ns, mk)
	}
	start := time.Now()
	matches := r.resolvePath(masked, ps, ns, mk)
	r.metr.ResolveLatency.WithLabelValues(ns.String()).Observe(time.Since(start).Seconds())
	if len(matches) == 0 {
		r.metr.ResolveFailed.WithLabelValues(ns.String()).Inc()
	}
	return matches
}

func (r *Resolver) resolvePath(masked string, ps PathSearch, ns Namespace, mk MatchKind) []Match {
	segs := ps.Path.Segments
	if len(segs) == 0 {
		return nil
	}

	terminal := len(segs) == 1
	firstNS, firstMK := NSType, ExactMatch
	if terminal {
		firstNS, firstMK = ns, mk
	}

	var current []Match
	modulePath := r.world.ModuleOf(ps.Scope.File)

	switch {
	case ps.Path.Global:
		current = filterByNameKind(crateRootMatches(r.world), segs[0].Name, firstMK, firstNS)
		modulePath = ""
	case segs[0].Name == "Self":
		enclosing, ok := r.world.EnclosingItem(ps.Scope.File, ps.Scope.Offset)
		if !ok || enclosing.implOf == "" {
			return nil
		}
		current = []Match{{Name: enclosing.implOf, File: ps.Scope.File, Kind: KindStruct}}
		if terminal {
			current = filterByNameKind(current, segs[0].Name, firstMK, firstNS)
			if len(current) == 0 {
				// "Self" itself matched; fall through with the synthesized type.
				current = []Match{{Name: enclosing.implOf, File: ps.Scope.File, Kind: KindStruct}}
			}
		}
	default:
		current = gatherCandidates(r.world, ps.Scope.File, masked, ps.Scope.Offset, segs[0].Name, firstMK, firstNS)
	}

	if len(current) == 0 {
		return nil
	}
	if terminal {
		return attachGenericArgs(current, segs[0], ps.Scope)
	}

	for i := 1; i < len(segs); i++ {
		last := i == len(segs)-1
		segNS, segMK := NSType, ExactMatch
		if last {
			segNS, segMK = ns, mk
		}

		var next []Match
		var nextModulePath string
		for _, m := range current {
			scope, newModulePath := internalScope(r.world, m, modulePath)
			next = append(next, filterByNameKind(scope, segs[i].Name, segMK, segNS)...)
			nextModulePath = newModulePath
		}
		current = next
		modulePath = nextModulePath
		if len(current) == 0 {
			return nil
		}
	}
	return attachGenericArgs(current, segs[len(segs)-1], ps.Scope)
}

// attachGenericArgs records seg's generic type arguments on each resolved
// match as unresolved PathSearch values.
func attachGenericArgs(matches []Match, seg PathSegment, scope Scope) []Match {
	if len(seg.TypeArgs) == 0 {
		return matches
	}
	args := make([]PathSearch, len(seg.TypeArgs))
	for i, p := range seg.TypeArgs {
		args[i] = PathSearch{Path: p, Scope: scope}
	}
	out := make([]Match, len(matches))
	for i, m := range matches {
		out[i] = m.WithGenericArgs(args)
	}
	return out
}

func crateRootMatches(w *World) []Match {
	var out []Match
	for crate, root := range w.Crates() {
		out = append(out, Match{Name: crate, File: root, Kind: KindCrate})
	}
	return out
}

// resolveTask is one unit of work for ResolveManyConcurrently.
type resolveTask struct {
	Masked string
	Search PathSearch
	NS     Namespace
	MK     MatchKind
}

// ResolveManyConcurrently resolves a batch of path searches in parallel,
// capped at min(runtime.NumCPU(), 8) workers, adapted from
// CallResolver.resolveCallsParallel fan-out. This is strictly a batch/
// offline helper (warming a cache, building a cross-reference index); the
// single-query complete/find-definition path never needs concurrency,
// since the Session model is single-threaded per request.
func (r *Resolver) ResolveManyConcurrently(tasks []resolveTask) [][]Match {
	results := make([][]Match, len(tasks))
	workers := runtime.NumCPU()
	if workers > 8 {
		workers = 8
	}
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	jobs := make(chan int)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				t := tasks[idx]
				results[idx] = r.ResolvePath(t.Masked, t.Search, t.NS, t.MK)
			}
		}()
	}
	for i := range tasks {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return results
}
