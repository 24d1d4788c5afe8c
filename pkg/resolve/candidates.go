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

import "strings"

// candidateSource produces the Matches visible at (file, offset) admitted
// by ns and filtered by name under mk. The resolver chains four of these
// in priority order: local scope, enclosing item members,
// module scope, prelude & crate roots. Earlier sources' results are
// returned first; a StartsWith lookup (completion) never stops early, an
// ExactMatch lookup (find-definition) stops at the first non-empty source.
type candidateSource interface {
	Candidates(w *World, file, masked string, offset int, name string, mk MatchKind, ns Namespace) []Match
}

type localScopeSource struct{}

func (localScopeSource) Candidates(w *World, file, masked string, offset int, name string, mk MatchKind, ns Namespace) []Match {
	var out []Match
	for _, m := range LocalScopeChain(w, file, masked, offset) {
		if kindInNamespace(m.Kind, ns) && nameMatches(m.Name, name, mk) {
			out = append(out, m)
		}
	}
	return out
}

type enclosingItemSource struct{}

func (enclosingItemSource) Candidates(w *World, file, masked string, offset int, name string, mk MatchKind, ns Namespace) []Match {
	enclosing, ok := w.EnclosingItem(file, offset)
	if !ok {
		return nil
	}
	selfType := enclosing.implOf
	if selfType == "" {
		return nil
	}
	var out []Match
	for _, it := range w.ImplMembers(selfType) {
		if kindInNamespace(it.match.Kind, ns) && nameMatches(it.match.Name, name, mk) {
			out = append(out, it.match)
		}
	}
	for _, f := range w.StructFields(selfType) {
		if kindInNamespace(f.Kind, ns) && nameMatches(f.Name, name, mk) {
			out = append(out, f)
		}
	}
	if enclosing.traitOf != "" {
		for _, it := range w.TraitMembers(enclosing.traitOf) {
			if kindInNamespace(it.match.Kind, ns) && nameMatches(it.match.Name, name, mk) {
				out = append(out, it.match)
			}
		}
	}
	return out
}

type moduleScopeSource struct{}

func (moduleScopeSource) Candidates(w *World, file, masked string, offset int, name string, mk MatchKind, ns Namespace) []Match {
	modPath := w.ModuleOf(file)
	var out []Match
	for _, it := range w.ModuleItems(modPath) {
		if kindInNamespace(it.match.Kind, ns) && nameMatches(it.match.Name, name, mk) {
			out = append(out, it.match)
		}
	}
	for alias, target := range w.Imports(file) {
		if nameMatches(alias, name, mk) {
			out = append(out, importMatch(w, file, alias, target))
		}
	}
	return out
}

type preludeCrateSource struct{}

func (preludeCrateSource) Candidates(w *World, file, masked string, offset int, name string, mk MatchKind, ns Namespace) []Match {
	var out []Match
	for _, m := range w.Prelude() {
		if kindInNamespace(m.Kind, ns) && nameMatches(m.Name, name, mk) {
			out = append(out, m)
		}
	}
	for crate, root := range w.Crates() {
		if nameMatches(crate, name, mk) {
			out = append(out, Match{Name: crate, File: root, Kind: KindCrate})
		}
	}
	return out
}

// sourceChain is the fixed, priority-ordered list the resolver walks for a
// single-segment lookup.
var sourceChain = []candidateSource{localScopeSource{}, enclosingItemSource{}, moduleScopeSource{}, preludeCrateSource{}}

// gatherCandidates walks sourceChain in priority order. For an ExactMatch
// lookup it returns the first source's non-empty result (nearer scopes
// shadow farther ones); for StartsWith (completion) it accumulates across
// every source, since a completion list should offer everything in scope.
func gatherCandidates(w *World, file, masked string, offset int, name string, mk MatchKind, ns Namespace) []Match {
	var out []Match
	for _, src := range sourceChain {
		found := src.Candidates(w, file, masked, offset, name, mk, ns)
		if len(found) == 0 {
			continue
		}
		out = append(out, found...)
		if mk == ExactMatch {
			return out
		}
	}
	return out
}

func kindInNamespace(k Kind, ns Namespace) bool {
	if ns == NSBoth {
		return true
	}
	switch k {
	case KindStruct, KindEnum, KindTrait, KindTypeAlias, KindModule, KindCrate:
		return ns == NSType
	case KindFunction, KindConst, KindStatic, KindLetBinding, KindIfLet, KindWhileLet,
		KindForLoopVar, KindFnArg, KindMatchArm, KindEnumVariant, KindBuiltin:
		return ns == NSValue
	default:
		return true
	}
}

func nameMatches(candidate, query string, mk MatchKind) bool {
	if mk == ExactMatch {
		return candidate == query
	}
	return strings.HasPrefix(candidate, query)
}

func importMatch(w *World, file, alias, target string) Match {
	// The alias itself stands in for whatever target resolves to. The
	// import is not followed here or by Resolver.ResolvePath; the target
	// path is only carried in the match's Context.
	return Match{Name: alias, File: file, Kind: KindBuiltin, Context: "use " + target}
}

// internalScope returns the Matches a non-terminal path segment's resolved
// item exposes to the next segment: a module's direct children, an enum's
// variants, or a type's associated items (inherent + trait impls).
func internalScope(w *World, m Match, currentModulePath string) ([]Match, string) {
	switch m.Kind {
	case KindModule:
		modPath := joinModule(currentModulePath, m.Name)
		items := w.ModuleItems(modPath)
		out := make([]Match, 0, len(items))
		for _, it := range items {
			out = append(out, it.match)
		}
		return out, modPath
	case KindEnum:
		return w.EnumVariants(m.Name), currentModulePath
	case KindCrate:
		items := w.ModuleItems("")
		out := make([]Match, 0, len(items))
		for _, it := range items {
			out = append(out, it.match)
		}
		return out, ""
	default:
		items := w.ImplMembers(m.Name)
		out := make([]Match, 0, len(items))
		for _, it := range items {
			out = append(out, it.match)
		}
		for _, trait := range w.TraitsImplementedBy(m.Name) {
			for _, it := range w.TraitMembers(trait) {
				out = append(out, it.match)
			}
		}
		return out, currentModulePath
	}
}

func filterByNameKind(matches []Match, name string, mk MatchKind, ns Namespace) []Match {
	var out []Match
	for _, m := range matches {
		if kindInNamespace(m.Kind, ns) && nameMatches(m.Name, name, mk) {
			out = append(out, m)
		}
	}
	return out
}

// ResolveField resolves a `.` field or method access on ty: direct struct
// fields first, then inherent impl members, then trait-provided members.
// Ref is transparently dereferenced. Duplicate names across these tiers
// are all retained, the caller (completion) wants every candidate, not a
// deduplicated one.
func ResolveField(w *World, ty Ty, name string, mk MatchKind) []Match {
	ty = ty.Deref()
	if ty.Tag != TyMatch && ty.Tag != TyPathSearch {
		return nil
	}
	typeName := ty.Match.Name
	if ty.Tag == TyPathSearch && len(ty.PathSearch.Path.Segments) > 0 {
		typeName = ty.PathSearch.Path.Segments[len(ty.PathSearch.Path.Segments)-1].Name
	}
	if typeName == "" {
		return nil
	}

	var out []Match
	for _, f := range w.StructFields(typeName) {
		if nameMatches(f.Name, name, mk) {
			out = append(out, f)
		}
	}
	for _, it := range w.ImplMembers(typeName) {
		if it.match.Kind == KindFunction && nameMatches(it.match.Name, name, mk) {
			out = append(out, it.match)
		}
	}
	for _, trait := range w.TraitsImplementedBy(typeName) {
		for _, it := range w.TraitMembers(trait) {
			if it.match.Kind == KindFunction && nameMatches(it.match.Name, name, mk) {
				out = append(out, it.match)
			}
		}
	}
	return out
}
