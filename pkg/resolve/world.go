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

import "sync"

// item is one declaration discovered while scanning a file, in source
// order, along with the brace-depth span it owns (used to test whether an
// offset falls inside it and to find its nearest enclosing item).
type item struct {
	match      Match
	bodyStart  int // offset just after the opening '{' (-1 if no body)
	bodyEnd    int // offset of the matching closing '}' (-1 if no body)
	modulePath string
	implOf     string // for impl members: the Self type name
	traitOf    string // for impl members: the trait being implemented, if any
}

// World is the process-wide declaration index the resolver walks: modules,
// impls, traits, struct fields, enum variants, and the prelude/crate roots.
// It is built incrementally, per file, by Build (see build.go), using the
// same "simplified pattern matching" ingestion.Parser documents before its
// tree-sitter integration (deferred, see DESIGN.md).
type World struct {
	mu sync.RWMutex

	// items holds every declaration found in each file, in source order.
	items map[string][]item

	// moduleItems maps a module path ("" is the crate root) to the items
	// declared directly inside it, across all files that contribute to it.
	moduleItems map[string][]item

	// fileModule maps a file path to the module path it contributes to.
	// In the absence of a full module-path resolver (non-goal), every
	// file's module path is "" (crate root); `mod foo;` declarations do
	// not change it. Only inline `mod foo { ... }` bodies nest items.
	fileModule map[string]string

	// implMembers maps a Self type name to its associated items (from all
	// `impl Type { ... }` and `impl Trait for Type { ... }` blocks).
	implMembers map[string][]item

	// traitMembers maps a trait name to the items declared in its body.
	traitMembers map[string][]item

	// structFields maps a struct name to its field Matches.
	structFields map[string][]Match

	// enumVariants maps an enum name to its variant Matches.
	enumVariants map[string][]Match

	// implements maps a type name to the trait names it implements
	// (adapted from CallResolver.implementsIndex).
	implements map[string][]string

	// imports maps a file path to its `use` aliases: alias -> target path.
	imports map[string]map[string]string

	// Environment, supplied by the caller: the implicit prelude and registered crates.
	prelude []Match
	crates  map[string]string // crate name -> root file path
}

// NewWorld creates an empty index. prelude and crates are supplied once by
// the embedding application (project configuration is an external
// collaborator).
func NewWorld(prelude []Match, crates map[string]string) *World {
	if crates == nil {
		crates = map[string]string{}
	}
	return &World{
		items:        make(map[string][]item),
		moduleItems:  make(map[string][]item),
		fileModule:   make(map[string]string),
		implMembers:  make(map[string][]item),
		traitMembers: make(map[string][]item),
		structFields: make(map[string][]Match),
		enumVariants: make(map[string][]Match),
		implements:   make(map[string][]string),
		imports:      make(map[string]map[string]string),
		prelude:      prelude,
		crates:       crates,
	}
}

// Prelude returns the implicit prelude items.
func (w *World) Prelude() []Match {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]Match, len(w.prelude))
	copy(out, w.prelude)
	return out
}

// Crates returns the registered external crate roots.
func (w *World) Crates() map[string]string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make(map[string]string, len(w.crates))
	for k, v := range w.crates {
		out[k] = v
	}
	return out
}

// ModuleItems returns the items declared directly in modulePath, in source
// order.
func (w *World) ModuleItems(modulePath string) []item {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]item(nil), w.moduleItems[modulePath]...)
}

// ModuleOf returns the module path file contributes to.
func (w *World) ModuleOf(file string) string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.fileModule[file]
}

// ImplMembers returns the associated items of typeName across all impl
// blocks seen so far.
func (w *World) ImplMembers(typeName string) []item {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]item(nil), w.implMembers[typeName]...)
}

// TraitMembers returns the items declared in trait traitName's body.
func (w *World) TraitMembers(traitName string) []item {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]item(nil), w.traitMembers[traitName]...)
}

// StructFields returns structName's declared fields, in source order.
func (w *World) StructFields(structName string) []Match {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]Match(nil), w.structFields[structName]...)
}

// EnumVariants returns enumName's declared variants, in source order.
func (w *World) EnumVariants(enumName string) []Match {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]Match(nil), w.enumVariants[enumName]...)
}

// TraitsImplementedBy returns the trait names typeName has an `impl ... for
// typeName` block for (coherence approximated lexically, not via a type
// checker).
func (w *World) TraitsImplementedBy(typeName string) []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]string(nil), w.implements[typeName]...)
}

// Imports returns file's `use` alias table: alias -> target path text.
func (w *World) Imports(file string) map[string]string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make(map[string]string, len(w.imports[file]))
	for k, v := range w.imports[file] {
		out[k] = v
	}
	return out
}

// ItemsIn returns every item discovered in file, in source order, used by
// the local-scope-chain scanner to find the function body enclosing an
// offset.
func (w *World) ItemsIn(file string) []item {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]item(nil), w.items[file]...)
}

// EnclosingItem returns the innermost item in file whose body spans pos,
// along with the item itself (e.g. the fn or impl containing the cursor),
// and false if pos is not inside any known item body.
func (w *World) EnclosingItem(file string, pos int) (item, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	var best item
	found := false
	for _, it := range w.items[file] {
		if it.bodyStart < 0 || it.bodyEnd < 0 {
			continue
		}
		if pos >= it.bodyStart && pos <= it.bodyEnd {
			if !found || (it.bodyEnd-it.bodyStart) < (best.bodyEnd-best.bodyStart) {
				best = it
				found = true
			}
		}
	}
	return best, found
}
