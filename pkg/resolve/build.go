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
	"strings"

	"github.com/kraklabs/pathway/pkg/pathsyntax"
)

// Current implementation:
// Build scans masked source with regexp, the same "simplified pattern
// matching" approach ingestion.Parser documents (and
// defers tree-sitter for, see DESIGN.md for why that deferral is kept
// here too). It handles the common declaration shapes but has known
// limitations:
//   - Declarations spanning multiple lines in unusual ways (e.g. a trait
//     bound wrapped across lines before the opening brace) may be missed.
//   - Macro-generated items are invisible, by construction (no macro
//     expansion is performed).
var (
	reFn       = regexp.MustCompile(`\bfn\s+([A-Za-z_]\w*)`)
	reStruct   = regexp.MustCompile(`\bstruct\s+([A-Za-z_]\w*)`)
	reEnum     = regexp.MustCompile(`\benum\s+([A-Za-z_]\w*)`)
	reTrait    = regexp.MustCompile(`\btrait\s+([A-Za-z_]\w*)`)
	reConst    = regexp.MustCompile(`\bconst\s+([A-Za-z_]\w*)`)
	reStatic   = regexp.MustCompile(`\bstatic\s+([A-Za-z_]\w*)`)
	reTypeDecl = regexp.MustCompile(`\btype\s+([A-Za-z_]\w*)`)
	reMod      = regexp.MustCompile(`\bmod\s+([A-Za-z_]\w*)`)
	reMacro    = regexp.MustCompile(`\b([A-Za-z_]\w*)!\s*\{`)
	reImpl     = regexp.MustCompile(`\bimpl(?:\s*<[^>{]*>)?\s+(?:([A-Za-z_][\w:]*)(?:<[^>{]*>)?\s+for\s+)?([A-Za-z_][\w:]*)`)
	reUse      = regexp.MustCompile(`\buse\s+([^;]+);`)
)

// Build scans file's masked text and merges the declarations it finds into
// w. Call once per file; safe to call again after a file's content changes
// (re-registration simply appends, callers that re-index should create a
// fresh World for a clean rebuild, since this package does no per-file
// invalidation of its own).
func (w *World) Build(file, masked string) {
	containers := findContainers(masked)

	var found []item
	found = append(found, scanBodiedKeyword(masked, reFn, KindFunction)...)
	found = append(found, scanKeyword(masked, reConst, KindConst)...)
	found = append(found, scanKeyword(masked, reStatic, KindStatic)...)
	found = append(found, scanKeyword(masked, reTypeDecl, KindTypeAlias)...)
	found = append(found, scanKeyword(masked, reMacro, KindMacro)...)
	structItems := scanBodiedKeyword(masked, reStruct, KindStruct)
	enumItems := scanBodiedKeyword(masked, reEnum, KindEnum)
	traitItems := scanBodiedKeyword(masked, reTrait, KindTrait)
	modItems := scanBodiedKeyword(masked, reMod, KindModule)
	found = append(found, structItems...)
	found = append(found, enumItems...)
	found = append(found, traitItems...)
	found = append(found, modItems...)

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.fileModule[file]; !ok {
		w.fileModule[file] = ""
	}
	baseModule := w.fileModule[file]

	for _, it := range found {
		it.match.File = file
		container, ok := innermostContainer(containers, it.match.Offset)
		switch {
		case ok && container.kind == containerImpl:
			it.implOf = container.name
			it.traitOf = container.trait
			w.implMembers[container.name] = append(w.implMembers[container.name], it)
			if container.trait != "" {
				w.appendImplements(container.name, container.trait)
			}
		case ok && container.kind == containerTrait:
			it.traitOf = container.name
			w.traitMembers[container.name] = append(w.traitMembers[container.name], it)
		case ok && container.kind == containerMod:
			modPath := joinModule(baseModule, container.name)
			it.modulePath = modPath
			w.moduleItems[modPath] = append(w.moduleItems[modPath], it)
		default:
			it.modulePath = baseModule
			w.moduleItems[baseModule] = append(w.moduleItems[baseModule], it)
		}
		w.items[file] = append(w.items[file], it)
	}

	// Struct fields and enum variants, and their owning item's body span
	// (so a cursor inside a struct/enum body resolves `Self` correctly).
	for _, it := range structItems {
		it.match.File = file
		w.items[file] = append(w.items[file], it)
		body := safeSlice(masked, it.bodyStart, it.bodyEnd)
		w.structFields[it.match.Name] = append(w.structFields[it.match.Name], parseStructFields(body, file, it.bodyStart)...)
	}
	for _, it := range enumItems {
		it.match.File = file
		body := safeSlice(masked, it.bodyStart, it.bodyEnd)
		w.enumVariants[it.match.Name] = append(w.enumVariants[it.match.Name], parseEnumVariants(body, file, it.bodyStart)...)
	}

	// impl headers themselves, for EnclosingItem / TraitsImplementedBy.
	for _, c := range containers {
		if c.kind != containerImpl {
			continue
		}
		w.items[file] = append(w.items[file], item{
			match:     Match{Name: c.name, File: file, Offset: c.headerOffset, Kind: KindImpl, Context: "impl " + c.name},
			bodyStart: c.bodyStart,
			bodyEnd:   c.bodyEnd,
			implOf:    c.name,
			traitOf:   c.trait,
		})
		if c.trait != "" {
			w.appendImplements(c.name, c.trait)
		}
	}

	// `use` imports.
	for alias, target := range parseUseImports(masked) {
		if w.imports[file] == nil {
			w.imports[file] = make(map[string]string)
		}
		w.imports[file][alias] = target
	}
}

// appendImplements records typeName implements traitName, deduplicated.
// Caller must hold w.mu.
func (w *World) appendImplements(typeName, traitName string) {
	for _, t := range w.implements[typeName] {
		if t == traitName {
			return
		}
	}
	w.implements[typeName] = append(w.implements[typeName], traitName)
}

func joinModule(base, child string) string {
	if base == "" {
		return child
	}
	return base + "::" + child
}

func safeSlice(s string, a, b int) string {
	if a < 0 || b < 0 || a > len(s) || b > len(s) || a > b {
		return ""
	}
	return s[a:b]
}

// scanKeyword finds every occurrence of re in text and returns bodyless
// items (const/static/type/macro, declarations whose interior, if any,
// isn't itself a container we index into).
func scanKeyword(text string, re *regexp.Regexp, kind Kind) []item {
	var out []item
	for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
		nameStart, nameEnd := m[2], m[3]
		if nameStart < 0 {
			continue
		}
		name := text[nameStart:nameEnd]
		out = append(out, item{
			match:     Match{Name: name, Offset: nameStart, Kind: kind, Context: contextLine(text, m[0])},
			bodyStart: -1,
			bodyEnd:   -1,
		})
	}
	return out
}

// scanBodiedKeyword finds every occurrence of re and, if followed by a '{',
// records the matching body span.
func scanBodiedKeyword(text string, re *regexp.Regexp, kind Kind) []item {
	var out []item
	for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
		nameStart, nameEnd := m[2], m[3]
		if nameStart < 0 {
			continue
		}
		name := text[nameStart:nameEnd]
		brace := strings.IndexByte(text[nameEnd:], '{')
		bodyStart, bodyEnd := -1, -1
		if brace >= 0 {
			open := nameEnd + brace
			if close := matchBrace(text, open); close >= 0 {
				bodyStart, bodyEnd = open+1, close
			}
		}
		out = append(out, item{
			match:     Match{Name: name, Offset: nameStart, Kind: kind, Context: contextLine(text, m[0])},
			bodyStart: bodyStart,
			bodyEnd:   bodyEnd,
		})
	}
	return out
}

// matchBrace returns the offset of the '{' at open's matching '}', or -1.
func matchBrace(text string, open int) int {
	depth := 0
	for i := open; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func contextLine(text string, at int) string {
	start := strings.LastIndexByte(text[:at], '\n') + 1
	end := strings.IndexByte(text[at:], '\n')
	if end < 0 {
		end = len(text)
	} else {
		end += at
	}
	return strings.TrimSpace(text[start:end])
}

type containerKind int

const (
	containerImpl containerKind = iota
	containerTrait
	containerMod
)

type container struct {
	kind         containerKind
	name         string // Self type (impl), trait name, or module name
	trait        string // impl's trait name, if any
	headerOffset int
	bodyStart    int
	bodyEnd      int
}

// findContainers locates every impl/trait/mod block and its body span, so
// declarations discovered inside can be attributed to the right owner.
func findContainers(text string) []container {
	var out []container
	for _, m := range reImpl.FindAllStringSubmatchIndex(text, -1) {
		brace := strings.IndexByte(text[m[1]:], '{')
		if brace < 0 {
			continue
		}
		open := m[1] + brace
		close := matchBrace(text, open)
		if close < 0 {
			continue
		}
		trait := ""
		if m[2] >= 0 {
			trait = lastSegment(text[m[2]:m[3]])
		}
		out = append(out, container{
			kind:         containerImpl,
			name:         lastSegment(text[m[4]:m[5]]),
			trait:        trait,
			headerOffset: m[0],
			bodyStart:    open + 1,
			bodyEnd:      close,
		})
	}
	for _, m := range reTrait.FindAllStringSubmatchIndex(text, -1) {
		brace := strings.IndexByte(text[m[1]:], '{')
		if brace < 0 {
			continue
		}
		open := m[1] + brace
		close := matchBrace(text, open)
		if close < 0 {
			continue
		}
		out = append(out, container{kind: containerTrait, name: text[m[2]:m[3]], headerOffset: m[0], bodyStart: open + 1, bodyEnd: close})
	}
	for _, m := range reMod.FindAllStringSubmatchIndex(text, -1) {
		brace := strings.IndexByte(text[m[1]:], '{')
		if brace < 0 {
			continue // `mod foo;` (file-backed module), not a block
		}
		open := m[1] + brace
		close := matchBrace(text, open)
		if close < 0 {
			continue
		}
		out = append(out, container{kind: containerMod, name: text[m[2]:m[3]], headerOffset: m[0], bodyStart: open + 1, bodyEnd: close})
	}
	return out
}

func lastSegment(s string) string {
	parsed := pathsyntax.Parse(s)
	if len(parsed.Segments) == 0 {
		return s
	}
	return parsed.Segments[len(parsed.Segments)-1].Name
}

// innermostContainer returns the smallest container whose body spans pos.
func innermostContainer(containers []container, pos int) (container, bool) {
	var best container
	found := false
	for _, c := range containers {
		if pos >= c.bodyStart && pos < c.bodyEnd {
			if !found || (c.bodyEnd-c.bodyStart) < (best.bodyEnd-best.bodyStart) {
				best = c
				found = true
			}
		}
	}
	return best, found
}

// parseStructFields parses "name: Type, name2: Type2" (as found inside a
// struct body) into field Matches. offset is body's start in the file.
func parseStructFields(body, file string, offset int) []Match {
	var out []Match
	cursor := 0
	for _, part := range splitTopLevelCommas(body) {
		fieldStart := cursor
		cursor += len(part) + 1
		part = strings.TrimSpace(part)
		if part == "" || strings.HasPrefix(part, "//") {
			continue
		}
		colon := strings.IndexByte(part, ':')
		if colon < 0 {
			continue
		}
		name := strings.TrimSpace(strings.TrimPrefix(part[:colon], "pub"))
		name = strings.TrimSpace(name)
		if name == "" || !isIdent(name) {
			continue
		}
		relOffset := strings.Index(body[fieldStart:], name)
		off := offset + fieldStart
		if relOffset >= 0 {
			off = offset + fieldStart + relOffset
		}
		out = append(out, Match{Name: name, File: file, Offset: off, Kind: KindStructField, Context: strings.TrimSpace(part)})
	}
	return out
}

// parseEnumVariants parses "A, B(i32), C { x: i32 }" into variant Matches.
func parseEnumVariants(body, file string, offset int) []Match {
	var out []Match
	cursor := 0
	for _, part := range splitTopLevelCommas(body) {
		partStart := cursor
		cursor += len(part) + 1
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		name := trimmed
		if idx := strings.IndexAny(trimmed, "({"); idx >= 0 {
			name = strings.TrimSpace(trimmed[:idx])
		}
		if name == "" || !isIdent(name) {
			continue
		}
		rel := strings.Index(part, name)
		off := offset + partStart
		if rel >= 0 {
			off = offset + partStart + rel
		}
		out = append(out, Match{Name: name, File: file, Offset: off, Kind: KindEnumVariant, Context: trimmed})
	}
	return out
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (i > 0 && r >= '0' && r <= '9') {
			continue
		}
		return false
	}
	return true
}

// parseUseImports parses `use a::b::C;` / `use a::b as alias;` statements
// into alias -> target-path text. Brace-grouped imports (`use a::{B, C}`)
// are expanded per name; simplistic, matching the documented limitations.
func parseUseImports(text string) map[string]string {
	out := map[string]string{}
	for _, m := range reUse.FindAllStringSubmatchIndex(text, -1) {
		body := strings.TrimSpace(text[m[2]:m[3]])
		expandUseBody(body, out)
	}
	return out
}

func expandUseBody(body string, out map[string]string) {
	if brace := strings.IndexByte(body, '{'); brace >= 0 {
		close := matchBrace(body, brace)
		if close < 0 {
			close = len(body)
		}
		prefix := strings.TrimSuffix(strings.TrimSpace(body[:brace]), "::")
		for _, item := range splitTopLevelCommas(body[brace+1 : close]) {
			item = strings.TrimSpace(item)
			if item == "" {
				continue
			}
			full := item
			if prefix != "" {
				full = prefix + "::" + item
			}
			expandUseBody(full, out)
		}
		return
	}

	asIdx := strings.Index(body, " as ")
	target := body
	alias := ""
	if asIdx >= 0 {
		target = strings.TrimSpace(body[:asIdx])
		alias = strings.TrimSpace(body[asIdx+4:])
	} else {
		alias = lastSegment(target)
	}
	if alias == "" || target == "" {
		return
	}
	out[alias] = target
}

// splitTopLevelCommas splits s on commas outside any bracket nesting, the
// same depth-counting scan pathsyntax uses for generic-argument lists,
// applied here to struct fields, enum variants, and brace-grouped use
// imports.
func splitTopLevelCommas(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<', '(', '[', '{':
			depth++
		case '>', ')', ']', '}':
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
