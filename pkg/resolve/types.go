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

// Package resolve is the name resolver: the hard engineering center of
// this module. It owns the data model (Match, Path, Ty) and the
// multi-segment, multi-namespace resolution walk.
package resolve

// Kind enumerates the shapes a Match can have.
type Kind int

const (
	KindStruct Kind = iota
	KindModule
	KindMatchArm
	KindFunction
	KindCrate
	KindLetBinding
	KindIfLet
	KindWhileLet
	KindForLoopVar
	KindStructField
	KindImpl
	KindEnum
	KindEnumVariant
	KindTypeAlias
	KindFnArg
	KindTrait
	KindConst
	KindStatic
	KindMacro
	KindBuiltin
)

var kindNames = map[Kind]string{
	KindStruct:      "struct",
	KindModule:      "module",
	KindMatchArm:    "match-arm",
	KindFunction:    "function",
	KindCrate:       "crate",
	KindLetBinding:  "let-binding",
	KindIfLet:       "if-let",
	KindWhileLet:    "while-let",
	KindForLoopVar:  "for-loop-var",
	KindStructField: "struct-field",
	KindImpl:        "impl",
	KindEnum:        "enum",
	KindEnumVariant: "enum-variant",
	KindTypeAlias:   "type-alias",
	KindFnArg:       "fn-arg",
	KindTrait:       "trait",
	KindConst:       "const",
	KindStatic:      "static",
	KindMacro:       "macro",
	KindBuiltin:     "builtin",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Namespace selects which declarations a single-segment lookup admits.
type Namespace int

const (
	// NSType admits struct/enum/trait/type-alias/module.
	NSType Namespace = iota
	// NSValue admits fn/const/static/let/enum-variant.
	NSValue
	// NSBoth admits either.
	NSBoth
)

// String renders a Namespace for logging and metrics labels.
func (n Namespace) String() string {
	switch n {
	case NSType:
		return "type"
	case NSValue:
		return "value"
	case NSBoth:
		return "both"
	default:
		return "unknown"
	}
}

// MatchKind controls whether a lookup requires exact name equality or
// accepts any name sharing the search string as a prefix.
type MatchKind int

const (
	ExactMatch MatchKind = iota
	StartsWith
)

// Scope is the (file, offset) pair a PathSearch or Ty resolution is
// anchored to.
type Scope struct {
	File   string
	Offset int
}

// Match is a located declaration: central return value.
type Match struct {
	Name    string
	File    string
	Offset  int
	Local   bool
	Kind    Kind
	Context string

	GenericParams []string
	GenericArgs   []PathSearch
}

// WithGenericArgs returns a copy of m with GenericArgs replaced, attaching
// unresolved PathSearch bindings without forcing their resolution.
func (m Match) WithGenericArgs(args []PathSearch) Match {
	m.GenericArgs = args
	return m
}

// PathSegment is one "::"-separated component of a Path, with its
// (unresolved) generic type arguments.
type PathSegment struct {
	Name     string
	TypeArgs []Path
}

// Path is a "::"-separated chain of segments, optionally rooted at the
// crate set ("::std::mem::swap"). Equality is structural.
type Path struct {
	Global   bool
	Segments []PathSegment
}

// Equal reports structural equality of two paths.
func (p Path) Equal(o Path) bool {
	if p.Global != o.Global || len(p.Segments) != len(o.Segments) {
		return false
	}
	for i := range p.Segments {
		if p.Segments[i].Name != o.Segments[i].Name {
			return false
		}
		if len(p.Segments[i].TypeArgs) != len(o.Segments[i].TypeArgs) {
			return false
		}
		for j := range p.Segments[i].TypeArgs {
			if !p.Segments[i].TypeArgs[j].Equal(o.Segments[i].TypeArgs[j]) {
				return false
			}
		}
	}
	return true
}

// PathSearch pairs a Path with the scope it must be resolved from. Kept
// unresolved so generic-parameter substitution doesn't force evaluation
// during unrelated lookups.
type PathSearch struct {
	Path  Path
	Scope Scope
}
