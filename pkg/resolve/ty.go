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

import "fmt"

// TyTag discriminates the Ty sum type.
type TyTag int

const (
	TyMatch TyTag = iota
	TyPathSearch
	TyTuple
	TyFixedArray
	TySlice
	TyRef
	TyUnsupported
)

// Ty is the portable type representation: a tagged sum with one payload
// field populated per tag. Constructed via the TyXxx constructors below
// rather than a struct literal, so a caller can't set two payloads at once.
type Ty struct {
	Tag TyTag

	Match       Match
	PathSearch  PathSearch
	Tuple       []Ty
	Elem        *Ty // Slice/Ref/FixedArray element type
	LengthExpr  string
}

func TyOfMatch(m Match) Ty                         { return Ty{Tag: TyMatch, Match: m} }
func TyOfPathSearch(ps PathSearch) Ty               { return Ty{Tag: TyPathSearch, PathSearch: ps} }
func TyOfTuple(elems []Ty) Ty                       { return Ty{Tag: TyTuple, Tuple: elems} }
func TyOfSlice(elem Ty) Ty                          { return Ty{Tag: TySlice, Elem: &elem} }
func TyOfRef(elem Ty) Ty                            { return Ty{Tag: TyRef, Elem: &elem} }
func TyUnsupportedValue() Ty                        { return Ty{Tag: TyUnsupported} }
func TyOfFixedArray(elem Ty, lengthExpr string) Ty {
	return Ty{Tag: TyFixedArray, Elem: &elem, LengthExpr: lengthExpr}
}

// Deref strips a single layer of Ref, transparently, as field resolution
// requires: Ref(t) recurs transparently on the pointee.
func (t Ty) Deref() Ty {
	if t.Tag == TyRef {
		return *t.Elem
	}
	return t
}

// String renders t the way the source text would: parser-faithful display,
// e.g. "&[T; N]".
func (t Ty) String() string {
	switch t.Tag {
	case TyMatch:
		return t.Match.Name
	case TyPathSearch:
		return pathString(t.PathSearch.Path)
	case TyTuple:
		s := "("
		for i, e := range t.Tuple {
			if i > 0 {
				s += ", "
			}
			s += e.String()
		}
		return s + ")"
	case TyFixedArray:
		return fmt.Sprintf("[%s; %s]", t.Elem.String(), t.LengthExpr)
	case TySlice:
		return fmt.Sprintf("[%s]", t.Elem.String())
	case TyRef:
		return "&" + t.Elem.String()
	default:
		return "_"
	}
}

func pathString(p Path) string {
	s := ""
	if p.Global {
		s = "::"
	}
	for i, seg := range p.Segments {
		if i > 0 {
			s += "::"
		}
		s += seg.Name
	}
	return s
}
