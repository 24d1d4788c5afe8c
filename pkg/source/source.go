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

// Package source holds the IndexedSource/View primitives: a buffer of text
// paired with the ordered, non-overlapping byte ranges that are real code
// (comment and string-literal bodies excluded), and cheap substring views
// over it.
package source

import "sort"

// Range is a half-open byte range [Start, End) into some text.
type Range struct {
	Start int
	End   int
}

// Chunker produces the code-bearing ranges of a text. Implementations live
// outside this package (pkg/lexfacility is the default binding), the host
// language's lexer is an external collaborator, not something IndexedSource
// computes itself.
type Chunker func(text string) []Range

// IndexedSource is an owned text buffer plus its precomputed chunk list.
// Chunks are computed once, at construction, and never recomputed.
type IndexedSource struct {
	Text   string
	Chunks []Range
}

// New builds an IndexedSource by running chunker over text exactly once.
// Chunks are sorted, clamped to [0, len(text)], and de-overlapped so callers
// never have to re-validate the invariant downstream.
func New(text string, chunker Chunker) *IndexedSource {
	chunks := chunker(text)
	return &IndexedSource{Text: text, Chunks: normalizeChunks(chunks, len(text))}
}

// WithChunks builds an IndexedSource from an already-computed chunk list
// (used when masking reuses the raw source's chunks verbatim, since masking
// never changes the text length or the comment/string boundaries).
func WithChunks(text string, chunks []Range) *IndexedSource {
	return &IndexedSource{Text: text, Chunks: normalizeChunks(chunks, len(text))}
}

func normalizeChunks(chunks []Range, length int) []Range {
	out := make([]Range, 0, len(chunks))
	for _, c := range chunks {
		if c.Start < 0 {
			c.Start = 0
		}
		if c.End > length {
			c.End = length
		}
		if c.Start < c.End {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })

	merged := out[:0]
	for _, c := range out {
		if len(merged) > 0 && c.Start < merged[len(merged)-1].End {
			if c.End > merged[len(merged)-1].End {
				merged[len(merged)-1].End = c.End
			}
			continue
		}
		merged = append(merged, c)
	}
	return merged
}

// Len returns the length of the underlying text.
func (s *IndexedSource) Len() int { return len(s.Text) }

// ViewOf returns a View covering the whole source.
func (s *IndexedSource) ViewOf() View { return View{Source: s, From: 0, To: s.Len()} }

// View is a cheap, O(1) substring projection of an IndexedSource. Chunk
// iteration over a View only yields ranges intersecting [From, To), clipped
// and translated to view-local offsets starting at zero.
type View struct {
	Source *IndexedSource
	From   int
	To     int
}

// Len returns the length of the view, in bytes.
func (v View) Len() int { return v.To - v.From }

// Text returns the view's substring of the underlying source text.
func (v View) Text() string { return v.Source.Text[v.From:v.To] }

// From_ restricts the view's start, keeping the current end. k is relative
// to the current view (view-local), not the underlying source.
func (v View) From_(k int) View {
	nv := View{Source: v.Source, From: v.From + k, To: v.To}
	return nv.clamp()
}

// To_ restricts the view's end to k bytes from the current start (view-local).
func (v View) To_(k int) View {
	nv := View{Source: v.Source, From: v.From, To: v.From + k}
	return nv.clamp()
}

// FromTo restricts the view to [a, b) (view-local offsets).
func (v View) FromTo(a, b int) View {
	nv := View{Source: v.Source, From: v.From + a, To: v.From + b}
	return nv.clamp()
}

func (v View) clamp() View {
	if v.From < 0 {
		v.From = 0
	}
	if v.To > v.Source.Len() {
		v.To = v.Source.Len()
	}
	if v.To < v.From {
		v.To = v.From
	}
	return v
}

// Chunks enumerates the code-bearing ranges of the view, translated so that
// view offset 0 corresponds to v.From. Ranges before v.From are skipped;
// iteration stops once a range's start is at or past v.To.
func (v View) Chunks() []Range {
	var out []Range
	for _, c := range v.Source.Chunks {
		if c.End <= v.From {
			continue
		}
		if c.Start >= v.To {
			break
		}
		start := c.Start
		if start < v.From {
			start = v.From
		}
		end := c.End
		if end > v.To {
			end = v.To
		}
		out = append(out, Range{Start: start - v.From, End: end - v.From})
	}
	return out
}

// IsCodeOffset reports whether the view-local offset pos falls inside a
// code chunk (as opposed to a comment or string-literal body).
func (v View) IsCodeOffset(pos int) bool {
	for _, c := range v.Chunks() {
		if pos < c.Start {
			return false
		}
		if pos < c.End {
			return true
		}
	}
	return false
}
