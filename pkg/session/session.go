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

// Package session implements the Session: a scoped handle over a
// FileCache, pinned to a single query, with optional file overlay so an
// editor's unsaved buffer can stand in for a real path's on-disk contents.
package session

import (
	"github.com/kraklabs/pathway/pkg/cache"
	"github.com/kraklabs/pathway/pkg/source"
)

// Session binds one query to the cache. QueryFile and SubstituteFile
// together implement overlay semantics: any read routed to QueryFile is
// redirected to SubstituteFile.
type Session struct {
	cache           *cache.FileCache
	queryFile       string
	substituteFile  string
	hasSubstitute   bool
	ended           bool
}

// New opens a session with no overlay.
func New(c *cache.FileCache, queryFile string) *Session {
	return &Session{cache: c, queryFile: queryFile}
}

// NewWithOverlay opens a session that redirects reads of queryFile to
// substituteFile. Callers that want to inject unsaved text should call
// Cache().CacheFile(substituteFile, text) before issuing a query.
func NewWithOverlay(c *cache.FileCache, queryFile, substituteFile string) *Session {
	return &Session{cache: c, queryFile: queryFile, substituteFile: substituteFile, hasSubstitute: true}
}

// Cache exposes the underlying FileCache for callers (e.g. uploading an
// overlay buffer with CacheFile) that need to pre-populate it outside the
// Session API.
func (s *Session) Cache() *cache.FileCache { return s.cache }

// QueryFile returns the path the session was opened against.
func (s *Session) QueryFile() string { return s.queryFile }

// resolve applies overlay redirection to path.
func (s *Session) resolve(path string) string {
	if s.hasSubstitute && path == s.queryFile {
		return s.substituteFile
	}
	return path
}

// LoadRaw returns a view over path's raw text, honoring overlay redirection.
func (s *Session) LoadRaw(path string) source.View {
	return s.cache.LoadRaw(s.resolve(path))
}

// LoadMasked returns a view over path's masked text, honoring overlay
// redirection.
func (s *Session) LoadMasked(path string) source.View {
	return s.cache.LoadMasked(s.resolve(path))
}

// Close ends the session's generation, refilling the cache's recyclable
// slot list. Sessions must not be used after Close.
func (s *Session) Close() {
	if s.ended {
		return
	}
	s.ended = true
	s.cache.EndGeneration()
}
