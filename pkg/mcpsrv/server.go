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

// Package mcpsrv exposes the engine's two queries as a Model Context
// Protocol server over stdio, following the NewServer/AddTool/ServeStdio
// shape of suvaidkhan-code-search-mcp's internal/mcp/server.go (and
// cmd/cie's own --mcp mode) but built on github.com/mark3labs/mcp-go
// rather than a hand-rolled JSON-RPC loop.
package mcpsrv

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kraklabs/pathway/pkg/engine"
	"github.com/kraklabs/pathway/pkg/resolve"
	"github.com/kraklabs/pathway/pkg/session"
)

const instructions = `pathway gives you name-resolution-aware navigation for Rust-like
source: "complete" lists every declaration visible at a cursor position whose
name starts with a prefix; "find_definition" resolves the identifier under
the cursor to its declaration site. Both take a file path and a 0-based
byte offset into that file.`

// Server wraps an *server.MCPServer bound to one FileCache (via
// newSession), which it serves over stdio.
type Server struct {
	mcp        *server.MCPServer
	newSession func(queryFile string) (*session.Session, *engine.Engine)
}

// New builds a Server. newSession must construct a fresh Session/Engine
// pair bound to queryFile on every call, one per tool invocation, so
// overlay state never leaks between requests.
func New(version string, newSession func(queryFile string) (*session.Session, *engine.Engine)) *Server {
	s := &Server{newSession: newSession}

	s.mcp = server.NewMCPServer(
		"pathway",
		version,
		server.WithInstructions(instructions),
	)

	posSchema := []mcp.ToolOption{
		mcp.WithDescription("Query a cursor position."),
		mcp.WithString("file", mcp.Required(), mcp.Description("Path to the source file.")),
		mcp.WithNumber("offset", mcp.Required(), mcp.Description("0-based byte offset of the cursor.")),
	}

	s.mcp.AddTool(
		mcp.NewTool("complete", append([]mcp.ToolOption{
			mcp.WithDescription("List completion candidates at a cursor position."),
		}, posSchema[1:]...)...),
		s.handleComplete,
	)
	s.mcp.AddTool(
		mcp.NewTool("find_definition", append([]mcp.ToolOption{
			mcp.WithDescription("Resolve the identifier at a cursor position to its declaration."),
		}, posSchema[1:]...)...),
		s.handleFindDefinition,
	)

	return s
}

// Serve runs the server over stdin/stdout until the client disconnects.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) handleComplete(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.query(req, false)
}

func (s *Server) handleFindDefinition(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.query(req, true)
}

func (s *Server) query(req mcp.CallToolRequest, findDefinition bool) (*mcp.CallToolResult, error) {
	file := req.GetString("file", "")
	offset := int(req.GetFloat("offset", -1))
	if file == "" || offset < 0 {
		return mcp.NewToolResultError("file and a non-negative offset are required"), nil
	}

	sess, eng := s.newSession(file)
	defer sess.Close()

	if findDefinition {
		match := eng.FindDefinition(file, offset)
		return mcp.NewToolResultText(formatMatch(match)), nil
	}
	matches := eng.Complete(file, offset)
	return mcp.NewToolResultText(formatMatches(matches)), nil
}

func formatMatch(m *resolve.Match) string {
	if m == nil {
		return "no matches"
	}
	return fmt.Sprintf("%s  %s:%d  (%s)\n", m.Name, m.File, m.Offset, m.Kind)
}

func formatMatches(matches []resolve.Match) string {
	if len(matches) == 0 {
		return "no matches"
	}
	text := ""
	for _, m := range matches {
		text += fmt.Sprintf("%s  %s:%d  (%s)\n", m.Name, m.File, m.Offset, m.Kind)
	}
	return text
}
