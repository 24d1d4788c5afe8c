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

// Package main implements the pathway CLI: a name resolver for Rust-like
// source, exposed as completion/find-definition subcommands, an MCP
// server, and a cache-warming command.
//
// Usage:
//
//	pathway warm                    Walk configured roots and build the World
//	pathway complete <file> <off>   List completions at a byte offset
//	pathway find-definition <f> <o> Resolve the identifier at a byte offset
//	pathway serve                   Start as MCP server (JSON-RPC over stdio)
//	pathway config                  Show the active configuration
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	flag "github.com/spf13/pflag"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	var (
		showVersion = flag.BoolP("version", "V", false, "Show version and exit")
		configPath  = flag.StringP("config", "c", "", "Path to .pathway/project.yaml (default: ./.pathway/project.yaml)")
		jsonOutput  = flag.Bool("json", false, "Output in JSON format")
		noColor     = flag.Bool("no-color", false, "Disable color output")
		verbose     = flag.CountP("verbose", "v", "Increase verbosity (-v for info, -vv for debug)")
	)
	flag.SetInterspersed(false)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `pathway - name resolution for Rust-like source

Usage:
  pathway <command> [options]

Commands:
  warm              Walk configured roots and build the declaration index
  watch             Re-warm the index as files change under configured roots
  complete          List completion candidates at a cursor position
  find-definition   Resolve the identifier at a cursor position
  serve             Start the MCP server (and optional metrics endpoint)
  config            Show the active configuration
  version           Show version and exit

Global Options:
  --json        Output in JSON format
  --no-color    Disable color output (respects NO_COLOR env var)
  -v, --verbose Increase verbosity
  -c, --config  Path to .pathway/project.yaml
  -V, --version Show version and exit
`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("pathway version %s\ncommit: %s\nbuilt: %s\n", version, commit, date)
		os.Exit(0)
	}

	if os.Getenv("NO_COLOR") != "" {
		*noColor = true
	}
	color.NoColor = *noColor || !isatty.IsTerminal(os.Stdout.Fd())

	level := slog.LevelWarn
	switch {
	case *verbose >= 2:
		level = slog.LevelDebug
	case *verbose == 1:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	command, cmdArgs := args[0], args[1:]
	var err error
	switch command {
	case "warm":
		err = runWarm(cmdArgs, *configPath, logger)
	case "watch":
		err = runWatch(cmdArgs, *configPath, logger)
	case "complete":
		err = runQuery(cmdArgs, *configPath, logger, *jsonOutput, false)
	case "find-definition":
		err = runQuery(cmdArgs, *configPath, logger, *jsonOutput, true)
	case "serve":
		err = runServe(cmdArgs, *configPath, logger, version)
	case "config":
		err = runConfig(cmdArgs, *configPath, *jsonOutput)
	case "version":
		fmt.Printf("pathway version %s\n", version)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "pathway: %v\n", err)
		os.Exit(1)
	}
}
