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

package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/fatih/color"

	"github.com/kraklabs/pathway/pkg/resolve"
)

// runQuery implements both `complete` and `find-definition`: pathway
// <command> <file> <offset>, against the World built from configPath's
// roots.
func runQuery(args []string, configPath string, logger *slog.Logger, jsonOutput, findDefinition bool) error {
	if len(args) != 2 {
		return fmt.Errorf("expected <file> <offset>, got %d argument(s)", len(args))
	}
	file := args[0]
	offset, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("offset must be an integer: %w", err)
	}

	a, err := newApp(configPath, logger, false)
	if err != nil {
		return err
	}
	sess, eng := a.newSession(file)
	defer sess.Close()

	if findDefinition {
		match := eng.FindDefinition(file, offset)
		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(match)
		}
		printMatch(match)
		return nil
	}

	matches := eng.Complete(file, offset)
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(matches)
	}
	printMatches(matches)
	return nil
}

func printMatch(m *resolve.Match) {
	if m == nil {
		fmt.Println("no match")
		return
	}
	kindColor := color.New(color.FgCyan)
	fmt.Printf("%s  %s:%d  %s\n", m.Name, m.File, m.Offset, kindColor.Sprint(m.Kind.String()))
}

func printMatches(matches []resolve.Match) {
	if len(matches) == 0 {
		fmt.Println("no matches")
		return
	}
	kindColor := color.New(color.FgCyan)
	for _, m := range matches {
		fmt.Printf("%s  %s:%d  %s\n", m.Name, m.File, m.Offset, kindColor.Sprint(m.Kind.String()))
	}
}
