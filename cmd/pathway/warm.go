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
	"fmt"
	"log/slog"

	"github.com/schollz/progressbar/v3"
	flag "github.com/spf13/pflag"

	"github.com/kraklabs/pathway/pkg/cache"
	"github.com/kraklabs/pathway/pkg/config"
	"github.com/kraklabs/pathway/pkg/iofs"
	"github.com/kraklabs/pathway/pkg/resolve"
)

// runWarm loads configPath, lists the source files under its roots, and
// builds the World from them, rendering a progress bar the same way
// cmd/cie's `index` command drives one from a pipeline progress callback.
func runWarm(args []string, configPath string, logger *slog.Logger) error {
	fs := flag.NewFlagSet("warm", flag.ExitOnError)
	quiet := fs.Bool("quiet", false, "Suppress the progress bar")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	files, err := listSourceFiles(cfg)
	if err != nil {
		return fmt.Errorf("list source files: %w", err)
	}

	var bar *progressbar.ProgressBar
	if !*quiet {
		bar = progressbar.NewOptions(len(files),
			progressbar.OptionSetDescription("warming"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	fc := cache.New(iofs.OS("/"), logger, nil)
	world := resolve.NewWorld(preludeMatches(cfg.Prelude), cfg.Crates)
	warmWorld(files, fc, world, logger, func(n int) {
		if bar != nil {
			_ = bar.Set(n)
		}
	})
	if bar != nil {
		_ = bar.Finish()
	}

	slots, _, _ := fc.Stats()
	fmt.Printf("warmed %d files, %d cache slots, %d registered crates\n", len(files), slots, len(cfg.Crates))
	return nil
}
