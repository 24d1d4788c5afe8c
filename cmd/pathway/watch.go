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
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kraklabs/pathway/pkg/cache"
	"github.com/kraklabs/pathway/pkg/config"
	"github.com/kraklabs/pathway/pkg/iofs"
	"github.com/kraklabs/pathway/pkg/resolve"
)

const watchDebounce = 500 * time.Millisecond

// runWatch rebuilds the World once, then re-warms the changed file on every
// debounced filesystem event under cfg.Roots. Adapted from cmd/cie's
// fsnotify-driven reindex watcher, scaled down to pathway's single-World,
// single-process model (no background job bookkeeping needed, since a
// rebuild here is a per-file Build call rather than a full pipeline run).
func runWatch(args []string, configPath string, logger *slog.Logger) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	files, err := listSourceFiles(cfg)
	if err != nil {
		return fmt.Errorf("list source files: %w", err)
	}

	fc := cache.New(iofs.OS("/"), logger, nil)
	world := resolve.NewWorld(preludeMatches(cfg.Prelude), cfg.Crates)
	warmWorld(files, fc, world, logger, nil)
	logger.Info("watch.initial_warm", "files", len(files))

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("start fsnotify: %w", err)
	}
	defer watcher.Close()

	for _, root := range cfg.Roots {
		if err := addWatchDirs(watcher, root); err != nil {
			logger.Warn("watch.add_dirs_failed", "root", root, "err", err)
		}
	}

	pending := make(map[string]bool)
	var debounce *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(ev.Name, ".rs") {
				continue
			}
			pending[ev.Name] = true
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.NewTimer(watchDebounce)
			fire = debounce.C

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch.fsnotify_error", "err", err)

		case <-fire:
			fire = nil
			changed := make([]string, 0, len(pending))
			for path := range pending {
				changed = append(changed, path)
			}
			pending = make(map[string]bool)
			warmWorld(changed, fc, world, logger, nil)
			logger.Info("watch.rebuilt", "files", len(changed))
		}
	}
}

func addWatchDirs(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsPermission(err) {
				return filepath.SkipDir
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if isSkippedDir(d.Name()) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}
