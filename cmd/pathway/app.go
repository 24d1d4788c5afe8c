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
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/kraklabs/pathway/pkg/astbridge"
	"github.com/kraklabs/pathway/pkg/cache"
	"github.com/kraklabs/pathway/pkg/config"
	"github.com/kraklabs/pathway/pkg/engine"
	"github.com/kraklabs/pathway/pkg/iofs"
	"github.com/kraklabs/pathway/pkg/metrics"
	"github.com/kraklabs/pathway/pkg/resolve"
	"github.com/kraklabs/pathway/pkg/session"
)

// app holds everything a subcommand needs to run a query: the config it
// loaded, the shared cache/World/resolver the World was built from, and an
// optional metrics registry. One app is built per process invocation.
type app struct {
	cfg    *config.Config
	cache  *cache.FileCache
	world  *resolve.World
	res    *resolve.Resolver
	bridge *astbridge.Bridge
	metr   *metrics.Registry
	logger *slog.Logger
}

// newApp loads configPath (or the default), walks cfg.Roots (and
// cfg.StdlibRoot, if set) to build the World, and wires a Resolver/Bridge pair against it. withMetrics controls
// whether a metrics.Registry is attached to the cache and resolver.
func newApp(configPath string, logger *slog.Logger, withMetrics bool) (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	var metr *metrics.Registry
	if withMetrics {
		metr = metrics.New()
	}

	fc := cache.New(iofs.OS("/"), logger, metr)
	world := resolve.NewWorld(preludeMatches(cfg.Prelude), cfg.Crates)

	files, err := listSourceFiles(cfg)
	if err != nil {
		return nil, fmt.Errorf("list source files: %w", err)
	}
	warmWorld(files, fc, world, logger, nil)

	res := resolve.NewResolver(world)
	if metr != nil {
		res = res.WithMetrics(metr)
	}

	return &app{
		cfg:    cfg,
		cache:  fc,
		world:  world,
		res:    res,
		bridge: astbridge.New(res),
		metr:   metr,
		logger: logger,
	}, nil
}

// preludeMatches turns the configured prelude names into always-visible
// builtin Matches, with no backing file (Kind: KindBuiltin).
func preludeMatches(names []string) []resolve.Match {
	out := make([]resolve.Match, len(names))
	for i, n := range names {
		out[i] = resolve.Match{Name: n, Kind: resolve.KindBuiltin}
	}
	return out
}

// newSession opens a fresh Session/Engine pair bound to file, for callers
// (the MCP server) that need one per request.
func (a *app) newSession(file string) (*session.Session, *engine.Engine) {
	sess := session.New(a.cache, file)
	return sess, engine.New(sess, a.res, a.bridge, a.metr)
}

// listSourceFiles walks every root in cfg (plus cfg.StdlibRoot, if set) and
// returns the ".rs" files not excluded by cfg.Exclude or a conventional
// VCS/build directory.
func listSourceFiles(cfg *config.Config) ([]string, error) {
	var files []string
	roots := cfg.Roots
	if cfg.StdlibRoot != "" {
		roots = append(append([]string(nil), cfg.Roots...), cfg.StdlibRoot)
	}
	for _, root := range roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if os.IsPermission(err) {
					return fs.SkipDir
				}
				return err
			}
			base := d.Name()
			if d.IsDir() {
				if isSkippedDir(base) || matchesAny(cfg.Exclude, path) {
					return fs.SkipDir
				}
				return nil
			}
			if !strings.HasSuffix(path, ".rs") || matchesAny(cfg.Exclude, path) {
				return nil
			}
			files = append(files, path)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", root, err)
		}
	}
	return files, nil
}

// warmWorld registers each of files with fc and builds world's declaration
// index from it, calling onFile after each one (if non-nil) so a caller
// can drive a progress bar.
func warmWorld(files []string, fc *cache.FileCache, world *resolve.World, logger *slog.Logger, onFile func(int)) {
	for i, path := range files {
		buf, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("warm.read_failed", "path", path, "err", err)
			if onFile != nil {
				onFile(i + 1)
			}
			continue
		}
		fc.CacheFile(path, iofs.StripBOM(buf))
		masked := fc.LoadMasked(path).Text()
		world.Build(path, masked)
		if onFile != nil {
			onFile(i + 1)
		}
	}
	logger.Info("warm.done", "files", len(files))
}

var skippedDirs = map[string]bool{
	".git": true, "target": true, "node_modules": true, ".pathway": true,
}

func isSkippedDir(base string) bool {
	return skippedDirs[base] || (strings.HasPrefix(base, ".") && base != ".")
}

func matchesAny(patterns []string, path string) bool {
	for _, p := range patterns {
		p = strings.TrimSuffix(p, "/**")
		if ok, _ := filepath.Match(p, filepath.Base(path)); ok {
			return true
		}
		if strings.Contains(path, strings.TrimSuffix(p, "/*")) {
			return true
		}
	}
	return false
}
