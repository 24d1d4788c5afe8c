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
	"net/http"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/pathway/pkg/engine"
	"github.com/kraklabs/pathway/pkg/mcpsrv"
	"github.com/kraklabs/pathway/pkg/session"
)

// runServe always starts the MCP server, plus a Prometheus metrics
// endpoint when --metrics-addr is given, both against the same World built
// once at startup, adapted from cmd/cie's `index --metrics-addr` wiring
// of promhttp.Handler behind an optional HTTP listener.
func runServe(args []string, configPath string, logger *slog.Logger, appVersion string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	metricsAddr := fs.String("metrics-addr", "", "HTTP listen address for Prometheus metrics (empty to disable)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := newApp(configPath, logger, *metricsAddr != "")
	if err != nil {
		return err
	}

	if *metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", a.metr.Handler())
		srv := &http.Server{Addr: *metricsAddr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
		logger.Info("serve.metrics.start", "addr", *metricsAddr, "path", "/metrics")
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Warn("serve.metrics.error", "err", err)
			}
		}()
	}

	srv := mcpsrv.New(appVersion, func(file string) (*session.Session, *engine.Engine) {
		return a.newSession(file)
	})
	logger.Info("serve.mcp.start")
	if err := srv.Serve(); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}
