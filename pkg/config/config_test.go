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

package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigHasSensibleDefaults(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, []string{"."}, cfg.Roots)
	assert.NotEmpty(t, cfg.Exclude)
	assert.Equal(t, "1", cfg.Version)
}

func TestLoadConfigMissingFileReturnsDefault(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestSaveThenLoadConfigRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".pathway", "project.yaml")
	cfg := &Config{
		Version:    "1",
		Roots:      []string{"src", "lib"},
		StdlibRoot: "/opt/rust/lib",
		Prelude:    []string{"Vec", "Option", "Result"},
		Crates:     map[string]string{"serde": "vendor/serde/lib.rs"},
	}
	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Roots, loaded.Roots)
	assert.Equal(t, cfg.StdlibRoot, loaded.StdlibRoot)
	assert.Equal(t, cfg.Prelude, loaded.Prelude)
	assert.Equal(t, cfg.Crates, loaded.Crates)
	assert.Equal(t, cfg.Version, loaded.Version)
}

func TestLoadConfigFillsInMissingVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "project.yaml")
	require.NoError(t, SaveConfig(&Config{Roots: []string{"."}}, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "1", loaded.Version)
}

func TestDefaultPath(t *testing.T) {
	got := DefaultPath("/home/user/project")
	assert.Equal(t, filepath.Join("/home/user/project", ".pathway", "project.yaml"), got)
}
