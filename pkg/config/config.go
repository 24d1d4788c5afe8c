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

// Package config holds pathway's project configuration: the search roots,
// standard-library location, implicit prelude, and external crate registry
// the name resolver's World is built from.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	defaultConfigDir  = ".pathway"
	defaultConfigFile = "project.yaml"
	configVersion     = "1"
)

// Config is the .pathway/project.yaml configuration file.
type Config struct {
	Version string `yaml:"version"`

	// Roots are the directories walked for source files (the `warm`
	// subcommand's input and the engine's module-discovery boundary).
	Roots []string `yaml:"roots"`

	// StdlibRoot is an extra directory walked for source files alongside
	// Roots, if set; its declarations are indexed like any root's. Empty
	// adds nothing.
	StdlibRoot string `yaml:"stdlib_root,omitempty"`

	// Prelude lists extra always-in-scope item names beyond what
	// StdlibRoot contributes (Open Question (a): resolved by making the
	// prelude explicit, caller-supplied configuration rather than a
	// hardcoded list).
	Prelude []string `yaml:"prelude,omitempty"`

	// Crates maps an external crate name to its root file, for resolving
	// global paths ("::serde::Deserialize") and extern-crate references
	// (Open Question (b): resolved the same way, via explicit registration
	// rather than a package-manager integration).
	Crates map[string]string `yaml:"crates,omitempty"`

	// Exclude lists glob patterns skipped during `warm`'s directory walk.
	Exclude []string `yaml:"exclude,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults for a project
// rooted at the current directory.
func DefaultConfig() *Config {
	return &Config{
		Version: configVersion,
		Roots:   []string{"."},
		Exclude: []string{
			".git/**",
			"target/**",
			"**/*.rs.bk",
		},
	}
}

// LoadConfig loads configuration from configPath, or from
// "<cwd>/.pathway/project.yaml" if configPath is empty.
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("config: resolve working directory: %w", err)
		}
		configPath = filepath.Join(cwd, defaultConfigDir, defaultConfigFile)
	}

	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", configPath, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", configPath, err)
	}
	if cfg.Version == "" {
		cfg.Version = configVersion
	}
	return cfg, nil
}

// SaveConfig writes cfg to configPath as YAML, creating its parent
// directory if needed.
func SaveConfig(cfg *Config, configPath string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", configPath, err)
	}
	return nil
}

// DefaultPath returns the conventional config path under dir (typically
// the current working directory).
func DefaultPath(dir string) string {
	return filepath.Join(dir, defaultConfigDir, defaultConfigFile)
}
