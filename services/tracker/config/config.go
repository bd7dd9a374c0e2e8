// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads the tracker configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the full tracker configuration.
//
// A zero value is not usable; start from Default() and overlay a YAML
// file with Load.
type Config struct {
	// DataDir is the BadgerDB directory. Supports ~ expansion.
	DataDir string `yaml:"data_dir"`

	Server  ServerConfig  `yaml:"server"`
	Share   ShareConfig   `yaml:"share"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string `yaml:"addr"`

	// Debug enables gin debug mode and request logging.
	Debug bool `yaml:"debug"`
}

// ShareConfig configures share-link construction.
type ShareConfig struct {
	// BaseURL is the link prefix carrying the token in its fragment.
	BaseURL string `yaml:"base_url"`

	// MaxLinkLength is the hard ceiling on the full link length.
	MaxLinkLength int `yaml:"max_link_length"`

	// TruncateCount is how many most-recent workouts a truncated
	// share keeps.
	TruncateCount int `yaml:"truncate_count"`
}

// LoggingConfig configures pkg/logging.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`

	// Dir enables file logging when set. Supports ~ expansion.
	Dir string `yaml:"dir"`
}

// Default returns production defaults.
func Default() Config {
	return Config{
		DataDir: "~/.workouttrackr/data",
		Server:  ServerConfig{Addr: ":8080"},
		Share: ShareConfig{
			BaseURL:       "https://workouttrackr.app/",
			MaxLinkLength: 8192,
			TruncateCount: 100,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads a YAML file over the defaults.
//
// Description:
//
//	Starts from Default(), overlays the file at path, expands ~ in
//	directory fields, and validates the result. An empty path returns
//	validated defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	var err error
	if cfg.DataDir, err = ExpandHome(cfg.DataDir); err != nil {
		return cfg, err
	}
	if cfg.Logging.Dir, err = ExpandHome(cfg.Logging.Dir); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return errors.New("data_dir must not be empty")
	}
	if c.Server.Addr == "" {
		return errors.New("server.addr must not be empty")
	}
	if c.Share.MaxLinkLength <= 0 {
		return errors.New("share.max_link_length must be positive")
	}
	if c.Share.TruncateCount <= 0 {
		return errors.New("share.truncate_count must be positive")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug/info/warn/error", c.Logging.Level)
	}
	return nil
}

// ExpandHome expands a leading ~ to the user's home directory.
func ExpandHome(path string) (string, error) {
	if path == "" || !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~/")), nil
}
