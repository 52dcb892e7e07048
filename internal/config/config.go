// SPDX-License-Identifier: MPL-2.0

// Package config handles yard's environment-driven settings using Viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"
)

const (
	// AppName is the application name, used for cache directory layout.
	AppName = "yard"

	// EnvPrefix is the prefix for all yard environment variables
	// (YARD_DEBUG, YARD_CACHE_DIR, YARD_GIT).
	EnvPrefix = "YARD"
)

// Config holds the settings the build pipeline consumes.
type Config struct {
	// CacheDir overrides the platform cache root when set.
	CacheDir string
	// GitBinary is the external git executable to shell out to.
	GitBinary string
	// Debug enables verbose diagnostic tracing and full error chains.
	Debug bool
}

// Load reads settings from the environment. There is no config file: yard is
// driven entirely by the spec document, so only operational knobs live here.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault("cache_dir", "")
	v.SetDefault("git", "git")
	v.SetDefault("debug", false)

	cfg := &Config{
		CacheDir:  v.GetString("cache_dir"),
		GitBinary: v.GetString("git"),
		Debug:     v.GetBool("debug"),
	}

	if cfg.CacheDir == "" {
		dir, err := CacheDir()
		if err != nil {
			return nil, err
		}
		cfg.CacheDir = dir
	}

	return cfg, nil
}

// CacheDir returns the yard cache root using platform-specific conventions:
// Windows uses %LOCALAPPDATA%, macOS uses ~/Library/Caches, and Linux/others
// use $XDG_CACHE_HOME (defaulting to ~/.cache).
func CacheDir() (string, error) {
	var cacheDir string

	switch runtime.GOOS {
	case "windows":
		cacheDir = os.Getenv("LOCALAPPDATA")
		if cacheDir == "" {
			cacheDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Local")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		cacheDir = filepath.Join(home, "Library", "Caches")
	default: // Linux and others
		cacheDir = os.Getenv("XDG_CACHE_HOME")
		if cacheDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			cacheDir = filepath.Join(home, ".cache")
		}
	}

	return filepath.Join(cacheDir, AppName), nil
}
