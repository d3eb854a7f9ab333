// Package config provides configuration loading and defaults for the title
// card engine.
//
// Configuration is read from a TOML file. Missing keys keep the values from
// DefaultConfig, and a missing file yields DefaultConfig unchanged.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// ///////////////////////////////////////////////
// Configuration Types
// ///////////////////////////////////////////////

// Config represents the top-level configuration.
type Config struct {
	// Rasterizer selects and tunes the drawing backend.
	Rasterizer RasterizerConfig `toml:"rasterizer"`
	// Render holds batch rendering settings.
	Render RenderConfig `toml:"render"`
	// Archive holds the rendered card index settings.
	Archive ArchiveConfig `toml:"archive"`
	// Log holds logging settings.
	Log LogConfig `toml:"log"`
	// Server holds HTTP API settings.
	Server ServerConfig `toml:"server"`
}

// RasterizerConfig holds drawing backend settings.
type RasterizerConfig struct {
	// Backend is "magick" (external ImageMagick) or "draft" (in-process).
	Backend string `toml:"backend"`
	// Binary is the ImageMagick executable.
	Binary string `toml:"binary"`
	// TimeoutSeconds bounds every render and measure call.
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// RenderConfig holds batch rendering settings.
type RenderConfig struct {
	// Workers is the number of cards rendered concurrently.
	Workers int `toml:"workers"`
	// ScratchDir holds intermediate files. Empty means the system temp dir.
	ScratchDir string `toml:"scratch_dir"`
	// Seed drives placement randomness.
	Seed int64 `toml:"seed"`
	// MaxRetries is how often queued jobs retry cards that failed to render.
	MaxRetries int `toml:"max_retries"`
}

// ArchiveConfig holds rendered card index settings.
type ArchiveConfig struct {
	// Path is the JSON index file. Empty disables the archive.
	Path string `toml:"path"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is the minimum log level (trace, debug, info, warn, error).
	Level string `toml:"level"`
	// File is the log file path. Empty logs to stderr.
	File string `toml:"file"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation.
	MaxSizeMB int `toml:"max_size_mb"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	// Addr is the listen address.
	Addr string `toml:"addr"`
}

// Timeout returns the rasterizer call timeout
func (r RasterizerConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutSeconds) * time.Second
}

// ///////////////////////////////////////////////
// Default Configuration
// ///////////////////////////////////////////////

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Rasterizer: RasterizerConfig{
			Backend:        "magick",
			Binary:         "magick",
			TimeoutSeconds: 60,
		},
		Render: RenderConfig{
			Workers:    4,
			ScratchDir: "",
			Seed:       1,
			MaxRetries: 2,
		},
		Archive: ArchiveConfig{
			Path: "",
		},
		Log: LogConfig{
			Level:     "info",
			File:      "",
			MaxSizeMB: 10,
		},
		Server: ServerConfig{
			Addr: ":12212",
		},
	}
}

// ///////////////////////////////////////////////
// Loading and Saving
// ///////////////////////////////////////////////

// Load reads and parses the configuration file at path.
// If the file doesn't exist, returns DefaultConfig.
func Load(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes TOML over DefaultConfig and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("parse config: unknown key %q", undecoded[0].String())
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Save writes the config to disk as TOML.
func (c *Config) Save(path string) error {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// ///////////////////////////////////////////////
// Validation
// ///////////////////////////////////////////////

// validLogLevels is the set of accepted log level strings.
var validLogLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "error": true,
}

// Validate checks that all configuration values are within acceptable ranges.
func (c *Config) Validate() error {
	switch c.Rasterizer.Backend {
	case "magick", "draft":
	default:
		return fmt.Errorf("invalid rasterizer.backend %q: must be magick or draft", c.Rasterizer.Backend)
	}

	if c.Rasterizer.Backend == "magick" && strings.TrimSpace(c.Rasterizer.Binary) == "" {
		return fmt.Errorf("rasterizer.binary is required for the magick backend")
	}

	if c.Rasterizer.TimeoutSeconds <= 0 {
		return fmt.Errorf("rasterizer.timeout_seconds must be > 0, got %d", c.Rasterizer.TimeoutSeconds)
	}

	if c.Render.Workers <= 0 {
		return fmt.Errorf("render.workers must be > 0, got %d", c.Render.Workers)
	}

	if c.Render.MaxRetries < 0 {
		return fmt.Errorf("render.max_retries must be >= 0, got %d", c.Render.MaxRetries)
	}

	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("invalid log.level %q: must be trace, debug, info, warn, or error", c.Log.Level)
	}

	if c.Log.MaxSizeMB <= 0 {
		return fmt.Errorf("log.max_size_mb must be > 0, got %d", c.Log.MaxSizeMB)
	}

	if strings.TrimSpace(c.Server.Addr) == "" {
		return fmt.Errorf("server.addr is required")
	}

	return nil
}
