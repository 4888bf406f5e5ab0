// Package config loads yrx.toml, the optional per-project settings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// FileName is searched for from the working directory upwards.
const FileName = "yrx.toml"

type Config struct {
	// Path is the file the config came from; empty for defaults.
	Path string `toml:"-"`

	Compiler CompilerConfig `toml:"compiler"`
	Globals  map[string]any `toml:"globals"`
	Scan     ScanConfig     `toml:"scan"`
	Log      LogConfig      `toml:"log"`
}

type CompilerConfig struct {
	// ColorizeErrors applies with --color auto; off keeps reports plain on a TTY.
	ColorizeErrors bool `toml:"colorize_errors"`
	MaxDiagnostics int  `toml:"max_diagnostics"`
	Relaxed        bool `toml:"relaxed"`
}

type ScanConfig struct {
	Jobs         int    `toml:"jobs"`
	TimeoutMS    int64  `toml:"timeout_ms"`
	PrintTags    bool   `toml:"print_tags"`
	PrintMeta    bool   `toml:"print_meta"`
	OutputFormat string `toml:"output_format"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

// Default is the configuration used when no file is found.
func Default() Config {
	return Config{
		Compiler: CompilerConfig{ColorizeErrors: true, MaxDiagnostics: 32},
		Scan:     ScanConfig{OutputFormat: "text"},
	}
}

// Timeout is the per-file scan limit; zero means none.
func (s ScanConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutMS) * time.Millisecond
}

// Find walks from startDir to the filesystem root looking for FileName.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load reads the file at path over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	cfg.Path = path
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Discover loads the nearest yrx.toml above startDir, or the defaults when
// there is none.
func Discover(startDir string) (Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

func (c *Config) validate() error {
	switch c.Scan.OutputFormat {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("scan.output_format must be text, json or yaml, got %q", c.Scan.OutputFormat)
	}
	if c.Scan.Jobs < 0 {
		return fmt.Errorf("scan.jobs must not be negative")
	}
	if c.Scan.TimeoutMS < 0 {
		return fmt.Errorf("scan.timeout_ms must not be negative")
	}
	for name, v := range c.Globals {
		switch v.(type) {
		case bool, int64, float64, string:
		default:
			return fmt.Errorf("globals.%s: unsupported value of type %T", name, v)
		}
	}
	return nil
}
