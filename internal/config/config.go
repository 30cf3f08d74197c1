// Package config loads the catcomp project configuration: catcomp.toml, found by
// walking up from the working directory, overridden by the environment (and an
// optional .env file).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// FileName is the project configuration file looked up by FindAndLoad.
const FileName = "catcomp.toml"

type Config struct {
	Build BuildConfig `toml:"build"`
	Check CheckConfig `toml:"check"`
}

type BuildConfig struct {
	// OutDir is the root for relative target paths.
	OutDir string `toml:"outdir"`
	// Fallback is the policy for incomplete entries: "none" or "base".
	Fallback string `toml:"fallback"`
}

type CheckConfig struct {
	// Src lists Go source paths scanned for identifier references.
	Src []string `toml:"src"`
	// Exclude lists directory names skipped while scanning.
	Exclude []string `toml:"exclude"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Build: BuildConfig{OutDir: ".", Fallback: "none"},
		Check: CheckConfig{Exclude: []string{"vendor"}},
	}
}

// FindAndLoad looks for catcomp.toml from startDir upwards, applies environment
// overrides and validates the result. The returned path is empty when no file
// was found.
func FindAndLoad(startDir string) (*Config, string, error) {
	path := FindConfigFile(startDir)
	cfg := DefaultConfig()
	if path != "" {
		loaded, err := Load(path)
		if err != nil {
			return nil, "", err
		}
		cfg = loaded
	}
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, "", fmt.Errorf("config: .env: %w", err)
	}
	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// FindConfigFile returns the nearest catcomp.toml at or above startDir.
func FindConfigFile(startDir string) string {
	dir := startDir
	for {
		p := filepath.Join(dir, FileName)
		if _, err := os.Stat(p); err == nil {
			return p
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// Load decodes a configuration file; unset keys keep their defaults. Relative
// paths are resolved against the file's directory.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	base := filepath.Dir(path)
	if cfg.Build.OutDir != "" && !filepath.IsAbs(cfg.Build.OutDir) {
		cfg.Build.OutDir = filepath.Join(base, cfg.Build.OutDir)
	}
	for i, src := range cfg.Check.Src {
		if !filepath.IsAbs(src) {
			cfg.Check.Src[i] = filepath.Join(base, src)
		}
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("CATCOMP_OUTDIR")); v != "" {
		c.Build.OutDir = v
	}
	if v := strings.TrimSpace(os.Getenv("CATCOMP_FALLBACK")); v != "" {
		c.Build.Fallback = v
	}
}

func (c *Config) validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Build.Fallback)) {
	case "", "none", "base":
	default:
		return fmt.Errorf("config: build.fallback must be \"none\" or \"base\", got %q", c.Build.Fallback)
	}
	if strings.TrimSpace(c.Build.OutDir) == "" {
		c.Build.OutDir = "."
	}
	return nil
}
