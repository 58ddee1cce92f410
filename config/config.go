// Package config loads the ambient tunables the driver supports beyond
// the one required <source> CLI argument: an optional debug breakpoint,
// color on/off, and internal stage-trace logging.
//
// Layered like the teacher's own -debug/-compile/-run flags: an
// optional YAML file is read first, then command-line flags (wired up
// by the driver in main.go) override whatever the file set.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Color selects whether diagnostics are colorized.
type Color string

const (
	ColorAuto   Color = "auto"
	ColorAlways Color = "always"
	ColorNever  Color = "never"
)

// Config holds the tunables loaded from .evicc.yaml, before any
// command-line flag overrides are applied.
type Config struct {
	Debug bool  `yaml:"debug"`
	Color Color `yaml:"color"`
	Trace bool  `yaml:"trace"`
}

// Default returns the default configuration: no debug breakpoint,
// automatic color detection, no trace log.
func Default() Config {
	return Config{Color: ColorAuto}
}

// Load reads .evicc.yaml from the current directory, falling back to
// $HOME/.evicc.yaml. A missing file is not an error — Load returns the
// default configuration unchanged. A malformed file is.
func Load() (Config, error) {
	cfg := Default()

	path, ok := findConfigFile()
	if !ok {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.Color == "" {
		cfg.Color = ColorAuto
	}
	return cfg, nil
}

func findConfigFile() (string, bool) {
	if _, err := os.Stat(".evicc.yaml"); err == nil {
		return ".evicc.yaml", true
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidate := filepath.Join(home, ".evicc.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
	}
	return "", false
}
