package main

import (
	"errors"
	"fmt"
	"image/color"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"

	termframe "github.com/danielgatis/go-termframe"
)

// Config holds defaults read from the TOML config file.
type Config struct {
	Layers     []string `toml:"layers"`
	Compact    bool     `toml:"compact"`
	CarryStyle bool     `toml:"carry_style"`
	Indent     bool     `toml:"indent"`

	// Colors overrides palette entries: index -> "#rrggbb".
	Colors map[string]string `toml:"colors"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Layers: []string{"text", "cursor"},
	}
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/termframe/config.toml (or the
// platform equivalent), or "" if no config directory is known.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "termframe", "config.toml")
}

// LoadConfig reads path over the defaults. A missing file is only an error
// when the path was given explicitly.
func LoadConfig(path string, explicit bool) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); !explicit && errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// ColorTable returns DefaultPalette with the configured overrides applied,
// or nil when there are none.
func (c Config) ColorTable() (*[256]color.RGBA, error) {
	if len(c.Colors) == 0 {
		return nil, nil
	}
	table := termframe.DefaultPalette
	for key, hex := range c.Colors {
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 || idx > 255 {
			return nil, fmt.Errorf("colors: invalid index %q", key)
		}
		var col termframe.Color
		if err := col.UnmarshalJSON([]byte(strconv.Quote(hex))); err != nil || col.Kind != termframe.ColorRGB {
			return nil, fmt.Errorf("colors: invalid value %q for index %d", hex, idx)
		}
		table[idx] = col.RGB
	}
	return &table, nil
}
