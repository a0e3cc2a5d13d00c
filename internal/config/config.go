// Package config handles configuration loading from TOML files and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"

	"github.com/xonecas/splitview/internal/resize"
)

// Config is the root configuration structure.
type Config struct {
	Panel   PanelConfig   `toml:"panel"`
	UI      UIConfig      `toml:"ui"`
	Log     LogConfig     `toml:"log"`
	Journal JournalConfig `toml:"journal"`
}

// PanelConfig holds the split panel's initial options.
type PanelConfig struct {
	ID          string `toml:"id"`
	Orientation string `toml:"orientation"`
	Reverse     bool   `toml:"reverse"`
	NoWrap      bool   `toml:"no_wrap"`
}

// OrientationValue parses Orientation. Validate has already rejected bad
// values, so the error is dropped.
func (p PanelConfig) OrientationValue() resize.Orientation {
	o, _ := resize.ParseOrientation(p.Orientation)
	return o
}

// IDOrDefault returns the panel id, "main" if unset. The journal keys
// records by it.
func (p PanelConfig) IDOrDefault() string {
	if p.ID == "" {
		return "main"
	}
	return p.ID
}

// UIConfig holds user-interface settings.
type UIConfig struct {
	// SyntaxTheme is the Chroma syntax highlighting theme used for the
	// preview pane and the UI chrome. Defaults to "vulcan" if unset.
	SyntaxTheme string `toml:"syntax_theme"`
}

// SyntaxThemeOrDefault returns the configured syntax theme or "vulcan" if unset.
func (u UIConfig) SyntaxThemeOrDefault() string {
	if u.SyntaxTheme == "" {
		return "vulcan"
	}
	return u.SyntaxTheme
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// JournalConfig holds the resize journal settings.
type JournalConfig struct {
	// Path of the SQLite database. Empty means <data dir>/journal.db.
	Path     string `toml:"path"`
	Disabled bool   `toml:"disabled"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "info"},
	}
}

// Load reads configuration from a TOML file and applies environment variable
// overrides. A missing file yields the defaults; an empty path means
// <data dir>/config.toml.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		dir, err := DataDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, "config.toml")
	}

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("stat config: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate returns an error if the configuration is invalid.
func (c *Config) Validate() error {
	var errs []error

	if _, err := resize.ParseOrientation(c.Panel.Orientation); err != nil {
		errs = append(errs, fmt.Errorf("panel.orientation: %w", err))
	}

	if c.Log.Level != "" {
		if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
			errs = append(errs, fmt.Errorf("log.level=%q is invalid: %v", c.Log.Level, err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	for _, setter := range []struct {
		env   string
		apply func(string)
	}{
		{"SPLITVIEW_LOG_LEVEL", func(v string) {
			if v != "" {
				cfg.Log.Level = v
			}
		}},
		{"SPLITVIEW_LOG_FILE", func(v string) {
			if v != "" {
				cfg.Log.File = v
			}
		}},
		{"SPLITVIEW_JOURNAL", func(v string) {
			if v != "" {
				cfg.Journal.Path = v
			}
		}},
		{"SPLITVIEW_THEME", func(v string) {
			if v != "" {
				cfg.UI.SyntaxTheme = v
			}
		}},
	} {
		setter.apply(os.Getenv(setter.env))
	}
}

// DataDir returns the path to the splitview data directory (~/.config/splitview).
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "splitview"), nil
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", err
	}
	return dir, nil
}
