// Package config loads badgeforge configuration from TOML files.
//
// Every value has a default matching the standard badge sheet format
// (A4 portrait, 10mm margins, 40mm QR codes), so a config file is only
// needed to override specifics. Example:
//
//	[badge]
//	max_name_length = 30
//
//	[output]
//	directory = "out"
//	delegations = "delegation_badges.pdf"
package config

import (
	"os"

	"github.com/BurntSushi/toml"

	"badgeforge/pkg/errors"
	"badgeforge/pkg/layout"
)

// Page configures the page dimensions in millimeters.
type Page struct {
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
	Margin float64 `toml:"margin"`
}

// Badge configures the badge footprint and label behavior.
type Badge struct {
	QRSize        float64 `toml:"qr_size"`         // mm
	LabelHeight   float64 `toml:"label_height"`    // mm
	FooterHeight  float64 `toml:"footer_height"`   // mm reserved per page
	MaxNameLength int     `toml:"max_name_length"` // label truncation bound
}

// Output configures where the two PDF files are written.
type Output struct {
	Directory        string `toml:"directory"`
	PrivateDelegates string `toml:"private_delegates"`
	Delegations      string `toml:"delegations"`
}

// CacheSettings configures the QR raster cache.
type CacheSettings struct {
	Enabled  bool   `toml:"enabled"`
	Dir      string `toml:"dir"`       // empty: per-user cache directory
	RedisURL string `toml:"redis_url"` // non-empty: use Redis instead of files
}

// Mongo configures the optional MongoDB roster source.
type Mongo struct {
	URI                    string `toml:"uri"`
	Database               string `toml:"database"`
	EntitiesCollection     string `toml:"entities_collection"`
	ParticipantsCollection string `toml:"participants_collection"`
}

// Config is the complete badgeforge configuration.
type Config struct {
	Page   Page          `toml:"page"`
	Badge  Badge         `toml:"badge"`
	Output Output        `toml:"output"`
	Cache  CacheSettings `toml:"cache"`
	Mongo  Mongo         `toml:"mongo"`
}

// Default returns the configuration for the standard badge sheet format.
func Default() Config {
	return Config{
		Page: Page{
			Width:  layout.DefaultConfig.PageWidth,
			Height: layout.DefaultConfig.PageHeight,
			Margin: layout.DefaultConfig.Margin,
		},
		Badge: Badge{
			QRSize:        layout.DefaultConfig.QRSize,
			LabelHeight:   layout.DefaultConfig.LabelHeight,
			FooterHeight:  layout.DefaultConfig.FooterHeight,
			MaxNameLength: 25,
		},
		Output: Output{
			Directory:        ".",
			PrivateDelegates: "badges_private_delegates.pdf",
			Delegations:      "badges_delegations.pdf",
		},
		Cache: CacheSettings{Enabled: true},
	}
}

// Load reads a TOML file on top of the defaults. An empty path returns
// the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeIO, err, "read config %s", path)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects configurations that cannot produce a sheet at all.
// A badge larger than the usable area is allowed (it renders empty pages
// per participant); zero or negative dimensions are not.
func (c Config) Validate() error {
	switch {
	case c.Page.Width <= 0 || c.Page.Height <= 0:
		return errors.New(errors.ErrCodeInvalidConfig, "page dimensions must be positive")
	case c.Page.Margin < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "margin must not be negative")
	case c.Badge.QRSize <= 0:
		return errors.New(errors.ErrCodeInvalidConfig, "qr_size must be positive")
	case c.Badge.LabelHeight < 0 || c.Badge.FooterHeight < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "label_height and footer_height must not be negative")
	case c.Badge.MaxNameLength < 4:
		// Truncation emits name[:N-3] + "...", so N must fit the marker.
		return errors.New(errors.ErrCodeInvalidConfig, "max_name_length must be at least 4")
	case c.Output.PrivateDelegates == "" || c.Output.Delegations == "":
		return errors.New(errors.ErrCodeInvalidConfig, "output file names must not be empty")
	}
	return nil
}

// Layout converts the page and badge settings into a layout config.
func (c Config) Layout() layout.Config {
	return layout.Config{
		PageWidth:    c.Page.Width,
		PageHeight:   c.Page.Height,
		Margin:       c.Page.Margin,
		QRSize:       c.Badge.QRSize,
		LabelHeight:  c.Badge.LabelHeight,
		FooterHeight: c.Badge.FooterHeight,
	}
}
