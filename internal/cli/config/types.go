// Package config loads CLI configuration from defaults, an optional
// sqlsheet.yaml, environment variables, and flags, in that order of
// increasing precedence.
package config

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/sqlsheet/internal/adapter"
	"github.com/leapstack-labs/sqlsheet/internal/render"
)

// TargetConfig holds database connection settings.
type TargetConfig struct {
	Driver   string `koanf:"driver"` // sqlite, duckdb, postgres
	DSN      string `koanf:"dsn"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
}

// Config holds all CLI configuration options.
type Config struct {
	Format       string `koanf:"format"` // text, csv, html, xls
	Output       string `koanf:"output"` // file path; empty means stdout
	Title        string `koanf:"title"`
	CSSFile      string `koanf:"css_file"`
	Headings     bool   `koanf:"headings"`
	Append       bool   `koanf:"append"`
	IncrementTab bool   `koanf:"increment_tab"`
	Tabs         string `koanf:"tabs"`
	Sheet        string `koanf:"sheet"`
	ResultsOnly  bool   `koanf:"results_only"`
	Quiet        bool   `koanf:"quiet"`
	Verbose      bool   `koanf:"verbose"`

	Target TargetConfig `koanf:"target"`
}

// Validate checks the configuration for problems that should stop startup.
func (c *Config) Validate() error {
	if _, err := render.ParseFormat(c.Format); err != nil {
		return err
	}

	if c.Target.Driver == "" {
		return fmt.Errorf("target driver is required")
	}
	if !adapter.IsRegistered(strings.ToLower(c.Target.Driver)) {
		return &adapter.UnknownDriverError{
			Driver:    c.Target.Driver,
			Available: adapter.List(),
		}
	}

	f, _ := render.ParseFormat(c.Format)
	if f == render.FormatXLS && c.Output == "" {
		return fmt.Errorf("xls format requires an output file")
	}
	if c.Append && f != render.FormatXLS {
		return fmt.Errorf("append mode is only supported for xls output")
	}
	return nil
}
