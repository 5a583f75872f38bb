// Configuration of the xevmon event monitor.
package config

import (
	"os"
	"strconv"

	"github.com/jmigpin/xevents/util/logutil"
	"github.com/pkg/errors"
)

type Config struct {
	Display  string         `toml:"display" yaml:"display" json:"display"`
	Log      LogConfig      `toml:"log" yaml:"log" json:"log"`
	Ime      ImeConfig      `toml:"ime" yaml:"ime" json:"ime"`
	Geometry GeometryConfig `toml:"geometry" yaml:"geometry" json:"geometry"`
	Inbox    InboxConfig    `toml:"inbox" yaml:"inbox" json:"inbox"`
	Trace    TraceConfig    `toml:"trace" yaml:"trace" json:"trace"`
	UI       UIConfig       `toml:"ui" yaml:"ui" json:"ui"`
}

type LogConfig struct {
	Level  string `toml:"level" yaml:"level" json:"level"`
	Format string `toml:"format" yaml:"format" json:"format"`
	File   string `toml:"file" yaml:"file" json:"file"`
}

type ImeConfig struct {
	Enabled bool   `toml:"enabled" yaml:"enabled" json:"enabled"`
	Backend string `toml:"backend" yaml:"backend" json:"backend"` // "ibus" or "none"
}

type GeometryConfig struct {
	// Overrides the monitor scale factor when > 0.
	ScaleFactor float64 `toml:"scale_factor" yaml:"scale_factor" json:"scale_factor"`
	// Window managers that ignore resize requests during live interaction.
	ResizeRetryWMs []string `toml:"resize_retry_wms" yaml:"resize_retry_wms" json:"resize_retry_wms"`
}

type InboxConfig struct {
	ImeRequests int `toml:"ime_requests" yaml:"ime_requests" json:"ime_requests"`
}

type TraceConfig struct {
	Path string `toml:"path" yaml:"path" json:"path"` // empty: no recording
}

type UIConfig struct {
	TUI bool `toml:"tui" yaml:"tui" json:"tui"`
}

func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{Level: "info", Format: "text"},
		Ime: ImeConfig{Enabled: true, Backend: "ibus"},
		Geometry: GeometryConfig{
			ResizeRetryWMs: []string{"Xfwm4"},
		},
		Inbox: InboxConfig{ImeRequests: 32},
	}
}

//----------

const (
	EnvDisplay     = "XEVMON_DISPLAY"
	EnvLogLevel    = "XEVMON_LOG_LEVEL"
	EnvScaleFactor = "XEVMON_SCALE_FACTOR"
)

// Environment variables take precedence over the file.
func (c *Config) ApplyEnvOverrides() error {
	if v := os.Getenv(EnvDisplay); v != "" {
		c.Display = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(EnvScaleFactor); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return errors.Wrap(err, EnvScaleFactor)
		}
		c.Geometry.ScaleFactor = f
	}
	return nil
}

func (c *Config) Validate() error {
	if _, err := logutil.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if _, err := logutil.ParseFormat(c.Log.Format); err != nil {
		return err
	}
	switch c.Ime.Backend {
	case "", "none", "ibus":
	default:
		return errors.Errorf("unknown ime backend: %q", c.Ime.Backend)
	}
	if c.Geometry.ScaleFactor < 0 {
		return errors.Errorf("negative scale factor: %v", c.Geometry.ScaleFactor)
	}
	if c.Inbox.ImeRequests < 1 {
		return errors.Errorf("ime requests inbox must hold at least 1 request: %v", c.Inbox.ImeRequests)
	}
	return nil
}

// Logger configuration. Assumes a validated config.
func (c *Config) LogConfig() logutil.Config {
	level, _ := logutil.ParseLevel(c.Log.Level)
	format, _ := logutil.ParseFormat(c.Log.Format)
	return logutil.Config{Level: level, Format: format, File: c.Log.File}
}

func (c *Config) ImeEnabled() bool {
	return c.Ime.Enabled && c.Ime.Backend != "" && c.Ime.Backend != "none"
}
