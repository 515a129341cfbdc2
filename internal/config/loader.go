package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"calbotd/internal/common/fsutil"
)

// SourceConfig describes one ICS subscription.
type SourceConfig struct {
	// URL is the ICS subscription endpoint.
	URL string `json:"url" yaml:"url" toml:"url"`
	// ID is an internal identifier used for logging and event tagging.
	ID string `json:"id" yaml:"id" toml:"id"`
	// Name is a human-friendly label.
	Name string `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
}

// Config holds runtime parameters for the daemon.
// Zero values mean "unspecified" and are replaced by Normalize.
type Config struct {
	Addr             string         `json:"addr" yaml:"addr" toml:"addr"`
	ServerTimezone   string         `json:"server_timezone" yaml:"server_timezone" toml:"server_timezone"`
	FallbackTimezone string         `json:"fallback_timezone" yaml:"fallback_timezone" toml:"fallback_timezone"`
	WindowSize       int            `json:"window_size" yaml:"window_size" toml:"window_size"`
	CacheMaxSize     int            `json:"cache_max_size" yaml:"cache_max_size" toml:"cache_max_size"`
	RefreshCron      string         `json:"refresh" yaml:"refresh" toml:"refresh"`
	HorizonDays      int            `json:"horizon_days" yaml:"horizon_days" toml:"horizon_days"`
	SkipFile         string         `json:"skip_file" yaml:"skip_file" toml:"skip_file"`
	ICSCacheDir      string         `json:"ics_cache_dir" yaml:"ics_cache_dir" toml:"ics_cache_dir"`
	Sources          []SourceConfig `json:"sources" yaml:"sources" toml:"sources"`
	LogLevel         string         `json:"log_level" yaml:"log_level" toml:"log_level"`
	CORSEnabled      bool           `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled"`
	CORSOrigins      []string       `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	cfg.Normalize()
	return cfg, nil
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Addr == "" {
		c.Addr = "127.0.0.1:8080"
	}
	if c.ServerTimezone == "" {
		c.ServerTimezone = "UTC"
	}
	if c.FallbackTimezone == "" {
		c.FallbackTimezone = "UTC"
	}
	if c.WindowSize <= 0 {
		c.WindowSize = 8
	}
	if c.CacheMaxSize <= 0 {
		c.CacheMaxSize = 100
	}
	if c.RefreshCron == "" {
		c.RefreshCron = "*/5 * * * *"
	}
	if c.HorizonDays <= 0 {
		c.HorizonDays = 7
	}
	if c.SkipFile == "" {
		c.SkipFile = "./var/skips.json"
	} else if p, err := fsutil.ExpandHome(c.SkipFile); err == nil {
		c.SkipFile = p
	}
	if c.ICSCacheDir == "" {
		c.ICSCacheDir = "./var/ics-cache"
	} else if p, err := fsutil.ExpandHome(c.ICSCacheDir); err == nil {
		c.ICSCacheDir = p
	}
	if c.Sources == nil {
		c.Sources = []SourceConfig{}
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	// Derive source IDs from position when omitted; fetch logging and skip
	// tagging need something stable.
	for i := range c.Sources {
		if c.Sources[i].ID == "" {
			c.Sources[i].ID = fmt.Sprintf("src%d", i+1)
		}
	}
}
