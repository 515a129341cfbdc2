package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeTemp(t, "cfg.yaml", `
addr: ":9090"
window_size: 12
server_timezone: "America/New_York"
sources:
  - url: "https://example.com/a.ics"
    id: "work"
  - url: "https://example.com/b.ics"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9090" || cfg.WindowSize != 12 {
		t.Fatalf("explicit values lost: %+v", cfg)
	}
	if cfg.ServerTimezone != "America/New_York" {
		t.Fatalf("timezone lost: %+v", cfg)
	}
	if len(cfg.Sources) != 2 || cfg.Sources[0].ID != "work" {
		t.Fatalf("sources wrong: %+v", cfg.Sources)
	}
	// Second source had no ID; Normalize derives one from position.
	if cfg.Sources[1].ID != "src2" {
		t.Fatalf("derived id wrong: %+v", cfg.Sources[1])
	}
	// Unset fields pick up defaults.
	if cfg.RefreshCron != "*/5 * * * *" || cfg.CacheMaxSize != 100 {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}

func TestLoadJSON(t *testing.T) {
	path := writeTemp(t, "cfg.json", `{
  "addr": ":7070",
  "horizon_days": 14,
  "sources": [{"url": "https://example.com/c.ics", "id": "personal"}]
}`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":7070" || cfg.HorizonDays != 14 {
		t.Fatalf("values lost: %+v", cfg)
	}
	if len(cfg.Sources) != 1 || cfg.Sources[0].ID != "personal" {
		t.Fatalf("sources wrong: %+v", cfg.Sources)
	}
}

func TestLoadTOML(t *testing.T) {
	path := writeTemp(t, "cfg.toml", `
addr = ":6060"
log_level = "debug"

[[sources]]
url = "https://example.com/d.ics"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":6060" || cfg.LogLevel != "debug" {
		t.Fatalf("values lost: %+v", cfg)
	}
	if len(cfg.Sources) != 1 || cfg.Sources[0].ID != "src1" {
		t.Fatalf("sources wrong: %+v", cfg.Sources)
	}
}

func TestLoadRejectsUnknownExtension(t *testing.T) {
	path := writeTemp(t, "cfg.ini", "addr=:1234")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for unsupported extension")
	}
}

func TestLoadRejectsEmptyPathAndMissingFile(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestNormalizeDefaults(t *testing.T) {
	var cfg Config
	cfg.Normalize()
	if cfg.Addr != "127.0.0.1:8080" {
		t.Fatalf("addr default wrong: %q", cfg.Addr)
	}
	if cfg.WindowSize != 8 || cfg.CacheMaxSize != 100 || cfg.HorizonDays != 7 {
		t.Fatalf("numeric defaults wrong: %+v", cfg)
	}
	if cfg.ServerTimezone != "UTC" || cfg.FallbackTimezone != "UTC" {
		t.Fatalf("timezone defaults wrong: %+v", cfg)
	}
	if cfg.SkipFile == "" || cfg.ICSCacheDir == "" {
		t.Fatalf("path defaults missing: %+v", cfg)
	}
	if cfg.Sources == nil {
		t.Fatalf("sources should default to an empty slice")
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("log level default wrong: %q", cfg.LogLevel)
	}
}

func TestNormalizeExpandsHomePaths(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg := Config{SkipFile: "~/skips.json", ICSCacheDir: "~/ics-cache"}
	cfg.Normalize()
	if cfg.SkipFile != filepath.Join(home, "skips.json") {
		t.Fatalf("skip file not expanded: %q", cfg.SkipFile)
	}
	if cfg.ICSCacheDir != filepath.Join(home, "ics-cache") {
		t.Fatalf("ics cache dir not expanded: %q", cfg.ICSCacheDir)
	}
}
