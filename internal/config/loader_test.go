package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoader_Defaults(t *testing.T) {
	cfg, err := NewLoader().Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Log.Level != "info" || cfg.Log.Format != "auto" {
		t.Errorf("log defaults = %s/%s", cfg.Log.Level, cfg.Log.Format)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 8843 {
		t.Errorf("server defaults = %s:%d", cfg.Server.Host, cfg.Server.Port)
	}
	if len(cfg.Server.CORSOrigins) != 1 || cfg.Server.CORSOrigins[0] != "*" {
		t.Errorf("cors defaults = %v", cfg.Server.CORSOrigins)
	}
	if !strings.HasSuffix(cfg.Store.Dir, filepath.Join(".claude", "workflows")) {
		t.Errorf("store dir default = %q", cfg.Store.Dir)
	}
	if !cfg.Store.Watch || !cfg.Store.SeedExamples {
		t.Errorf("store toggles = watch:%v seed:%v", cfg.Store.Watch, cfg.Store.SeedExamples)
	}
	if cfg.Export.Root == "" {
		t.Error("export root default empty")
	}
	if cfg.Agents.Catalog != "" {
		t.Errorf("agents catalog default = %q", cfg.Agents.Catalog)
	}
	if !cfg.History.Enabled || cfg.History.Path != "" {
		t.Errorf("history defaults = enabled:%v path:%q", cfg.History.Enabled, cfg.History.Path)
	}
}

func TestLoader_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "baton.yaml")
	content := `
log:
  level: debug
  format: json
server:
  port: 9999
store:
  dir: /tmp/flows
  watch: false
history:
  enabled: false
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	l := NewLoader().WithConfigFile(path)
	cfg, err := l.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("log = %s/%s", cfg.Log.Level, cfg.Log.Format)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("unset keys should keep defaults, host = %q", cfg.Server.Host)
	}
	if cfg.Store.Dir != "/tmp/flows" || cfg.Store.Watch {
		t.Errorf("store = %+v", cfg.Store)
	}
	if cfg.History.Enabled {
		t.Error("history should be disabled")
	}
	if l.ConfigFile() != path {
		t.Errorf("ConfigFile = %q, want %q", l.ConfigFile(), path)
	}
}

func TestLoader_EnvOverride(t *testing.T) {
	t.Setenv("BATON_SERVER_PORT", "9001")
	t.Setenv("BATON_LOG_LEVEL", "warn")
	t.Setenv("BATON_STORE_WATCH", "false")

	cfg, err := NewLoader().Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 9001 {
		t.Errorf("port = %d, want 9001", cfg.Server.Port)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("level = %q, want warn", cfg.Log.Level)
	}
	if cfg.Store.Watch {
		t.Error("watch should be disabled via env")
	}
}

func TestLoader_EnvBeatsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "baton.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 9999\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BATON_SERVER_PORT", "9001")

	cfg, err := NewLoader().WithConfigFile(path).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 9001 {
		t.Errorf("port = %d, env should beat file", cfg.Server.Port)
	}
}

func TestLoader_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "baton.yaml")
	if err := os.WriteFile(path, []byte("server: [not a map\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewLoader().WithConfigFile(path).Load(); err == nil {
		t.Error("expected error for malformed config file")
	}
}

func TestLoader_RedactPatterns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "baton.yaml")
	content := `
log:
  redact_patterns:
    - "corp-[0-9]{6}"
    - "internal-token-[a-z]+"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewLoader().WithConfigFile(path).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(cfg.Log.RedactPatterns) != 2 || cfg.Log.RedactPatterns[0] != "corp-[0-9]{6}" {
		t.Errorf("redact patterns = %v", cfg.Log.RedactPatterns)
	}
}
