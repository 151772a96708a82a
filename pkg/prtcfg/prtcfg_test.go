package prtcfg

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/txn2/parrot/pkg/prtreducer"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.APIPort != DefaultAPIPort {
		t.Errorf("Expected api port %d, got %d", DefaultAPIPort, cfg.APIPort)
	}
	if cfg.TickInterval != 100*time.Millisecond || cfg.BlinkInterval != 500*time.Millisecond {
		t.Errorf("Unexpected intervals %v %v", cfg.TickInterval, cfg.BlinkInterval)
	}
	if cfg.DedupMode() != prtreducer.DedupFull {
		t.Errorf("Expected full dedup, got %v", cfg.DedupMode())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected defaults to validate, got %v", err)
	}
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LogPrefix != DefaultLogPrefix {
		t.Errorf("Expected default prefix, got %q", cfg.LogPrefix)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestLoad_LegacyJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{
  "log_file": "/var/log/pi-star/MMDVM-2024-04-04.log",
  "host": "0.0.0.0",
  "api_port": 8001,
  "web_port": 8081,
  "debug": "True",
  "callsign": "M0ABC"
}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Callsign != "M0ABC" {
		t.Errorf("Expected callsign M0ABC, got %q", cfg.Callsign)
	}
	if cfg.APIPort != 8001 || cfg.WebPort != 8081 {
		t.Errorf("Unexpected ports %d %d", cfg.APIPort, cfg.WebPort)
	}
	if !cfg.Debug {
		t.Error("Expected debug true from string \"True\"")
	}
	if cfg.PrimaryLog() != "/var/log/pi-star/MMDVM-2024-04-04.log" {
		t.Errorf("Unexpected primary log %q", cfg.PrimaryLog())
	}
	// Unset keys keep defaults
	if cfg.TickInterval != DefaultTickInterval {
		t.Errorf("Expected default tick, got %v", cfg.TickInterval)
	}
}

func TestLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parrot.yaml")
	content := `
callsign: G4KLX
server_url: http://repeater.local:8000
tick_interval: 50ms
blink_interval: 250
dedup: ignore-timestamp
history_limit: 500
theme: dark
debug: false
cors_origins:
  - http://repeater.local:8080
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.TickInterval != 50*time.Millisecond {
		t.Errorf("Expected 50ms tick, got %v", cfg.TickInterval)
	}
	if cfg.BlinkInterval != 250*time.Millisecond {
		t.Errorf("Expected bare number as ms, got %v", cfg.BlinkInterval)
	}
	if cfg.DedupMode() != prtreducer.DedupIgnoreTimestamp {
		t.Errorf("Expected ignore-timestamp dedup, got %v", cfg.DedupMode())
	}
	if cfg.HistoryLimit != 500 || cfg.Theme != "dark" || cfg.Debug {
		t.Errorf("Unexpected config %+v", cfg)
	}
	if len(cfg.CORSOrigins) != 1 {
		t.Errorf("Expected 1 cors origin, got %v", cfg.CORSOrigins)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Unexpected validation error %v", err)
	}
}

func TestLoad_BadValues(t *testing.T) {
	tests := []string{
		"tick_interval: soon",
		"debug: maybe",
		"api_port: [1, 2]",
	}
	for _, content := range tests {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); err == nil {
			t.Errorf("Expected error for %q", content)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"api port", func(c *Config) { c.APIPort = 70000 }},
		{"web port", func(c *Config) { c.WebPort = -1 }},
		{"tick", func(c *Config) { c.TickInterval = -time.Second }},
		{"history", func(c *Config) { c.HistoryLimit = -1 }},
		{"dedup", func(c *Config) { c.Dedup = "sometimes" }},
		{"theme", func(c *Config) { c.Theme = "purple" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestParseHelpers(t *testing.T) {
	if d, _ := ParseDuration(""); d != 0 {
		t.Errorf("Expected 0 for empty duration, got %v", d)
	}
	if d, _ := ParseDuration("2s"); d != 2*time.Second {
		t.Errorf("Expected 2s, got %v", d)
	}
	for _, s := range []string{"True", "true", "YES", "1"} {
		if b, err := ParseBool(s); err != nil || !b {
			t.Errorf("ParseBool(%q) = %v, %v", s, b, err)
		}
	}
	for _, s := range []string{"False", "no", "0", ""} {
		if b, err := ParseBool(s); err != nil || b {
			t.Errorf("ParseBool(%q) = %v, %v", s, b, err)
		}
	}
}

func TestResolveDir(t *testing.T) {
	cfg := Default()
	if cfg.ResolveDir() != DefaultLogDir {
		t.Errorf("Expected default dir, got %s", cfg.ResolveDir())
	}

	cfg.LogDir = ""
	cfg.LogFile = "/tmp/logs/MMDVM-2024-04-04.log"
	if cfg.ResolveDir() != "/tmp/logs" {
		t.Errorf("Expected dir of log file, got %s", cfg.ResolveDir())
	}

	cfg.LogFile = ""
	if cfg.ResolveDir() != DefaultLogDir {
		t.Errorf("Expected fallback dir, got %s", cfg.ResolveDir())
	}
}
