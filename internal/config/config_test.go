package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
log_level: debug
tracker:
  symmetric_rtt: true
report:
  root_path: /tmp/out
  writers:
    - type: json
      enabled: true
    - type: nats
      enabled: false
      nats:
        url: nats://127.0.0.1:4222
        subject: connspectra.reports
alerter:
  enabled: true
  rules:
    - name: Too many resets
      metric: reset_connections
      operator: ">"
      threshold: 10
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("Expected log level debug, got %s", cfg.LogLevel)
	}
	if !cfg.Tracker.SymmetricRTT {
		t.Error("Expected symmetric RTT to be enabled")
	}
	if cfg.Tracker.MaxPendingSegments != 0 {
		t.Errorf("Expected pending segments to be unbounded by default, got %d", cfg.Tracker.MaxPendingSegments)
	}
	if cfg.Report.RootPath != "/tmp/out" || len(cfg.Report.Writers) != 2 {
		t.Fatalf("Unexpected report config: %+v", cfg.Report)
	}
	if w := cfg.Report.Writers[1]; w.Type != "nats" || w.Enabled || w.NATS.Subject != "connspectra.reports" {
		t.Errorf("Unexpected nats writer: %+v", w)
	}
	if len(cfg.Alerter.Rules) != 1 || cfg.Alerter.Rules[0].Threshold != 10 {
		t.Errorf("Unexpected alerter rules: %+v", cfg.Alerter.Rules)
	}
	if cfg.API.ListenAddr != ":8080" {
		t.Errorf("Expected default listen address, got %s", cfg.API.ListenAddr)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected an error for a missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("tracker: [unclosed"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("Expected an error for invalid YAML")
	}
}
