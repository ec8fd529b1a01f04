package config

import (
	"os"
	"strings"
	"testing"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	tmpfile, err := os.CreateTemp("", "config.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	t.Cleanup(func() { os.Remove(tmpfile.Name()) })
	tmpfile.WriteString(content)
	tmpfile.Close()
	return tmpfile.Name()
}

func TestLoadConfig(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		path := writeTempConfig(t, `
database:
  type: sqlite
  dsn: tokens.db
admin:
  password: hunter2
quota:
  per_unit: 1000000
  display_decimals: 4
models:
  - gpt-4
  - claude-3
groups:
  vip:
    desc: VIP
    ratio: 0.8
default_use_auto_group: true
port: 8080
debug: true
`)
		config, warning, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("Expected no error, but got %v", err)
		}
		if warning != "" {
			t.Errorf("Expected no warning, got %q", warning)
		}
		if config.Database.Type != "sqlite" || config.Database.DSN != "tokens.db" {
			t.Errorf("Unexpected database config: %+v", config.Database)
		}
		if config.Admin.Password != "hunter2" {
			t.Errorf("Expected admin password hunter2, got %q", config.Admin.Password)
		}
		if config.Quota.PerUnit != 1000000 || config.Quota.DisplayDecimals != 4 {
			t.Errorf("Unexpected quota config: %+v", config.Quota)
		}
		if len(config.Models) != 2 || config.Models[0] != "gpt-4" {
			t.Errorf("Unexpected models: %v", config.Models)
		}
		if config.Groups["vip"].Ratio != 0.8 {
			t.Errorf("Unexpected groups: %v", config.Groups)
		}
		if !config.DefaultUseAutoGroup {
			t.Error("Expected default_use_auto_group to be true")
		}
		if config.Port != 8080 {
			t.Errorf("Expected port 8080, got %d", config.Port)
		}
		if !config.Debug {
			t.Error("Expected debug to be true")
		}
	})

	t.Run("defaults and warning", func(t *testing.T) {
		path := writeTempConfig(t, `
database:
  type: sqlite
  dsn: tokens.db
`)
		config, warning, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("Expected no error, but got %v", err)
		}
		if config.Quota.PerUnit != 500000 {
			t.Errorf("Expected default per_unit 500000, got %d", config.Quota.PerUnit)
		}
		if !strings.Contains(warning, "per_unit") {
			t.Errorf("Expected a per_unit warning, got %q", warning)
		}
		if config.Quota.DisplayDecimals != 2 {
			t.Errorf("Expected default display_decimals 2, got %d", config.Quota.DisplayDecimals)
		}
		if config.Port != 3000 {
			t.Errorf("Expected default port 3000, got %d", config.Port)
		}
	})

	t.Run("missing database", func(t *testing.T) {
		path := writeTempConfig(t, `port: 8080`)
		_, _, err := LoadConfig(path)
		if err == nil {
			t.Error("Expected an error, but got nil")
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := writeTempConfig(t, "database: [broken\n  dsn: x")
		_, _, err := LoadConfig(path)
		if err == nil {
			t.Error("Expected an error, but got nil")
		}
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("TOKENHUB_DATABASE_TYPE", "postgres")
		t.Setenv("TOKENHUB_DATABASE_DSN", "host=localhost")
		t.Setenv("TOKENHUB_ADMIN_PASSWORD", "env-secret")
		t.Setenv("TOKENHUB_DEBUG", "true")

		config, _, err := LoadConfig("non-existent-file.yaml")
		if err != nil {
			t.Fatalf("Expected no error, but got %v", err)
		}
		if config.Database.Type != "postgres" || config.Database.DSN != "host=localhost" {
			t.Errorf("Environment override not applied: %+v", config.Database)
		}
		if config.Admin.Password != "env-secret" {
			t.Errorf("Expected env admin password, got %q", config.Admin.Password)
		}
		if !config.Debug {
			t.Error("Expected debug to be true from environment")
		}
	})

	t.Run("missing file without env falls through to validation", func(t *testing.T) {
		_, _, err := LoadConfig("non-existent-file.yaml")
		if err == nil {
			t.Error("Expected an error, but got nil")
		}
	})
}
