package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		os.Unsetenv("RELAY_SERVER__PORT")
		os.Unsetenv("RELAY_DATA_SERVICE__BASE_URL")

		cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}

		if cfg.Server.Port != 9090 {
			t.Errorf("Load() port = %v, want 9090", cfg.Server.Port)
		}
		if cfg.DataService.BaseURL != "http://localhost:8000" {
			t.Errorf("Load() data service base URL = %v, want http://localhost:8000", cfg.DataService.BaseURL)
		}
	})

	t.Run("env var override", func(t *testing.T) {
		os.Setenv("RELAY_SERVER__PORT", "9000")
		os.Setenv("RELAY_ASSISTANT__API_KEY", "sk-test")
		defer os.Unsetenv("RELAY_SERVER__PORT")
		defer os.Unsetenv("RELAY_ASSISTANT__API_KEY")

		cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}

		if cfg.Server.Port != 9000 {
			t.Errorf("Load() port = %v, want 9000", cfg.Server.Port)
		}
		if cfg.Assistant.APIKey != "sk-test" {
			t.Errorf("Load() assistant api key = %v, want sk-test", cfg.Assistant.APIKey)
		}
	})

	t.Run("telemetry environment from env", func(t *testing.T) {
		os.Setenv("RELAY_TELEMETRY__ENVIRONMENT", "staging")
		defer os.Unsetenv("RELAY_TELEMETRY__ENVIRONMENT")

		cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}

		if cfg.Telemetry.Environment != "staging" {
			t.Errorf("Load() telemetry environment = %v, want staging", cfg.Telemetry.Environment)
		}
	})

	t.Run("file with env precedence", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		contents := "server:\n  port: 7070\nassistant:\n  agent_id: agent-from-file\n"
		if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}

		os.Setenv("RELAY_SERVER__PORT", "7171")
		defer os.Unsetenv("RELAY_SERVER__PORT")

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}

		if cfg.Server.Port != 7171 {
			t.Errorf("Load() port = %v, want env override 7171", cfg.Server.Port)
		}
		if cfg.Assistant.AgentID != "agent-from-file" {
			t.Errorf("Load() agent id = %v, want agent-from-file", cfg.Assistant.AgentID)
		}
	})
}
