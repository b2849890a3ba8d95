package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server      ServerConfig      `koanf:"server"`
	DataService DataServiceConfig `koanf:"data_service"`
	Assistant   AssistantConfig   `koanf:"assistant"`
	Storage     StorageConfig     `koanf:"storage"`
	Telemetry   TelemetryConfig   `koanf:"telemetry"`
}

// TelemetryConfig tags emitted traces.
type TelemetryConfig struct {
	Environment string `koanf:"environment"`
}

type ServerConfig struct {
	Port int `koanf:"port"`
}

// DataServiceConfig points the relay at the external graph data service.
type DataServiceConfig struct {
	BaseURL string `koanf:"base_url"`
}

// AssistantConfig configures the upstream assistant-run provider.
type AssistantConfig struct {
	BaseURL string `koanf:"base_url"`
	APIKey  string `koanf:"api_key"`
	// AgentID is the default tool-using agent profile used for runs that
	// do not name one explicitly.
	AgentID string `koanf:"agent_id"`
}

type StorageConfig struct {
	// Path is the SQLite database file for run records. Empty disables
	// run recording.
	Path string `koanf:"path"`
}

// Load reads configuration from an optional config.yaml and RELAY_-prefixed
// environment variables, with env taking precedence over the file.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path == "" {
		path = "config.yaml"
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		// A missing file is fine, env vars alone can configure the relay.
		if !os.IsNotExist(err) {
			return nil, err
		}
	}

	if err := k.Load(env.Provider("RELAY_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "RELAY_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, err
	}

	if !k.Exists("server.port") {
		k.Set("server.port", 9090)
	}
	if !k.Exists("data_service.base_url") {
		k.Set("data_service.base_url", "http://localhost:8000")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
