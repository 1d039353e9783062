// Package config loads the runtime configuration of an agent process.
// Resource parameters never come from here; they arrive through the
// OCF_RESKEY_* environment.
package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix prefixes every configuration override variable.
	EnvPrefix = "OCF_AGENT_"

	// PathEnv names the variable holding the optional YAML config file.
	PathEnv = EnvPrefix + "CONFIG"
)

type Config struct {
	Log       LogConfig       `koanf:"log"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	State     StateConfig     `koanf:"state"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // ocf, json
}

type TelemetryConfig struct {
	Exporter     string `koanf:"exporter"` // none, stdout, otlp
	OTLPEndpoint string `koanf:"otlp_endpoint"`
	OTLPInsecure bool   `koanf:"otlp_insecure"`
}

type StateConfig struct {
	Path    string `koanf:"path"` // sqlite file; empty for HA_RSCTMP/ocf-agents.db, ":memory:" for in-memory
	Journal bool   `koanf:"journal"`
}

// Load reads defaults, then the YAML file at path (if any), then
// OCF_AGENT_* overrides. OCF_AGENT_TELEMETRY_OTLP_ENDPOINT maps to
// telemetry.otlp_endpoint: only the first underscore separates the section.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Defaults
	k.Set("log.level", "info")
	k.Set("log.format", "ocf")
	k.Set("telemetry.exporter", "none")
	k.Set("telemetry.otlp_endpoint", "")
	k.Set("telemetry.otlp_insecure", false)
	k.Set("state.path", "")
	k.Set("state.journal", false)

	// 1. Load from file
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// 2. Load from ENV (OCF_AGENT_LOG_LEVEL -> log.level)
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, EnvPrefix)), "_", ".", 1)
	}), nil); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadFromEnv loads using the file named by OCF_AGENT_CONFIG.
func LoadFromEnv() (*Config, error) {
	return Load(os.Getenv(PathEnv))
}
