// Package config loads the orchestrator's TOML configuration file,
// grounded in the teacher's attestor.AttestorConfig/WriteTomlConfig
// pattern in e2e/interchaintestv8/attestor/config.go: a plain struct
// tree decoded with BurntSushi/toml, with a defaults constructor the
// CLI falls back to when no file is supplied.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// RelayerConfig matches the relayer.* TOML keys from spec.md §6.
type RelayerConfig struct {
	BatchRequestMode string `toml:"batch_request_mode"`
	RelayerLoopSpeed uint64 `toml:"relayer_loop_speed"`
}

// OrchestratorConfig matches the orchestrator.* TOML keys from
// spec.md §6.
type OrchestratorConfig struct {
	RelayerEnabled bool `toml:"relayer_enabled"`
}

// MetricsConfig matches the metrics.* TOML keys from spec.md §6.
type MetricsConfig struct {
	MetricsEnabled bool   `toml:"metrics_enabled"`
	MetricsBind    string `toml:"metrics_bind"`
}

// Config is the orchestrator's full parsed configuration. File I/O is
// an external collaborator per spec.md §6; the core only ever
// consumes this parsed structure.
type Config struct {
	Relayer      RelayerConfig      `toml:"relayer"`
	Orchestrator OrchestratorConfig `toml:"orchestrator"`
	Metrics      MetricsConfig      `toml:"metrics"`
}

// Default returns the configuration used when no --config file is
// supplied: relaying disabled, batch requests off, metrics off.
func Default() *Config {
	return &Config{
		Relayer: RelayerConfig{
			BatchRequestMode: "None",
			RelayerLoopSpeed: 15,
		},
		Orchestrator: OrchestratorConfig{
			RelayerEnabled: false,
		},
		Metrics: MetricsConfig{
			MetricsEnabled: false,
			MetricsBind:    "127.0.0.1:9090",
		},
	}
}

// Load reads and decodes a TOML config file at path. It starts from
// Default() and decodes on top of it, so sections and keys the file
// omits keep Default's values. An empty path returns Default().
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %q: %w", path, err)
	}
	return cfg, nil
}

// Write encodes cfg as TOML to path, mirroring the teacher's
// WriteTomlConfig helper.
func Write(cfg *Config, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return toml.NewEncoder(file).Encode(cfg)
}
