// Package config loads the sidecar configuration: embedded defaults
// overlaid with an optional user file.
package config

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nstehr/vimy/vimy-tactics/tactics"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds every runtime setting of the sidecar.
type Config struct {
	LogLevel   string          `yaml:"log_level"`
	Bridge     BridgeConfig    `yaml:"bridge"`
	Telemetry  TelemetryConfig `yaml:"telemetry"`
	Directives string          `yaml:"directives"`
	Tactics    tactics.Config  `yaml:"tactics"`
}

// BridgeConfig selects the transports the host simulation can connect over.
type BridgeConfig struct {
	Socket    string `yaml:"socket"`    // unix socket path
	Websocket string `yaml:"websocket"` // listen address, empty disables
}

// TelemetryConfig controls the CSV decision log.
type TelemetryConfig struct {
	Dir        string `yaml:"dir"`         // output directory, empty disables
	FlushEvery int    `yaml:"flush_every"` // rows buffered before a write
}

// Load parses the embedded defaults, then overlays the file at path.
// Only fields present in the file are overwritten. If path is empty only
// the defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Tactics.Quantum <= 0 {
		return fmt.Errorf("tactics.quantum must be positive, got %v", c.Tactics.Quantum)
	}
	if c.Tactics.SectorChunk < 0 {
		return fmt.Errorf("tactics.sector_chunk must not be negative, got %d", c.Tactics.SectorChunk)
	}
	if c.Tactics.RegroupRatio < 0 || c.Tactics.RegroupRatio > 1 {
		return fmt.Errorf("tactics.regroup_ratio must be within [0,1], got %v", c.Tactics.RegroupRatio)
	}
	if c.Telemetry.FlushEvery <= 0 {
		c.Telemetry.FlushEvery = 1
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel into a slog level.
func (c *Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return lvl, nil
}

// WriteYAML saves the effective configuration, e.g. next to a decision log.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
