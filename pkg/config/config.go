// Package config loads server configuration from an optional YAML file
// with environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the server tunables. Anything not supplied falls back to
// the defaults; generation parameters come from the CLI, not from here.
type Config struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	LogLevel        string        `yaml:"log_level"`
	DataDir         string        `yaml:"data_dir"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	CORSOrigins     []string      `yaml:"cors_origins"`
}

// Default returns the out-of-the-box configuration.
func Default() Config {
	return Config{
		Host:            "0.0.0.0",
		Port:            8080,
		LogLevel:        "info",
		DataDir:         "data",
		ShutdownTimeout: 30 * time.Second,
	}
}

// Load reads the YAML file at path (if non-empty) over the defaults, then
// applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if cfg.Port < 1 || cfg.Port > 65535 {
		return cfg, fmt.Errorf("invalid port %d", cfg.Port)
	}
	return cfg, nil
}

// Environment overrides:
//
//	SIMPLEKP_HOST, SIMPLEKP_PORT, SIMPLEKP_LOG_LEVEL, SIMPLEKP_DATA_DIR
func (c *Config) applyEnv() {
	if v := os.Getenv("SIMPLEKP_HOST"); v != "" {
		c.Host = v
	}
	if v := os.Getenv("SIMPLEKP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Port = port
		}
	}
	if v := os.Getenv("SIMPLEKP_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("SIMPLEKP_DATA_DIR"); v != "" {
		c.DataDir = v
	}
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
