// Package daemon manages the CashMind engine lifecycle and configuration.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all engine configuration.
type Config struct {
	API       APIConfig       `toml:"api"`
	Auth      AuthConfig      `toml:"auth"`
	Database  DatabaseConfig  `toml:"database"`
	Telemetry TelemetryConfig `toml:"telemetry"`
	Logging   LoggingConfig   `toml:"logging"`
}

// APIConfig controls the HTTP API server.
type APIConfig struct {
	Host        string   `toml:"host"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// AuthConfig selects how bearer tokens are verified.
// Mode "static" treats the token as the user id; "jwt" validates HS256.
type AuthConfig struct {
	Mode   string `toml:"mode"`
	Secret string `toml:"secret"`
}

// DatabaseConfig controls SQLite storage.
type DatabaseConfig struct {
	Dir string `toml:"dir"`
}

// TelemetryConfig controls the Prometheus endpoint.
type TelemetryConfig struct {
	Prometheus bool `toml:"prometheus"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level     string `toml:"level"`
	File      string `toml:"file"`
	MaxSizeMB int    `toml:"max_size_mb"`
	MaxFiles  int    `toml:"max_files"`
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	homeDir := cashmindHome()
	return Config{
		API: APIConfig{
			Host:        "127.0.0.1",
			Port:        8990,
			CORSOrigins: []string{"*"},
		},
		Auth: AuthConfig{
			Mode: "static",
		},
		Database: DatabaseConfig{
			Dir: homeDir,
		},
		Telemetry: TelemetryConfig{
			Prometheus: false,
		},
		Logging: LoggingConfig{
			Level:     "info",
			File:      filepath.Join(homeDir, "cashmind.log"),
			MaxSizeMB: 50,
			MaxFiles:  5,
		},
	}
}

// LoadConfig reads config from ~/.cashmind/config.toml, falling back to defaults.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	path := filepath.Join(cashmindHome(), "config.toml")

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil // No config file yet — use defaults
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	if cfg.Database.Dir == "" {
		cfg.Database.Dir = cashmindHome()
	}

	return cfg, nil
}

// SaveConfig writes the config to ~/.cashmind/config.toml.
func SaveConfig(cfg Config) error {
	path := filepath.Join(cashmindHome(), "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

// cashmindHome returns the CashMind data directory.
func cashmindHome() string {
	if env := os.Getenv("CASHMIND_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cashmind")
}

// CashmindHome is exported for use by other packages.
func CashmindHome() string {
	return cashmindHome()
}
