package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server struct {
		Port        int `yaml:"port"`
		MetricsPort int `yaml:"metrics_port"`
	} `yaml:"server"`

	Database struct {
		Driver string `yaml:"driver"` // "sqlite3" or "postgres"
		DSN    string `yaml:"dsn"`
	} `yaml:"database"`

	Auth struct {
		Secret      string `yaml:"secret"`
		TokenTTLMin int    `yaml:"token_ttl_minutes"`
	} `yaml:"auth"`

	POS struct {
		TaxRate        float64 `yaml:"tax_rate"`
		CountTolerance float64 `yaml:"count_tolerance"`
	} `yaml:"pos"`

	LogLevel string `yaml:"log_level"`
}

// Default returns a configuration with development defaults
func Default() *Config {
	cfg := &Config{}
	cfg.Server.Port = 8080
	cfg.Server.MetricsPort = 9090
	cfg.Database.Driver = "sqlite3"
	cfg.Database.DSN = "mesob.db"
	cfg.Auth.TokenTTLMin = 60
	cfg.POS.TaxRate = 0.15
	cfg.POS.CountTolerance = 0.5
	cfg.LogLevel = "info"
	return cfg
}

// AuthTTL returns the configured token lifetime
func (c *Config) AuthTTL() time.Duration {
	return time.Duration(c.Auth.TokenTTLMin) * time.Minute
}

// Load reads configuration from a YAML file, falling back to defaults
// for anything the file omits. Secrets may be supplied via environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Environment overrides for deployment secrets
	if secret := os.Getenv("MESOB_AUTH_SECRET"); secret != "" {
		cfg.Auth.Secret = secret
	}
	if dsn := os.Getenv("MESOB_DB_DSN"); dsn != "" {
		cfg.Database.DSN = dsn
	}
	if driver := os.Getenv("MESOB_DB_DRIVER"); driver != "" {
		cfg.Database.Driver = driver
	}

	if cfg.Auth.Secret == "" {
		cfg.Auth.Secret = "dev-secret-change-me"
	}

	return cfg, nil
}
