// Package config loads settlement daemon configuration from a YAML file
// with environment variable overrides.
package config

import (
	"fmt"
	"os"

	"github.com/joeshaw/envdecode"
	"gopkg.in/yaml.v3"

	"github.com/Rithunrajrp/0xmart-backend/internal/pda"
)

// Config is the daemon configuration.
type Config struct {
	HTTPAddr string `yaml:"http_addr" env:"HTTP_ADDR"`
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`

	// PostgresDSN selects the durable ledger store when set; the daemon
	// falls back to the in-memory store otherwise.
	PostgresDSN string `yaml:"postgres_dsn" env:"POSTGRES_DSN"`

	// DeploymentID is the base58 deployment identity all storage
	// addresses derive under.
	DeploymentID string `yaml:"deployment_id" env:"DEPLOYMENT_ID"`

	// JWTSecret signs and verifies admin API tokens.
	JWTSecret string `yaml:"jwt_secret" env:"JWT_SECRET"`

	// Authority is the base58 admin identity admin tokens must claim.
	Authority string `yaml:"authority" env:"AUTHORITY"`

	// AllowedOrigins is a comma separated CORS allowlist; "*" allows all.
	AllowedOrigins string `yaml:"allowed_origins" env:"ALLOWED_ORIGINS"`

	// RateLimitRPS throttles settlement submissions per client IP in
	// requests per second; zero disables throttling.
	RateLimitRPS float64 `yaml:"rate_limit_rps" env:"RATE_LIMIT_RPS"`
	RateBurst    int     `yaml:"rate_burst" env:"RATE_BURST"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		HTTPAddr:       ":8080",
		LogLevel:       "info",
		DeploymentID:   "11111111111111111111111111111112",
		AllowedOrigins: "*",
	}
}

// Load reads the YAML file at path (skipped when path is empty or missing)
// and then applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	// envdecode errors only when a required variable is missing; all of
	// ours are optional overrides.
	if err := envdecode.Decode(&cfg); err != nil && err != envdecode.ErrNoTargetFieldsAreSet {
		return Config{}, fmt.Errorf("apply env overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field shapes without touching external systems.
func (c Config) Validate() error {
	if c.HTTPAddr == "" {
		return fmt.Errorf("http_addr is required")
	}
	if _, err := pda.Parse(c.DeploymentID); err != nil {
		return fmt.Errorf("deployment_id: %w", err)
	}
	if c.Authority != "" {
		if _, err := pda.Parse(c.Authority); err != nil {
			return fmt.Errorf("authority: %w", err)
		}
	}
	return nil
}

// Deployment parses the deployment identity. Call Validate first.
func (c Config) Deployment() pda.Address {
	addr, _ := pda.Parse(c.DeploymentID)
	return addr
}
