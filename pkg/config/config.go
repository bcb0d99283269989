// Package config provides unified configuration for weft applications.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides (WEFT_ prefix)
//  4. Validation
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds all configuration for a weft application process.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	App           AppConfig           `yaml:"app"`
	Auth          AuthConfig          `yaml:"auth"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`             // default: ":8080"
	ReadTimeout     time.Duration `yaml:"read_timeout"`     // default: 30s
	WriteTimeout    time.Duration `yaml:"write_timeout"`    // default: 60s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"` // default: 30s
}

// AppConfig holds framework application settings.
type AppConfig struct {
	Env             string   `yaml:"env"`              // default: "development"
	Proxy           bool     `yaml:"proxy"`            // trust X-Forwarded-* headers
	SubdomainOffset int      `yaml:"subdomain_offset"` // default: 2
	Keys            []string `yaml:"keys"`             // signing keys
	Silent          bool     `yaml:"silent"`           // suppress error logging
}

// AuthConfig holds authentication settings for the bundled JWT middleware.
type AuthConfig struct {
	Type     string `yaml:"type"`     // "none" or "jwt", default: "none"
	Issuer   string `yaml:"issuer"`   // expected iss claim, optional
	Audience string `yaml:"audience"` // expected aud claim, optional
}

// ObservabilityConfig holds monitoring and instrumentation settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
}

// MetricsConfig holds Prometheus metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // default: true
	Path    string `yaml:"path"`    // default: "/metrics"
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		App: AppConfig{
			Env:             "development",
			SubdomainOffset: 2,
		},
		Auth: AuthConfig{
			Type: "none",
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
		},
	}
}

// Validate checks the configuration for required fields and valid values.
// Returns an error with a descriptive field path on failure.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Addr == "" {
		errs = append(errs, fmt.Errorf("server.addr is required"))
	}

	if c.App.SubdomainOffset < 0 {
		errs = append(errs, fmt.Errorf("app.subdomain_offset must be >= 0, got %d", c.App.SubdomainOffset))
	}

	switch c.Auth.Type {
	case "none", "jwt":
		// valid
	default:
		errs = append(errs, fmt.Errorf("auth.type must be \"none\" or \"jwt\", got %q", c.Auth.Type))
	}

	if c.Auth.Type == "jwt" && len(c.App.Keys) == 0 {
		errs = append(errs, fmt.Errorf("app.keys is required when auth.type is \"jwt\""))
	}

	if c.Observability.Metrics.Enabled && c.Observability.Metrics.Path == "" {
		errs = append(errs, fmt.Errorf("observability.metrics.path is required when metrics are enabled"))
	}

	return errors.Join(errs...)
}
