package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from a layered set of sources.
//
// The loading order is:
//  1. Built-in defaults
//  2. YAML config file (explicit path, WEFT_CONFIG env, ./weft.yaml,
//     /etc/weft/config.yaml)
//  3. Environment variable overrides
//  4. Validation
func Load(configPath string) (*Config, error) {
	cfg := Defaults()

	filePath := discoverConfigFile(configPath)
	if filePath != "" {
		if err := loadYAMLFile(filePath, &cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", filePath, err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

// discoverConfigFile finds the config file path using the discovery order:
// 1. Explicit configPath argument
// 2. WEFT_CONFIG environment variable
// 3. ./weft.yaml in the current directory
// 4. /etc/weft/config.yaml
//
// Returns empty string if no config file is found.
func discoverConfigFile(configPath string) string {
	if configPath != "" {
		return configPath
	}
	if envPath := os.Getenv("WEFT_CONFIG"); envPath != "" {
		return envPath
	}
	candidates := []string{
		"weft.yaml",
		"/etc/weft/config.yaml",
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// loadYAMLFile reads and unmarshals a YAML config file over cfg.
func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing YAML: %w", err)
	}
	return nil
}

// applyEnvOverrides maps WEFT_-prefixed environment variables onto the
// config, overriding file and default values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("WEFT_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("WEFT_ENV"); v != "" {
		cfg.App.Env = v
	}
	if v, ok := envBool("WEFT_PROXY"); ok {
		cfg.App.Proxy = v
	}
	if v, ok := envBool("WEFT_SILENT"); ok {
		cfg.App.Silent = v
	}
	if v := os.Getenv("WEFT_SUBDOMAIN_OFFSET"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.App.SubdomainOffset = n
		}
	}
	if v := os.Getenv("WEFT_KEYS"); v != "" {
		keys := strings.Split(v, ",")
		for i := range keys {
			keys[i] = strings.TrimSpace(keys[i])
		}
		cfg.App.Keys = keys
	}
	if v := os.Getenv("WEFT_METRICS_PATH"); v != "" {
		cfg.Observability.Metrics.Path = v
	}
	if v, ok := envBool("WEFT_METRICS_ENABLED"); ok {
		cfg.Observability.Metrics.Enabled = v
	}
}

// envBool reads a boolean environment variable, reporting whether it was
// set to a parseable value.
func envBool(name string) (bool, bool) {
	v := os.Getenv(name)
	if v == "" {
		return false, false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, false
	}
	return b, true
}
