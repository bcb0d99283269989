package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "weft.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.Error(t, err, "explicit missing file should fail")

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, 2, cfg.App.SubdomainOffset)
	assert.True(t, cfg.Observability.Metrics.Enabled)
	assert.Equal(t, "/metrics", cfg.Observability.Metrics.Path)
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9000"
  read_timeout: 5s
app:
  env: production
  proxy: true
  keys: [alpha, beta]
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "production", cfg.App.Env)
	assert.True(t, cfg.App.Proxy)
	assert.Equal(t, []string{"alpha", "beta"}, cfg.App.Keys)
	// Untouched fields keep their defaults.
	assert.Equal(t, 60*time.Second, cfg.Server.WriteTimeout)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9000"
`)
	t.Setenv("WEFT_ADDR", ":7777")
	t.Setenv("WEFT_SILENT", "true")
	t.Setenv("WEFT_KEYS", "k1, k2")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7777", cfg.Server.Addr)
	assert.True(t, cfg.App.Silent)
	assert.Equal(t, []string{"k1", "k2"}, cfg.App.Keys)
}

func TestConfigDiscoveryViaEnv(t *testing.T) {
	path := writeConfig(t, `
app:
  env: staging
`)
	t.Setenv("WEFT_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "staging", cfg.App.Env)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty addr", func(c *Config) { c.Server.Addr = "" }},
		{"negative subdomain offset", func(c *Config) { c.App.SubdomainOffset = -1 }},
		{"unknown auth type", func(c *Config) { c.Auth.Type = "saml" }},
		{"jwt without keys", func(c *Config) { c.Auth.Type = "jwt" }},
		{"metrics without path", func(c *Config) { c.Observability.Metrics.Path = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Defaults()
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := writeConfig(t, "server: [not a mapping")
	_, err := Load(path)
	require.Error(t, err)
}
