package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveConfigPath(t *testing.T) {
	tests := []struct {
		name     string
		flag     string
		envValue string
		want     string
	}{
		{"flag takes precedence", "/path/from/flag", "/path/from/env", "/path/from/flag"},
		{"env when no flag", "", "/path/from/env", "/path/from/env"},
		{"empty when neither", "", "", ""},
		{"whitespace flag", "  ", "/path/from/env", "/path/from/env"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("WIREWEB_CONFIG", tt.envValue)
			got := ResolveConfigPath(tt.flag)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadDefault(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, uint32(1), cfg.Version.Major)
	assert.Equal(t, 6202, cfg.Authority.Port)
	assert.Equal(t, 6203, cfg.Cache.Port)
	assert.Equal(t, 6204, cfg.Content.Port)
	assert.Equal(t, "127.0.0.1:6202", cfg.Client.DNSAddr)
	assert.Equal(t, "127.0.0.1:6203", cfg.Client.CacherAddr)
	assert.False(t, cfg.Client.IntegrityCheck)
	require.Len(t, cfg.Client.Stacks, 1)
	assert.Equal(t, "MRKDN", cfg.Client.Stacks[0])
	assert.False(t, cfg.API.Enabled)
}

func TestLoadFromFile(t *testing.T) {
	content := `
authority:
  host: "127.0.0.1"
  port: 16202
  db: "auth-test.db"

cache:
  port: 16203

content:
  root: "test-content"
  stacks:
    - "MRKDN"
    - "PLAIN"

client:
  integrity_check: true
  dns_addr: "10.0.0.1:6202"

logging:
  level: "DEBUG"
  structured: true
  structured_format: "keyvalue"
`
	dir := t.TempDir()
	path := filepath.Join(dir, "test-config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Authority.Host)
	assert.Equal(t, 16202, cfg.Authority.Port)
	assert.Equal(t, "auth-test.db", cfg.Authority.DB)
	assert.Equal(t, 16203, cfg.Cache.Port)
	assert.Equal(t, "test-content", cfg.Content.Root)
	assert.Equal(t, []string{"MRKDN", "PLAIN"}, cfg.Content.Stacks)
	assert.True(t, cfg.Client.IntegrityCheck)
	assert.Equal(t, "10.0.0.1:6202", cfg.Client.DNSAddr)
	assert.Equal(t, "DEBUG", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Structured)
	assert.Equal(t, "keyvalue", cfg.Logging.StructuredFormat)
}

func TestLoadInvalidPath(t *testing.T) {
	_, err := Load("/nonexistent/path/to/config.yaml")
	assert.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("authority:\n  port: [invalid"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestNormalizeInvalidPort(t *testing.T) {
	content := `
authority:
  port: 0
`
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestNormalizeInvalidAPIPort(t *testing.T) {
	content := `
api:
  enabled: true
  port: 70000
`
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("WIREWEB_AUTHORITY_HOST", "192.168.1.1")
	t.Setenv("WIREWEB_AUTHORITY_PORT", "8053")
	t.Setenv("WIREWEB_CLIENT_DNS_ADDR", "192.168.1.1:6202")
	t.Setenv("WIREWEB_CLIENT_INTEGRITY_CHECK", "true")
	t.Setenv("WIREWEB_LOGGING_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "192.168.1.1", cfg.Authority.Host)
	assert.Equal(t, 8053, cfg.Authority.Port)
	assert.Equal(t, "192.168.1.1:6202", cfg.Client.DNSAddr)
	assert.True(t, cfg.Client.IntegrityCheck)
	assert.Equal(t, "DEBUG", cfg.Logging.Level)
}
