package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 9090, cfg.Server.MetricsPort)
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, 0.15, cfg.POS.TaxRate)
	assert.Equal(t, time.Hour, cfg.AuthTTL())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9999
pos:
  tax_rate: 0.1
auth:
  token_ttl_minutes: 30
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, 0.1, cfg.POS.TaxRate)
	assert.Equal(t, 30*time.Minute, cfg.AuthTTL())
	// Unset values keep their defaults
	assert.Equal(t, 9090, cfg.Server.MetricsPort)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("MESOB_AUTH_SECRET", "from-env")
	t.Setenv("MESOB_DB_DRIVER", "postgres")
	t.Setenv("MESOB_DB_DSN", "host=localhost dbname=mesob")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Auth.Secret)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "host=localhost dbname=mesob", cfg.Database.DSN)
}
