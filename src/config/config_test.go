package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"investmentapp/src/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseSettings = `
service:
  type: API
  port: "9000"
databases:
  sql:
    driver: postgres
    host: db
auth:
  jwtSecret: base
`

const testingSettings = `
databases:
  sql:
    driver: memory
logging:
  level: debug
`

func writeSettings(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "appsettings.yaml"), []byte(baseSettings), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "appsettings.TESTING.yaml"), []byte(testingSettings), 0o600))
	return dir
}

func TestLoadConfig(t *testing.T) {
	t.Run("reads the base file and applies defaults", func(t *testing.T) {
		cfg, err := config.LoadConfig(writeSettings(t), "")
		require.NoError(t, err)

		assert.Equal(t, config.API, cfg.Service.Type)
		assert.Equal(t, "9000", cfg.Service.Port)
		assert.Equal(t, "postgres", cfg.Databases.SQL.Driver)
		assert.Equal(t, "db", cfg.Databases.SQL.Host)
		assert.EqualValues(t, 5, cfg.Databases.SQL.MaxConns)
		assert.Equal(t, "info", cfg.Logging.Level)
		assert.Equal(t, "24h", cfg.Auth.TokenTTL)
		assert.Equal(t, "@every 1h", cfg.Worker.AuditCron)
	})

	t.Run("merges the environment file", func(t *testing.T) {
		cfg, err := config.LoadConfig(writeSettings(t), "TESTING")
		require.NoError(t, err)

		assert.Equal(t, "memory", cfg.Databases.SQL.Driver)
		assert.Equal(t, "db", cfg.Databases.SQL.Host)
		assert.Equal(t, "debug", cfg.Logging.Level)
	})

	t.Run("environment variables win", func(t *testing.T) {
		t.Setenv("AUTH_JWTSECRET", "from-env")
		cfg, err := config.LoadConfig(writeSettings(t), "")
		require.NoError(t, err)
		assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	})

	t.Run("fails without a base file", func(t *testing.T) {
		_, err := config.LoadConfig(t.TempDir(), "")
		assert.Error(t, err)
	})

	t.Run("loads the repository settings", func(t *testing.T) {
		cfg, err := config.LoadConfig("../../settings", "TESTING")
		require.NoError(t, err)
		assert.Equal(t, "memory", cfg.Databases.SQL.Driver)
	})
}
