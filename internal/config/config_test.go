package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
server:
  port: 9090
  env: production
database:
  driver: mysql
  url: "user:pass@tcp(localhost:3306)/homefix?parseTime=true"
jwt:
  secret: from-file
realtime:
  push_timeout: 500ms
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFileThenEnvOverride(t *testing.T) {
	t.Setenv("CONFIG_PATH", writeConfig(t, sampleYAML))
	t.Setenv("HOMEFIX_JWT_SECRET", "from-env")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, 500*time.Millisecond, cfg.Realtime.PushTimeout)
	// не указано в файле — остаётся default
	assert.Equal(t, 5, cfg.Payment.MaxFailures)
}

func TestLoadExplicitMissingFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.url is required")
	assert.Contains(t, err.Error(), "jwt.secret is required")

	cfg.Database.DSN = "postgres://localhost/homefix"
	cfg.JWT.Secret = "s"
	assert.NoError(t, cfg.Validate())

	cfg.Database.Driver = "sqlite"
	assert.Error(t, cfg.Validate())

	cfg.Database.Driver = "postgres"
	cfg.Realtime.RedisRelay = true
	assert.Error(t, cfg.Validate())
}
