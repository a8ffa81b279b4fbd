package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

const baseYAML = `
app:
  name: chat-concierge
  environment: test

provider:
  base_url: https://genai.example.com
  api_key: ${GEMINI_API_KEY}

database:
  postgres:
    host: localhost
    port: 5432
    database: printer_telemetry
    user: app
  redis:
    address: localhost:6379

webhooks:
  sales_url: https://hooks.example.com/sales
  support_url: https://hooks.example.com/support
`

func TestLoadFromFileDefaultsAndEnv(t *testing.T) {
	viper.Reset()
	t.Setenv("GEMINI_API_KEY", "env-key")

	cfg, err := LoadFromFile(writeConfig(t, baseYAML))
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.Provider.APIKey)
	assert.Equal(t, "gemini-2.5-pro", cfg.Provider.Model)
	assert.Equal(t, 60000, cfg.Provider.Timeout)
	assert.Equal(t, 5, cfg.Lookup.MaxRows)
	assert.Equal(t, 300, cfg.Lookup.CacheTTLSec)
	assert.Equal(t, ":8080", cfg.Server.MetricsAddress)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
}

func TestLoadFromFileMissingWebhook(t *testing.T) {
	viper.Reset()

	yaml := `
provider:
  base_url: https://genai.example.com

database:
  postgres:
    host: localhost
    database: printer_telemetry
    user: app
  redis:
    address: localhost:6379

webhooks:
  sales_url: https://hooks.example.com/sales
`
	_, err := LoadFromFile(writeConfig(t, yaml))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "webhooks.support_url")
}

func TestLoadFromFileMissingProvider(t *testing.T) {
	viper.Reset()

	yaml := `
database:
  postgres:
    host: localhost
    database: printer_telemetry
    user: app
  redis:
    address: localhost:6379

webhooks:
  sales_url: https://hooks.example.com/sales
  support_url: https://hooks.example.com/support
`
	_, err := LoadFromFile(writeConfig(t, yaml))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider.base_url")
}

func TestGetDSN(t *testing.T) {
	cfg := PostgresConfig{
		Host:     "db.internal",
		Port:     5432,
		Database: "printer_telemetry",
		User:     "app",
		Password: "secret",
		SSLMode:  "require",
	}
	assert.Equal(t,
		"host=db.internal port=5432 user=app password=secret dbname=printer_telemetry sslmode=require",
		cfg.GetDSN(),
	)
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 10*time.Second, GetDuration(10000))
}
