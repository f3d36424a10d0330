package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/leadscan/internal/config"
	"github.com/jonesrussell/north-cloud/leadscan/internal/database"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, ":8080", cfg.Server.Address())
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, time.Second, cfg.Crawler.StartDelay)
	assert.Equal(t, 30*time.Second, cfg.Crawler.DomainTimeout)
	assert.Equal(t, "https", cfg.Crawler.DefaultScheme)
	assert.Equal(t, 5*time.Second, cfg.Scanner.Tracker.SettlePeriod)
	assert.Equal(t, database.DriverMemory, cfg.Database.Driver)
}

func TestLoad_YAML(t *testing.T) {
	path := writeConfig(t, `
server:
  host: 127.0.0.1
  port: 9090
crawler:
  domain_timeout: 45s
  pool:
    pool_size: 3
scanner:
  tracker:
    strict: true
    settle_period: 2s
database:
  driver: postgres
  host: db
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", cfg.Server.Address())
	assert.Equal(t, 45*time.Second, cfg.Crawler.DomainTimeout)
	assert.Equal(t, 3, cfg.Crawler.Pool.PoolSize)
	assert.True(t, cfg.Scanner.Tracker.Strict)
	assert.Equal(t, 2*time.Second, cfg.Scanner.Tracker.SettlePeriod)
	assert.Equal(t, "db", cfg.Database.Host)
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	path := writeConfig(t, "crawler:\n  domain_timeout: 45s\n")
	t.Setenv("CRAWLER_DOMAIN_TIMEOUT", "10s")
	t.Setenv("CRAWLER_POOL_SIZE", "7")
	t.Setenv("SCANNER_POOL_SIZE", "2")
	t.Setenv("SCANNER_TRACKER_STRICT", "yes")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, cfg.Crawler.DomainTimeout)
	assert.Equal(t, 7, cfg.Crawler.Pool.PoolSize)
	assert.Equal(t, 2, cfg.Scanner.Pool.PoolSize)
	assert.True(t, cfg.Scanner.Tracker.Strict)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_InvalidEnvValue(t *testing.T) {
	t.Setenv("CRAWLER_DOMAIN_TIMEOUT", "soon")

	_, err := config.Load("")
	require.ErrorContains(t, err, "CRAWLER_DOMAIN_TIMEOUT")
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"bad port", "server:\n  port: 70000\n", "server.port"},
		{"bad scheme", "crawler:\n  default_scheme: ftp\n", "crawler"},
		{"bad driver", "database:\n  driver: mongo\n", "database.driver"},
		{"bad log level", "logging:\n  level: loud\n", "logging.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, tt.yaml))
			require.ErrorContains(t, err, tt.want)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
}

func TestFindConfigFile(t *testing.T) {
	existing := writeConfig(t, "")
	assert.Equal(t, existing, config.FindConfigFile("", "/does/not/exist.yml", existing))
	assert.Empty(t, config.FindConfigFile("/does/not/exist.yml"))
}
