package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/tournaments")
	t.Setenv("JWT_SECRET_KEY", "super-secret-signing-key-for-tests")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "TournamentApi", cfg.JWT.Issuer)
	assert.Equal(t, "TournamentApiClients", cfg.JWT.Audience)
	assert.Equal(t, time.Hour, cfg.JWT.AccessTokenTTL())
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.False(t, cfg.Storage.Enabled())
	assert.False(t, cfg.SeedData)
}

func TestLoadMissingSigningKey(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/tournaments")
	t.Setenv("JWT_SECRET_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET_KEY")
}

func TestLoadMissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET_KEY", "key")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]struct {
		key, value string
	}{
		"port not a number": {"SERVER_PORT", "http"},
		"port out of range": {"SERVER_PORT", "70000"},
		"unknown driver":    {"DB_DRIVER", "mysql"},
		"zero expiration":   {"JWT_EXPIRATION_MINUTES", "0"},
		"bad seed flag":     {"SEED_DATA", "sometimes"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tc.key, tc.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadYAMLWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
app:
  env: production
  seed: true
server:
  port: 9090
database:
  driver: sqlite3
  url: file:tournaments.db
jwt:
  key: from-file
  issuer: FileIssuer
  expiration_minutes: 15
cors:
  allowed_origins: ["https://example.com"]
storage:
  bucket: logos
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET_KEY", "")
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvProduction, cfg.Env)
	assert.True(t, cfg.SeedData)
	assert.Equal(t, 7070, cfg.ServerPort)
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, "file:tournaments.db", cfg.DatabaseURL)
	assert.Equal(t, "from-file", cfg.JWT.Key)
	assert.Equal(t, "FileIssuer", cfg.JWT.Issuer)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTokenTTL())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.Storage.Enabled())
}
