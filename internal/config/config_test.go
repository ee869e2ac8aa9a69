package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"CONFIG_FILE", "PORT", "STORE_DRIVER", "DATABASE_URL", "POSTGRES_USER", "POSTGRES_PASSWORD",
		"POSTGRES_DB", "POSTGRES_HOST", "POSTGRES_PORT", "POSTGRES_SSLMODE", "SQLITE_PATH", "JWT_SECRET",
		"GO_ENV", "FE_URL", "LEDGER_ACCESS_MODE", "LOG_LEVEL", "LOG_FILE", "WRITE_RATE_PER_MINUTE",
		"CHAIN_VERIFY_SPEC",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_MemoryDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("JWT_SECRET", "s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ListenAddr())
	assert.Equal(t, AccessModeStrict, cfg.AccessMode)
	assert.Equal(t, 60, cfg.WriteRatePerMinute)
	assert.Equal(t, "@every 10m", cfg.ChainVerifySpec)
}

func TestLoad_JWTSecretRequired(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_DRIVER", "memory")

	_, err := Load()
	assert.EqualError(t, err, "JWT_SECRET is required")
}

func TestLoad_PostgresRequiresCredentials(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "s")

	_, err := Load()
	assert.EqualError(t, err, "POSTGRES_USER is required")

	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/db")
	_, err = Load()
	assert.NoError(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("JWT_SECRET", "s")

	t.Setenv("LEDGER_ACCESS_MODE", "open")
	_, err := Load()
	assert.ErrorContains(t, err, "LEDGER_ACCESS_MODE")

	t.Setenv("LEDGER_ACCESS_MODE", "")
	t.Setenv("POSTGRES_PORT", "abc")
	_, err = Load()
	assert.ErrorContains(t, err, "POSTGRES_PORT must be number")

	t.Setenv("POSTGRES_PORT", "")
	t.Setenv("STORE_DRIVER", "mongo")
	_, err = Load()
	assert.ErrorContains(t, err, "STORE_DRIVER")
}

// YAMLを読んだあと環境変数で上書き
func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "port: \"9090\"\nstore_driver: memory\njwt_secret: from-file\naccess_mode: permissive\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.ListenAddr())
	assert.Equal(t, "from-env", cfg.JWTSecret)
	assert.Equal(t, AccessModePermissive, cfg.AccessMode)
}
