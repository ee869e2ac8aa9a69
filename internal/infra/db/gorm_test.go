package db

import (
	"testing"

	"agritrace/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestPostgresDSN(t *testing.T) {
	cfg := config.Config{
		PostgresHost:     "db",
		PostgresPort:     5433,
		PostgresUser:     "u",
		PostgresPassword: "p",
		PostgresDB:       "trace",
		PostgresSSLMode:  "disable",
	}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=trace sslmode=disable", PostgresDSN(cfg))

	cfg.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", PostgresDSN(cfg))
}

func TestConnect_SQLiteMigrate(t *testing.T) {
	gdb, err := Connect(config.Config{StoreDriver: config.StoreDriverSQLite, SQLitePath: "file::memory:?cache=shared"})
	if !assert.NoError(t, err) {
		return
	}
	assert.NoError(t, Migrate(gdb))
	assert.True(t, gdb.Migrator().HasTable("products"))
	assert.True(t, gdb.Migrator().HasTable("ledger_transactions"))
}

func TestConnect_MemoryHasNoDatabase(t *testing.T) {
	_, err := Connect(config.Config{StoreDriver: config.StoreDriverMemory})
	assert.Error(t, err)
}
