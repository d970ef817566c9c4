package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/GTDGit/gtd_pos/internal/config"
)

func TestOpenMemory_AppliesSchema(t *testing.T) {
	db, err := OpenMemory()
	require.NoError(t, err)
	defer db.Close()

	var tables []string
	require.NoError(t, db.Select(&tables, `SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name`))
	for _, want := range []string{"sales", "sale_items", "inventory_units", "warranties", "pawn_contracts", "repairs", "transactions", "debts"} {
		assert.Contains(t, tables, want)
	}

	// running again is a no-op
	assert.NoError(t, RunMigrations(db))
}

func TestDSN(t *testing.T) {
	dsn, err := DSN(&appconfig.DatabaseConfig{Driver: "sqlite3", Path: "shop.db"})
	require.NoError(t, err)
	assert.Equal(t, "file:shop.db?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000", dsn)

	dsn, err = DSN(&appconfig.DatabaseConfig{Driver: "postgres", User: "pos", Password: "p@ss", Host: "db", Port: "5432", Name: "shop", SSLMode: "disable"})
	require.NoError(t, err)
	assert.Equal(t, "postgres://pos:p%40ss@db:5432/shop?sslmode=disable", dsn)

	_, err = DSN(&appconfig.DatabaseConfig{Driver: "mysql"})
	assert.Error(t, err)
}
