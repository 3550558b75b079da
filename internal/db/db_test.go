package db

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenCreatesSchema(t *testing.T) {
	d, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, d.Close()) })

	var tableName string
	err = d.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='restaurants'").Scan(&tableName)
	assert.NoError(t, err)
	assert.Equal(t, "restaurants", tableName)
}

func TestMigrationsAreIdempotent(t *testing.T) {
	d, err := sql.Open("sqlite", "file::memory:?cache=shared&mode=rwc")
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, d.Close()) })

	require.NoError(t, runMigrations(d))
	require.NoError(t, runMigrations(d))

	var applied int
	err = d.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&applied)
	assert.NoError(t, err)
	assert.Equal(t, 1, applied)
}
