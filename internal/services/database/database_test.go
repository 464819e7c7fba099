package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenlay/tokenlay-go/internal/models"
)

func TestNewSQLite(t *testing.T) {
	db, err := New(models.DatabaseConfig{
		Type:         models.SQLite,
		FilePath:     filepath.Join(t.TempDir(), "ledger.db"),
		MaxOpenConns: 1,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	assert.Equal(t, "sqlite3", db.DriverName())
	assert.NoError(t, db.Ping())
}

func TestNewRejectsBadConfig(t *testing.T) {
	_, err := New(models.DatabaseConfig{Type: models.SQLite})
	assert.ErrorContains(t, err, "file_path")

	_, err = New(models.DatabaseConfig{Type: "oracle"})
	assert.ErrorContains(t, err, "unsupported database type")
}

func TestCloseWithoutConnection(t *testing.T) {
	db := &DB{}
	assert.NoError(t, db.Close())
	assert.Error(t, db.Ping())
}
