// Package testutil provides database fixtures for repository tests.
package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"polyglot/internal/db"
)

// NewTestDB opens a migrated database in a temp dir that is closed with the test.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return database
}
