package db

import (
	"database/sql"
	"fmt"
)

// Only provider settings are persisted; sessions and translations live in memory.
const baseSchema = `
CREATE TABLE IF NOT EXISTS settings (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_settings_updated_at ON settings(updated_at);
`

func Migrate(db *sql.DB) error {
	if _, err := db.Exec(baseSchema); err != nil {
		return fmt.Errorf("migrate base schema: %w", err)
	}
	return nil
}
