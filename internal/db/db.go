package db

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// pragmas are embedded in the DSN so every pooled connection gets them.
var pragmas = []string{
	"journal_mode(WAL)",
	"foreign_keys(ON)",
	"busy_timeout(30000)",
	"synchronous(NORMAL)",
}

// BuildDSN returns the modernc sqlite DSN for path with the connection pragmas.
func BuildDSN(path string) string {
	params := url.Values{}
	for _, p := range pragmas {
		params.Add("_pragma", p)
	}
	return "file:" + path + "?" + params.Encode()
}

// Open opens the settings database at path, creating the parent directory
// and running migrations.
func Open(path string) (*sql.DB, error) {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", BuildDSN(path))
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if err := Migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}
