package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"polyglot/internal/model"
)

// SettingsRepository stores provider configuration as key/value rows.
type SettingsRepository interface {
	// Get returns nil, nil when key is not set.
	Get(ctx context.Context, key string) (*model.Setting, error)
	Set(ctx context.Context, key, value string) error
	// SetMany writes all pairs in one transaction.
	SetMany(ctx context.Context, values map[string]string) error
	GetByPrefix(ctx context.Context, prefix string) ([]model.Setting, error)
	Delete(ctx context.Context, key string) error
}

type settingsRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSettingsRepository creates a new settings repository.
func NewSettingsRepository(db *sql.DB) SettingsRepository {
	return &settingsRepository{db: db, now: time.Now}
}

func (r *settingsRepository) Get(ctx context.Context, key string) (*model.Setting, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT key, value, updated_at FROM settings WHERE key = ?
	`, key)

	s, err := scanSetting(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get setting %s: %w", key, err)
	}
	return s, nil
}

const upsertSetting = `
	INSERT INTO settings (key, value, updated_at)
	VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
`

func (r *settingsRepository) Set(ctx context.Context, key, value string) error {
	if _, err := r.db.ExecContext(ctx, upsertSetting, key, value, r.timestamp()); err != nil {
		return fmt.Errorf("set setting %s: %w", key, err)
	}
	return nil
}

func (r *settingsRepository) SetMany(ctx context.Context, values map[string]string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, upsertSetting)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := r.timestamp()
	for key, value := range values {
		if _, err := stmt.ExecContext(ctx, key, value, now); err != nil {
			return fmt.Errorf("set setting %s: %w", key, err)
		}
	}
	return tx.Commit()
}

// GetByPrefix returns all settings whose key starts with prefix, ordered by key.
func (r *settingsRepository) GetByPrefix(ctx context.Context, prefix string) ([]model.Setting, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT key, value, updated_at FROM settings WHERE substr(key, 1, ?) = ? ORDER BY key
	`, len(prefix), prefix)
	if err != nil {
		return nil, fmt.Errorf("list settings %s: %w", prefix, err)
	}
	defer rows.Close()

	var settings []model.Setting
	for rows.Next() {
		s, err := scanSetting(rows)
		if err != nil {
			return nil, err
		}
		settings = append(settings, *s)
	}
	return settings, rows.Err()
}

func (r *settingsRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete setting %s: %w", key, err)
	}
	return nil
}

func (r *settingsRepository) timestamp() string {
	return r.now().UTC().Format(time.RFC3339)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSetting(row scanner) (*model.Setting, error) {
	var s model.Setting
	var updatedAt string
	if err := row.Scan(&s.Key, &s.Value, &updatedAt); err != nil {
		return nil, err
	}
	s.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &s, nil
}
