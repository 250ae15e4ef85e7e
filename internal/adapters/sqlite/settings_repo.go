package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/xavion03/openings-tierlist/internal/domain"
)

// settingsRow is the key of the single settings document. The table is
// key/value so later documents can live beside it without a migration.
const settingsRow = "app"

const upsertSettingsSQL = `
INSERT INTO settings(key, value_json, updated_at) VALUES(?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value_json = excluded.value_json, updated_at = excluded.updated_at`

// SettingsRepository stores the settings as one JSON blob. Unreadable
// content degrades to defaults instead of blocking startup.
type SettingsRepository struct {
	db *sql.DB
}

func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

func (r *SettingsRepository) Get(ctx context.Context) (domain.Settings, error) {
	var raw []byte
	err := r.db.QueryRowContext(ctx, `SELECT value_json FROM settings WHERE key = ?`, settingsRow).Scan(&raw)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// Jamais écrit → défauts.
		return domain.DefaultSettings(), nil
	case err != nil:
		return domain.Settings{}, err
	}

	var s domain.Settings
	if json.Unmarshal(raw, &s) != nil {
		// Blob illisible → on repart des défauts.
		return domain.DefaultSettings(), nil
	}
	return s, nil
}

func (r *SettingsRepository) Put(ctx context.Context, settings domain.Settings) (domain.Settings, error) {
	raw, err := json.Marshal(settings)
	if err != nil {
		return domain.Settings{}, err
	}
	if _, err := r.db.ExecContext(ctx, upsertSettingsSQL, settingsRow, raw, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return domain.Settings{}, err
	}
	return settings, nil
}
