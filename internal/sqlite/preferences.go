package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rpggio/bigyear/internal/repository"
)

// Preference keys kept outside the four main collections.
const (
	PrefActiveListID = "activeListId"
	PrefDeviceID     = "deviceId"
)

// PreferenceRepository stores scalar preferences (device.Preferences) in SQLite
type PreferenceRepository struct {
	db *DB
}

// NewPreferenceRepository creates a new PreferenceRepository
func NewPreferenceRepository(db *DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// GetPreference returns the value stored under key
func (r *PreferenceRepository) GetPreference(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", repository.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get preference %s: %w", key, err)
	}
	return value, nil
}

// SetPreference stores value under key
func (r *PreferenceRepository) SetPreference(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO preferences (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set preference %s: %w", key, err)
	}
	return nil
}

// DeletePreference removes key; deleting a missing key is not an error
func (r *PreferenceRepository) DeletePreference(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM preferences WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete preference %s: %w", key, err)
	}
	return nil
}
