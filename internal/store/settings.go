package store

import (
	"database/sql"
	"errors"
)

// Setting keys used by the application.
const (
	SettingActiveVariant = "active_variant"
	SettingCameraID      = "camera_id"
	SettingSourceMode    = "source_mode"
	SettingSourcePath    = "source_path"
)

// SettingsRepository provides key-value settings access.
type SettingsRepository struct {
	db *sql.DB
}

// Settings returns the settings repository for this store.
func (s *Store) Settings() *SettingsRepository {
	return &SettingsRepository{db: s.db}
}

// Get retrieves a setting value, or ErrNotFound.
func (r *SettingsRepository) Get(key string) (string, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

// GetDefault retrieves a setting value, falling back to def when unset.
func (r *SettingsRepository) GetDefault(key, def string) string {
	value, err := r.Get(key)
	if err != nil {
		return def
	}
	return value
}

// Set upserts a setting value.
func (r *SettingsRepository) Set(key, value string) error {
	_, err := r.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

// Delete removes a setting. Deleting an absent key is not an error.
func (r *SettingsRepository) Delete(key string) error {
	_, err := r.db.Exec(`DELETE FROM settings WHERE key = ?`, key)
	return err
}
