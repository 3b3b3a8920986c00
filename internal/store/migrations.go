package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Detector profiles - per-variant tuning for the adapters
		`CREATE TABLE IF NOT EXISTS detector_profiles (
			variant TEXT PRIMARY KEY CHECK(variant IN ('hand', 'face', 'pose')),
			max_subjects INTEGER NOT NULL,
			min_confidence REAL NOT NULL,
			refine_landmarks INTEGER NOT NULL DEFAULT 0,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Settings - application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		// Recent media - recently opened video files for the file picker
		`CREATE TABLE IF NOT EXISTS recent_media (
			id TEXT PRIMARY KEY,
			path TEXT NOT NULL UNIQUE,
			added_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_recent_media_added_at ON recent_media(added_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
