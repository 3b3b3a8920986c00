package store

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// maxRecentMedia caps the recent-files list; older entries are pruned.
const maxRecentMedia = 10

// RecentMedia is one recently opened media file.
type RecentMedia struct {
	ID      string    `json:"id"`
	Path    string    `json:"path"`
	AddedAt time.Time `json:"added_at"`
}

// RecentMediaRepository tracks recently opened media files.
type RecentMediaRepository struct {
	db *sql.DB
}

// RecentMedia returns the recent-media repository for this store.
func (s *Store) RecentMedia() *RecentMediaRepository {
	return &RecentMediaRepository{db: s.db}
}

// Add records a media path, refreshing its timestamp if already present,
// then prunes the list to the cap.
func (r *RecentMediaRepository) Add(path string) error {
	now := time.Now()
	_, err := r.db.Exec(
		`INSERT INTO recent_media (id, path, added_at) VALUES (?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET added_at = excluded.added_at`,
		uuid.NewString(), path, now,
	)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(
		`DELETE FROM recent_media WHERE id NOT IN (
			SELECT id FROM recent_media ORDER BY added_at DESC LIMIT ?
		)`,
		maxRecentMedia,
	)
	return err
}

// List returns the recent media files, newest first.
func (r *RecentMediaRepository) List() ([]*RecentMedia, error) {
	rows, err := r.db.Query(
		`SELECT id, path, added_at FROM recent_media ORDER BY added_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var media []*RecentMedia
	for rows.Next() {
		m := &RecentMedia{}
		if err := rows.Scan(&m.ID, &m.Path, &m.AddedAt); err != nil {
			return nil, err
		}
		media = append(media, m)
	}
	return media, rows.Err()
}
