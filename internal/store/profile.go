package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/ayusman/rangoli/internal/detect"
)

// Profile is the persisted tuning for one detector variant.
type Profile struct {
	Variant         detect.Variant
	MaxSubjects     int
	MinConfidence   float64
	RefineLandmarks bool
	UpdatedAt       time.Time
}

// Config converts the profile to an adapter configuration.
func (p *Profile) Config() detect.Config {
	return detect.Config{
		Variant:         p.Variant,
		MaxSubjects:     p.MaxSubjects,
		MinConfidence:   p.MinConfidence,
		RefineLandmarks: p.RefineLandmarks,
	}
}

// ProfileRepository provides access to detector profiles.
type ProfileRepository struct {
	db *sql.DB
}

// Profiles returns the profile repository for this store.
func (s *Store) Profiles() *ProfileRepository {
	return &ProfileRepository{db: s.db}
}

// Get retrieves the profile for a variant. When none was saved, the variant
// defaults are returned rather than ErrNotFound, so callers always have a
// usable configuration.
func (r *ProfileRepository) Get(v detect.Variant) (*Profile, error) {
	p := &Profile{}
	var variant string
	var refine int

	err := r.db.QueryRow(
		`SELECT variant, max_subjects, min_confidence, refine_landmarks, updated_at
		 FROM detector_profiles WHERE variant = ?`,
		string(v),
	).Scan(&variant, &p.MaxSubjects, &p.MinConfidence, &refine, &p.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			cfg := detect.DefaultConfig(v)
			return &Profile{
				Variant:         v,
				MaxSubjects:     cfg.MaxSubjects,
				MinConfidence:   cfg.MinConfidence,
				RefineLandmarks: cfg.RefineLandmarks,
			}, nil
		}
		return nil, err
	}

	p.Variant = detect.Variant(variant)
	p.RefineLandmarks = refine != 0
	return p, nil
}

// Save upserts the profile for its variant. The configuration is validated
// before it is written.
func (r *ProfileRepository) Save(p *Profile) error {
	if err := p.Config().Validate(); err != nil {
		return err
	}

	refine := 0
	if p.RefineLandmarks {
		refine = 1
	}
	p.UpdatedAt = time.Now()

	_, err := r.db.Exec(
		`INSERT INTO detector_profiles (variant, max_subjects, min_confidence, refine_landmarks, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(variant) DO UPDATE SET
			max_subjects = excluded.max_subjects,
			min_confidence = excluded.min_confidence,
			refine_landmarks = excluded.refine_landmarks,
			updated_at = excluded.updated_at`,
		string(p.Variant), p.MaxSubjects, p.MinConfidence, refine, p.UpdatedAt,
	)
	return err
}

// List returns the profile for every supported variant, saved or default.
func (r *ProfileRepository) List() ([]*Profile, error) {
	profiles := make([]*Profile, 0, len(detect.Variants))
	for _, v := range detect.Variants {
		p, err := r.Get(v)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}
