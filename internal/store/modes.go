package store

import (
	"database/sql"
	"errors"

	"github.com/leonardotrapani/flowwispr/internal/modes"
)

// GetAppMode implements modes.Store: it returns the persisted
// writing-mode override for appName, if one has been saved.
func (s *Store) GetAppMode(appName string) (modes.WritingMode, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var mode string
	err := s.db.QueryRow(`SELECT writing_mode FROM app_modes WHERE app_name = ?`, appName).Scan(&mode)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return modes.WritingMode(mode), true, nil
}

// SaveAppMode implements modes.Store: it persists appName's writing-mode override.
func (s *Store) SaveAppMode(appName string, mode modes.WritingMode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO app_modes (app_name, writing_mode, updated_at) VALUES (?, ?, ?)`,
		appName, string(mode), nowRFC3339(),
	)
	return err
}

// SaveStyleSample implements modes.SampleStore: it records a sample of
// edited text observed for appName.
func (s *Store) SaveStyleSample(appName, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(
		`INSERT INTO style_samples (id, app_name, sample_text, created_at) VALUES (?, ?, ?, ?)`,
		newID(), appName, text, nowRFC3339(),
	)
	return err
}

// GetStyleSamples implements modes.SampleStore: it returns up to limit
// stored samples for appName, newest first.
func (s *Store) GetStyleSamples(appName string, limit int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(
		`SELECT sample_text FROM style_samples WHERE app_name = ? ORDER BY created_at DESC LIMIT ?`,
		appName, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var sample string
		if err := rows.Scan(&sample); err != nil {
			return nil, err
		}
		out = append(out, sample)
	}
	return out, rows.Err()
}
