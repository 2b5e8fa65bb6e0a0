package store

import (
	"context"

	"github.com/leonardotrapani/flowwispr/internal/learning"
)

// SaveCorrection upserts a correction on (original, corrected): on
// conflict it increments occurrences and overwrites confidence with
// the caller-supplied value, matching learning.Engine's own confidence
// recomputation rather than recomputing it here.
func (s *Store) SaveCorrection(ctx context.Context, c *learning.Correction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := nowRFC3339()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO corrections (id, original, corrected, occurrences, confidence, source, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(original, corrected) DO UPDATE SET
		     occurrences = occurrences + 1,
		     confidence = excluded.confidence,
		     updated_at = excluded.updated_at`,
		c.ID, c.Original, c.Corrected, c.Occurrences, c.Confidence, string(c.Source), now, now,
	)
	return err
}

// GetCorrections returns every correction with confidence at or above
// minConfidence, ordered by confidence descending.
func (s *Store) GetCorrections(ctx context.Context, minConfidence float32) ([]learning.Correction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, original, corrected, occurrences, confidence, source, created_at, updated_at
		 FROM corrections WHERE confidence >= ? ORDER BY confidence DESC`,
		minConfidence,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []learning.Correction
	for rows.Next() {
		var c learning.Correction
		var source, createdAt, updatedAt string
		if err := rows.Scan(&c.ID, &c.Original, &c.Corrected, &c.Occurrences, &c.Confidence,
			&source, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		c.Source = learning.CorrectionSource(source)
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetAllCorrections returns every stored correction regardless of confidence.
func (s *Store) GetAllCorrections() ([]learning.Correction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(
		`SELECT id, original, corrected, occurrences, confidence, source, created_at, updated_at
		 FROM corrections ORDER BY confidence DESC, occurrences DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []learning.Correction
	for rows.Next() {
		var c learning.Correction
		var source, createdAt, updatedAt string
		if err := rows.Scan(&c.ID, &c.Original, &c.Corrected, &c.Occurrences, &c.Confidence,
			&source, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		c.Source = learning.CorrectionSource(source)
		out = append(out, c)
	}
	return out, rows.Err()
}

// DeleteCorrection removes a correction by ID, reporting whether a row
// was actually deleted.
func (s *Store) DeleteCorrection(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.Exec(`DELETE FROM corrections WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// DeleteAllCorrections clears the corrections table and reports how
// many rows were removed.
func (s *Store) DeleteAllCorrections() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.Exec(`DELETE FROM corrections`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
