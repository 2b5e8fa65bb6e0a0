package store

import (
	"time"

	"github.com/leonardotrapani/flowwispr/internal/shortcuts"
)

// SaveShortcut inserts or replaces a shortcut.
func (s *Store) SaveShortcut(sc shortcuts.Shortcut) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO shortcuts (id, trigger, replacement, case_sensitive,
		                                    enabled, use_count, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sc.ID, sc.Trigger, sc.Replacement, boolToInt(sc.CaseSensitive),
		boolToInt(sc.Enabled), sc.UseCount, sc.CreatedAt.UTC().Format(time.RFC3339), sc.UpdatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// GetAllShortcuts returns every shortcut, ordered by trigger.
func (s *Store) GetAllShortcuts() ([]shortcuts.Shortcut, error) {
	return s.queryShortcuts(`SELECT id, trigger, replacement, case_sensitive, enabled, use_count, created_at, updated_at
	                          FROM shortcuts ORDER BY trigger`)
}

// GetEnabledShortcuts returns only enabled shortcuts, ordered by trigger.
func (s *Store) GetEnabledShortcuts() ([]shortcuts.Shortcut, error) {
	return s.queryShortcuts(`SELECT id, trigger, replacement, case_sensitive, enabled, use_count, created_at, updated_at
	                          FROM shortcuts WHERE enabled = 1 ORDER BY trigger`)
}

func (s *Store) queryShortcuts(query string) ([]shortcuts.Shortcut, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []shortcuts.Shortcut
	for rows.Next() {
		var sc shortcuts.Shortcut
		var caseSensitive, enabled int
		var createdAt, updatedAt string
		if err := rows.Scan(&sc.ID, &sc.Trigger, &sc.Replacement, &caseSensitive,
			&enabled, &sc.UseCount, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		sc.CaseSensitive = caseSensitive != 0
		sc.Enabled = enabled != 0
		sc.CreatedAt = parseTime(createdAt)
		sc.UpdatedAt = parseTime(updatedAt)
		out = append(out, sc)
	}
	return out, rows.Err()
}

// IncrementShortcutUse bumps a shortcut's use_count by one.
func (s *Store) IncrementShortcutUse(trigger string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(
		`UPDATE shortcuts SET use_count = use_count + 1, updated_at = ? WHERE trigger = ?`,
		nowRFC3339(), trigger,
	)
	return err
}

// DeleteShortcut removes a shortcut by ID.
func (s *Store) DeleteShortcut(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`DELETE FROM shortcuts WHERE id = ?`, id)
	return err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
