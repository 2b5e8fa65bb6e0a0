package store

import "encoding/json"

// SaveLearnedWordsSession persists a batch of learned corrections as a
// single undoable unit.
func (s *Store) SaveLearnedWordsSession(session LearnedWordsSession) error {
	wordsJSON, err := json.Marshal(session.Words)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	appName, bundleID, windowTitle, category := nullableAppFields(session.AppContext)
	_, err = s.db.Exec(
		`INSERT INTO learned_words_sessions (id, words, app_name, bundle_id, window_title, app_category, undone, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		session.ID, string(wordsJSON), appName, bundleID, windowTitle, category,
		boolToInt(session.Undone), nowRFC3339(),
	)
	return err
}

// MarkLearnedWordsSessionUndone flags a session as undone, so it is no
// longer returned by GetUndoableLearnedWordsSessions.
func (s *Store) MarkLearnedWordsSessionUndone(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`UPDATE learned_words_sessions SET undone = 1 WHERE id = ?`, id)
	return err
}

// GetUndoableLearnedWordsSessions returns up to limit not-yet-undone
// sessions, newest first.
func (s *Store) GetUndoableLearnedWordsSessions(limit int) ([]LearnedWordsSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(
		`SELECT id, words, app_name, bundle_id, window_title, app_category, undone, created_at
		 FROM learned_words_sessions WHERE undone = 0 ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LearnedWordsSession
	for rows.Next() {
		var session LearnedWordsSession
		var wordsJSON string
		var appName, bundleID, windowTitle, category, createdAt *string
		var undone int
		if err := rows.Scan(&session.ID, &wordsJSON, &appName, &bundleID, &windowTitle, &category, &undone, &createdAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(wordsJSON), &session.Words); err != nil {
			return nil, err
		}
		session.AppContext = scanAppContext(appName, bundleID, windowTitle, category)
		session.Undone = undone != 0
		if createdAt != nil {
			session.CreatedAt = parseTime(*createdAt)
		}
		out = append(out, session)
	}
	return out, rows.Err()
}
