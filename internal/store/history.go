package store

// SaveHistoryEntry persists a transcription history entry (success or
// failure), regardless of whether the dictation was ultimately injected.
func (s *Store) SaveHistoryEntry(e TranscriptionHistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	appName, bundleID, windowTitle, category := nullableAppFields(e.AppContext)
	_, err := s.db.Exec(
		`INSERT INTO transcription_history (id, status, text, raw_text, error, duration_ms,
		                                     app_name, bundle_id, window_title, app_category, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, string(e.Status), e.Text, e.RawText, nullString(e.Error), e.DurationMs,
		appName, bundleID, windowTitle, category, nowRFC3339(),
	)
	return err
}

// GetRecentHistory returns up to limit history entries, newest first.
func (s *Store) GetRecentHistory(limit int) ([]TranscriptionHistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(
		`SELECT id, status, text, raw_text, error, duration_ms,
		        app_name, bundle_id, window_title, app_category, created_at
		 FROM transcription_history ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TranscriptionHistoryEntry
	for rows.Next() {
		var e TranscriptionHistoryEntry
		var status string
		var rawText, errText *string
		var appName, bundleID, windowTitle, category, createdAt *string
		if err := rows.Scan(&e.ID, &status, &e.Text, &rawText, &errText, &e.DurationMs,
			&appName, &bundleID, &windowTitle, &category, &createdAt); err != nil {
			return nil, err
		}
		e.Status = TranscriptionStatus(status)
		if e.Status != StatusSuccess && e.Status != StatusFailed {
			e.Status = StatusFailed
		}
		if rawText != nil {
			e.RawText = *rawText
		}
		if errText != nil {
			e.Error = *errText
		}
		e.AppContext = scanAppContext(appName, bundleID, windowTitle, category)
		if createdAt != nil {
			e.CreatedAt = parseTime(*createdAt)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
