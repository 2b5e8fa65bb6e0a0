package store

// SaveTranscription persists a completed transcription.
func (s *Store) SaveTranscription(t Transcription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	appName, bundleID, windowTitle, category := nullableAppFields(t.AppContext)
	_, err := s.db.Exec(
		`INSERT INTO transcriptions (id, raw_text, processed_text, confidence, duration_ms,
		                              app_name, bundle_id, window_title, app_category, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.RawText, t.ProcessedText, t.Confidence, t.DurationMs,
		appName, bundleID, windowTitle, category, nowRFC3339(),
	)
	return err
}

// GetRecentTranscriptions returns up to limit transcriptions, newest first.
func (s *Store) GetRecentTranscriptions(limit int) ([]Transcription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(
		`SELECT id, raw_text, processed_text, confidence, duration_ms,
		        app_name, bundle_id, window_title, app_category, created_at
		 FROM transcriptions ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Transcription
	for rows.Next() {
		var t Transcription
		var appName, bundleID, windowTitle, category, createdAt *string
		if err := rows.Scan(&t.ID, &t.RawText, &t.ProcessedText, &t.Confidence, &t.DurationMs,
			&appName, &bundleID, &windowTitle, &category, &createdAt); err != nil {
			return nil, err
		}
		t.AppContext = scanAppContext(appName, bundleID, windowTitle, category)
		if createdAt != nil {
			t.CreatedAt = parseTime(*createdAt)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
