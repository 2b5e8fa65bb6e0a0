package store

// SaveEvent persists an analytics event.
func (s *Store) SaveEvent(e AnalyticsEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	appName, bundleID, windowTitle, category := nullableAppFields(e.AppContext)
	_, err := s.db.Exec(
		`INSERT INTO events (id, event_type, properties, app_name, bundle_id, window_title, app_category, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, string(e.Type), e.Properties, appName, bundleID, windowTitle, category, nowRFC3339(),
	)
	return err
}

// GetEventsByType returns up to limit events of the given type, newest first.
func (s *Store) GetEventsByType(eventType EventType, limit int) ([]AnalyticsEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(
		`SELECT id, event_type, properties, app_name, bundle_id, window_title, app_category, created_at
		 FROM events WHERE event_type = ? ORDER BY created_at DESC LIMIT ?`,
		string(eventType), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AnalyticsEvent
	for rows.Next() {
		var e AnalyticsEvent
		var typ string
		var appName, bundleID, windowTitle, category, createdAt *string
		if err := rows.Scan(&e.ID, &typ, &e.Properties, &appName, &bundleID, &windowTitle, &category, &createdAt); err != nil {
			return nil, err
		}
		e.Type = EventType(typ)
		e.AppContext = scanAppContext(appName, bundleID, windowTitle, category)
		if createdAt != nil {
			e.CreatedAt = parseTime(*createdAt)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
