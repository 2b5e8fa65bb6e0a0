package store

import (
	"fmt"
	"strings"
)

type migration struct {
	name string
	sql  string
}

var migrations = []migration{
	{
		name: "001_init",
		sql: `
		CREATE TABLE IF NOT EXISTS transcriptions (
			id TEXT PRIMARY KEY,
			raw_text TEXT NOT NULL,
			processed_text TEXT NOT NULL,
			confidence REAL NOT NULL,
			duration_ms INTEGER NOT NULL,
			app_name TEXT,
			bundle_id TEXT,
			window_title TEXT,
			app_category TEXT,
			created_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS transcription_history (
			id TEXT PRIMARY KEY,
			status TEXT NOT NULL,
			text TEXT NOT NULL,
			error TEXT,
			duration_ms INTEGER NOT NULL,
			app_name TEXT,
			bundle_id TEXT,
			window_title TEXT,
			app_category TEXT,
			created_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS shortcuts (
			id TEXT PRIMARY KEY,
			trigger TEXT NOT NULL UNIQUE,
			replacement TEXT NOT NULL,
			case_sensitive INTEGER NOT NULL DEFAULT 0,
			enabled INTEGER NOT NULL DEFAULT 1,
			use_count INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS corrections (
			id TEXT PRIMARY KEY,
			original TEXT NOT NULL,
			corrected TEXT NOT NULL,
			occurrences INTEGER NOT NULL DEFAULT 1,
			confidence REAL NOT NULL DEFAULT 0.5,
			source TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			UNIQUE(original, corrected)
		);

		CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_transcriptions_created ON transcriptions(created_at);
		CREATE INDEX IF NOT EXISTS idx_shortcuts_trigger ON shortcuts(trigger);
		CREATE INDEX IF NOT EXISTS idx_corrections_original ON corrections(original);
		CREATE INDEX IF NOT EXISTS idx_transcription_history_created ON transcription_history(created_at);
		`,
	},
	{
		name: "002_events",
		sql: `
		CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			event_type TEXT NOT NULL,
			properties TEXT NOT NULL,
			app_name TEXT,
			bundle_id TEXT,
			window_title TEXT,
			app_category TEXT,
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_events_type ON events(event_type);
		CREATE INDEX IF NOT EXISTS idx_events_created ON events(created_at);
		`,
	},
	{
		name: "003_modes_style",
		sql: `
		CREATE TABLE IF NOT EXISTS app_modes (
			app_name TEXT PRIMARY KEY,
			writing_mode TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS style_samples (
			id TEXT PRIMARY KEY,
			app_name TEXT NOT NULL,
			sample_text TEXT NOT NULL,
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_style_samples_app ON style_samples(app_name);
		`,
	},
	{
		name: "004_contacts",
		sql: `
		CREATE TABLE IF NOT EXISTS contacts (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			organization TEXT,
			category TEXT NOT NULL,
			frequency INTEGER NOT NULL DEFAULT 0,
			last_contacted TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_contacts_name ON contacts(name);
		CREATE INDEX IF NOT EXISTS idx_contacts_frequency ON contacts(frequency DESC);
		`,
	},
	{
		// tolerant: a "duplicate column name" error is ignored. 001_init
		// creates transcription_history without raw_text, so every install
		// gets the column from this migration.
		name: "005_raw_text",
		sql:  `ALTER TABLE transcription_history ADD COLUMN raw_text TEXT NOT NULL DEFAULT ''`,
	},
	{
		name: "006_learned_words_sessions",
		sql: `
		CREATE TABLE IF NOT EXISTS learned_words_sessions (
			id TEXT PRIMARY KEY,
			words TEXT NOT NULL,
			app_name TEXT,
			bundle_id TEXT,
			window_title TEXT,
			app_category TEXT,
			undone INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_learned_sessions_created ON learned_words_sessions(created_at);
		`,
	},
}

// migrate runs every not-yet-applied migration in order, recording each
// one's name in _migrations. A migration whose statement fails because
// it would add a column that already exists is tolerated and still
// recorded as applied (matches the ALTER TABLE ADD COLUMN case, which
// SQLite has no IF NOT EXISTS form for).
func (s *Store) migrate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS _migrations (
			name TEXT PRIMARY KEY,
			applied_at TEXT NOT NULL
		)`); err != nil {
		return fmt.Errorf("create _migrations table: %w", err)
	}

	applied := make(map[string]bool)
	rows, err := s.db.Query(`SELECT name FROM _migrations`)
	if err != nil {
		return err
	}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return err
		}
		applied[name] = true
	}
	rows.Close()

	for _, m := range migrations {
		if applied[m.name] {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil && !isDuplicateColumnError(err) {
			return fmt.Errorf("migration %s: %w", m.name, err)
		}
		if _, err := s.db.Exec(`INSERT INTO _migrations (name, applied_at) VALUES (?, ?)`, m.name, nowRFC3339()); err != nil {
			return fmt.Errorf("record migration %s: %w", m.name, err)
		}
	}
	return nil
}

func isDuplicateColumnError(err error) bool {
	return strings.Contains(err.Error(), "duplicate column name")
}
