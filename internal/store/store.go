// Package store persists dictation data in a local embedded SQLite
// database: transcriptions and their history, shortcuts, learned
// corrections, analytics events, per-app writing modes and style
// samples, contacts, free-form settings, and learned-word undo
// sessions (§4.1). All writes are serialised through a single
// connection guarded by a mutex.
package store

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
	"sync"

	_ "modernc.org/sqlite"
)

// Store is the SQLite-backed persistence layer.
type Store struct {
	mu sync.Mutex
	db *sql.DB
}

// Open opens (creating if necessary) the SQLite database at path,
// applies any pending migrations, and seeds default corrections.
func Open(path string) (*Store, error) {
	dsn := path
	if !strings.Contains(dsn, "?") && dsn != ":memory:" {
		dsn += "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ping %s: %w", path, err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: migrate: %w", err)
	}
	if err := s.seedCorrections(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: seed corrections: %w", err)
	}

	log.Printf("Store: opened %s", path)
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

var seedCorrectionPairs = [][2]string{
	{"u of t hacks", "UofTHacks"},
	{"get hub", "GitHub"},
	{"anthropic", "Anthropic"},
	{"open ai", "OpenAI"},
	{"chat gpt", "ChatGPT"},
	{"gonna", "going to"},
	{"wanna", "want to"},
	{"kinda", "kind of"},
}

// seedCorrections inserts the fixed default-correction list, but only
// when the corrections table is still empty.
func (s *Store) seedCorrections() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM corrections`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := nowRFC3339()
	for _, pair := range seedCorrectionPairs {
		_, err := s.db.Exec(
			`INSERT INTO corrections (id, original, corrected, occurrences, confidence, source, created_at, updated_at)
			 VALUES (?, ?, ?, 3, 0.75, 'seeded', ?, ?)`,
			newID(), pair[0], pair[1], now, now,
		)
		if err != nil {
			return err
		}
	}
	log.Printf("Store: seeded %d default corrections", len(seedCorrectionPairs))
	return nil
}
