package store

import "strings"

// GetTotalTranscriptionTimeMs sums duration_ms across every saved transcription.
func (s *Store) GetTotalTranscriptionTimeMs() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total int64
	err := s.db.QueryRow(`SELECT COALESCE(SUM(duration_ms), 0) FROM transcriptions`).Scan(&total)
	return total, err
}

// GetTranscriptionCount returns the number of saved transcriptions.
func (s *Store) GetTranscriptionCount() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	err := s.db.QueryRow(`SELECT COUNT(*) FROM transcriptions`).Scan(&count)
	return count, err
}

// GetTotalWordsDictated sums whitespace-delimited word counts across
// every transcription, preferring raw_text and falling back to
// processed_text when raw_text is empty.
func (s *Store) GetTotalWordsDictated() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT raw_text, processed_text FROM transcriptions`)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var total int64
	for rows.Next() {
		var rawText, processedText string
		if err := rows.Scan(&rawText, &processedText); err != nil {
			return 0, err
		}
		text := rawText
		if strings.TrimSpace(rawText) == "" {
			text = processedText
		}
		total += int64(len(strings.Fields(text)))
	}
	return total, rows.Err()
}
