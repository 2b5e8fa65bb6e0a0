package engine

import "encoding/json"

// Stats summarizes cumulative dictation usage.
type Stats struct {
	TotalTranscriptionTimeMs int64 `json:"total_transcription_time_ms"`
	TranscriptionCount       int64 `json:"transcription_count"`
	TotalWordsDictated       int64 `json:"total_words_dictated"`
}

// GetStatsJSON returns aggregate usage stats as JSON.
func (e *Engine) GetStatsJSON() (string, error) {
	var stats Stats
	var err error

	stats.TotalTranscriptionTimeMs, err = e.store.GetTotalTranscriptionTimeMs()
	if err != nil {
		return "", newEngineError(KindStorage, "get stats", err)
	}
	stats.TranscriptionCount, err = e.store.GetTranscriptionCount()
	if err != nil {
		return "", newEngineError(KindStorage, "get stats", err)
	}
	stats.TotalWordsDictated, err = e.store.GetTotalWordsDictated()
	if err != nil {
		return "", newEngineError(KindStorage, "get stats", err)
	}

	data, err := json.Marshal(stats)
	if err != nil {
		return "", newEngineError(KindSerialization, "marshal stats", err)
	}
	return string(data), nil
}

// GetRecentTranscriptionsJSON returns up to limit recent transcriptions
// as JSON, newest first.
func (e *Engine) GetRecentTranscriptionsJSON(limit int) (string, error) {
	recent, err := e.store.GetRecentTranscriptions(limit)
	if err != nil {
		return "", newEngineError(KindStorage, "get recent transcriptions", err)
	}
	data, err := json.Marshal(recent)
	if err != nil {
		return "", newEngineError(KindSerialization, "marshal transcriptions", err)
	}
	return string(data), nil
}
