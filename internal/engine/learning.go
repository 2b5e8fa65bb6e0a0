package engine

import (
	"context"
	"encoding/json"

	"github.com/leonardotrapani/flowwispr/internal/learning"
)

// LearnFromEdit compares original and edited text, persists any
// high-confidence word-level corrections, and caches them for future
// auto-apply.
func (e *Engine) LearnFromEdit(ctx context.Context, original, edited string) ([]learning.LearnedCorrection, error) {
	learned, err := e.learningEngine.LearnFromEdit(ctx, original, edited, e.store)
	if err != nil {
		wrapped := newEngineError(KindStorage, "learn from edit", err)
		e.setLastError(wrapped)
		return nil, wrapped
	}
	e.setLastError(nil)
	return learned, nil
}

// GetCorrectionsJSON returns every persisted correction as a JSON array.
func (e *Engine) GetCorrectionsJSON() (string, error) {
	all, err := e.store.GetAllCorrections()
	if err != nil {
		return "", newEngineError(KindStorage, "get corrections", err)
	}
	data, err := json.Marshal(all)
	if err != nil {
		return "", newEngineError(KindSerialization, "marshal corrections", err)
	}
	return string(data), nil
}

// DeleteCorrection removes a single persisted correction by ID and, if
// found, evicts it from the in-memory cache too.
func (e *Engine) DeleteCorrection(id string) (bool, error) {
	all, err := e.store.GetAllCorrections()
	if err != nil {
		return false, newEngineError(KindStorage, "get corrections", err)
	}

	ok, err := e.store.DeleteCorrection(id)
	if err != nil {
		return false, newEngineError(KindStorage, "delete correction", err)
	}

	for _, c := range all {
		if c.ID == id {
			e.learningEngine.RemoveFromCache(c.Original)
			break
		}
	}
	return ok, nil
}

// DeleteAllCorrections clears every persisted correction and the
// in-memory cache, returning the number of rows removed.
func (e *Engine) DeleteAllCorrections() (int64, error) {
	count, err := e.store.DeleteAllCorrections()
	if err != nil {
		return 0, newEngineError(KindStorage, "delete all corrections", err)
	}
	e.learningEngine.ClearCache()
	return count, nil
}
