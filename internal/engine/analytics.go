package engine

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/leonardotrapani/flowwispr/internal/store"
)

// SaveEditAnalytics records a user-behavior analytics event with an
// arbitrary JSON-serializable properties payload, tagged with the
// currently tracked app context.
func (e *Engine) SaveEditAnalytics(eventType store.EventType, properties any) error {
	data, err := json.Marshal(properties)
	if err != nil {
		return newEngineError(KindSerialization, "marshal analytics properties", err)
	}

	if err := e.store.SaveEvent(store.AnalyticsEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		Properties: string(data),
		AppContext: e.currentAppSnapshot(),
	}); err != nil {
		wrapped := newEngineError(KindStorage, "save analytics event", err)
		e.setLastError(wrapped)
		return wrapped
	}
	e.setLastError(nil)
	return nil
}

// SaveLearnedWordsSession persists a batch of learned word corrections as
// one undoable unit, returning the session's ID.
func (e *Engine) SaveLearnedWordsSession(words []store.LearnedWord) (string, error) {
	session := store.LearnedWordsSession{
		ID:         uuid.NewString(),
		Words:      words,
		AppContext: e.currentAppSnapshot(),
	}
	if err := e.store.SaveLearnedWordsSession(session); err != nil {
		wrapped := newEngineError(KindStorage, "save learned words session", err)
		e.setLastError(wrapped)
		return "", wrapped
	}
	e.setLastError(nil)
	return session.ID, nil
}

// UndoLearnedWords marks a learned-words session as undone so it no
// longer appears in GetUndoableLearnedWords. The session's corrections
// stay in the in-memory cache and in the store.
func (e *Engine) UndoLearnedWords(sessionID string) error {
	if err := e.store.MarkLearnedWordsSessionUndone(sessionID); err != nil {
		wrapped := newEngineError(KindStorage, "undo learned words", err)
		e.setLastError(wrapped)
		return wrapped
	}
	e.setLastError(nil)
	return nil
}

// GetUndoableLearnedWords returns up to limit not-yet-undone learned-words
// sessions as JSON, newest first.
func (e *Engine) GetUndoableLearnedWords(limit int) (string, error) {
	sessions, err := e.store.GetUndoableLearnedWordsSessions(limit)
	if err != nil {
		return "", newEngineError(KindStorage, "get undoable learned words", err)
	}
	data, err := json.Marshal(sessions)
	if err != nil {
		return "", newEngineError(KindSerialization, "marshal learned words sessions", err)
	}
	return string(data), nil
}
