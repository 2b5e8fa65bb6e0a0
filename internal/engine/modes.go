package engine

import "github.com/leonardotrapani/flowwispr/internal/modes"

// SetAppMode persists a writing-mode override for appName and updates the
// in-memory cache.
func (e *Engine) SetAppMode(appName string, mode modes.WritingMode) error {
	if err := e.modesEngine.SetModeWithStore(appName, mode, e.store); err != nil {
		wrapped := newEngineError(KindStorage, "save app mode", err)
		e.setLastError(wrapped)
		return wrapped
	}
	e.setLastError(nil)
	return nil
}

// GetAppMode returns appName's effective writing mode (override, else
// the engine default).
func (e *Engine) GetAppMode(appName string) modes.WritingMode {
	return e.modesEngine.GetModeWithStore(appName, e.store)
}

// LearnStyle folds editedText into appName's rolling style observation
// and persists the sample for future replay.
func (e *Engine) LearnStyle(appName, editedText string) {
	e.styleLearner.ObserveWithStore(appName, editedText, e.store)
}

// GetStyleSuggestion returns the mode suggestion for appName based on its
// observed style, or 255-equivalent "no suggestion" (nil) if not enough
// samples have been observed yet.
func (e *Engine) GetStyleSuggestion(appName string) *modes.Suggestion {
	return e.styleLearner.SuggestMode(appName)
}
