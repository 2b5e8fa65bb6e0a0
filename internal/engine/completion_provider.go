package engine

import "github.com/leonardotrapani/flowwispr/internal/completion"

const settingCompletionKind = "completion_kind"

// SetCompletionProvider swaps the active completion provider at runtime
// and persists the choice. Passing an empty kind disables completion;
// formatted output then falls back to the raw transcription text.
func (e *Engine) SetCompletionProvider(kind, apiKey, model string) error {
	var provider completion.Provider
	if kind != "" {
		p, err := completion.New(kind, apiKey, model)
		if err != nil {
			wrapped := newEngineError(KindConfig, "build completion provider", err)
			e.setLastError(wrapped)
			return wrapped
		}
		provider = p
	}

	e.providerMu.Lock()
	e.completioner = provider
	e.cfg.CompletionKind = kind
	e.cfg.CompletionAPIKey = apiKey
	e.cfg.CompletionModel = model
	e.providerMu.Unlock()

	if err := e.store.SetSetting(settingCompletionKind, kind); err != nil {
		e.logAndContinue("persist completion kind", err)
	}
	e.setLastError(nil)
	return nil
}

// SwitchCompletionProvider is an alias for SetCompletionProvider that
// keeps the existing API key and model, changing only the provider kind.
func (e *Engine) SwitchCompletionProvider(kind string) error {
	e.providerMu.RLock()
	apiKey, model := e.cfg.CompletionAPIKey, e.cfg.CompletionModel
	e.providerMu.RUnlock()
	return e.SetCompletionProvider(kind, apiKey, model)
}

// GetCompletionProvider returns the active completion provider's kind,
// or "" if completion is disabled.
func (e *Engine) GetCompletionProvider() string {
	e.providerMu.RLock()
	defer e.providerMu.RUnlock()
	return e.cfg.CompletionKind
}

// GetAPIKey returns the active completion provider's API key, masked to
// its last 4 characters so a host can display "configured" state without
// exposing the secret.
func (e *Engine) GetAPIKey() string {
	e.providerMu.RLock()
	key := e.cfg.CompletionAPIKey
	e.providerMu.RUnlock()

	if key == "" {
		return ""
	}
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}
