package engine

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/leonardotrapani/flowwispr/internal/shortcuts"
)

// AddShortcut registers a new trigger -> replacement mapping, persists
// it, and reloads the matching automaton.
func (e *Engine) AddShortcut(trigger, replacement string) error {
	sc := shortcuts.NewShortcut(trigger, replacement)
	if err := e.store.SaveShortcut(sc); err != nil {
		wrapped := newEngineError(KindStorage, "save shortcut", err)
		e.setLastError(wrapped)
		return wrapped
	}
	e.shortcutsEngine.AddShortcut(sc)
	e.setLastError(nil)
	return nil
}

// RemoveShortcut deletes the shortcut matching trigger.
func (e *Engine) RemoveShortcut(trigger string) error {
	all := e.shortcutsEngine.GetAll()
	for _, sc := range all {
		if sc.Trigger == trigger {
			if err := e.store.DeleteShortcut(sc.ID); err != nil {
				wrapped := newEngineError(KindStorage, "delete shortcut", err)
				e.setLastError(wrapped)
				return wrapped
			}
			e.shortcutsEngine.RemoveShortcut(trigger)
			e.setLastError(nil)
			return nil
		}
	}
	return newEngineError(KindConfig, "remove shortcut", fmt.Errorf("unknown trigger %q", trigger))
}

// GetShortcutsJSON returns every loaded shortcut as a JSON array.
func (e *Engine) GetShortcutsJSON() (string, error) {
	all := e.shortcutsEngine.GetAll()
	data, err := json.Marshal(all)
	if err != nil {
		return "", newEngineError(KindSerialization, "marshal shortcuts", err)
	}
	return string(data), nil
}

// buildShortcutPreservation builds the completion system prompt's
// shortcut-preservation directive from the triggers that fired in this
// dictation, so the formatting pass doesn't rephrase their replacements.
func buildShortcutPreservation(triggered []shortcuts.TriggeredShortcut) string {
	if len(triggered) == 0 {
		return ""
	}
	replacements := make([]string, 0, len(triggered))
	seen := make(map[string]bool, len(triggered))
	for _, t := range triggered {
		if seen[t.Replacement] {
			continue
		}
		seen[t.Replacement] = true
		replacements = append(replacements, t.Replacement)
	}
	return "Keep these replacements verbatim, do not rephrase them: " + strings.Join(replacements, ", ")
}
