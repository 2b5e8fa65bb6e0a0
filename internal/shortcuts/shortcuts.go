// Package shortcuts expands trigger phrases ("my linkedin") into their
// configured replacement text ("jsn.cam/li") during transcript
// post-processing, using a shared Aho-Corasick automaton for O(n)
// multi-pattern matching regardless of how many shortcuts are configured.
package shortcuts

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/leonardotrapani/flowwispr/internal/matcher"
)

// Shortcut is a single trigger -> replacement mapping.
type Shortcut struct {
	ID            string
	Trigger       string
	Replacement   string
	CaseSensitive bool
	Enabled       bool
	UseCount      int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewShortcut builds a Shortcut with a fresh ID and enabled by default.
func NewShortcut(trigger, replacement string) Shortcut {
	now := time.Now()
	return Shortcut{
		ID:          uuid.NewString(),
		Trigger:     trigger,
		Replacement: replacement,
		Enabled:     true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// TriggeredShortcut records one shortcut that fired during Process, along
// with the byte offset in the original text where the trigger started.
type TriggeredShortcut struct {
	Trigger     string
	Replacement string
	Position    int
}

// Engine matches configured shortcuts against transcripts and expands them.
type Engine struct {
	mu        sync.RWMutex
	automaton *matcher.Automaton
	shortcuts []Shortcut
}

// NewEngine returns an empty engine with no shortcuts loaded.
func NewEngine() *Engine {
	return &Engine{}
}

// LoadShortcuts replaces the full shortcut set and rebuilds the automaton.
func (e *Engine) LoadShortcuts(shortcuts []Shortcut) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.shortcuts = shortcuts
	e.rebuildLocked()
}

// AddShortcut appends a shortcut and rebuilds the automaton.
func (e *Engine) AddShortcut(s Shortcut) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.shortcuts = append(e.shortcuts, s)
	e.rebuildLocked()
}

// RemoveShortcut drops every shortcut whose trigger matches (case-insensitive)
// and rebuilds the automaton.
func (e *Engine) RemoveShortcut(trigger string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	lower := strings.ToLower(trigger)
	kept := e.shortcuts[:0:0]
	for _, s := range e.shortcuts {
		if strings.ToLower(s.Trigger) != lower {
			kept = append(kept, s)
		}
	}
	e.shortcuts = kept
	e.rebuildLocked()
}

func (e *Engine) rebuildLocked() {
	if len(e.shortcuts) == 0 {
		e.automaton = nil
		return
	}
	patterns := make([]string, len(e.shortcuts))
	for i, s := range e.shortcuts {
		if s.CaseSensitive {
			patterns[i] = s.Trigger
		} else {
			patterns[i] = strings.ToLower(s.Trigger)
		}
	}
	e.automaton = matcher.Build(patterns)
}

// Process expands every loaded shortcut triggered in text, returning the
// expanded string and the ordered list of triggers that fired with their
// byte offsets in the original (not expanded) text. The Enabled field is
// not checked: a loaded shortcut with Enabled false is expanded too.
func (e *Engine) Process(text string) (string, []TriggeredShortcut) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.automaton == nil {
		return text, nil
	}

	textLower := strings.ToLower(text)
	matches := e.automaton.FindLeftmostLongest(textLower)
	if len(matches) == 0 {
		return text, nil
	}

	var result strings.Builder
	result.Grow(len(text))
	triggered := make([]TriggeredShortcut, 0, len(matches))
	lastEnd := 0

	for _, m := range matches {
		shortcut := e.shortcuts[m.PatternIndex]
		result.WriteString(text[lastEnd:m.Start])
		result.WriteString(shortcut.Replacement)

		triggered = append(triggered, TriggeredShortcut{
			Trigger:     shortcut.Trigger,
			Replacement: shortcut.Replacement,
			Position:    m.Start,
		})

		lastEnd = m.End
	}
	result.WriteString(text[lastEnd:])

	return result.String(), triggered
}

// ContainsShortcuts reports whether text triggers any configured shortcut,
// without performing the (more expensive) expansion.
func (e *Engine) ContainsShortcuts(text string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.automaton == nil {
		return false
	}
	return e.automaton.ContainsAny(strings.ToLower(text))
}

// GetAll returns a copy of the currently loaded shortcuts.
func (e *Engine) GetAll() []Shortcut {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]Shortcut, len(e.shortcuts))
	copy(out, e.shortcuts)
	return out
}

// Count returns the number of loaded shortcuts.
func (e *Engine) Count() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.shortcuts)
}
