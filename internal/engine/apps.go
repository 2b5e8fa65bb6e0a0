package engine

import (
	"github.com/leonardotrapani/flowwispr/internal/apps"
	"github.com/leonardotrapani/flowwispr/internal/modes"
	"github.com/leonardotrapani/flowwispr/internal/store"
)

// SetActiveApp records the foreground app for the next dictation's app
// context, classifying its category, and returns the writing mode
// suggested for that category (the mode actually used is still the
// per-app override, if one is set).
func (e *Engine) SetActiveApp(name, bundleID, windowTitle string) modes.WritingMode {
	category := apps.CategoryFromApp(name, bundleID)

	e.mu.Lock()
	e.currentApp = &store.AppContext{
		AppName:     name,
		BundleID:    bundleID,
		WindowTitle: windowTitle,
		Category:    category,
	}
	e.mu.Unlock()

	return modes.SuggestedForCategory(category)
}

// GetCurrentApp returns the tracked foreground app's name, or "" if none
// is tracked.
func (e *Engine) GetCurrentApp() string {
	app := e.currentAppSnapshot()
	if app == nil {
		return ""
	}
	return app.AppName
}

// GetAppCategory returns the tracked foreground app's inferred category.
func (e *Engine) GetAppCategory() apps.Category {
	app := e.currentAppSnapshot()
	if app == nil {
		return apps.CategoryUnknown
	}
	return app.Category
}
