package engine

import (
	"github.com/leonardotrapani/flowwispr/internal/contacts"
	"github.com/leonardotrapani/flowwispr/internal/modes"
)

// ClassifyContact classifies name (with optional organization) into a
// relationship category, caching the result.
func (e *Engine) ClassifyContact(name, organization string) contacts.Contact {
	return e.contactsEngine.GetOrCreateContact(contacts.Input{Name: name, Organization: organization})
}

// ClassifyContactsBatch classifies every input, keyed by name.
func (e *Engine) ClassifyContactsBatch(inputs []contacts.Input) map[string]contacts.Category {
	return e.contactsEngine.ClassifyBatch(inputs)
}

// GetFrequentContacts returns up to limit contacts sorted by descending
// interaction frequency.
func (e *Engine) GetFrequentContacts(limit int) []contacts.Contact {
	return e.contactsEngine.GetFrequentContacts(limit)
}

// RecordContactInteraction bumps a contact's interaction stats.
func (e *Engine) RecordContactInteraction(name string) {
	e.contactsEngine.RecordInteraction(name)
}

// GetWritingModeForCategory maps a contact category to its default
// writing mode.
func (e *Engine) GetWritingModeForCategory(category contacts.Category) modes.WritingMode {
	return category.SuggestedWritingMode()
}
