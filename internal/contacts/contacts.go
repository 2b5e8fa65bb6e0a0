// Package contacts classifies a contact name (and optional organization)
// into a relationship category using strict precedence rules, then tracks
// interaction frequency for the classified contacts (§4.7).
package contacts

import (
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/leonardotrapani/flowwispr/internal/matcher"
	"github.com/leonardotrapani/flowwispr/internal/modes"
)

// Category is the relationship bucket a contact is classified into.
type Category string

const (
	CategoryProfessional  Category = "professional"
	CategoryCloseFamily   Category = "close_family"
	CategoryCasualPeer    Category = "casual_peer"
	CategoryPartner       Category = "partner"
	CategoryFormalNeutral Category = "formal_neutral"
)

// AllCategories returns every defined category.
func AllCategories() []Category {
	return []Category{CategoryProfessional, CategoryCloseFamily, CategoryCasualPeer, CategoryPartner, CategoryFormalNeutral}
}

// SuggestedWritingMode maps a contact category to its default writing mode.
func (c Category) SuggestedWritingMode() modes.WritingMode {
	switch c {
	case CategoryProfessional:
		return modes.Formal
	case CategoryCloseFamily:
		return modes.Casual
	case CategoryCasualPeer:
		return modes.VeryCasual
	case CategoryPartner:
		return modes.Excited
	default:
		return modes.Formal
	}
}

// Input is what the classifier needs to categorize a contact.
type Input struct {
	Name         string
	Organization string
}

// Contact is a tracked contact with its classification and usage stats.
type Contact struct {
	ID            string
	Name          string
	Organization  string
	Category      Category
	Frequency     int
	LastContacted time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewContact builds a fresh Contact with zeroed interaction stats.
func NewContact(name, organization string, category Category) Contact {
	now := time.Now()
	return Contact{
		ID:           uuid.NewString(),
		Name:         name,
		Organization: organization,
		Category:     category,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// RecordInteraction increments frequency and stamps the interaction time.
func (c *Contact) RecordInteraction() {
	c.Frequency++
	now := time.Now()
	c.LastContacted = now
	c.UpdatedAt = now
}

var partnerKeywords = []string{
	"bae", "hubby", "wife", "wifey", "husband", "my love", "baby", "babe",
	"love", "honey", "sweetheart", "darling", "dear", "sweetie", "boo",
}

var familyKeywords = []string{
	"mom", "dad", "mama", "papa", "mother", "father", "grandma", "grandpa",
	"grandmother", "grandfather", "aunt", "uncle", "sister", "brother",
	"sis", "bro", "cousin", "nephew", "niece",
	"ice mom", "ice dad", "ice mama", "ice papa", "ice aunt", "ice uncle",
	"ice grandmother", "ice grandfather",
}

var professionalKeywords = []string{
	"dr.", "dr ", "prof.", "prof ", "professor", "boss", "manager", "coach",
	"director", "vp", "ceo", "cto", "cfo", "coo", "president", "supervisor",
	"lead", "senior", "jr.", "sr.", "attorney", "lawyer",
}

var professionalSuffixes = []string{"md", "phd", "cpa", "esq", "dds", "jd", "mba", "rn", "dvm", "do"}

var informalDescriptors = []string{"from gym", "roommate", "lol", "haha", "buddy", "pal"}

var casualEmojis = map[rune]bool{
	'🔥': true, '🍻': true, '🤪': true, '🍕': true, '🎮': true, '⚽': true, '🏀': true,
	'🎸': true, '🎉': true, '💪': true, '🤘': true, '🍺': true, '🎯': true, '🚀': true,
	'💯': true, '👊': true, '🤙': true, '😎': true, '🏆': true,
}

var partnerEmojis = map[rune]bool{
	'❤': true, '💕': true, '💖': true, '💗': true, '💘': true, '💝': true, '💞': true,
	'💟': true, '💙': true, '💚': true, '💛': true, '🧡': true, '💜': true, '🖤': true,
	'🤍': true, '🤎': true, '💋': true, '💍': true, '💑': true, '💏': true, '👩': true,
	'👨': true, '❣': true,
}

// Classifier categorizes contacts and tracks an in-memory contact cache.
type Classifier struct {
	partnerAutomaton      *matcher.Automaton
	familyAutomaton       *matcher.Automaton
	professionalAutomaton *matcher.Automaton
	suffixAutomaton       *matcher.Automaton

	mu       sync.RWMutex
	contacts map[string]Contact
}

// NewClassifier builds a classifier with the fixed lexicon tables compiled
// into shared Aho-Corasick automatons.
func NewClassifier() *Classifier {
	return &Classifier{
		partnerAutomaton:      matcher.Build(partnerKeywords),
		familyAutomaton:       matcher.Build(familyKeywords),
		professionalAutomaton: matcher.Build(professionalKeywords),
		suffixAutomaton:       matcher.Build(professionalSuffixes),
		contacts:              make(map[string]Contact),
	}
}

// Classify categorizes input using strict precedence: Partner overrides
// everything (including a non-empty Organization), then CloseFamily, then
// Professional, then CasualPeer, falling back to FormalNeutral.
func (c *Classifier) Classify(input Input) Category {
	nameLower := strings.ToLower(input.Name)
	nameTrimmed := strings.TrimSpace(input.Name)

	if hasPartnerEmoji(nameTrimmed) || c.partnerAutomaton.ContainsAny(nameLower) {
		return CategoryPartner
	}

	if c.familyAutomaton.ContainsAny(nameLower) {
		return CategoryCloseFamily
	}

	if input.Organization != "" {
		return CategoryProfessional
	}
	if c.professionalAutomaton.ContainsAny(nameLower) || c.hasProfessionalSuffix(nameLower) {
		return CategoryProfessional
	}

	if hasCasualEmoji(nameTrimmed) || isCasualNickname(nameTrimmed) {
		return CategoryCasualPeer
	}

	return CategoryFormalNeutral
}

// ClassifyBatch classifies every input concurrently, keyed by name. Used
// when importing a whole contact list at once so classification isn't
// serialized behind the automaton scans one name at a time.
func (c *Classifier) ClassifyBatch(inputs []Input) map[string]Category {
	out := make(map[string]Category, len(inputs))
	var mu sync.Mutex

	var g errgroup.Group
	for _, input := range inputs {
		input := input
		g.Go(func() error {
			category := c.Classify(input)
			mu.Lock()
			out[input.Name] = category
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	return out
}

func (c *Classifier) hasProfessionalSuffix(nameLower string) bool {
	words := strings.Fields(nameLower)
	if len(words) > 0 {
		cleaned := strings.TrimFunc(words[len(words)-1], func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if c.suffixAutomaton.ContainsAny(cleaned) {
			return true
		}
	}

	if idx := strings.Index(nameLower, ","); idx != -1 {
		afterComma := strings.TrimSpace(nameLower[idx+1:])
		if c.suffixAutomaton.ContainsAny(afterComma) {
			return true
		}
	}

	return false
}

func hasPartnerEmoji(name string) bool {
	for _, r := range name {
		if partnerEmojis[r] {
			return true
		}
	}
	return false
}

func hasCasualEmoji(name string) bool {
	for _, r := range name {
		if casualEmojis[r] {
			return true
		}
	}
	return false
}

func isCasualNickname(name string) bool {
	nameLower := strings.ToLower(name)
	for _, d := range informalDescriptors {
		if strings.Contains(nameLower, d) {
			return true
		}
	}

	hasLetters := false
	allLowercase := true
	for _, r := range name {
		if unicode.IsLetter(r) {
			hasLetters = true
		}
		if unicode.IsUpper(r) {
			allLowercase = false
		}
	}
	return hasLetters && allLowercase
}

// UpsertContact stores or replaces a contact in the in-memory cache.
func (c *Classifier) UpsertContact(contact Contact) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.contacts[contact.Name] = contact
}

// GetContact returns the cached contact by name, if present.
func (c *Classifier) GetContact(name string) (Contact, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	contact, ok := c.contacts[name]
	return contact, ok
}

// GetOrCreateContact returns the cached contact, or classifies and caches
// a new one from input.
func (c *Classifier) GetOrCreateContact(input Input) Contact {
	if existing, ok := c.GetContact(input.Name); ok {
		return existing
	}

	category := c.Classify(input)
	contact := NewContact(input.Name, input.Organization, category)
	c.UpsertContact(contact)
	return contact
}

// RecordInteraction bumps the cached contact's interaction stats, if found.
func (c *Classifier) RecordInteraction(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if contact, ok := c.contacts[name]; ok {
		contact.RecordInteraction()
		c.contacts[name] = contact
	}
}

// GetFrequentContacts returns up to limit contacts, sorted by descending
// interaction frequency.
func (c *Classifier) GetFrequentContacts(limit int) []Contact {
	c.mu.RLock()
	sorted := make([]Contact, 0, len(c.contacts))
	for _, contact := range c.contacts {
		sorted = append(sorted, contact)
	}
	c.mu.RUnlock()

	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j-1].Frequency < sorted[j].Frequency; j-- {
			sorted[j-1], sorted[j] = sorted[j], sorted[j-1]
		}
	}

	if limit >= 0 && limit < len(sorted) {
		sorted = sorted[:limit]
	}
	return sorted
}
