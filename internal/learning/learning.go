// Package learning implements the self-learning typo-correction cache: it
// watches before/after transcript edits, scores word-level changes with
// Jaro-Winkler similarity, and accumulates enough confidence in a
// correction before auto-applying it to future transcripts.
package learning

import (
	"context"
	"math"
	"strings"
	"sync"
	"unicode"

	"github.com/antzucaro/matchr"
)

// Tunable thresholds, named and valued exactly as the original engine.
const (
	minSimilarity           = 0.7
	minAutoApplyConfidence  = 0.55
	maxLengthDiff           = 1
	alignWordsMinSimilarity = 0.5
)

// CorrectionSource records why a correction exists in the store.
type CorrectionSource string

const (
	SourceUserEdit      CorrectionSource = "user_edit"
	SourceClipboardDiff CorrectionSource = "clipboard_diff"
	SourceImported      CorrectionSource = "imported"
	SourceSeed          CorrectionSource = "seeded"
)

// Correction is a single learned original -> corrected mapping, persisted
// by the Store and cached in-memory once confident enough.
type Correction struct {
	ID          string
	Original    string
	Corrected   string
	Occurrences int
	Confidence  float32
	Source      CorrectionSource
}

// UpdateConfidence recomputes Confidence from Occurrences using the
// logarithmic scaling formula: 0.5 + 0.5*(1 - 1/ln(occurrences + e)),
// capped at 0.99.
func (c *Correction) UpdateConfidence() {
	c.Confidence = float32(0.5 + 0.5*(1-1/math.Log(float64(c.Occurrences)+math.E)))
	if c.Confidence > 0.99 {
		c.Confidence = 0.99
	}
}

// Store is the persistence surface learning depends on. The concrete
// implementation lives in internal/store; kept as a narrow interface here
// so this package has no compile-time dependency on the database layer.
type Store interface {
	SaveCorrection(ctx context.Context, c *Correction) error
	GetCorrections(ctx context.Context, minConfidence float32) ([]Correction, error)
}

type cachedCorrection struct {
	corrected  string
	confidence float32
}

// Engine learns and applies typo corrections.
type Engine struct {
	mu            sync.RWMutex
	corrections   map[string]cachedCorrection
	minConfidence float32
}

// NewEngine returns an empty engine with the default auto-apply threshold.
func NewEngine() *Engine {
	return &Engine{
		corrections:   make(map[string]cachedCorrection),
		minConfidence: minAutoApplyConfidence,
	}
}

// LoadFromStore populates the cache from every correction the store has at
// or above the default auto-apply confidence.
func (e *Engine) LoadFromStore(ctx context.Context, store Store) error {
	corrections, err := store.GetCorrections(ctx, minAutoApplyConfidence)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, c := range corrections {
		e.corrections[strings.ToLower(c.Original)] = cachedCorrection{corrected: c.Corrected, confidence: c.Confidence}
	}
	return nil
}

// SetMinConfidence clamps and sets the auto-apply confidence threshold.
func (e *Engine) SetMinConfidence(confidence float32) {
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.minConfidence = confidence
}

// LearnedCorrection is one typo correction detected by LearnFromEdit.
type LearnedCorrection struct {
	Original   string
	Corrected  string
	Similarity float64
}

// LearnFromEdit compares original/edited text word-by-word, persists any
// high-similarity substitution as a correction (incrementing occurrences
// if it already exists), and promotes it into the in-memory cache once its
// confidence clears the auto-apply threshold.
func (e *Engine) LearnFromEdit(ctx context.Context, original, edited string, store Store) ([]LearnedCorrection, error) {
	originalWords := strings.Fields(original)
	editedWords := strings.Fields(edited)

	var learned []LearnedCorrection
	pairs := alignWords(originalWords, editedWords)

	for _, p := range pairs {
		orig, edit := p[0], p[1]
		if strings.EqualFold(orig, edit) {
			continue
		}

		similarity := matchr.JaroWinkler(orig, edit, false)
		if similarity < minSimilarity {
			continue
		}

		lenDiff := len(orig) - len(edit)
		if lenDiff < 0 {
			lenDiff = -lenDiff
		}
		if lenDiff > maxLengthDiff {
			continue
		}

		correction := Correction{
			Original:    strings.ToLower(orig),
			Corrected:   edit,
			Occurrences: 1,
			Confidence:  0.5,
			Source:      SourceUserEdit,
		}
		if err := store.SaveCorrection(ctx, &correction); err != nil {
			return nil, err
		}

		correction.UpdateConfidence()
		if correction.Confidence >= e.minConfidenceSnapshot() {
			e.mu.Lock()
			e.corrections[correction.Original] = cachedCorrection{corrected: correction.Corrected, confidence: correction.Confidence}
			e.mu.Unlock()
		}

		learned = append(learned, LearnedCorrection{Original: orig, Corrected: edit, Similarity: similarity})
	}

	return learned, nil
}

func (e *Engine) minConfidenceSnapshot() float32 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.minConfidence
}

// AppliedCorrection is one correction applied to a piece of text.
type AppliedCorrection struct {
	Original   string
	Corrected  string
	Confidence float32
	Position   int
}

// ApplyCorrections replaces every cached, above-threshold word in text with
// its learned correction, preserving the original word's case pattern.
func (e *Engine) ApplyCorrections(text string) (string, []AppliedCorrection) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if len(e.corrections) == 0 {
		return text, nil
	}

	words := strings.Fields(text)
	var applied []AppliedCorrection

	for i, word := range words {
		lower := strings.ToLower(word)
		cached, ok := e.corrections[lower]
		if !ok || cached.confidence < e.minConfidence {
			continue
		}

		original := word
		words[i] = matchCase(cached.corrected, original)

		applied = append(applied, AppliedCorrection{
			Original:   original,
			Corrected:  words[i],
			Confidence: cached.confidence,
			Position:   i,
		})
	}

	return strings.Join(words, " "), applied
}

// HasCorrection reports whether a cached correction exists for word,
// regardless of its confidence.
func (e *Engine) HasCorrection(word string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.corrections[strings.ToLower(word)]
	return ok
}

// GetCorrection returns the cached correction for word if it meets the
// auto-apply confidence threshold.
func (e *Engine) GetCorrection(word string) (string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	c, ok := e.corrections[strings.ToLower(word)]
	if !ok || c.confidence < e.minConfidence {
		return "", false
	}
	return c.corrected, true
}

// AllCorrection is one row returned by GetAllCorrections.
type AllCorrection struct {
	Original   string
	Corrected  string
	Confidence float32
}

// GetAllCorrections returns every cached correction, in no particular order.
func (e *Engine) GetAllCorrections() []AllCorrection {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]AllCorrection, 0, len(e.corrections))
	for orig, c := range e.corrections {
		out = append(out, AllCorrection{Original: orig, Corrected: c.corrected, Confidence: c.confidence})
	}
	return out
}

// ClearCache empties the in-memory correction cache.
func (e *Engine) ClearCache() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.corrections = make(map[string]cachedCorrection)
}

// CacheSize returns the number of cached corrections.
func (e *Engine) CacheSize() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.corrections)
}

// RemoveFromCache drops a single correction from the cache.
func (e *Engine) RemoveFromCache(original string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.corrections, strings.ToLower(original))
}

// ReloadFromStore clears and repopulates the cache from the store, using
// the engine's current confidence threshold rather than the default.
func (e *Engine) ReloadFromStore(ctx context.Context, store Store) error {
	e.mu.RLock()
	threshold := e.minConfidence
	e.mu.RUnlock()

	corrections, err := store.GetCorrections(ctx, threshold)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.corrections = make(map[string]cachedCorrection, len(corrections))
	for _, c := range corrections {
		e.corrections[strings.ToLower(c.Original)] = cachedCorrection{corrected: c.Corrected, confidence: c.Confidence}
	}
	return nil
}

// alignWords pairs up original/edited tokens positionally, tolerating a
// single insertion or deletion at a time by looking one token ahead on
// whichever side scores a better Jaro-Winkler match. This is a heuristic,
// not a true alignment: on runs of dissimilar tokens it can mis-pair words
// that a full edit-distance alignment (see internal/alignment) would not.
// That tradeoff is intentional here — see the "below threshold" test for
// the documented limitation this carries forward unchanged from the
// original engine.
func alignWords(original, edited []string) [][2]string {
	var pairs [][2]string

	origIdx, editIdx := 0, 0
	for origIdx < len(original) && editIdx < len(edited) {
		orig := original[origIdx]
		edit := edited[editIdx]

		sim := matchr.JaroWinkler(orig, edit, false)
		if sim >= alignWordsMinSimilarity {
			pairs = append(pairs, [2]string{orig, edit})
			origIdx++
			editIdx++
			continue
		}

		skipOrig := origIdx+1 < len(original) && matchr.JaroWinkler(original[origIdx+1], edit, false) > sim
		skipEdit := editIdx+1 < len(edited) && matchr.JaroWinkler(orig, edited[editIdx+1], false) > sim

		switch {
		case skipOrig && !skipEdit:
			origIdx++
		case skipEdit && !skipOrig:
			editIdx++
		default:
			origIdx++
			editIdx++
		}
	}

	return pairs
}

// matchCase reshapes corrected to mimic original's case pattern: all-caps
// stays all-caps, title-case stays title-case, anything else keeps
// corrected's own casing.
func matchCase(corrected, original string) string {
	if original == "" {
		return corrected
	}

	if isAllUpper(original) {
		return strings.ToUpper(corrected)
	}

	if isTitleCase(original) {
		return toTitleCase(corrected)
	}

	return corrected
}

func isAllUpper(s string) bool {
	for _, r := range s {
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

func isTitleCase(s string) bool {
	runes := []rune(s)
	if len(runes) == 0 || !unicode.IsUpper(runes[0]) {
		return false
	}
	for _, r := range runes[1:] {
		if !unicode.IsLower(r) {
			return false
		}
	}
	return true
}

func toTitleCase(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	out := make([]rune, len(runes))
	out[0] = unicode.ToUpper(runes[0])
	for i, r := range runes[1:] {
		out[i+1] = unicode.ToLower(r)
	}
	return string(out)
}
