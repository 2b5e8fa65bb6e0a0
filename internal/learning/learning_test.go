package learning

import (
	"testing"

	"github.com/antzucaro/matchr"
)

func TestApplyCorrections(t *testing.T) {
	e := NewEngine()
	e.corrections["teh"] = cachedCorrection{corrected: "the", confidence: 0.95}
	e.corrections["recieve"] = cachedCorrection{corrected: "receive", confidence: 0.9}

	result, applied := e.ApplyCorrections("I will recieve teh package")

	if result != "I will receive the package" {
		t.Fatalf("result = %q", result)
	}
	if len(applied) != 2 {
		t.Fatalf("applied = %v, want 2", applied)
	}
}

func TestCaseMatching(t *testing.T) {
	cases := []struct{ corrected, original, want string }{
		{"the", "TEH", "THE"},
		{"the", "Teh", "The"},
		{"the", "teh", "the"},
	}
	for _, c := range cases {
		if got := matchCase(c.corrected, c.original); got != c.want {
			t.Errorf("matchCase(%q, %q) = %q, want %q", c.corrected, c.original, got, c.want)
		}
	}
}

func TestWordAlignment(t *testing.T) {
	original := []string{"I", "recieve", "teh", "mail"}
	edited := []string{"I", "receive", "the", "mail"}

	pairs := alignWords(original, edited)

	if len(pairs) != 4 {
		t.Fatalf("pairs = %v, want 4", pairs)
	}
	if pairs[1] != [2]string{"recieve", "receive"} {
		t.Fatalf("pairs[1] = %v, want recieve/receive", pairs[1])
	}
	if pairs[2] != [2]string{"teh", "the"} {
		t.Fatalf("pairs[2] = %v, want teh/the", pairs[2])
	}
}

func TestWordAlignmentBelowCorrectionThreshold(t *testing.T) {
	// Known limitation carried over from the original engine: align_words
	// pairs "teh"/"the" at a similarity (~0.56) below MIN_SIMILARITY
	// (0.7), so the pair is produced by alignment but never promoted to a
	// correction. This test documents that behavior rather than "fixing"
	// it, matching the Open Question resolution to preserve the original
	// heuristic's known mis-pairing tradeoff.
	sim := matchr.JaroWinkler("teh", "the", false)
	if sim >= minSimilarity {
		t.Fatalf("teh/the similarity = %v, expected below MIN_SIMILARITY (%v) to exercise the known limitation", sim, minSimilarity)
	}

	original := []string{"teh"}
	edited := []string{"the"}
	pairs := alignWords(original, edited)
	if len(pairs) != 1 || pairs[0] != [2]string{"teh", "the"} {
		t.Fatalf("pairs = %v, want [[teh the]] even though it falls below the correction threshold", pairs)
	}
}

func TestSimilarityThreshold(t *testing.T) {
	if sim := matchr.JaroWinkler("hello", "world", false); sim >= minSimilarity {
		t.Fatalf("hello/world similarity = %v, want < %v", sim, minSimilarity)
	}
	if sim := matchr.JaroWinkler("recieve", "receive", false); sim < minSimilarity {
		t.Fatalf("recieve/receive similarity = %v, want >= %v", sim, minSimilarity)
	}
}

func TestConfidenceBelowThreshold(t *testing.T) {
	e := NewEngine()
	e.SetMinConfidence(0.9)
	e.corrections["foo"] = cachedCorrection{corrected: "bar", confidence: 0.5}

	result, applied := e.ApplyCorrections("test foo here")

	if result != "test foo here" {
		t.Fatalf("result = %q, want unchanged", result)
	}
	if len(applied) != 0 {
		t.Fatalf("applied = %v, want none", applied)
	}
}

func TestUpdateConfidenceScalesWithOccurrences(t *testing.T) {
	c := Correction{Occurrences: 1}
	c.UpdateConfidence()
	first := c.Confidence

	c.Occurrences = 10
	c.UpdateConfidence()
	tenth := c.Confidence

	if !(tenth > first) {
		t.Fatalf("confidence should increase with occurrences: first=%v tenth=%v", first, tenth)
	}
	if tenth > 0.99 {
		t.Fatalf("confidence = %v, want capped at 0.99", tenth)
	}
}

func TestCacheManagement(t *testing.T) {
	e := NewEngine()
	e.corrections["foo"] = cachedCorrection{corrected: "bar", confidence: 0.9}

	if !e.HasCorrection("FOO") {
		t.Fatalf("expected case-insensitive lookup to find correction")
	}
	if got, ok := e.GetCorrection("foo"); !ok || got != "bar" {
		t.Fatalf("GetCorrection = %q, %v", got, ok)
	}
	if e.CacheSize() != 1 {
		t.Fatalf("cache size = %d, want 1", e.CacheSize())
	}

	e.RemoveFromCache("foo")
	if e.CacheSize() != 0 {
		t.Fatalf("cache size after remove = %d, want 0", e.CacheSize())
	}

	e.corrections["baz"] = cachedCorrection{corrected: "qux", confidence: 0.9}
	e.ClearCache()
	if e.CacheSize() != 0 {
		t.Fatalf("cache size after clear = %d, want 0", e.CacheSize())
	}
}
