package matcher

import "testing"

func TestFindLeftmostLongestPrefersLongerPattern(t *testing.T) {
	a := Build([]string{"foo", "foobar"})
	matches := a.FindLeftmostLongest("test foobar here")
	if len(matches) != 1 {
		t.Fatalf("matches = %v, want 1", matches)
	}
	if matches[0].PatternIndex != 1 || matches[0].Start != 5 || matches[0].End != 11 {
		t.Fatalf("match = %+v, want pattern 1 at [5,11)", matches[0])
	}
}

func TestFindLeftmostLongestNoMatch(t *testing.T) {
	a := Build([]string{"test"})
	if matches := a.FindLeftmostLongest("no match here"); len(matches) != 0 {
		t.Fatalf("matches = %v, want none", matches)
	}
}

func TestFindLeftmostLongestMultiple(t *testing.T) {
	a := Build([]string{"my linkedin", "my email"})
	matches := a.FindLeftmostLongest("check out my linkedin and send to my email")
	if len(matches) != 2 {
		t.Fatalf("matches = %v, want 2", matches)
	}
	if matches[0].PatternIndex != 0 || matches[1].PatternIndex != 1 {
		t.Fatalf("matches = %+v, want [0,1]", matches)
	}
}

func TestContainsAny(t *testing.T) {
	a := Build([]string{"test"})
	if !a.ContainsAny("this is a test") {
		t.Fatalf("expected match")
	}
	if a.ContainsAny("no match here") {
		t.Fatalf("expected no match")
	}
}

func TestEmptyPatternSet(t *testing.T) {
	a := Build(nil)
	if a.ContainsAny("anything") {
		t.Fatalf("empty automaton should never match")
	}
	if matches := a.FindLeftmostLongest("anything"); matches != nil {
		t.Fatalf("matches = %v, want nil", matches)
	}
}

func TestOverlappingAtSamePosition(t *testing.T) {
	a := Build([]string{"a", "ab", "abc"})
	matches := a.FindLeftmostLongest("abcd")
	if len(matches) != 1 || matches[0].PatternIndex != 2 {
		t.Fatalf("matches = %+v, want single longest match (abc)", matches)
	}
}
