package dedup

import (
	"context"
	"testing"
)

func TestDeduplicateSubstringAndTitle(t *testing.T) {
	names := []string{"Harry Potter", "Harry", "Hermione Granger", "Hermione", "Mr Dursley", "Dursley"}
	res := Deduplicate(context.Background(), names, Options{})

	canonicalFor := func(surface string) string {
		if c, ok := res.Aliases[surface]; ok {
			return c
		}
		return surface
	}

	if canonicalFor("Harry") != "Harry Potter" {
		t.Fatalf("expected Harry to merge into Harry Potter, got %q", canonicalFor("Harry"))
	}
	if canonicalFor("Hermione") != "Hermione Granger" {
		t.Fatalf("expected Hermione to merge into Hermione Granger, got %q", canonicalFor("Hermione"))
	}
	if canonicalFor("Mr Dursley") != "Dursley" && canonicalFor("Dursley") != "Mr Dursley" {
		t.Fatalf("expected Mr Dursley and Dursley to merge")
	}
}

func TestDeduplicateFuzzyMisspelling(t *testing.T) {
	names := []string{"Hermione", "Hermoine"}
	res := Deduplicate(context.Background(), names, Options{})
	if len(res.Canonical) != 1 {
		t.Fatalf("expected fuzzy match to merge misspelling, got canonical=%v", res.Canonical)
	}
}

func TestDeduplicateDistinctNamesStaySeparate(t *testing.T) {
	names := []string{"Harry Potter", "Ron Weasley", "Hermione Granger"}
	res := Deduplicate(context.Background(), names, Options{})
	if len(res.Canonical) != 3 {
		t.Fatalf("expected 3 distinct canonical names, got %v", res.Canonical)
	}
	if len(res.Aliases) != 0 {
		t.Fatalf("expected no aliases among distinct names, got %v", res.Aliases)
	}
}

type stubSemanticMatcher struct {
	pairs map[[2]string]bool
}

func (s stubSemanticMatcher) SameCharacter(ctx context.Context, name, candidate string, allNames []string) (bool, error) {
	if s.pairs[[2]string{name, candidate}] || s.pairs[[2]string{candidate, name}] {
		return true, nil
	}
	return false, nil
}

func TestDeduplicateSemanticPassMergesNoStringSignal(t *testing.T) {
	names := []string{"Mrs Dursley", "Petunia"}
	matcher := stubSemanticMatcher{pairs: map[[2]string]bool{{"Mrs Dursley", "Petunia"}: true}}
	res := Deduplicate(context.Background(), names, Options{Semantic: matcher})
	if len(res.Canonical) != 1 {
		t.Fatalf("expected semantic pass to merge Mrs Dursley and Petunia, got %v", res.Canonical)
	}
}

func TestDeduplicateWithoutSemanticLeavesNoStringSignalPairsSeparate(t *testing.T) {
	names := []string{"Mrs Dursley", "Petunia"}
	res := Deduplicate(context.Background(), names, Options{})
	if len(res.Canonical) != 2 {
		t.Fatalf("expected no merge without semantic matcher, got %v", res.Canonical)
	}
}

func TestChooseCanonicalPrefersLongestThenUntitledThenLexical(t *testing.T) {
	if got := chooseCanonical([]string{"Harry", "Harry Potter"}); got != "Harry Potter" {
		t.Fatalf("expected longest form, got %q", got)
	}
	if got := chooseCanonical([]string{"Professor Dumbledore", "Albus Dumbledore"}); got != "Professor Dumbledore" {
		// The untitled tiebreak applies only when lengths tie. "Professor
		// Dumbledore" (20 runes) is longer than "Albus Dumbledore" (16), so it
		// wins on length despite its title.
		t.Fatalf("expected longer form to win on length, got %q", got)
	}
	if got := chooseCanonical([]string{"Mr Smith", "Jo Smith"}); got != "Jo Smith" {
		t.Fatalf("expected untitled form to win an equal-length tie, got %q", got)
	}
	if got := chooseCanonical([]string{"Ron B", "Ann B"}); got != "Ann B" {
		t.Fatalf("expected lexically earliest form to win a full tie, got %q", got)
	}
}
