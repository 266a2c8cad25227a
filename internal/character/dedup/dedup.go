// Package dedup implements C4: collapsing surface name variants produced by
// the name extractor into canonical characters and a surface-to-canonical
// alias map, via title stripping, substring matching, fuzzy matching, and
// an optional LLM semantic pass.
package dedup

import (
	"context"
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// FuzzyThreshold is the minimum normalized sequence-similarity score at
// which two stripped, lowercased names are considered the same character.
const FuzzyThreshold = 0.85

var titlePrefixes = []string{"mr", "mrs", "ms", "miss", "dr", "professor", "sir", "lady"}

// SemanticMatcher is the optional LLM-backed pass (strategy 4). Matching is
// gated by a budget flag and must degrade silently to no-op on any error —
// string-based strategies alone define correctness.
type SemanticMatcher interface {
	// SameCharacter asks whether name and candidate, considered against the
	// full name set for context, refer to the same fictional character.
	SameCharacter(ctx context.Context, name, candidate string, allNames []string) (bool, error)
}

// Options configures the optional semantic pass.
type Options struct {
	Semantic SemanticMatcher // nil disables strategy 4
}

// Result is the outcome of deduplicating a name list: the canonical names
// (alphabetically ordered) and the surface-form alias map.
type Result struct {
	Canonical []string
	Aliases   map[string]string // surface name -> canonical name
}

// Deduplicate merges name variants via union-find and returns the surviving
// canonical names plus an alias map from every non-canonical surface form
// to its canonical. names is treated as a single atomic snapshot: no name
// is merged against a partially built view.
func Deduplicate(ctx context.Context, names []string, opts Options) Result {
	uf := newUnionFind(len(names))

	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			if isDuplicate(names[i], names[j]) {
				uf.union(i, j)
			}
		}
	}

	// The semantic pass only sees pairs the string strategies left unmerged.
	if opts.Semantic != nil {
		for i := 0; i < len(names); i++ {
			for j := i + 1; j < len(names); j++ {
				if uf.find(i) == uf.find(j) {
					continue
				}
				same, err := opts.Semantic.SameCharacter(ctx, names[i], names[j], names)
				if err == nil && same {
					uf.union(i, j)
				}
			}
		}
	}

	groups := make(map[int][]string)
	for i, name := range names {
		root := uf.find(i)
		groups[root] = append(groups[root], name)
	}

	canonicalSet := make(map[string]bool)
	aliases := make(map[string]string)
	for _, group := range groups {
		canonical := chooseCanonical(group)
		canonicalSet[canonical] = true
		for _, name := range group {
			if name != canonical {
				aliases[name] = canonical
			}
		}
	}

	canonical := make([]string, 0, len(canonicalSet))
	for name := range canonicalSet {
		canonical = append(canonical, name)
	}
	sort.Strings(canonical)

	return Result{Canonical: canonical, Aliases: aliases}
}

func isDuplicate(a, b string) bool {
	strippedA, strippedB := stripTitle(a), stripTitle(b)

	if isWholeWordSubstring(strippedA, strippedB) {
		return true
	}
	return fuzzyRatio(strippedA, strippedB) >= FuzzyThreshold
}

// stripTitle removes a leading honorific, case-insensitively.
func stripTitle(name string) string {
	fields := strings.Fields(name)
	if len(fields) < 2 {
		return name
	}
	first := strings.ToLower(strings.TrimSuffix(fields[0], "."))
	for _, prefix := range titlePrefixes {
		if first == prefix {
			return strings.Join(fields[1:], " ")
		}
	}
	return name
}

// isWholeWordSubstring reports whether the stripped form of one name is a
// whole-word substring of the other's, case-insensitively (e.g. "Harry" vs
// "Harry Potter").
func isWholeWordSubstring(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la == lb {
		return true
	}
	return containsWholeWord(lb, la) || containsWholeWord(la, lb)
}

func containsWholeWord(haystack, needle string) bool {
	if needle == "" {
		return false
	}
	haystackWords := strings.Fields(haystack)
	needleWords := strings.Fields(needle)
	if len(needleWords) == 0 || len(needleWords) > len(haystackWords) {
		return false
	}
	for i := 0; i+len(needleWords) <= len(haystackWords); i++ {
		match := true
		for j, nw := range needleWords {
			if haystackWords[i+j] != nw {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// fuzzyRatio computes a normalized sequence-similarity score on the
// stripped, lowercased forms, catching misspellings like "Hermoine" vs
// "Hermione".
func fuzzyRatio(a, b string) float64 {
	sm := difflib.NewMatcher(splitChars(strings.ToLower(a)), splitChars(strings.ToLower(b)))
	return sm.Ratio()
}

func splitChars(s string) []string {
	runes := []rune(s)
	out := make([]string, len(runes))
	for i, r := range runes {
		out[i] = string(r)
	}
	return out
}

// chooseCanonical selects the representative name for a merged group:
// prefer the longest form, then the one without a stripped-off title, then
// the lexicographically earliest.
func chooseCanonical(group []string) string {
	best := group[0]
	for _, candidate := range group[1:] {
		if betterCanonical(candidate, best) {
			best = candidate
		}
	}
	return best
}

func betterCanonical(a, b string) bool {
	la, lb := len([]rune(a)), len([]rune(b))
	if la != lb {
		return la > lb
	}
	aUntitled, bUntitled := stripTitle(a) == a, stripTitle(b) == b
	if aUntitled != bUntitled {
		return aUntitled
	}
	return a < b
}

type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &unionFind{parent: parent}
}

func (uf *unionFind) find(i int) int {
	for uf.parent[i] != i {
		uf.parent[i] = uf.parent[uf.parent[i]]
		i = uf.parent[i]
	}
	return i
}

func (uf *unionFind) union(i, j int) {
	ri, rj := uf.find(i), uf.find(j)
	if ri != rj {
		uf.parent[ri] = rj
	}
}
