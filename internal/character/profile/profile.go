// Package profile implements C5: retrieving the windows that mention a
// canonical character and synthesizing a canonical visual description from
// them, paced to stay under the LLM provider's rate budget.
package profile

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"golang.org/x/time/rate"

	"github.com/steve0joo/storymind/internal/index"
	pkgerrors "github.com/steve0joo/storymind/internal/pkg/errors"
)

// DefaultRetrievalBreadth is k in index.Search(canonical_name, k).
const DefaultRetrievalBreadth = 7

// DefaultPaceInterval is the cooperative pause enforced between successive
// profile-synthesis calls to stay under the provider's per-minute quota.
const DefaultPaceInterval = 4 * time.Second

// Generator is the subset of the LLM client the synthesizer needs.
type Generator interface {
	GenerateText(ctx context.Context, system, user string) (string, error)
}

// Searcher is the subset of the embedding index the synthesizer needs.
type Searcher interface {
	Search(ctx context.Context, embedder index.Embedder, query string, k int) ([]index.Result, error)
}

// Profile is the synthesized output for one canonical character.
type Profile struct {
	Name         string
	Description  string
	MentionCount int
}

const systemPrompt = "You are given excerpts from a novel that mention a character. Synthesize a single paragraph canonical visual description of the character, emphasizing enduring physical traits (hair, build, distinguishing features, habitual dress) and de-emphasizing plot-transient states (injuries, emotions, momentary actions)."

// Synthesizer produces profiles for canonical characters one at a time,
// pacing calls with a token-bucket limiter so the provider's quota is
// respected across an entire ingest.
type Synthesizer struct {
	gen     Generator
	limiter *rate.Limiter
	breadth int
}

// NewSynthesizer builds a Synthesizer that paces calls at most once per
// interval, bursting at most once (no call runs ahead of its turn).
func NewSynthesizer(gen Generator, interval time.Duration, breadth int) *Synthesizer {
	if interval <= 0 {
		interval = DefaultPaceInterval
	}
	if breadth <= 0 {
		breadth = DefaultRetrievalBreadth
	}
	return &Synthesizer{
		gen:     gen,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		breadth: breadth,
	}
}

// Synthesize retrieves the top-k windows mentioning canonicalName and
// synthesizes a description from them. It blocks until the pacing limiter
// admits the call. Returns ErrRetrievalEmpty if fewer than one usable
// window is returned — the character yields no profile in that case.
func (s *Synthesizer) Synthesize(ctx context.Context, searcher Searcher, embedder index.Embedder, canonicalName string) (Profile, error) {
	results, err := searcher.Search(ctx, embedder, canonicalName, s.breadth)
	if err != nil {
		return Profile{}, err
	}
	if len(results) == 0 {
		return Profile{}, pkgerrors.ErrRetrievalEmpty
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return Profile{}, err
	}

	var context_ strings.Builder
	for i, r := range results {
		if i > 0 {
			context_.WriteString("\n\n---\n\n")
		}
		context_.WriteString(r.Text)
	}

	user := fmt.Sprintf("Character name: %s\n\nExcerpts:\n%s", canonicalName, context_.String())
	description, err := s.gen.GenerateText(ctx, systemPrompt, user)
	if err != nil {
		return Profile{}, err
	}

	mentionCount := countWholeWordMentions(results, canonicalName)

	return Profile{
		Name:         canonicalName,
		Description:  strings.TrimSpace(description),
		MentionCount: mentionCount,
	}, nil
}

// countWholeWordMentions counts retrieved windows in which name appears as
// a whole-word substring.
func countWholeWordMentions(results []index.Result, name string) int {
	words := func(s string) []string {
		return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
	}
	needle := words(name)
	if len(needle) == 0 {
		return 0
	}
	count := 0
	for _, r := range results {
		haystack := words(r.Text)
		if containsWholeWord(haystack, needle) {
			count++
		}
	}
	return count
}

func containsWholeWord(haystack, needle []string) bool {
	if len(needle) == 0 || len(needle) > len(haystack) {
		return false
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		match := true
		for j, nw := range needle {
			if haystack[i+j] != nw {
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
