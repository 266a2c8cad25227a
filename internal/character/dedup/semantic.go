package dedup

import (
	"context"
	"fmt"
	"strings"

	"github.com/steve0joo/storymind/internal/clients/openai"
)

const semanticSystemPrompt = "You resolve character name aliases in a novel. Given two surface names and the full list of candidate names extracted from the text, answer whether the two surface names refer to the same fictional character. Answer with exactly one word: yes or no."

// OpenAISemanticMatcher is the strategy-4 SemanticMatcher backed by a single
// yes/no openai.Client.GenerateText call per pair. It is only worth wiring
// in for higher-quota deployments, since it costs one LLM call per
// still-unmerged pair after the string-based strategies run.
type OpenAISemanticMatcher struct {
	client openai.Client
}

// NewOpenAISemanticMatcher wraps client as a SemanticMatcher.
func NewOpenAISemanticMatcher(client openai.Client) *OpenAISemanticMatcher {
	return &OpenAISemanticMatcher{client: client}
}

func (m *OpenAISemanticMatcher) SameCharacter(ctx context.Context, name, candidate string, allNames []string) (bool, error) {
	user := fmt.Sprintf(
		"Full candidate name list: %s\n\nDo \"%s\" and \"%s\" refer to the same fictional character?",
		strings.Join(allNames, ", "), name, candidate,
	)
	raw, err := m.client.GenerateText(ctx, semanticSystemPrompt, user)
	if err != nil {
		return false, err
	}
	answer := strings.ToLower(strings.TrimSpace(raw))
	return strings.HasPrefix(answer, "yes"), nil
}
