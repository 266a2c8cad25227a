// Package names implements C3: a single bounded LLM call that lists
// candidate character names appearing in a document's opening excerpt.
package names

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	pkgerrors "github.com/steve0joo/storymind/internal/pkg/errors"
)

// DefaultPrefixChars bounds the excerpt sent to the model: roughly the
// first 35 windows of a novel, enough to introduce its main cast without
// paying to embed the whole book in the prompt.
const DefaultPrefixChars = 35_000

// DefaultLimit is the maximum number of names requested per extraction.
const DefaultLimit = 50

// Generator is the subset of the LLM client the extractor needs: a
// schema-constrained call for the common case, with a plain-text fallback
// for providers or responses that don't honor the schema.
type Generator interface {
	GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, error)
	GenerateText(ctx context.Context, system, user string) (string, error)
}

const systemPrompt = "List character names appearing in this excerpt, most-mentioned first, up to the requested limit, as a plain JSON array of strings. Return only the JSON array, nothing else."

const schemaName = "character_names"

var namesSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"names": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
	},
	"required":             []string{"names"},
	"additionalProperties": false,
}

// Extract calls the model once over text (expected to already be bounded to
// DefaultPrefixChars by the caller) and returns up to limit normalized
// candidate names, most-mentioned first. It prefers a json_schema-constrained
// call and tolerantly falls back to a plain-text call when the schema-backed
// response is missing or malformed.
func Extract(ctx context.Context, gen Generator, text string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	user := fmt.Sprintf("Limit: %d\n\nExcerpt:\n%s", limit, text)

	names, err := extractViaSchema(ctx, gen, user)
	if err != nil {
		raw, textErr := gen.GenerateText(ctx, systemPrompt, user)
		if textErr != nil {
			return nil, textErr
		}
		names, err = parseNameArray(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", pkgerrors.ErrExtractionParseError, err)
		}
	}

	out := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		normalized := normalize(n)
		if normalized == "" {
			continue
		}
		key := strings.ToLower(normalized)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, normalized)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

// extractViaSchema asks for a json_schema-constrained {"names": [...]}
// object and unpacks it into a plain string slice.
func extractViaSchema(ctx context.Context, gen Generator, user string) ([]string, error) {
	obj, err := gen.GenerateJSON(ctx, systemPrompt, user, schemaName, namesSchema)
	if err != nil {
		return nil, err
	}
	rawNames, ok := obj["names"].([]any)
	if !ok {
		return nil, fmt.Errorf("schema response missing names array")
	}
	names := make([]string, 0, len(rawNames))
	for _, n := range rawNames {
		s, ok := n.(string)
		if !ok {
			continue
		}
		names = append(names, s)
	}
	return names, nil
}

// parseNameArray tolerantly parses the model's response: strips a markdown
// code-fence wrapper if present, then requires a top-level JSON array of
// strings.
func parseNameArray(raw string) ([]string, error) {
	text := stripCodeFence(raw)

	var names []string
	if err := json.Unmarshal([]byte(text), &names); err != nil {
		return nil, fmt.Errorf("response is not a JSON array of strings: %w", err)
	}
	return names, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx != -1 {
		firstLine := strings.TrimSpace(s[:idx])
		if firstLine == "" || !strings.ContainsAny(firstLine, "[{") {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// normalize trims whitespace and collapses internal whitespace runs while
// preserving case for canonical display.
func normalize(name string) string {
	fields := strings.Fields(name)
	return strings.Join(fields, " ")
}
