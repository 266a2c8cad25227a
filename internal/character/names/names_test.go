package names

import (
	"context"
	"errors"
	"testing"
)

type stubGenerator struct {
	response string
	err      error

	jsonResp map[string]any
	jsonErr  error
}

func (s stubGenerator) GenerateText(ctx context.Context, system, user string) (string, error) {
	return s.response, s.err
}

func (s stubGenerator) GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, error) {
	return s.jsonResp, s.jsonErr
}

func TestExtractPlainArray(t *testing.T) {
	gen := stubGenerator{response: `["Harry Potter", "Ron Weasley", "Hermione Granger"]`}
	got, err := Extract(context.Background(), gen, "some excerpt", 50)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	want := []string{"Harry Potter", "Ron Weasley", "Hermione Granger"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got[%d]=%q, want %q", i, got[i], want[i])
		}
	}
}

func TestExtractStripsCodeFence(t *testing.T) {
	gen := stubGenerator{response: "```json\n[\"Harry Potter\", \"Ron Weasley\"]\n```"}
	got, err := Extract(context.Background(), gen, "some excerpt", 50)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 names, got %v", got)
	}
}

func TestExtractRejectsUnparseable(t *testing.T) {
	gen := stubGenerator{response: "Harry Potter and Ron Weasley are friends."}
	if _, err := Extract(context.Background(), gen, "some excerpt", 50); err == nil {
		t.Fatalf("expected ExtractionParseError for unparseable response")
	}
}

func TestExtractRespectsLimit(t *testing.T) {
	gen := stubGenerator{response: `["A", "B", "C", "D"]`}
	got, err := Extract(context.Background(), gen, "excerpt", 2)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected limit of 2 names, got %d", len(got))
	}
}

func TestExtractUsesSchemaResponseWithoutFallingBack(t *testing.T) {
	gen := stubGenerator{
		jsonResp: map[string]any{"names": []any{"Harry Potter", "Ron Weasley"}},
		err:      errors.New("GenerateText should not be called when the schema call succeeds"),
	}
	got, err := Extract(context.Background(), gen, "some excerpt", 50)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	want := []string{"Harry Potter", "Ron Weasley"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got[%d]=%q, want %q", i, got[i], want[i])
		}
	}
}

func TestExtractCollapsesInternalWhitespaceAndDedupes(t *testing.T) {
	gen := stubGenerator{response: `["Harry   Potter", "harry potter", "Ron Weasley"]`}
	got, err := Extract(context.Background(), gen, "excerpt", 50)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected case-insensitive dedupe to yield 2 names, got %v", got)
	}
	if got[0] != "Harry Potter" {
		t.Fatalf("expected whitespace collapsed to %q, got %q", "Harry Potter", got[0])
	}
}
