package portrait

import (
	"context"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/steve0joo/storymind/internal/clients/openai"
	"github.com/steve0joo/storymind/internal/pkg/logger"
)

type stubImageClient struct {
	generation openai.ImageGeneration
	err        error
}

func (s stubImageClient) GenerateImage(ctx context.Context, prompt, aspectRatio string) (openai.ImageGeneration, error) {
	return s.generation, s.err
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func TestGenerateWritesRealImageOnSuccess(t *testing.T) {
	dir := t.TempDir()
	client := stubImageClient{generation: openai.ImageGeneration{Bytes: []byte("fake-png-bytes"), MimeType: "image/png"}}
	gen, err := NewGenerator(client, dir, "", testLogger(t))
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}

	result := gen.Generate(context.Background(), CharacterProfile{Name: "Harry Potter", Description: "a boy with round glasses", Seed: 1085936863}, "", "")
	if result.Outcome != OutcomeReal {
		t.Fatalf("expected real outcome, got %q (note=%s)", result.Outcome, result.FailureNote)
	}
	if result.AspectRatio != DefaultAspectRatio {
		t.Fatalf("expected default aspect ratio, got %q", result.AspectRatio)
	}
	if _, err := os.Stat(result.Path); err != nil {
		t.Fatalf("expected image file to exist: %v", err)
	}
	if filepath.Base(result.Path) != "harry-potter_1085936863.png" {
		t.Fatalf("unexpected deterministic filename: %s", filepath.Base(result.Path))
	}
}

func TestGenerateFallsBackToPlaceholderOnProviderRefusal(t *testing.T) {
	dir := t.TempDir()
	client := stubImageClient{err: errors.New("content filtered")}
	gen, err := NewGenerator(client, dir, "", testLogger(t))
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}

	result := gen.Generate(context.Background(), CharacterProfile{Name: "Ron Weasley", Description: "a boy with red hair", Seed: 42}, "", "16:9")
	if result.Outcome != OutcomePlaceholder {
		t.Fatalf("expected placeholder outcome, got %q", result.Outcome)
	}
	f, err := os.Open(result.Path)
	if err != nil {
		t.Fatalf("expected placeholder file to exist: %v", err)
	}
	defer f.Close()
	if _, err := png.Decode(f); err != nil {
		t.Fatalf("expected valid PNG placeholder: %v", err)
	}
}

func TestSamePlaceholderSeedProducesSameColor(t *testing.T) {
	a := placeholderColor(1085936863)
	b := placeholderColor(1085936863)
	if a != b {
		t.Fatalf("expected deterministic placeholder color for same seed")
	}
}

func TestFilePathIsDeterministicAndStableAcrossOutcomes(t *testing.T) {
	p1 := filePath("/images", "Hermione Granger", 99)
	p2 := filePath("/images", "Hermione Granger", 99)
	if p1 != p2 {
		t.Fatalf("expected stable filename for same name+seed")
	}
	if filepath.Base(p1) != "hermione-granger_99.png" {
		t.Fatalf("unexpected filename: %s", filepath.Base(p1))
	}
}

func TestInitialsForTwoWordName(t *testing.T) {
	if got := initialsFor("Harry Potter"); got != "HP" {
		t.Fatalf("expected HP, got %q", got)
	}
}

func TestAssemblePromptIncludesSeedToken(t *testing.T) {
	prompt := assemblePrompt("a boy with glasses", DefaultStyle, 123)
	want := "a boy with glasses, " + DefaultStyle + " [ID: 123]"
	if prompt != want {
		t.Fatalf("got %q, want %q", prompt, want)
	}
}
