package orchestrator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/steve0joo/storymind/internal/clients/openai"
	"github.com/steve0joo/storymind/internal/db"
	"github.com/steve0joo/storymind/internal/pkg/logger"
	"github.com/steve0joo/storymind/internal/repos"
)

// fakeClient is a deterministic stand-in for openai.Client that never
// touches the network: Embed returns a two-element vector {i, 1} for the
// i-th input, GenerateText branches on the system prompt to serve either
// name extraction or profile synthesis, and GenerateImage always fails so
// every image regeneration exercises the placeholder path.
type fakeClient struct{}

func (fakeClient) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	out := make([][]float32, len(inputs))
	for i := range inputs {
		out[i] = []float32{float32(i), 1}
	}
	return out, nil
}

func (fakeClient) GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, error) {
	return nil, errors.New("not used in this pipeline")
}

func (fakeClient) GenerateText(ctx context.Context, system, user string) (string, error) {
	if strings.Contains(system, "List character names") {
		return `["Harry Potter", "Ron Weasley", "Harry"]`, nil
	}
	return "A young person with distinctive hair and a memorable outfit.", nil
}

func (fakeClient) GenerateImage(ctx context.Context, prompt, aspectRatio string) (openai.ImageGeneration, error) {
	return openai.ImageGeneration{}, errors.New("image provider unavailable in test")
}

func newTestOrchestrator(t *testing.T) (*Orchestrator, string) {
	t.Helper()

	gdb, err := db.NewTestDB()
	if err != nil {
		t.Fatalf("NewTestDB: %v", err)
	}
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}

	sourceRepo := repos.NewSourceRepo(gdb, log)
	characterRepo := repos.NewCharacterRepo(gdb, log)
	imageRepo := repos.NewImageRepo(gdb, log)

	dir := t.TempDir()
	orch, err := New(gdb, log, fakeClient{}, sourceRepo, characterRepo, imageRepo, Config{
		DataDir:          filepath.Join(dir, "data"),
		ImageDir:         filepath.Join(dir, "images"),
		EmbeddingModel:   "fake-model",
		ProfilePace:      time.Millisecond,
		RetrievalBreadth: 7,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return orch, dir
}

func writeTestBook(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write test book: %v", err)
	}
	return path
}

const sampleBook = `Harry Potter walked into the room. Ron Weasley followed close behind.
Harry had untidy black hair. Ron had bright red hair and a hand-me-down robe.
The two boys had been friends since their first day on the train.
Harry Potter looked nervous, but Ron Weasley gave him a reassuring nod.
`

func TestIngestPersistsCompletedSourceWithCharacters(t *testing.T) {
	orch, dir := newTestOrchestrator(t)
	path := writeTestBook(t, dir, "the_sample_book.txt", strings.Repeat(sampleBook, 20))

	source, err := orch.Ingest(context.Background(), path)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if source.Status != "completed" {
		t.Fatalf("expected completed status, got %q (failure=%s)", source.Status, source.FailureReason)
	}
	if source.CharacterCount == 0 {
		t.Fatalf("expected at least one synthesized character")
	}

	characters, err := orch.characters.ListBySourceOrdered(context.Background(), nil, source.ID)
	if err != nil {
		t.Fatalf("ListBySourceOrdered: %v", err)
	}
	if len(characters) != source.CharacterCount {
		t.Fatalf("character count mismatch: record=%d listed=%d", source.CharacterCount, len(characters))
	}

	if _, err := os.Stat(source.IndexPath + ".index"); err != nil {
		t.Fatalf("expected index sidecar to exist: %v", err)
	}
	if _, err := os.Stat(source.IndexPath + ".index.meta"); err != nil {
		t.Fatalf("expected index meta sidecar to exist: %v", err)
	}
}

func TestIngestSupersedesSameTitle(t *testing.T) {
	orch, dir := newTestOrchestrator(t)
	path := writeTestBook(t, dir, "the_sample_book.txt", strings.Repeat(sampleBook, 20))

	first, err := orch.Ingest(context.Background(), path)
	if err != nil {
		t.Fatalf("first Ingest: %v", err)
	}

	second, err := orch.Ingest(context.Background(), path)
	if err != nil {
		t.Fatalf("second Ingest: %v", err)
	}
	if second.ID == first.ID {
		t.Fatalf("expected supersession to create a new source record")
	}

	if _, err := orch.sources.GetByID(context.Background(), nil, first.ID); err == nil {
		t.Fatalf("expected prior source to be deleted on supersession")
	}
}

func TestRegenerateImageProducesPlaceholderOnProviderFailure(t *testing.T) {
	orch, dir := newTestOrchestrator(t)
	path := writeTestBook(t, dir, "the_sample_book.txt", strings.Repeat(sampleBook, 20))

	source, err := orch.Ingest(context.Background(), path)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	characters, err := orch.characters.ListBySourceOrdered(context.Background(), nil, source.ID)
	if err != nil || len(characters) == 0 {
		t.Fatalf("expected at least one character, err=%v", err)
	}

	image, err := orch.RegenerateImage(context.Background(), characters[0].ID, "", "16:9")
	if err != nil {
		t.Fatalf("RegenerateImage: %v", err)
	}
	if image.Outcome != "placeholder" {
		t.Fatalf("expected placeholder outcome, got %q", image.Outcome)
	}
	if image.AspectRatio != "16:9" {
		t.Fatalf("expected requested aspect ratio to persist, got %q", image.AspectRatio)
	}
	if _, err := os.Stat(image.FilePath); err != nil {
		t.Fatalf("expected placeholder file to exist: %v", err)
	}
}

func TestDeleteSourceCascadesCharactersAndIndexFiles(t *testing.T) {
	orch, dir := newTestOrchestrator(t)
	path := writeTestBook(t, dir, "the_sample_book.txt", strings.Repeat(sampleBook, 20))

	source, err := orch.Ingest(context.Background(), path)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	if err := orch.DeleteSource(context.Background(), source.ID); err != nil {
		t.Fatalf("DeleteSource: %v", err)
	}

	if _, err := orch.sources.GetByID(context.Background(), nil, source.ID); err == nil {
		t.Fatalf("expected source to be deleted")
	}
	characters, err := orch.characters.ListBySourceOrdered(context.Background(), nil, source.ID)
	if err != nil {
		t.Fatalf("ListBySourceOrdered: %v", err)
	}
	if len(characters) != 0 {
		t.Fatalf("expected characters to be cascade-deleted, got %d", len(characters))
	}
	if _, err := os.Stat(source.IndexPath + ".index"); !os.IsNotExist(err) {
		t.Fatalf("expected index file to be removed")
	}
}
