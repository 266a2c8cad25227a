package index

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

// fakeEmbedder returns a deterministic vector derived from the input's
// length and first rune, just enough to exercise distance ordering.
type fakeEmbedder struct{}

func (fakeEmbedder) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	out := make([][]float32, len(inputs))
	for i, s := range inputs {
		var first float32
		if len(s) > 0 {
			first = float32(s[0])
		}
		out[i] = []float32{float32(len(s)), first}
	}
	return out, nil
}

func TestBuildAndSearch(t *testing.T) {
	windows := []string{"alpha mentions harry", "beta mentions ron", "gamma mentions harry again"}
	ix, err := Build(context.Background(), fakeEmbedder{}, "fake-model", windows)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(ix.Vectors) != 3 {
		t.Fatalf("expected 3 vectors, got %d", len(ix.Vectors))
	}

	results, err := ix.Search(context.Background(), fakeEmbedder{}, "alpha mentions harry", 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Distance > results[1].Distance {
		t.Fatalf("results not sorted ascending by distance")
	}
}

func TestSearchKExceedsIndexSize(t *testing.T) {
	ix, err := Build(context.Background(), fakeEmbedder{}, "fake-model", []string{"one", "two"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	results, err := ix.Search(context.Background(), fakeEmbedder{}, "one", 50)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected all 2 windows returned, got %d", len(results))
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ix, err := Build(context.Background(), fakeEmbedder{}, "fake-model", []string{"one", "two", "three"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	basePath := filepath.Join(t.TempDir(), "source-id")
	if err := ix.Save(basePath); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(basePath, "fake-model")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded.Windows) != 3 {
		t.Fatalf("expected 3 windows after load, got %d", len(loaded.Windows))
	}
	if loaded.Model != "fake-model" {
		t.Fatalf("model identity not preserved: %q", loaded.Model)
	}
}

func TestLoadRejectsModelMismatch(t *testing.T) {
	ix, _ := Build(context.Background(), fakeEmbedder{}, "fake-model", []string{"one"})
	basePath := filepath.Join(t.TempDir(), "source-id")
	if err := ix.Save(basePath); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := Load(basePath, "a-different-model"); err == nil {
		t.Fatalf("expected IndexCorrupt on model mismatch")
	}
}

func TestLoadMissingSidecarIsCorrupt(t *testing.T) {
	basePath := filepath.Join(t.TempDir(), "nonexistent")
	if _, err := Load(basePath, "fake-model"); err == nil {
		t.Fatalf("expected error for missing sidecars")
	}
}

func TestLoadMissingVectorFileIsCorrupt(t *testing.T) {
	dir := t.TempDir()
	basePath := filepath.Join(dir, "source-id")
	// Write only the meta sidecar, omit the vector sidecar.
	ix, _ := Build(context.Background(), fakeEmbedder{}, "fake-model", []string{"one"})
	_ = ix.Save(basePath)
	if err := os.Remove(basePath + ".index"); err != nil {
		t.Fatalf("remove vector sidecar: %v", err)
	}
	if _, err := Load(basePath, "fake-model"); err == nil {
		t.Fatalf("expected IndexCorrupt for missing vector file")
	}
}
