package index

import (
	"context"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	pkgerrors "github.com/steve0joo/storymind/internal/pkg/errors"
)

// Embedder is the subset of the LLM client the index needs to build and
// query vectors. It is satisfied by openai.Client.
type Embedder interface {
	Embed(ctx context.Context, inputs []string) ([][]float32, error)
}

// Result is one retrieved window and its L2 distance to the query vector.
type Result struct {
	Text     string
	Distance float32
}

// Index is a flat, brute-force L2 nearest-neighbor store over a fixed
// embedding model's vectors, paired one-to-one with the ordered window
// texts they were built from.
type Index struct {
	Model   string
	Vectors [][]float32
	Windows []string
}

// Build embeds every window with the given model identity and assembles
// a flat index. Embedding happens in a single batched call since window
// counts for a novel-length book (a few hundred to low thousands) fit
// comfortably in one request.
func Build(ctx context.Context, embedder Embedder, model string, windows []string) (*Index, error) {
	if len(windows) == 0 {
		return nil, fmt.Errorf("no windows to index")
	}

	vectors, err := embedder.Embed(ctx, windows)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pkgerrors.ErrEmbeddingModelUnavailable, err)
	}
	if len(vectors) != len(windows) {
		return nil, fmt.Errorf("%w: embedded %d vectors for %d windows", pkgerrors.ErrEmbeddingModelUnavailable, len(vectors), len(windows))
	}

	return &Index{Model: model, Vectors: vectors, Windows: windows}, nil
}

// Search embeds the query with the same model the index was built with and
// returns the k nearest windows sorted ascending by distance. If k exceeds
// the index size, every window is returned.
func (ix *Index) Search(ctx context.Context, embedder Embedder, query string, k int) ([]Result, error) {
	if ix == nil || len(ix.Vectors) == 0 {
		return nil, pkgerrors.ErrRetrievalEmpty
	}
	if k <= 0 {
		k = 1
	}

	vecs, err := embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pkgerrors.ErrEmbeddingModelUnavailable, err)
	}
	queryVec := vecs[0]

	results := make([]Result, len(ix.Vectors))
	for i, v := range ix.Vectors {
		results[i] = Result{Text: ix.Windows[i], Distance: l2Distance(queryVec, v)}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Distance < results[j].Distance })

	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

func l2Distance(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return float32(math.Sqrt(sum))
}

// indexMeta is the JSON sidecar: model identity and ordered window texts.
// The raw vectors live in the companion .index file, gob-encoded.
type indexMeta struct {
	Model   string   `json:"model"`
	Windows []string `json:"windows"`
}

// Save writes two sidecar files: basePath+".index" holding the gob-encoded
// vectors, and basePath+".index.meta" holding the model identity and
// window texts as JSON.
func (ix *Index) Save(basePath string) error {
	vf, err := os.Create(basePath + ".index")
	if err != nil {
		return fmt.Errorf("%w: %v", pkgerrors.ErrPersistenceError, err)
	}
	defer vf.Close()
	if err := gob.NewEncoder(vf).Encode(ix.Vectors); err != nil {
		return fmt.Errorf("%w: %v", pkgerrors.ErrPersistenceError, err)
	}

	meta := indexMeta{Model: ix.Model, Windows: ix.Windows}
	mf, err := os.Create(basePath + ".index.meta")
	if err != nil {
		return fmt.Errorf("%w: %v", pkgerrors.ErrPersistenceError, err)
	}
	defer mf.Close()
	if err := json.NewEncoder(mf).Encode(meta); err != nil {
		return fmt.Errorf("%w: %v", pkgerrors.ErrPersistenceError, err)
	}
	return nil
}

// Load reconstructs an Index from its sidecar files and verifies the
// recorded embedding-model identity matches expectedModel. Both files are
// required; either missing or a model mismatch is IndexCorrupt.
func Load(basePath, expectedModel string) (*Index, error) {
	mf, err := os.Open(basePath + ".index.meta")
	if err != nil {
		return nil, fmt.Errorf("%w: missing meta sidecar: %v", pkgerrors.ErrIndexCorrupt, err)
	}
	defer mf.Close()

	var meta indexMeta
	if err := json.NewDecoder(mf).Decode(&meta); err != nil {
		return nil, fmt.Errorf("%w: unreadable meta sidecar: %v", pkgerrors.ErrIndexCorrupt, err)
	}

	if expectedModel != "" && !strings.EqualFold(meta.Model, expectedModel) {
		return nil, fmt.Errorf("%w: index built with model %q, expected %q", pkgerrors.ErrIndexCorrupt, meta.Model, expectedModel)
	}

	vf, err := os.Open(basePath + ".index")
	if err != nil {
		return nil, fmt.Errorf("%w: missing vector sidecar: %v", pkgerrors.ErrIndexCorrupt, err)
	}
	defer vf.Close()

	var vectors [][]float32
	if err := gob.NewDecoder(vf).Decode(&vectors); err != nil {
		return nil, fmt.Errorf("%w: unreadable vector sidecar: %v", pkgerrors.ErrIndexCorrupt, err)
	}

	if len(vectors) != len(meta.Windows) {
		return nil, fmt.Errorf("%w: %d vectors for %d windows", pkgerrors.ErrIndexCorrupt, len(vectors), len(meta.Windows))
	}

	return &Index{Model: meta.Model, Vectors: vectors, Windows: meta.Windows}, nil
}
