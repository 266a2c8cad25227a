// Package orchestrator implements C8: the pipeline that sequences
// document loading, indexing, name extraction, deduplication, and profile
// synthesis into persisted Source Documents and Canonical Characters, and
// drives on-demand image (re)generation and cascading deletion.
package orchestrator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/steve0joo/storymind/internal/character/dedup"
	"github.com/steve0joo/storymind/internal/character/names"
	"github.com/steve0joo/storymind/internal/character/portrait"
	"github.com/steve0joo/storymind/internal/character/profile"
	"github.com/steve0joo/storymind/internal/character/seed"
	"github.com/steve0joo/storymind/internal/clients/openai"
	"github.com/steve0joo/storymind/internal/index"
	"github.com/steve0joo/storymind/internal/loader"
	"github.com/steve0joo/storymind/internal/pkg/logger"
	"github.com/steve0joo/storymind/internal/repos"
	"github.com/steve0joo/storymind/internal/types"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// MaxNameExtractionChars bounds the document prefix sent to C3.
const MaxNameExtractionChars = names.DefaultPrefixChars

// MaxNameExtractionLimit bounds the number of candidate names C3 returns.
const MaxNameExtractionLimit = names.DefaultLimit

// MaxSynthesizedCharacters caps how many deduplicated characters are
// profiled per ingest, so a single run's LLM budget stays bounded.
const MaxSynthesizedCharacters = 20

// Orchestrator drives the full ingest pipeline and on-demand operations.
type Orchestrator struct {
	db         *gorm.DB
	log        *logger.Logger
	sources    repos.SourceRepo
	characters repos.CharacterRepo
	images     repos.ImageRepo

	client         openai.Client
	embeddingModel string
	dataDir        string

	synth     *profile.Synthesizer
	portraits *portrait.Generator
	dedupOpts dedup.Options
}

// Config bundles the construction-time parameters beyond the repos/DB/log.
type Config struct {
	DataDir          string // embedding index sidecars
	ImageDir         string // generated/placeholder portraits
	FontPath         string // optional TTF for placeholder text; empty uses a built-in font
	EmbeddingModel   string
	ProfilePace      time.Duration // default profile.DefaultPaceInterval
	RetrievalBreadth int           // default profile.DefaultRetrievalBreadth
	Semantic         dedup.SemanticMatcher
}

// New builds an Orchestrator wired to a concrete OpenAI-compatible client
// and gorm-backed repositories.
func New(db *gorm.DB, log *logger.Logger, client openai.Client, sources repos.SourceRepo, characters repos.CharacterRepo, images repos.ImageRepo, cfg Config) (*Orchestrator, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	portraits, err := portrait.NewGenerator(client, cfg.ImageDir, cfg.FontPath, log)
	if err != nil {
		return nil, fmt.Errorf("build portrait generator: %w", err)
	}

	return &Orchestrator{
		db:             db,
		log:            log.With("component", "Orchestrator"),
		sources:        sources,
		characters:     characters,
		images:         images,
		client:         client,
		embeddingModel: cfg.EmbeddingModel,
		dataDir:        cfg.DataDir,
		synth:          profile.NewSynthesizer(client, cfg.ProfilePace, cfg.RetrievalBreadth),
		portraits:      portraits,
		dedupOpts:      dedup.Options{Semantic: cfg.Semantic},
	}, nil
}

// ListSources returns every Source Document, most recently ingested first.
func (o *Orchestrator) ListSources(ctx context.Context) ([]*types.SourceDocument, error) {
	return o.sources.List(ctx, nil)
}

// GetSource looks up one Source Document by ID.
func (o *Orchestrator) GetSource(ctx context.Context, sourceID uuid.UUID) (*types.SourceDocument, error) {
	return o.sources.GetByID(ctx, nil, sourceID)
}

// GetCharacters returns a Source Document's Canonical Characters ordered by
// mention count descending, then name ascending.
func (o *Orchestrator) GetCharacters(ctx context.Context, sourceID uuid.UUID) ([]*types.CanonicalCharacter, error) {
	return o.characters.ListBySourceOrdered(ctx, nil, sourceID)
}

// GetCharacterImage returns the most recent Generated Image for a character,
// or nil if none has been generated yet.
func (o *Orchestrator) GetCharacterImage(ctx context.Context, characterID uuid.UUID) (*types.GeneratedImage, error) {
	return o.images.GetLatestByCharacterID(ctx, nil, characterID)
}

func (o *Orchestrator) indexBasePath(sourceID uuid.UUID) string {
	return filepath.Join(o.dataDir, sourceID.String())
}

// Ingest runs the nine-step ingest sequence of §4.8 against path and
// returns the persisted, completed Source Document.
func (o *Orchestrator) Ingest(ctx context.Context, path string) (*types.SourceDocument, error) {
	// 1. Load + window.
	meta, windows, err := loader.Load(path)
	if err != nil {
		return nil, err
	}

	// 2. Resolve display title (already done by loader.Load via metadata/filename-stem fallback).
	title := meta.Title

	// 3-4. Idempotent supersession and persistence: delete any existing
	// Source Document with the same normalized title, cascading its
	// characters, images, and index files, and create the new Source
	// Document in state processing — both inside one transaction, so a
	// duplicate-title ingest can never leave the title with zero sources.
	source := &types.SourceDocument{
		Title:          title,
		OriginalName:   filepath.Base(path),
		Format:         meta.Format,
		SizeBytes:      fileSize(path),
		ChunkCount:     len(windows),
		EmbeddingModel: o.embeddingModel,
		Status:         types.SourceStatusProcessing,
	}
	if err := o.supersedeAndCreate(ctx, title, source); err != nil {
		return nil, fmt.Errorf("supersede and persist source document: %w", err)
	}

	completed, failErr := o.runIngestPipeline(ctx, source, windows)
	if failErr != nil {
		o.failSource(ctx, source, failErr)
		return nil, failErr
	}
	return completed, nil
}

// runIngestPipeline executes steps 5-9 against an already-persisted,
// processing Source Document.
func (o *Orchestrator) runIngestPipeline(ctx context.Context, source *types.SourceDocument, windows []string) (*types.SourceDocument, error) {
	// 5. Build and persist the Embedding Index.
	ix, err := index.Build(ctx, o.client, o.embeddingModel, windows)
	if err != nil {
		return nil, err
	}
	basePath := o.indexBasePath(source.ID)
	if err := ix.Save(basePath); err != nil {
		return nil, err
	}
	source.IndexPath = basePath
	if err := o.sources.Update(ctx, nil, source); err != nil {
		return nil, err
	}

	// 6. Extract names from the bounded prefix.
	prefix := boundedPrefix(windows, MaxNameExtractionChars)
	candidateNames, err := names.Extract(ctx, o.client, prefix, MaxNameExtractionLimit)
	if err != nil {
		return nil, err
	}

	// 7. Deduplicate. Log the alias map.
	result := dedup.Deduplicate(ctx, candidateNames, o.dedupOpts)
	if len(result.Aliases) > 0 {
		o.log.Info("alias map resolved", "source_id", source.ID, "aliases", result.Aliases)
	}

	canonicalNames := result.Canonical
	if len(canonicalNames) > MaxSynthesizedCharacters {
		o.log.Warn("truncating canonical character set to synthesis cap",
			"source_id", source.ID, "found", len(canonicalNames), "cap", MaxSynthesizedCharacters)
		canonicalNames = canonicalNames[:MaxSynthesizedCharacters]
	}

	// 8. For each surviving canonical name, synthesize profile + seed +
	// persist. A single character's failure is isolated: skip it, continue.
	characterCount := 0
	for _, name := range canonicalNames {
		p, err := o.synth.Synthesize(ctx, ix, o.client, name)
		if err != nil {
			o.log.Warn("skipping character after synthesis failure", "source_id", source.ID, "name", name, "error", err)
			continue
		}

		character := &types.CanonicalCharacter{
			SourceID:      source.ID,
			CanonicalName: p.Name,
			MentionCount:  p.MentionCount,
			Description:   p.Description,
			Seed:          int64(seed.FromName(p.Name)),
			Aliases:       datatypes.JSON(aliasesFor(p.Name, result.Aliases)),
		}
		if _, err := o.characters.Create(ctx, nil, []*types.CanonicalCharacter{character}); err != nil {
			o.log.Warn("skipping character after persistence failure", "source_id", source.ID, "name", name, "error", err)
			continue
		}
		characterCount++
	}

	// 9. Transition to completed and record the character count.
	source.Status = types.SourceStatusCompleted
	source.CharacterCount = characterCount
	if err := o.sources.Update(ctx, nil, source); err != nil {
		return nil, err
	}
	return source, nil
}

// supersedeAndCreate deletes any Source Document sharing title's normalized
// value, cascading characters, images on disk, and index files, and
// persists source as its replacement. Lookup, cascade-delete, and create
// all run inside one transaction, so a crash or a concurrent same-title
// ingest between the two steps can never leave the title with zero
// sources.
func (o *Orchestrator) supersedeAndCreate(ctx context.Context, title string, source *types.SourceDocument) error {
	return o.db.Transaction(func(tx *gorm.DB) error {
		existing, err := o.sources.GetByTitle(ctx, tx, title)
		if err != nil {
			return err
		}
		if existing != nil {
			if err := o.deleteSourceCascade(ctx, tx, existing); err != nil {
				return err
			}
		}
		_, err = o.sources.Create(ctx, tx, source)
		return err
	})
}

// DeleteSource cascades: image files on disk, image records, characters,
// embedding index files, then the source record. Filesystem deletions are
// best-effort; database deletions are transactional.
func (o *Orchestrator) DeleteSource(ctx context.Context, sourceID uuid.UUID) error {
	return o.db.Transaction(func(tx *gorm.DB) error {
		source, err := o.sources.GetByID(ctx, tx, sourceID)
		if err != nil {
			return err
		}
		return o.deleteSourceCascade(ctx, tx, source)
	})
}

func (o *Orchestrator) deleteSourceCascade(ctx context.Context, tx *gorm.DB, source *types.SourceDocument) error {
	characters, err := o.characters.ListBySourceOrdered(ctx, tx, source.ID)
	if err != nil {
		return err
	}
	characterIDs := make([]uuid.UUID, len(characters))
	for i, c := range characters {
		characterIDs[i] = c.ID
	}

	generatedImages, err := o.images.ListByCharacterIDs(ctx, tx, characterIDs)
	if err != nil {
		return err
	}
	removeFilesBestEffort(ctx, imagePaths(generatedImages))

	if err := o.images.FullDeleteByCharacterIDs(ctx, tx, characterIDs); err != nil {
		return err
	}
	if err := o.characters.FullDeleteBySourceID(ctx, tx, source.ID); err != nil {
		return err
	}
	removeIndexFilesBestEffort(source.IndexPath)
	return o.sources.FullDeleteByID(ctx, tx, source.ID)
}

// RegenerateImage looks up the character, constructs its profile
// descriptor, invokes the image generator, and persists a new image
// record pointing at the (overwritten) deterministic file path.
// Regeneration is permitted even when the current image is a placeholder.
func (o *Orchestrator) RegenerateImage(ctx context.Context, characterID uuid.UUID, style, aspectRatio string) (*types.GeneratedImage, error) {
	character, err := o.characters.GetByID(ctx, nil, characterID)
	if err != nil {
		return nil, err
	}

	result := o.portraits.Generate(ctx, portrait.CharacterProfile{
		Name:        character.CanonicalName,
		Description: character.Description,
		Seed:        uint32(character.Seed),
	}, style, aspectRatio)

	outcome := types.ImageOutcomeReal
	if result.Outcome == portrait.OutcomePlaceholder {
		outcome = types.ImageOutcomePlaceholder
	}

	record := &types.GeneratedImage{
		CharacterID: character.ID,
		Seed:        character.Seed,
		Prompt:      result.Prompt,
		Style:       style,
		AspectRatio: result.AspectRatio,
		DurationMS:  result.DurationMS,
		FilePath:    result.Path,
		Outcome:     outcome,
		FailureNote: result.FailureNote,
	}
	return o.images.Create(ctx, nil, record)
}

func aliasesFor(canonical string, aliasMap map[string]string) []byte {
	var surfaces []string
	for surface, c := range aliasMap {
		if c == canonical {
			surfaces = append(surfaces, surface)
		}
	}
	sort.Strings(surfaces)
	if len(surfaces) == 0 {
		return []byte("[]")
	}
	var b strings.Builder
	b.WriteByte('[')
	for i, s := range surfaces {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(s, `"`, `\"`))
		b.WriteByte('"')
	}
	b.WriteByte(']')
	return []byte(b.String())
}

func boundedPrefix(windows []string, maxChars int) string {
	var b strings.Builder
	for _, w := range windows {
		if b.Len() >= maxChars {
			break
		}
		b.WriteString(w)
		b.WriteString("\n")
	}
	runes := []rune(b.String())
	if len(runes) > maxChars {
		runes = runes[:maxChars]
	}
	return string(runes)
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}

func (o *Orchestrator) failSource(ctx context.Context, source *types.SourceDocument, cause error) {
	source.Status = types.SourceStatusFailed
	source.FailureReason = cause.Error()
	if err := o.sources.Update(ctx, nil, source); err != nil {
		o.log.Error("failed to persist source failure state", "source_id", source.ID, "error", err)
	}
	removeIndexFilesBestEffort(o.indexBasePath(source.ID))
	if err := o.characters.FullDeleteBySourceID(ctx, nil, source.ID); err != nil {
		o.log.Warn("failed to remove partial characters after ingest failure", "source_id", source.ID, "error", err)
	}
}

func imagePaths(images []*types.GeneratedImage) []string {
	paths := make([]string, len(images))
	for i, img := range images {
		paths[i] = img.FilePath
	}
	return paths
}

// removeFilesBestEffort unlinks files concurrently; missing files are not
// errors, and no single failure stops the others.
func removeFilesBestEffort(ctx context.Context, paths []string) {
	g, _ := errgroup.WithContext(ctx)
	for _, p := range paths {
		p := p
		g.Go(func() error {
			if p == "" {
				return nil
			}
			_ = os.Remove(p)
			return nil
		})
	}
	_ = g.Wait()
}

func removeIndexFilesBestEffort(basePath string) {
	if basePath == "" {
		return
	}
	_ = os.Remove(basePath + ".index")
	_ = os.Remove(basePath + ".index.meta")
}
