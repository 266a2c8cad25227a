package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/steve0joo/storymind/internal/character/dedup"
	"github.com/steve0joo/storymind/internal/clients/openai"
	"github.com/steve0joo/storymind/internal/db"
	"github.com/steve0joo/storymind/internal/orchestrator"
	"github.com/steve0joo/storymind/internal/pkg/config"
	"github.com/steve0joo/storymind/internal/pkg/logger"
	"github.com/steve0joo/storymind/internal/repos"
)

var (
	log  *logger.Logger
	orch *orchestrator.Orchestrator
)

var rootCmd = &cobra.Command{
	Use:   "storymind",
	Short: "Ingest novels and generate canonical character profiles and portraits",
}

func main() {
	if err := wire(); err != nil {
		fmt.Fprintf(os.Stderr, "init: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func wire() error {
	var err error
	log, err = logger.New(os.Getenv("LOG_MODE"))
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	pg, err := db.NewPostgresService(log)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	client, err := openai.NewClient(log)
	if err != nil {
		return fmt.Errorf("init openai client: %w", err)
	}

	sourceRepo := repos.NewSourceRepo(pg.DB(), log)
	characterRepo := repos.NewCharacterRepo(pg.DB(), log)
	imageRepo := repos.NewImageRepo(pg.DB(), log)

	dataDir := config.GetEnv("STORYMIND_DATA_DIR", "./data", log)
	imageDir := config.GetEnv("STORYMIND_IMAGE_DIR", "./images", log)
	fontPath := config.GetEnv("STORYMIND_FONT_PATH", "", log)
	embeddingModel := config.GetEnv("OPENAI_EMBED_MODEL", "text-embedding-3-small", log)

	// Strategy 4 of C4 costs one LLM call per still-unmerged name pair, so
	// it is opt-in for higher-quota deployments rather than a default.
	var semantic dedup.SemanticMatcher
	if config.GetEnvAsBool("SEMANTIC_DEDUP_ENABLED", false, log) {
		semantic = dedup.NewOpenAISemanticMatcher(client)
	}

	orch, err = orchestrator.New(pg.DB(), log, client, sourceRepo, characterRepo, imageRepo, orchestrator.Config{
		DataDir:          dataDir,
		ImageDir:         imageDir,
		FontPath:         fontPath,
		EmbeddingModel:   embeddingModel,
		RetrievalBreadth: 7,
		Semantic:         semantic,
	})
	if err != nil {
		return fmt.Errorf("init orchestrator: %w", err)
	}
	return nil
}
