package main

import (
	"context"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show [source-id]",
	Short: "Show a source and its canonical characters",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	sourceID, err := uuid.Parse(args[0])
	if err != nil {
		return err
	}

	ctx := context.Background()
	source, err := orch.GetSource(ctx, sourceID)
	if err != nil {
		return err
	}

	cmd.Printf("title: %s\n", source.Title)
	cmd.Printf("status: %s\n", source.Status)
	cmd.Printf("format: %s\n", source.Format)
	cmd.Printf("chunk_count: %d\n", source.ChunkCount)
	if source.FailureReason != "" {
		cmd.Printf("failure_reason: %s\n", source.FailureReason)
	}
	cmd.Println()

	characters, err := orch.GetCharacters(ctx, sourceID)
	if err != nil {
		return err
	}
	for _, c := range characters {
		cmd.Printf("- %s (mentions=%d, seed=%d)\n", c.CanonicalName, c.MentionCount, c.Seed)
		cmd.Printf("  %s\n", c.Description)
	}
	return nil
}
