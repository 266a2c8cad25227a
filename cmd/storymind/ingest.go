package main

import (
	"context"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Ingest a novel (PDF, EPUB, or plain text) and synthesize character profiles",
	Args:  cobra.ExactArgs(1),
	RunE:  runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	source, err := orch.Ingest(ctx, args[0])
	if err != nil {
		return err
	}

	cmd.Printf("source_id: %s\n", source.ID)
	cmd.Printf("title: %s\n", source.Title)
	cmd.Printf("status: %s\n", source.Status)
	cmd.Printf("characters: %d\n", source.CharacterCount)
	return nil
}
