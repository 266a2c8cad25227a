package main

import (
	"context"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete [source-id]",
	Short: "Delete a source and cascade its characters, images, and index files",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	sourceID, err := uuid.Parse(args[0])
	if err != nil {
		return err
	}
	if err := orch.DeleteSource(context.Background(), sourceID); err != nil {
		return err
	}
	cmd.Printf("deleted source %s\n", sourceID)
	return nil
}
