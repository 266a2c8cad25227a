package main

import (
	"context"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List ingested sources",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	sources, err := orch.ListSources(context.Background())
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		cmd.Println("No sources ingested yet.")
		return nil
	}
	for _, s := range sources {
		cmd.Printf("%s  %-10s  %-20s  characters=%d\n", s.ID, s.Status, s.Title, s.CharacterCount)
	}
	return nil
}
