package main

import (
	"context"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var imageStyle string
var imageAspectRatio string

var imageCmd = &cobra.Command{
	Use:   "image [character-id]",
	Short: "Generate or regenerate a character's portrait",
	Args:  cobra.ExactArgs(1),
	RunE:  runImage,
}

func init() {
	imageCmd.Flags().StringVar(&imageStyle, "style", "", "style string (defaults to the shared portrait style)")
	imageCmd.Flags().StringVar(&imageAspectRatio, "aspect-ratio", "", "aspect ratio such as 1:1, 16:9, 9:16 (defaults to 1:1)")
	rootCmd.AddCommand(imageCmd)
}

func runImage(cmd *cobra.Command, args []string) error {
	characterID, err := uuid.Parse(args[0])
	if err != nil {
		return err
	}

	image, err := orch.RegenerateImage(context.Background(), characterID, imageStyle, imageAspectRatio)
	if err != nil {
		return err
	}

	cmd.Printf("outcome: %s\n", image.Outcome)
	cmd.Printf("path: %s\n", image.FilePath)
	cmd.Printf("aspect_ratio: %s\n", image.AspectRatio)
	cmd.Printf("duration_ms: %d\n", image.DurationMS)
	if image.FailureNote != "" {
		cmd.Printf("failure_note: %s\n", image.FailureNote)
	}
	return nil
}
