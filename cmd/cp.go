package cmd

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/jmllr/ytx/internal"
)

// cpCmd copies the transcript to the system clipboard instead of writing a file.
var cpCmd = &cobra.Command{
	Use:   "cp [URL]",
	Short: "Copy transcript from YouTube to the clipboard",
	Example: `  # Copy transcript from YouTube captions
  ytx cp "https://www.youtube.com/watch?v=tAP1eZYEuKA"
  ytx cp tAP1eZYEuKA

  # Copy as JSON without timestamps
  ytx cp tAP1eZYEuKA --format json

  # Use Whisper if no captions available (costs money)
  ytx cp tAP1eZYEuKA --fallback-whisper`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := internal.NewApp(config)

		opts, err := internal.ExtractOptionsFromFlags(cmd, config)
		if err != nil {
			return err
		}

		transcript, err := app.FormattedTranscript(cmd.Context(), args[0], opts)
		if err != nil {
			return err
		}

		if err := clipboard.WriteAll(transcript); err != nil {
			return fmt.Errorf("copying transcript to clipboard: %w", err)
		}

		if !config.Quiet {
			fmt.Println("Transcript copied to clipboard")
		}

		return nil
	},
}

func init() {
	internal.AddTranscriptFlags(cpCmd)
	internal.AddOutputFlags(cpCmd)
	rootCmd.AddCommand(cpCmd)
}
