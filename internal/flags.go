package internal

import (
	"fmt"

	"github.com/spf13/cobra"
)

// AddTranscriptFlags adds flags shared by every command that fetches a transcript
func AddTranscriptFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("language", "l", "", "Caption language code (e.g. 'en', 'es')")
	cmd.Flags().Bool("fallback-whisper", false, "Fallback to Whisper if no captions available (costs money)")
}

// AddOutputFlags adds flags controlling how the transcript is rendered
func AddOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "f", "", "Output format: text or json")
	cmd.Flags().Bool("no-timestamps", false, "Omit [MM:SS] timestamps from text output")
}

// HandleVerboseFlag processes the --verbose and --quiet flags to update config
func HandleVerboseFlag(cmd *cobra.Command, config *Config) error {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return fmt.Errorf("failed to get verbose flag: %w", err)
	}
	quiet, err := cmd.Flags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if verbose && quiet {
		return fmt.Errorf("--verbose and --quiet are mutually exclusive")
	}
	config.Verbose = verbose
	config.Quiet = quiet
	return nil
}

// ExtractOptionsFromFlags assembles ExtractOptions from command flags,
// falling back to config values where a flag was not set.
func ExtractOptionsFromFlags(cmd *cobra.Command, config *Config) (ExtractOptions, error) {
	var opts ExtractOptions

	formatValue, _ := cmd.Flags().GetString("format")
	if formatValue == "" {
		formatValue = config.Format
	}
	format, err := ParseOutputFormat(formatValue)
	if err != nil {
		return opts, err
	}

	conflictValue := config.Conflict
	if cmd.Flags().Lookup("conflict") != nil {
		if flagValue, _ := cmd.Flags().GetString("conflict"); flagValue != "" {
			conflictValue = flagValue
		}
	}
	conflict, err := ParseConflictPolicy(conflictValue)
	if err != nil {
		return opts, err
	}

	language, _ := cmd.Flags().GetString("language")
	if language == "" {
		language = config.Language
	}

	noTimestamps, _ := cmd.Flags().GetBool("no-timestamps")
	fallbackWhisper, _ := cmd.Flags().GetBool("fallback-whisper")

	opts = ExtractOptions{
		Format:          format,
		Language:        language,
		Timestamps:      !noTimestamps,
		Conflict:        conflict,
		FallbackWhisper: fallbackWhisper,
	}

	if cmd.Flags().Lookup("output") != nil {
		opts.OutputPath, _ = cmd.Flags().GetString("output")
	}

	return opts, nil
}
