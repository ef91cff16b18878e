package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

// pathsCmd represents the paths command
var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Show paths used by the application",
	Example: `  # Show all application paths
  ytx paths`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Config file:           %s\n", filepath.Join(config.ConfigDir, "config.toml"))
		fmt.Printf("Data directory:        %s\n", config.DataDir)
		fmt.Printf("Cache directory:       %s\n", config.CacheDir)
		fmt.Printf("Transcripts directory: %s\n", config.TranscriptsDir)
		fmt.Printf("Temp directory:        %s\n", config.TempDir)
	},
}

func init() {
	rootCmd.AddCommand(pathsCmd)
}
