package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Populated at build time via -ldflags "-X ...".
var (
	version = "dev"
	commit  = ""
	date    = ""
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Example: `  # Show version information
  ytx version`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ytx %s (%s/%s)\n", version, runtime.GOOS, runtime.GOARCH)
		if commit != "" {
			fmt.Printf("  commit: %s\n", commit)
		}
		if date != "" {
			fmt.Printf("  built:  %s\n", date)
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
