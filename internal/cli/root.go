// Package cli implements the command-line interface for timestats.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// SetVersionInfo sets the version information for the CLI.
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (%s, %s)", version, commit, date)
}

var rootCmd = &cobra.Command{
	Use:   "timestats",
	Short: "Hierarchical timing statistics for instrumented call paths",
	Long: `Timestats assembles a timing tree from begin/end scope markers and
standalone checkpoints, then renders a report of elapsed time and
percentage share per node, color-coded by duration severity.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(demoCmd)
}
