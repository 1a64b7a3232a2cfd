// Package cli wires the repolang command line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

// NewRootCmd creates the top-level `repolang` command.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "repolang",
		Short: "Extract GitHub repository languages and publish them as CSV",
		Long: `repolang fetches the repositories of a configured set of GitHub
organizations, materializes name/language pairs as per-organization CSV
files, and pushes those files into a target GitHub repository.

The access token is read from the TOKEN_GITHUB environment variable.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newRunCmd())

	return root
}

// Execute runs the root command.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
