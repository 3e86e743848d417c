// Package cli implements the meetflow command surface: cobra's root
// command with a "serve" subcommand (also the default action) plus
// kardianos/service subcommands for installing the server as a
// background OS service.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "meetflow",
	Short: "Meeting recording processing service",
	Long:  "meetflow ingests meeting recordings and runs them through transcription, diarization, alignment, summarization, and export.",
	RunE:  runServe,
}

// Execute runs the root command, defaulting to "serve" when no
// subcommand is given.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
