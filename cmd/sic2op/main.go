// Package main provides the entry point for the sic2op CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	Version   = "0.1.0-edge"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "sic2op",
	Short: "Import SafeInCloud exports into 1Password",
	Long: `sic2op imports password manager exports (SafeInCloud XML, KeePass)
into 1Password by driving the 1Password CLI (op item create).

Each card becomes one 1Password item. Embedded base64 images and files
are decoded to an attachments directory and attached as file fields.
Custom fields are classified into email/password/text by their names.

Requires the 1Password CLI (op) installed and authenticated for real
runs; --dry-run only prints the commands that would be issued.

Examples:
  # See what would be created, without touching 1Password
  sic2op import export.xml --dry-run

  # Import into a vault, tagging items with their SafeInCloud labels
  sic2op import export.xml --vault Personal --tag-groups

  # Import a KeePass database, keeping the decoded attachments
  sic2op import vault.kdbx --vault Personal --attachments-dir ./attachments`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Disable completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(sourcesCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
