package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rciovati/safeincloud-to-1password/internal/sources"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List available source adapters",
	Long: `List the source adapters this tool can read.

The import and preview commands auto-detect the adapter from the input
file; pass --source to pick one explicitly.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Available sources:")
		for _, s := range sources.DefaultRegistry().List() {
			fmt.Printf("  %-12s %s (%s)\n",
				s.Name(), s.Description(), strings.Join(s.SupportedExtensions(), ", "))
		}
	},
}
