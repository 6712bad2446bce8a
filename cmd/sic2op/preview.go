package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rciovati/safeincloud-to-1password/internal/model"
	"github.com/rciovati/safeincloud-to-1password/internal/opcli"
	"github.com/rciovati/safeincloud-to-1password/internal/sources"
)

var previewFlags struct {
	source   string
	password string
	keyFile  string
}

var previewCmd = &cobra.Command{
	Use:   "preview [input-file]",
	Short: "Preview cards without importing",
	Long: `Preview cards from an export without invoking the 1Password CLI.

The preview command shows what would be imported: card counts, how the
custom fields would be classified, attachment counts, and the group
hierarchy. Nothing is written and op is never executed.

Examples:
  # Preview a SafeInCloud export
  sic2op preview export.xml

  # Preview a KeePass database
  sic2op preview --source keepass vault.kdbx`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().StringVarP(&previewFlags.source, "source", "s", "", "source type (safeincloud|keepass)")
	previewCmd.Flags().StringVarP(&previewFlags.password, "password", "p", "", "password for encrypted sources")
	previewCmd.Flags().StringVarP(&previewFlags.keyFile, "key-file", "k", "", "key file path (for KeePass)")
}

func runPreview(cmd *cobra.Command, args []string) error {
	// Show help if no args provided
	if len(args) == 0 {
		cmd.Help()
		return nil
	}

	inputPath := args[0]

	source, err := resolveSource(previewFlags.source, inputPath)
	if err != nil {
		return err
	}

	if err := openSource(source, inputPath, previewFlags.password, previewFlags.keyFile); err != nil {
		return err
	}
	defer source.Close()

	cards, warnings, err := readPreviewCards(source)
	if err != nil {
		return err
	}

	printPreview(source.Name(), inputPath, cards, warnings)

	return nil
}

// readPreviewCards reads cards from the source and collects warnings.
func readPreviewCards(source sources.Source) ([]model.Card, []string, error) {
	cards, err := source.Read()
	var warnings []string

	if err != nil {
		if sources.IsPartialRead(err) {
			warnings = append(warnings, err.Error())
		} else {
			return nil, nil, fmt.Errorf("failed to read cards: %w", err)
		}
	}

	return cards, warnings, nil
}

// printPreview outputs the card preview to stdout.
func printPreview(sourceName, inputPath string, cards []model.Card, warnings []string) {
	templates := 0
	attachments := 0
	fieldCounts := make(map[string]int)

	for i := range cards {
		card := &cards[i]
		if card.Template {
			templates++
			continue
		}
		attachments += len(card.Attachments)
		for _, field := range card.Fields {
			if strings.TrimSpace(field.Name) == "" {
				continue
			}
			fieldCounts[opcli.ClassifyFieldName(field.Name).String()]++
		}
	}

	fmt.Printf("Source: %s (%s)\n", sourceName, inputPath)
	fmt.Printf("Cards: %d total", len(cards))
	if templates > 0 {
		fmt.Printf(" (%d templates, skipped on import)", templates)
	}
	fmt.Println()
	fmt.Printf("Attachments: %d\n", attachments)

	if len(fieldCounts) > 0 {
		fmt.Println("\nCustom fields by type:")
		typeNames := make([]string, 0, len(fieldCounts))
		for t := range fieldCounts {
			typeNames = append(typeNames, t)
		}
		sort.Strings(typeNames)
		for _, typeName := range typeNames {
			fmt.Printf("  - %d %s\n", fieldCounts[typeName], typeName)
		}
	}

	groups := buildGroupTree(cards)
	if len(groups) > 0 {
		fmt.Println("\nGroups:")
		printGroupTree(groups, "  ")
	}

	if len(warnings) > 0 {
		fmt.Println("\nWarnings:")
		for _, w := range warnings {
			fmt.Printf("  - %s\n", w)
		}
	}
}

// groupNode represents a node in the group hierarchy tree.
type groupNode struct {
	name     string
	count    int
	children map[string]*groupNode
}

// buildGroupTree constructs a hierarchical tree of groups from cards.
// SafeInCloud labels are flat; KeePass folder paths nest with "/".
func buildGroupTree(cards []model.Card) map[string]*groupNode {
	root := make(map[string]*groupNode)

	for i := range cards {
		if cards[i].Group == "" {
			continue
		}

		parts := strings.Split(strings.Trim(cards[i].Group, "/"), "/")
		current := root

		for _, part := range parts {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}

			if _, ok := current[part]; !ok {
				current[part] = &groupNode{
					name:     part,
					children: make(map[string]*groupNode),
				}
			}
			current[part].count++
			current = current[part].children
		}
	}

	return root
}

// printGroupTree recursively prints the group tree with indentation.
func printGroupTree(nodes map[string]*groupNode, indent string) {
	names := make([]string, 0, len(nodes))
	for name := range nodes {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		node := nodes[name]
		fmt.Printf("%s- %s (%d cards)\n", indent, node.name, node.count)
		if len(node.children) > 0 {
			printGroupTree(node.children, indent+"  ")
		}
	}
}
