package opcli

import (
	"strings"

	"github.com/rciovati/safeincloud-to-1password/internal/model"
)

// DefaultCategory is the item category used when none is configured.
const DefaultCategory = "login"

// BuildOptions configures command construction.
type BuildOptions struct {
	// Vault is the 1Password vault name or ID. Optional for dry runs.
	Vault string

	// Category is the item category (default "login").
	Category string

	// Tags are attached to the created item.
	Tags []string
}

// FileRef points an assignment at an attachment already written to disk.
type FileRef struct {
	// Label is the field label for the attachment.
	Label string

	// Path is the location of the decoded file.
	Path string
}

// ItemCommand is one fully assembled op item create invocation.
// One card maps to exactly one ItemCommand.
type ItemCommand struct {
	Title       string
	Category    string
	Vault       string
	URL         string
	Tags        []string
	Assignments []Assignment
}

// BuildItemCommand assembles the op invocation for a card. Custom fields
// are classified by name; files lists attachments already decoded to disk,
// in attachment order.
func BuildItemCommand(card *model.Card, files []FileRef, opts BuildOptions) *ItemCommand {
	category := opts.Category
	if category == "" {
		category = DefaultCategory
	}

	cmd := &ItemCommand{
		Title:    card.DisplayTitle(),
		Category: category,
		Vault:    opts.Vault,
		URL:      card.URL,
		Tags:     opts.Tags,
	}

	if card.Username != "" {
		cmd.Assignments = append(cmd.Assignments, builtinAssignment("username", card.Username))
	}
	if card.Password != "" {
		cmd.Assignments = append(cmd.Assignments, builtinAssignment("password", card.Password))
	}
	if card.Notes != "" {
		// notesPlain is the built-in notes field across op item categories.
		cmd.Assignments = append(cmd.Assignments, builtinAssignment("notesPlain", card.Notes))
	}

	for _, field := range card.Fields {
		name := strings.TrimSpace(field.Name)
		if name == "" || strings.TrimSpace(field.Value) == "" {
			continue
		}
		cmd.Assignments = append(cmd.Assignments,
			fieldAssignment(fieldLabelPrefix+name, ClassifyFieldName(name), field.Value))
	}

	for _, ref := range files {
		cmd.Assignments = append(cmd.Assignments, fileAssignment(ref.Label, ref.Path))
	}

	return cmd
}

// Args returns the op CLI arguments for the command, without the op
// binary itself.
func (c *ItemCommand) Args() []string {
	args := []string{"item", "create", "--category", c.Category, "--title", c.Title}

	if c.Vault != "" {
		args = append(args, "--vault", c.Vault)
	}
	if c.URL != "" {
		args = append(args, "--url", c.URL)
	}
	if len(c.Tags) > 0 {
		args = append(args, "--tags", strings.Join(c.Tags, ","))
	}

	for _, a := range c.Assignments {
		args = append(args, a.String())
	}

	return args
}

// CommandLine renders the full command line for display in dry-run mode.
func (c *ItemCommand) CommandLine(opPath string) string {
	return opPath + " " + strings.Join(c.Args(), " ")
}
