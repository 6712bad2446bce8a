// Package importer drives a single import run: cards in, one op item
// create invocation (or printed dry-run command) per card out.
package importer

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/rciovati/safeincloud-to-1password/internal/attach"
	"github.com/rciovati/safeincloud-to-1password/internal/model"
	"github.com/rciovati/safeincloud-to-1password/internal/opcli"
)

// ItemCreator executes one assembled op invocation. *opcli.Runner is the
// production implementation.
type ItemCreator interface {
	Create(ctx context.Context, item *opcli.ItemCommand) (string, error)
}

// Options configures an import run.
type Options struct {
	// Vault is the target 1Password vault. Required unless DryRun.
	Vault string

	// Category is the item category for created items.
	Category string

	// TagGroups maps the card's group or label to a 1Password tag.
	TagGroups bool

	// DryRun prints the assembled command lines instead of executing
	// them. No attachment files are written in dry-run mode.
	DryRun bool

	// OpPath is the op binary path shown in dry-run output.
	OpPath string
}

// Failure records one card that could not be imported.
type Failure struct {
	Index int
	Title string
	Err   error
}

// Result summarizes an import run.
type Result struct {
	// Imported counts cards turned into items (or printed commands).
	Imported int

	// Skipped counts template cards that were not imported.
	Skipped int

	// Failures lists cards whose attachments could not be written or
	// whose op invocation failed.
	Failures []Failure
}

// Importer processes cards strictly sequentially. A failure on one card
// never blocks the cards after it.
type Importer struct {
	opts    Options
	dir     *attach.Dir
	creator ItemCreator
	out     io.Writer
	log     zerolog.Logger
}

// New creates an Importer writing dry-run commands and op output to out.
// dir may be nil in dry-run mode, where nothing touches the filesystem.
func New(opts Options, dir *attach.Dir, creator ItemCreator, out io.Writer, log zerolog.Logger) *Importer {
	if opts.Category == "" {
		opts.Category = opcli.DefaultCategory
	}
	if opts.OpPath == "" {
		opts.OpPath = opcli.DefaultOpPath
	}
	return &Importer{
		opts:    opts,
		dir:     dir,
		creator: creator,
		out:     out,
		log:     log,
	}
}

// Run imports all cards in order and reports the aggregate outcome.
// Per-card failures are collected in the result, not returned as an
// error: only the caller decides whether a partial run is a failure.
func (im *Importer) Run(ctx context.Context, cards []model.Card) *Result {
	result := &Result{}

	for i := range cards {
		card := &cards[i]
		title := card.DisplayTitle()

		if card.Template {
			im.log.Info().Int("index", i).Str("title", title).Msg("skipping template card")
			result.Skipped++
			continue
		}

		im.log.Info().Int("index", i).Str("title", title).Msg("importing card")

		if err := im.importCard(ctx, card, i); err != nil {
			im.log.Error().Int("index", i).Str("title", title).Err(err).Msg("card failed")
			result.Failures = append(result.Failures, Failure{Index: i, Title: title, Err: err})
			continue
		}

		result.Imported++
	}

	return result
}

// importCard builds and issues the op invocation for one card.
func (im *Importer) importCard(ctx context.Context, card *model.Card, index int) error {
	var tags []string
	if im.opts.TagGroups && card.Group != "" {
		tags = append(tags, card.Group)
	}

	files, err := im.writeAttachments(card, index)
	if err != nil {
		return err
	}

	item := opcli.BuildItemCommand(card, files, opcli.BuildOptions{
		Vault:    im.opts.Vault,
		Category: im.opts.Category,
		Tags:     tags,
	})

	if im.opts.DryRun {
		fmt.Fprintln(im.out, "DRY RUN: "+item.CommandLine(im.opts.OpPath))
		return nil
	}

	output, err := im.creator.Create(ctx, item)
	if err != nil {
		return err
	}

	// op's output varies; passing it through helps with debugging and
	// exposes created item IDs.
	if trimmed := strings.TrimSpace(output); trimmed != "" {
		fmt.Fprintln(im.out, trimmed)
	}

	return nil
}

// writeAttachments decodes a card's attachments into the attachments
// directory and returns the file references for the command builder.
// Dry runs write nothing and attach nothing.
func (im *Importer) writeAttachments(card *model.Card, index int) ([]opcli.FileRef, error) {
	if im.opts.DryRun {
		if n := len(card.Attachments); n > 0 {
			im.log.Debug().Int("index", index).Int("attachments", n).Msg("dry run: attachments not written")
		}
		return nil, nil
	}

	var files []opcli.FileRef
	imageCount := 0

	for _, att := range card.Attachments {
		name := att.Name
		if att.Image || name == "" {
			imageCount++
			name = attach.ImageFileName(card.DisplayTitle(), index, imageCount, att.Data)
		}

		path, err := im.dir.Write(name, att.Data)
		if err != nil {
			return nil, err
		}

		im.log.Debug().Str("path", path).Msg("wrote attachment")
		files = append(files, opcli.FileRef{Label: filepath.Base(path), Path: path})
	}

	return files, nil
}
