package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rciovati/safeincloud-to-1password/internal/attach"
	"github.com/rciovati/safeincloud-to-1password/internal/importer"
	"github.com/rciovati/safeincloud-to-1password/internal/opcli"
	"github.com/rciovati/safeincloud-to-1password/internal/security"
	"github.com/rciovati/safeincloud-to-1password/internal/sources"
)

var importFlags struct {
	source         string
	vault          string
	category       string
	attachmentsDir string
	tagGroups      bool
	dryRun         bool
	password       string
	keyFile        string
	opPath         string
	verbose        bool
	quiet          bool
}

var importCmd = &cobra.Command{
	Use:   "import [input-file]",
	Short: "Import cards into 1Password via op item create",
	Long: `Import cards from an export file into 1Password.

Each card becomes one op item create invocation. Cards are processed
strictly in document order; a failing card is reported and the run
continues with the next one. The run exits non-zero if the input could
not be parsed or if any card failed.

Note: assignment statements place secrets on the op command line.

Examples:
  # Dry run: print the op commands without creating anything
  sic2op import export.xml --dry-run

  # Import into a vault with SafeInCloud labels as tags
  sic2op import export.xml --vault Personal --tag-groups

  # Import a KeePass database
  sic2op import vault.kdbx --vault Personal --source keepass`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVarP(&importFlags.source, "source", "s", "", "Source type (safeincloud|keepass); auto-detected when omitted")
	importCmd.Flags().StringVar(&importFlags.vault, "vault", "", "1Password vault name or ID (required unless --dry-run)")
	importCmd.Flags().StringVar(&importFlags.category, "category", "", `1Password item category (default "login")`)
	importCmd.Flags().StringVar(&importFlags.attachmentsDir, "attachments-dir", "", "Directory to write decoded attachments into (default: temp dir, removed afterwards)")
	importCmd.Flags().BoolVar(&importFlags.tagGroups, "tag-groups", false, "Map the card's group or label to a 1Password tag")
	importCmd.Flags().BoolVar(&importFlags.dryRun, "dry-run", false, "Print op commands; don't write files or create items")
	importCmd.Flags().StringVarP(&importFlags.password, "password", "p", "", "Password for encrypted sources (KeePass)")
	importCmd.Flags().StringVarP(&importFlags.keyFile, "key-file", "k", "", "Key file path (for KeePass)")
	importCmd.Flags().StringVar(&importFlags.opPath, "op-path", "", `Path to the op binary (default "op")`)
	importCmd.Flags().BoolVarP(&importFlags.verbose, "verbose", "v", false, "Verbose output")
	importCmd.Flags().BoolVarP(&importFlags.quiet, "quiet", "q", false, "Suppress all output except errors")
}

func runImport(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	log := newLogger(importFlags.verbose, importFlags.quiet)

	envCfg, err := loadEnvConfig()
	if err != nil {
		return err
	}

	vault := firstNonEmpty(importFlags.vault, envCfg.Vault)
	category := firstNonEmpty(importFlags.category, envCfg.Category)
	attachmentsDir := firstNonEmpty(importFlags.attachmentsDir, envCfg.AttachmentsDir)
	opPath := firstNonEmpty(importFlags.opPath, envCfg.OpPath, opcli.DefaultOpPath)

	if vault == "" && !importFlags.dryRun {
		return fmt.Errorf("--vault is required unless --dry-run is set")
	}

	source, err := resolveSource(importFlags.source, inputPath)
	if err != nil {
		return err
	}

	if err := openSource(source, inputPath, importFlags.password, importFlags.keyFile); err != nil {
		return err
	}
	defer source.Close()
	security.WipeString(&importFlags.password)

	cards, err := source.Read()
	if err != nil {
		if sources.IsPartialRead(err) {
			log.Warn().Msg(err.Error())
		} else {
			return fmt.Errorf("failed to read cards: %w", err)
		}
	}

	if len(cards) == 0 {
		log.Info().Msg("no cards found")
		return nil
	}

	var dir *attach.Dir
	if !importFlags.dryRun {
		dir, err = attach.Resolve(attachmentsDir)
		if err != nil {
			return err
		}
		if dir.AutoCreated() {
			defer dir.Cleanup()
		}
		log.Debug().Str("dir", dir.Path()).Msg("attachments directory ready")
	}

	imp := importer.New(importer.Options{
		Vault:     vault,
		Category:  category,
		TagGroups: importFlags.tagGroups,
		DryRun:    importFlags.dryRun,
		OpPath:    opPath,
	}, dir, opcli.NewRunner(opPath), cmd.OutOrStdout(), log)

	result := imp.Run(cmd.Context(), cards)

	if !importFlags.quiet {
		fmt.Fprintf(os.Stderr, "\nImported: %d  Skipped: %d  Failed: %d\n",
			result.Imported, result.Skipped, len(result.Failures))
	}

	if len(result.Failures) > 0 {
		return fmt.Errorf("%d of %d cards failed to import", len(result.Failures), len(cards))
	}

	return nil
}

// resolveSource retrieves the source adapter by name or auto-detects it
// from the input path.
func resolveSource(sourceName, inputPath string) (sources.Source, error) {
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("input path does not exist: %s", inputPath)
	}

	registry := sources.DefaultRegistry()

	if sourceName != "" {
		source, ok := registry.Get(sourceName)
		if !ok {
			return nil, fmt.Errorf("unknown source type: %s (try: safeincloud, keepass)", sourceName)
		}
		return source, nil
	}

	detected, err := registry.DetectSource(inputPath)
	if err != nil || detected == nil {
		return nil, fmt.Errorf("could not auto-detect source type for: %s (use --source to specify)", inputPath)
	}

	fmt.Fprintf(os.Stderr, "Auto-detected source: %s\n", detected.Name())
	return detected, nil
}

// openSource opens the source adapter, prompting for a password when the
// format needs one and none was supplied.
func openSource(source sources.Source, inputPath, password, keyFile string) error {
	opts := sources.OpenOptions{}
	if needsPassword(source.Name()) {
		opts.Password = password
		opts.KeyFilePath = keyFile
		opts.Interactive = true
		opts.PasswordFunc = promptPassword
	}

	if err := source.Open(inputPath, opts); err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}

	return nil
}

func needsPassword(sourceName string) bool {
	return sourceName == "keepass"
}

func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr) // newline after password
	return string(password), err
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
