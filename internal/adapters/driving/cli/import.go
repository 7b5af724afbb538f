package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/idledger/internal/core/domain"
)

var (
	importPatterns []string
	importDryRun   bool
)

var importCmd = &cobra.Command{
	Use:   "import [root]",
	Short: "Mint identities for existing documents",
	Long: `Scan root for documents and mint an identity for each one whose front
matter has no id. The key is the front matter doc_key, or the upper-cased
file name. The whole-file fingerprint is recorded after minting.

Patterns default to the import.patterns setting.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringSliceVarP(&importPatterns, "pattern", "p", nil, "glob pattern, repeatable (e.g. '**/*.md')")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "report what would be minted without writing")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	if importService == nil {
		return errors.New("import service not configured")
	}

	defaults := domain.DefaultSettings().Import
	if settingsService != nil {
		settings, err := settingsService.Get()
		if err != nil {
			return fmt.Errorf("failed to get settings: %w", err)
		}
		defaults = settings.Import
	}

	report, err := importService.Import(cmd.Context(), domain.ImportRequest{
		Root:     args[0],
		Patterns: importPatterns,
		Defaults: defaults,
		DryRun:   importDryRun,
	})
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	for _, item := range report.Items {
		line := fmt.Sprintf("%-9s %s", item.Outcome, item.Path)
		if item.DocKey != "" {
			line += "  " + item.DocKey
		}
		if item.ID != "" {
			line += "  " + item.ID
		}
		if item.Err != nil {
			line += fmt.Sprintf("  (%v)", item.Err)
		}
		cmd.Println(line)
	}

	cmd.Printf("\n%d minted, %d planned, %d skipped, %d duplicate, %d failed\n",
		report.Count(domain.ImportMinted),
		report.Count(domain.ImportPlanned),
		report.Count(domain.ImportSkipped),
		report.Count(domain.ImportDuplicate),
		report.Count(domain.ImportFailed))

	if n := report.Count(domain.ImportFailed); n > 0 {
		return fmt.Errorf("%d documents failed to import", n)
	}
	return nil
}
