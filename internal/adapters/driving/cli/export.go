package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/idledger/internal/fsutil"
)

var (
	exportFormat string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the registry",
	Long: `Build the registry and write it as csv, json, markdown or table.

The default format is table on a terminal and csv otherwise.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "", "output format")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "write to a file instead of stdout")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	if exportService == nil {
		return errors.New("export service not configured")
	}

	format := exportFormat
	if format == "" {
		format = defaultExportFormat(cmd.OutOrStdout(), exportOutput)
	}
	if !slices.Contains(exportService.Formats(), format) {
		return fmt.Errorf("unknown format %q (available: %s)", format, strings.Join(exportService.Formats(), ", "))
	}

	if exportOutput == "" {
		return exportService.Export(cmd.Context(), format, cmd.OutOrStdout())
	}

	var buf bytes.Buffer
	if err := exportService.Export(cmd.Context(), format, &buf); err != nil {
		return err
	}
	if err := fsutil.WriteFileAtomic(exportOutput, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", exportOutput, err)
	}
	cmd.Printf("Wrote %s\n", exportOutput)
	return nil
}

// defaultExportFormat picks table for an interactive terminal and csv otherwise.
func defaultExportFormat(w io.Writer, output string) string {
	if output != "" {
		return "csv"
	}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return "table"
	}
	return "csv"
}
