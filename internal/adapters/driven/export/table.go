package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/custodia-labs/idledger/internal/core/domain"
	"github.com/custodia-labs/idledger/internal/core/ports/driven"
	"github.com/custodia-labs/idledger/internal/styles"
)

var (
	_ driven.RegistryExporter = Markdown{}
	_ driven.RegistryExporter = Table{}
)

var headers = []string{"ID", "DOC KEY", "ALIASES"}

func rows(reg *domain.Registry) [][]string {
	entries := reg.Entries()
	out := make([][]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, []string{e.ID, e.DocKey, strings.Join(e.Aliases, ", ")})
	}
	return out
}

// Markdown writes a pipe table.
type Markdown struct{}

// Format returns "markdown".
func (Markdown) Format() string { return "markdown" }

// Export writes the registry as a markdown table.
func (Markdown) Export(reg *domain.Registry, w io.Writer) error {
	t := table.New().
		Border(lipgloss.MarkdownBorder()).
		BorderTop(false).
		BorderBottom(false).
		Headers(headers...).
		Rows(rows(reg)...)
	_, err := fmt.Fprintln(w, t.String())
	return err
}

// Table writes a bordered table for terminals.
type Table struct {
	// Styles defaults to styles.DefaultStyles.
	Styles *styles.Styles
}

// Format returns "table".
func (Table) Format() string { return "table" }

// Export writes the registry as a styled table.
func (tb Table) Export(reg *domain.Registry, w io.Writer) error {
	s := tb.Styles
	if s == nil {
		s = styles.DefaultStyles()
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(s.Border).
		Headers(headers...).
		Rows(rows(reg)...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return s.Header
			case col == 0:
				return s.ID
			default:
				return s.Cell
			}
		})
	_, err := fmt.Fprintln(w, t.String())
	return err
}
