package driving

import (
	"context"
	"io"
)

// ExportService projects the registry to interchange formats.
type ExportService interface {
	// Export builds the registry and writes it in the named format.
	Export(ctx context.Context, format string, w io.Writer) error

	// Formats lists the supported format names.
	Formats() []string
}
