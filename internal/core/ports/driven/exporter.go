package driven

import (
	"io"

	"github.com/custodia-labs/idledger/internal/core/domain"
)

// RegistryExporter writes a registry projection in one interchange format.
type RegistryExporter interface {
	// Format is the name used to select the exporter (csv, json, ...).
	Format() string

	// Export writes one row or entry per identity.
	Export(reg *domain.Registry, w io.Writer) error
}
