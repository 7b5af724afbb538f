package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/custodia-labs/idledger/internal/core/domain"
	"github.com/custodia-labs/idledger/internal/core/ports/driven"
	"github.com/custodia-labs/idledger/internal/core/ports/driving"
)

// Ensure ExportService implements the interface.
var _ driving.ExportService = (*ExportService)(nil)

// ExportService writes the registry through a named exporter.
type ExportService struct {
	registry  driving.RegistryService
	exporters map[string]driven.RegistryExporter
}

// NewExportService creates a new export service. Later exporters replace
// earlier ones with the same format name.
func NewExportService(registry driving.RegistryService, exporters ...driven.RegistryExporter) *ExportService {
	byFormat := make(map[string]driven.RegistryExporter, len(exporters))
	for _, e := range exporters {
		byFormat[e.Format()] = e
	}
	return &ExportService{registry: registry, exporters: byFormat}
}

// Export builds the registry and writes it in format to w.
func (s *ExportService) Export(ctx context.Context, format string, w io.Writer) error {
	if s.registry == nil {
		return errors.New("registry service not configured")
	}
	exporter, ok := s.exporters[format]
	if !ok {
		return fmt.Errorf("%w: unknown export format %q (supported: %v)", domain.ErrInvalidInput, format, s.Formats())
	}

	reg, err := s.registry.Build(ctx)
	if err != nil {
		return err
	}
	if err := exporter.Export(reg, w); err != nil {
		return fmt.Errorf("export %s: %w", format, err)
	}
	return nil
}

// Formats lists the registered format names in sorted order.
func (s *ExportService) Formats() []string {
	formats := make([]string, 0, len(s.exporters))
	for f := range s.exporters {
		formats = append(formats, f)
	}
	slices.Sort(formats)
	return formats
}
