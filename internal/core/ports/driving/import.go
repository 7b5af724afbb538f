package driving

import (
	"context"

	"github.com/custodia-labs/idledger/internal/core/domain"
)

// ImportService mints identities for existing documents.
type ImportService interface {
	// Import scans the request root and mints every document without an id.
	Import(ctx context.Context, req domain.ImportRequest) (*domain.ImportReport, error)
}
