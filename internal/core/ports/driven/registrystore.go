package driven

import (
	"context"

	"github.com/custodia-labs/idledger/internal/core/domain"
)

// RegistryStore persists the derived registry.
type RegistryStore interface {
	// Save replaces the persisted registry.
	Save(ctx context.Context, reg *domain.Registry) error

	// Path returns where the registry is written.
	Path() string
}
