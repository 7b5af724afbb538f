package driving

import (
	"context"

	"github.com/custodia-labs/idledger/internal/core/domain"
)

// RegistryService builds the derived identity index.
type RegistryService interface {
	// Build folds every stored card into a fresh registry.
	Build(ctx context.Context) (*domain.Registry, error)

	// Persist builds the registry and writes the registry file.
	Persist(ctx context.Context) (*domain.Registry, error)

	// Lookup returns the identifier for a key or alias.
	Lookup(ctx context.Context, key string) (string, error)

	// Watch persists the registry each time the card store changes, until ctx is done.
	Watch(ctx context.Context, onBuild func(*domain.Registry, error)) error
}
