package driving

import (
	"context"

	"github.com/custodia-labs/idledger/internal/core/domain"
)

// CardService reads identity records.
type CardService interface {
	// Get returns the card for an identifier.
	Get(ctx context.Context, id string) (*domain.Card, error)

	// Resolve accepts an identifier, key or alias and returns the card.
	Resolve(ctx context.Context, keyOrID string) (*domain.Card, error)

	// Follow resolves like Resolve and then walks merged_into links to the surviving card.
	Follow(ctx context.Context, keyOrID string) (*domain.Card, error)
}
