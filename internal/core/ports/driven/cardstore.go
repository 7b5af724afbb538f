package driven

import (
	"context"
	"iter"

	"github.com/custodia-labs/idledger/internal/core/domain"
)

// CardStore persists one identity record per identifier.
type CardStore interface {
	// Load retrieves the current version of a card.
	// Returns domain.ErrNotFound if no card exists for id.
	Load(ctx context.Context, id string) (*domain.Card, error)

	// Save writes a card version. Readers never observe a partial write.
	Save(ctx context.Context, card domain.Card) error

	// All streams every stored card. Each call starts a fresh scan.
	// A missing store yields an empty sequence.
	All(ctx context.Context) iter.Seq2[domain.Card, error]
}
