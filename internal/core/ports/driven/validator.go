package driven

import "github.com/custodia-labs/idledger/internal/core/domain"

// CardValidator checks a card against the card schema.
type CardValidator interface {
	// Validate returns nil or a *domain.SchemaViolationError.
	Validate(card domain.Card) error
}
