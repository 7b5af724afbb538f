package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/idledger/internal/core/domain"
	"github.com/custodia-labs/idledger/internal/core/ports/driven"
	"github.com/custodia-labs/idledger/internal/core/ports/driving"
)

// Ensure CardService implements the interface.
var _ driving.CardService = (*CardService)(nil)

// CardService reads identity records by id, key or alias.
type CardService struct {
	cards driven.CardStore
}

// NewCardService creates a new card service.
func NewCardService(cards driven.CardStore) *CardService {
	return &CardService{cards: cards}
}

// Get returns the card for an identifier.
func (s *CardService) Get(ctx context.Context, id string) (*domain.Card, error) {
	if s.cards == nil {
		return nil, errors.New("card store not configured")
	}
	if id == "" {
		return nil, fmt.Errorf("%w: id is required", domain.ErrInvalidInput)
	}
	return s.cards.Load(ctx, id)
}

// Resolve treats keyOrID as an identifier first, then as a key or alias.
func (s *CardService) Resolve(ctx context.Context, keyOrID string) (*domain.Card, error) {
	if keyOrID == "" {
		return nil, fmt.Errorf("%w: key or id is required", domain.ErrInvalidInput)
	}
	// Keys such as "POL/SEC-01" are not valid identifiers for every store.
	card, err := s.Get(ctx, keyOrID)
	if err == nil || !(errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidInput)) {
		return card, err
	}

	cards, err := collectCards(ctx, s.cards)
	if err != nil {
		return nil, fmt.Errorf("scan cards: %w", err)
	}
	// Collisions do not prevent resolving: the registry still picks an owner.
	reg, _ := domain.BuildRegistry(cards)
	id, ok := reg.LookupID(keyOrID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrNotFound, keyOrID)
	}
	return s.Get(ctx, id)
}

// Follow resolves keyOrID and walks merged_into to the surviving card.
func (s *CardService) Follow(ctx context.Context, keyOrID string) (*domain.Card, error) {
	card, err := s.Resolve(ctx, keyOrID)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{card.ID: true}
	for card.IsMerged() {
		next := card.MergedIntoID()
		if seen[next] {
			return nil, fmt.Errorf("%w: merge cycle through %s", domain.ErrMergeConflict, next)
		}
		seen[next] = true

		card, err = s.Get(ctx, next)
		if err != nil {
			return nil, fmt.Errorf("follow merged_into: %w", err)
		}
	}
	return card, nil
}
