package memory

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"strings"
	"sync"

	"github.com/custodia-labs/idledger/internal/core/domain"
	"github.com/custodia-labs/idledger/internal/core/ports/driven"
)

// Ensure CardStore implements the interface.
var _ driven.CardStore = (*CardStore)(nil)

// CardStore is an in-memory implementation of driven.CardStore.
// Cards are cloned on the way in and out.
type CardStore struct {
	mu    sync.RWMutex
	cards map[string]domain.Card
}

// NewCardStore creates a new in-memory card store.
func NewCardStore() *CardStore {
	return &CardStore{
		cards: make(map[string]domain.Card),
	}
}

// Load retrieves the current version of a card.
func (s *CardStore) Load(_ context.Context, id string) (*domain.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	card, ok := s.cards[id]
	if !ok {
		return nil, fmt.Errorf("card %s: %w", id, domain.ErrNotFound)
	}
	out := card.Clone()
	return &out, nil
}

// Save stores a card version.
func (s *CardStore) Save(_ context.Context, card domain.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cards[card.ID] = card.Normalized()
	return nil
}

// All yields a snapshot of every card in identifier order.
func (s *CardStore) All(_ context.Context) iter.Seq2[domain.Card, error] {
	return func(yield func(domain.Card, error) bool) {
		s.mu.RLock()
		snapshot := make([]domain.Card, 0, len(s.cards))
		for _, c := range s.cards {
			snapshot = append(snapshot, c.Clone())
		}
		s.mu.RUnlock()

		slices.SortFunc(snapshot, func(a, b domain.Card) int { return strings.Compare(a.ID, b.ID) })
		for _, c := range snapshot {
			if !yield(c, nil) {
				return
			}
		}
	}
}

// Len returns the number of stored cards.
func (s *CardStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cards)
}
