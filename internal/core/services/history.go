package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/idledger/internal/core/domain"
	"github.com/custodia-labs/idledger/internal/core/ports/driven"
	"github.com/custodia-labs/idledger/internal/core/ports/driving"
)

// Ensure HistoryService implements the interface.
var _ driving.HistoryService = (*HistoryService)(nil)

// HistoryService reads the ledger.
type HistoryService struct {
	ledger driven.Ledger
}

// NewHistoryService creates a new history service.
func NewHistoryService(ledger driven.Ledger) *HistoryService {
	return &HistoryService{ledger: ledger}
}

// Events returns the events matching filter in append order. A positive
// Limit keeps the most recent matches.
func (s *HistoryService) Events(ctx context.Context, filter domain.EventFilter) ([]domain.Event, error) {
	if s.ledger == nil {
		return nil, errors.New("ledger not configured")
	}
	if filter.Limit < 0 {
		return nil, fmt.Errorf("%w: limit must not be negative", domain.ErrInvalidInput)
	}

	var events []domain.Event
	for event, err := range s.ledger.Events(ctx) {
		if err != nil {
			return nil, fmt.Errorf("read ledger: %w", err)
		}
		if filter.Matches(event) {
			events = append(events, event)
		}
	}

	if filter.Limit > 0 && len(events) > filter.Limit {
		events = events[len(events)-filter.Limit:]
	}
	return events, nil
}
