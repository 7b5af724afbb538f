package driving

import (
	"context"

	"github.com/custodia-labs/idledger/internal/core/domain"
)

// HistoryService reads the ledger.
type HistoryService interface {
	// Events returns matching events in append order.
	Events(ctx context.Context, filter domain.EventFilter) ([]domain.Event, error)
}
