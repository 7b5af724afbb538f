package driving

import (
	"context"

	"github.com/custodia-labs/idledger/internal/core/domain"
)

// ReconcileService audits the store for merge graph inconsistencies.
type ReconcileService interface {
	// Check reports inconsistencies without writing anything.
	Check(ctx context.Context) (*domain.ReconcileReport, error)

	// Repair re-runs Consolidate for targets with pending merges, then checks again.
	Repair(ctx context.Context) (*domain.ReconcileReport, error)
}
