package driven

import (
	"context"
	"iter"

	"github.com/custodia-labs/idledger/internal/core/domain"
)

// Ledger is the append-only event log.
type Ledger interface {
	// Append writes one event after every previously appended event.
	// Events are never edited, removed or reordered.
	Append(ctx context.Context, event domain.Event) error

	// Events streams the log front to back. Each call starts a fresh read.
	Events(ctx context.Context) iter.Seq2[domain.Event, error]
}
