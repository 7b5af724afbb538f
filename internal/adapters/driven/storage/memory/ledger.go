package memory

import (
	"context"
	"iter"
	"maps"
	"sync"

	"github.com/custodia-labs/idledger/internal/core/domain"
	"github.com/custodia-labs/idledger/internal/core/ports/driven"
)

// Ensure Ledger implements the interface.
var _ driven.Ledger = (*Ledger)(nil)

// Ledger is an in-memory implementation of driven.Ledger.
type Ledger struct {
	mu     sync.RWMutex
	events []domain.Event
}

// NewLedger creates a new in-memory ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// Append adds an event after every previous one.
func (l *Ledger) Append(_ context.Context, event domain.Event) error {
	event.Data = maps.Clone(event.Data)
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
	return nil
}

// Events yields a snapshot of the log in append order.
func (l *Ledger) Events(_ context.Context) iter.Seq2[domain.Event, error] {
	return func(yield func(domain.Event, error) bool) {
		for _, e := range l.Snapshot() {
			if !yield(e, nil) {
				return
			}
		}
	}
}

// Snapshot returns a copy of every event appended so far.
func (l *Ledger) Snapshot() []domain.Event {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.Event, len(l.events))
	copy(out, l.events)
	return out
}
