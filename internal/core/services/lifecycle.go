package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/idledger/internal/core/domain"
	"github.com/custodia-labs/idledger/internal/core/ports/driven"
	"github.com/custodia-labs/idledger/internal/core/ports/driving"
	"github.com/custodia-labs/idledger/internal/logger"
)

// Ensure LifecycleService implements every lifecycle interface.
var (
	_ driving.Minter             = (*LifecycleService)(nil)
	_ driving.Rekeyer            = (*LifecycleService)(nil)
	_ driving.Deprecator         = (*LifecycleService)(nil)
	_ driving.Consolidator       = (*LifecycleService)(nil)
	_ driving.FingerprintUpdater = (*LifecycleService)(nil)
)

// Operation names reported to the observer and used in logs.
const (
	opMint        = "mint"
	opRekey       = "rekey"
	opDeprecate   = "deprecate"
	opConsolidate = "consolidate"
	opFingerprint = "fingerprint"
)

const defaultMergeWorkers = 4

// LifecycleConfig wires a LifecycleService.
type LifecycleConfig struct {
	Cards         driven.CardStore
	Ledger        driven.Ledger
	Validator     driven.CardValidator
	IDs           driven.IDGenerator
	Fingerprinter driven.Fingerprinter

	// Observer is optional.
	Observer driven.OperationObserver

	// Redeprecate defaults to domain.RedeprecateRecord.
	Redeprecate domain.RedeprecatePolicy

	// MergeWorkers bounds concurrent source updates during Consolidate.
	MergeWorkers int

	// Now defaults to time.Now.
	Now func() time.Time
}

// LifecycleService implements Mint, Rekey, Deprecate, Consolidate and
// UpdateFingerprint. It is the only writer of cards and ledger events.
type LifecycleService struct {
	cards         driven.CardStore
	ledger        driven.Ledger
	validator     driven.CardValidator
	ids           driven.IDGenerator
	fingerprinter driven.Fingerprinter
	observer      driven.OperationObserver
	redeprecate   domain.RedeprecatePolicy
	mergeWorkers  int
	now           func() time.Time

	// keysMu serialises key checks with the writes that claim the key.
	keysMu sync.Mutex
	locks  *keyedMutex
}

// NewLifecycleService creates a new lifecycle service.
func NewLifecycleService(cfg LifecycleConfig) *LifecycleService {
	s := &LifecycleService{
		cards:         cfg.Cards,
		ledger:        cfg.Ledger,
		validator:     cfg.Validator,
		ids:           cfg.IDs,
		fingerprinter: cfg.Fingerprinter,
		observer:      cfg.Observer,
		redeprecate:   cfg.Redeprecate,
		mergeWorkers:  cfg.MergeWorkers,
		now:           cfg.Now,
		locks:         newKeyedMutex(),
	}
	if !s.redeprecate.IsValid() {
		s.redeprecate = domain.RedeprecateRecord
	}
	if s.mergeWorkers <= 0 {
		s.mergeWorkers = defaultMergeWorkers
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *LifecycleService) ready() error {
	if s.cards == nil || s.ledger == nil || s.validator == nil {
		return errors.New("lifecycle service not configured")
	}
	return nil
}

// load returns the current card for id.
func (s *LifecycleService) load(ctx context.Context, id string) (domain.Card, error) {
	if id == "" {
		return domain.Card{}, fmt.Errorf("%w: id is required", domain.ErrInvalidInput)
	}
	card, err := s.cards.Load(ctx, id)
	if err != nil {
		return domain.Card{}, fmt.Errorf("load %s: %w", id, err)
	}
	return *card, nil
}

// write validates and persists one card version.
func (s *LifecycleService) write(ctx context.Context, card domain.Card) error {
	if err := s.validator.Validate(card); err != nil {
		return err
	}
	if err := s.cards.Save(ctx, card); err != nil {
		return fmt.Errorf("save %s v%d: %w", card.ID, card.Version, err)
	}
	return nil
}

// record appends the event of an operation whose record write already succeeded.
// A failure here leaves the write in place, so it is reported as UnloggedError.
func (s *LifecycleService) record(ctx context.Context, event domain.Event) error {
	if err := s.ledger.Append(ctx, event); err != nil {
		logger.Operation(string(event.Type), event.ID).
			Error("UNLOGGED record written but ledger append failed: %v", err)
		return &domain.UnloggedError{Event: event, Err: err}
	}
	return nil
}

// commit writes card and then appends event.
func (s *LifecycleService) commit(ctx context.Context, card domain.Card, event domain.Event) error {
	if err := s.write(ctx, card); err != nil {
		return err
	}
	return s.record(ctx, event)
}

// observe reports an operation outcome. Use with defer and a named error.
func (s *LifecycleService) observe(op string, start time.Time, err *error) {
	if s.observer == nil {
		return
	}
	s.observer.ObserveOperation(op, Outcome(*err), time.Since(start))
}

// Outcome classifies an operation error for metrics and exit reporting.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrNotLogged):
		return "unlogged"
	case errors.Is(err, domain.ErrPartialMerge):
		return "partial_merge"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrDuplicateKey):
		return "duplicate_key"
	case errors.Is(err, domain.ErrNoOpRekey):
		return "noop_rekey"
	case errors.Is(err, domain.ErrSchemaViolation):
		return "schema_violation"
	case errors.Is(err, domain.ErrMergeConflict):
		return "merge_conflict"
	case errors.Is(err, domain.ErrIdentityMerged):
		return "identity_merged"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, domain.ErrIOFailure):
		return "io_failure"
	default:
		return "error"
	}
}

// collectCards drains a store scan into a slice.
func collectCards(ctx context.Context, store driven.CardStore) ([]domain.Card, error) {
	var cards []domain.Card
	for card, err := range store.All(ctx) {
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, nil
}
