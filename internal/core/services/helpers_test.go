package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/idledger/internal/adapters/driven/fingerprint"
	"github.com/custodia-labs/idledger/internal/adapters/driven/idgen"
	"github.com/custodia-labs/idledger/internal/adapters/driven/schema"
	"github.com/custodia-labs/idledger/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/idledger/internal/core/domain"
	"github.com/custodia-labs/idledger/internal/core/ports/driven"
)

var (
	testNow = time.Date(2024, 5, 17, 9, 30, 0, 0, time.UTC)

	errDiskFull = errors.New("disk full")
)

// flakyCardStore fails Save for selected identifiers.
type flakyCardStore struct {
	*memory.CardStore

	mu    sync.Mutex
	fails map[string]error
	saves int
}

func newFlakyCardStore() *flakyCardStore {
	return &flakyCardStore{CardStore: memory.NewCardStore(), fails: make(map[string]error)}
}

func (s *flakyCardStore) failSave(id string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fails[id] = err
}

func (s *flakyCardStore) heal(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.fails, id)
}

func (s *flakyCardStore) saveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

func (s *flakyCardStore) Save(ctx context.Context, card domain.Card) error {
	s.mu.Lock()
	err := s.fails[card.ID]
	if err == nil {
		s.saves++
	}
	s.mu.Unlock()
	if err != nil {
		return domain.NewIOError("save "+card.ID, err)
	}
	return s.CardStore.Save(ctx, card)
}

// mockLedger records events in memory unless Append is stubbed to fail.
type mockLedger struct {
	mock.Mock
	*memory.Ledger
}

func newMockLedger() *mockLedger {
	return &mockLedger{Ledger: memory.NewLedger()}
}

func (m *mockLedger) Append(ctx context.Context, event domain.Event) error {
	args := m.Called(ctx, event)
	if err := args.Error(0); err != nil {
		return err
	}
	return m.Ledger.Append(ctx, event)
}

// recordingObserver collects "operation:outcome" pairs.
type recordingObserver struct {
	mu   sync.Mutex
	seen []string
}

func (o *recordingObserver) ObserveOperation(operation, outcome string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.seen = append(o.seen, operation+":"+outcome)
}

func (o *recordingObserver) outcomes() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.seen...)
}

type harness struct {
	svc      *LifecycleService
	cards    *flakyCardStore
	ledger   driven.Ledger
	events   func() []domain.Event
	observer *recordingObserver
}

type harnessOption func(*LifecycleConfig)

func withLedger(l driven.Ledger) harnessOption {
	return func(c *LifecycleConfig) { c.Ledger = l }
}

func withRedeprecate(p domain.RedeprecatePolicy) harnessOption {
	return func(c *LifecycleConfig) { c.Redeprecate = p }
}

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()

	validator, err := schema.New()
	require.NoError(t, err)

	cards := newFlakyCardStore()
	ledger := memory.NewLedger()
	observer := &recordingObserver{}
	cfg := LifecycleConfig{
		Cards:         cards,
		Ledger:        ledger,
		Validator:     validator,
		IDs:           idgen.NewWithClock(func() time.Time { return testNow }),
		Fingerprinter: fingerprint.Blake3{},
		Observer:      observer,
		Now:           func() time.Time { return testNow },
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	h := &harness{
		svc:      NewLifecycleService(cfg),
		cards:    cards,
		ledger:   cfg.Ledger,
		observer: observer,
	}
	h.events = func() []domain.Event {
		var out []domain.Event
		for e, err := range h.ledger.Events(context.Background()) {
			require.NoError(t, err)
			out = append(out, e)
		}
		return out
	}
	return h
}

func (h *harness) mint(t *testing.T, key string) domain.Card {
	t.Helper()
	card, err := h.svc.Mint(context.Background(), mintRequest(key))
	require.NoError(t, err)
	require.NotNil(t, card)
	return *card
}

func (h *harness) card(t *testing.T, id string) domain.Card {
	t.Helper()
	card, err := h.cards.Load(context.Background(), id)
	require.NoError(t, err)
	return *card
}

// put stores a card directly, bypassing the lifecycle operations.
func (h *harness) put(t *testing.T, card domain.Card) {
	t.Helper()
	require.NoError(t, h.cards.CardStore.Save(context.Background(), card))
}

func mintRequest(key string) domain.MintRequest {
	return domain.MintRequest{
		DocKey:       key,
		SemVer:       "1.0.0",
		Owner:        "QA",
		ContractType: "policy",
	}
}

// fixtureCard builds a valid card with a fixed identifier suffix.
func fixtureCard(n int, key string) domain.Card {
	return domain.NewCard(fixtureID(n), mintRequest(key), "2024-01-01")
}

func fixtureID(n int) string {
	return fmt.Sprintf("01J9ZQ4N8M%016d", n)
}

func eventTypes(events []domain.Event) []domain.EventType {
	out := make([]domain.EventType, 0, len(events))
	for _, e := range events {
		out = append(out, e.Type)
	}
	return out
}
