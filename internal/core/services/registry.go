package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/idledger/internal/core/domain"
	"github.com/custodia-labs/idledger/internal/core/ports/driven"
	"github.com/custodia-labs/idledger/internal/core/ports/driving"
	"github.com/custodia-labs/idledger/internal/logger"
)

// Ensure RegistryService implements the interface.
var _ driving.RegistryService = (*RegistryService)(nil)

// RegistryService rebuilds the registry from the card store.
type RegistryService struct {
	cards    driven.CardStore
	store    driven.RegistryStore
	notifier driven.ChangeNotifier
	strict   bool
}

// NewRegistryService creates a new registry service.
// store and notifier may be nil when Persist and Watch are not used.
func NewRegistryService(
	cards driven.CardStore,
	store driven.RegistryStore,
	notifier driven.ChangeNotifier,
	strict bool,
) *RegistryService {
	return &RegistryService{
		cards:    cards,
		store:    store,
		notifier: notifier,
		strict:   strict,
	}
}

// Build folds every card into a new registry. An empty or missing store
// yields an empty registry. Key collisions fail the build in strict mode
// and are logged otherwise.
func (s *RegistryService) Build(ctx context.Context) (*domain.Registry, error) {
	if s.cards == nil {
		return nil, errors.New("card store not configured")
	}
	cards, err := collectCards(ctx, s.cards)
	if err != nil {
		return nil, fmt.Errorf("scan cards: %w", err)
	}

	reg, collisions := domain.BuildRegistry(cards)
	if collisions != nil {
		if s.strict {
			return nil, collisions
		}
		logger.Warn("registry built with collisions: %v", collisions)
	}
	logger.Debug("registry: %d identities, %d keys", reg.Len(), len(reg.ByKey))
	return reg, nil
}

// Persist builds the registry and writes it to the registry store.
func (s *RegistryService) Persist(ctx context.Context) (*domain.Registry, error) {
	if s.store == nil {
		return nil, errors.New("registry store not configured")
	}
	reg, err := s.Build(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, reg); err != nil {
		return nil, fmt.Errorf("write registry: %w", err)
	}
	return reg, nil
}

// Lookup returns the identifier holding key as current key or alias.
func (s *RegistryService) Lookup(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("%w: key is required", domain.ErrInvalidInput)
	}
	reg, err := s.Build(ctx)
	if err != nil {
		return "", err
	}
	id, ok := reg.LookupID(key)
	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrNotFound, key)
	}
	return id, nil
}

// Watch persists the registry once, then again after every settled change
// to the card store, until ctx is cancelled. onBuild may be nil.
func (s *RegistryService) Watch(ctx context.Context, onBuild func(*domain.Registry, error)) error {
	if s.notifier == nil {
		return errors.New("change notifier not configured")
	}
	rebuild := func() {
		reg, err := s.Persist(ctx)
		if err != nil {
			logger.Warn("registry rebuild failed: %v", err)
		}
		if onBuild != nil {
			onBuild(reg, err)
		}
	}

	rebuild()
	return s.notifier.Watch(ctx, rebuild)
}
