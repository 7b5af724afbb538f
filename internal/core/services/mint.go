package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/idledger/internal/core/domain"
	"github.com/custodia-labs/idledger/internal/logger"
)

// Mint creates a new identity for req.DocKey.
//
// The key check runs against a registry rebuilt from the store while the
// key lock is held, so two mints in the same process cannot claim the
// same key.
func (s *LifecycleService) Mint(ctx context.Context, req domain.MintRequest) (_ *domain.Card, err error) {
	defer s.observe(opMint, time.Now(), &err)
	if err := s.ready(); err != nil {
		return nil, err
	}
	if s.ids == nil {
		return nil, errors.New("id generator not configured")
	}

	req.DocKey = strings.TrimSpace(req.DocKey)
	if err := req.Validate(); err != nil {
		return nil, err
	}

	s.keysMu.Lock()
	defer s.keysMu.Unlock()

	if err := s.checkKeyFree(ctx, req.DocKey, ""); err != nil {
		return nil, err
	}

	id := s.ids.NewID()
	if _, err := s.cards.Load(ctx, id); err == nil {
		return nil, fmt.Errorf("%w: generated id %s already exists", domain.ErrDuplicateKey, id)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("load %s: %w", id, err)
	}

	now := s.now()
	card := domain.NewCard(id, req, now.UTC().Format(domain.EffectiveDateLayout))
	log := logger.Operation(opMint, id)
	log.Debug("doc_key=%s semver=%s owner=%s", card.DocKey, card.SemVer, card.Owner)

	if err := s.commit(ctx, card, domain.NewCreateEvent(card, now)); err != nil {
		if errors.Is(err, domain.ErrNotLogged) {
			return &card, err
		}
		return nil, err
	}
	return &card, nil
}

// checkKeyFree fails with ErrDuplicateKey when key is held by a live
// identity other than self. Collisions elsewhere in the store do not block.
func (s *LifecycleService) checkKeyFree(ctx context.Context, key, self string) error {
	cards, err := collectCards(ctx, s.cards)
	if err != nil {
		return fmt.Errorf("scan cards: %w", err)
	}
	reg, collisions := domain.BuildRegistry(cards)
	if collisions != nil {
		logger.Warn("registry has collisions: %v", collisions)
	}
	owner, ok := reg.LookupID(key)
	if !ok || owner == self || !reg.IsLiveKey(key) {
		return nil
	}
	return fmt.Errorf("%w: %q is held by %s", domain.ErrDuplicateKey, key, owner)
}
