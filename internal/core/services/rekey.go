package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/idledger/internal/core/domain"
	"github.com/custodia-labs/idledger/internal/logger"
)

// Rekey replaces the key of id with newKey. The old key is kept as an alias.
func (s *LifecycleService) Rekey(ctx context.Context, id, newKey string) (err error) {
	defer s.observe(opRekey, time.Now(), &err)
	if err := s.ready(); err != nil {
		return err
	}

	newKey = strings.TrimSpace(newKey)
	if newKey == "" {
		return fmt.Errorf("%w: new key is required", domain.ErrInvalidInput)
	}

	s.keysMu.Lock()
	defer s.keysMu.Unlock()
	unlock := s.locks.Lock(id)
	defer unlock()

	card, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if card.IsMerged() {
		return fmt.Errorf("%w: %s was merged into %s", domain.ErrIdentityMerged, id, card.MergedIntoID())
	}
	if card.DocKey == newKey {
		return fmt.Errorf("%w: %s already has key %q", domain.ErrNoOpRekey, id, newKey)
	}
	if err := s.checkKeyFree(ctx, newKey, id); err != nil {
		return err
	}

	next := card.Next(domain.ChangeKey(newKey))
	logger.Operation(opRekey, id).Debug("%s -> %s (v%d)", card.DocKey, newKey, next.Version)

	return s.commit(ctx, next, domain.NewRekeyEvent(next, card.DocKey, s.now()))
}
