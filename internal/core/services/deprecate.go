package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/idledger/internal/core/domain"
	"github.com/custodia-labs/idledger/internal/logger"
)

// Deprecate marks id as deprecated.
//
// An already deprecated record is handled by the configured policy:
// RedeprecateRecord writes a new version and event, RedeprecateSkip
// returns without writing.
func (s *LifecycleService) Deprecate(ctx context.Context, id, reason string) (err error) {
	defer s.observe(opDeprecate, time.Now(), &err)
	if err := s.ready(); err != nil {
		return err
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	card, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if card.IsMerged() {
		return fmt.Errorf("%w: %s was merged into %s", domain.ErrIdentityMerged, id, card.MergedIntoID())
	}

	log := logger.Operation(opDeprecate, id)
	if card.Status == domain.StatusDeprecated && s.redeprecate == domain.RedeprecateSkip {
		log.Debug("already deprecated, skipping")
		return nil
	}

	next := card.Next(domain.SetStatus(domain.StatusDeprecated))
	log.Debug("reason=%q (v%d)", reason, next.Version)

	return s.commit(ctx, next, domain.NewDeprecateEvent(next, reason, s.now()))
}
