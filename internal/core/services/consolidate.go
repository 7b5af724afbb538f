package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/idledger/internal/core/domain"
	"github.com/custodia-labs/idledger/internal/logger"
)

// Consolidate absorbs sourceIDs into targetID.
//
// Every source is checked before anything is written. The target is then
// written once with the new absorptions and one CONSOLIDATE event is
// appended. Finally each existing source is marked merged_into target,
// concurrently and independently. Sources that fail to update are
// returned in a *domain.PartialMergeError; running Consolidate again with
// the same arguments finishes the job without writing the target again.
// On a retry an event is appended only for absorbed sources that no
// CONSOLIDATE event of the target names yet.
func (s *LifecycleService) Consolidate(ctx context.Context, targetID string, sourceIDs []string) (err error) {
	defer s.observe(opConsolidate, time.Now(), &err)
	if err := s.ready(); err != nil {
		return err
	}
	if targetID == "" {
		return fmt.Errorf("%w: target id is required", domain.ErrInvalidInput)
	}
	if len(sourceIDs) == 0 {
		return fmt.Errorf("%w: at least one source id is required", domain.ErrInvalidInput)
	}

	requested := make([]string, 0, len(sourceIDs))
	for _, id := range sourceIDs {
		if id == "" {
			return fmt.Errorf("%w: empty source id", domain.ErrInvalidInput)
		}
		if id == targetID || slices.Contains(requested, id) {
			continue
		}
		requested = append(requested, id)
	}

	log := logger.Operation(opConsolidate, targetID)
	unlock := s.locks.Lock(append([]string{targetID}, requested...)...)
	defer unlock()

	target, err := s.load(ctx, targetID)
	if err != nil {
		return err
	}
	if target.IsMerged() {
		return fmt.Errorf("%w: target %s was merged into %s", domain.ErrMergeConflict, targetID, target.MergedIntoID())
	}
	if len(requested) == 0 {
		log.Debug("only self-references, nothing to do")
		return nil
	}

	sources, err := s.loadSources(ctx, target, requested)
	if err != nil {
		return err
	}

	var pending []string
	for _, id := range requested {
		if !target.HasAbsorbed(id) {
			pending = append(pending, id)
		}
	}

	var unlogged error
	if len(pending) > 0 {
		next := target.Next(domain.Absorb(pending...))
		log.Debug("absorbing %v (v%d)", pending, next.Version)
		if err := s.write(ctx, next); err != nil {
			return err
		}
		unlogged = s.record(ctx, domain.NewConsolidateEvent(next, requested, s.now()))
	} else {
		missing, err := s.unloggedSources(ctx, targetID, requested)
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			log.Warn("absorption of %v has no CONSOLIDATE event, appending it", missing)
			unlogged = s.record(ctx, domain.NewConsolidateEvent(target, missing, s.now()))
		} else {
			log.Debug("all sources already absorbed, marking sources only")
		}
	}

	return errors.Join(unlogged, s.markSources(ctx, targetID, sources))
}

// loadSources loads every requested source and rejects merges that would
// break the merge graph. Missing sources are absorbed but have no record to mark.
func (s *LifecycleService) loadSources(ctx context.Context, target domain.Card, ids []string) ([]domain.Card, error) {
	log := logger.Operation(opConsolidate, target.ID)
	sources := make([]domain.Card, 0, len(ids))
	for _, id := range ids {
		src, err := s.cards.Load(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			log.Warn("source %s does not exist, absorbing without marking", id)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", id, err)
		}
		switch {
		case src.IsMerged() && src.MergedIntoID() != target.ID:
			return nil, fmt.Errorf("%w: source %s was already merged into %s",
				domain.ErrMergeConflict, id, src.MergedIntoID())
		case src.HasAbsorbed(target.ID):
			return nil, fmt.Errorf("%w: source %s absorbs target %s",
				domain.ErrMergeConflict, id, target.ID)
		}
		sources = append(sources, *src)
	}
	return sources, nil
}

// unloggedSources returns the ids in sourceIDs that no CONSOLIDATE event
// for targetID lists.
func (s *LifecycleService) unloggedSources(ctx context.Context, targetID string, sourceIDs []string) ([]string, error) {
	logged := make(map[string]bool)
	for event, err := range s.ledger.Events(ctx) {
		if err != nil {
			return nil, fmt.Errorf("read ledger: %w", err)
		}
		if event.Type != domain.EventConsolidate || event.ID != targetID {
			continue
		}
		for _, id := range event.Sources() {
			logged[id] = true
		}
	}

	var missing []string
	for _, id := range sourceIDs {
		if !logged[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

// markSources sets merged_into on every source not yet pointing at target.
func (s *LifecycleService) markSources(ctx context.Context, targetID string, sources []domain.Card) error {
	var (
		mu     sync.Mutex
		failed = make(map[string]error)
	)

	g := new(errgroup.Group)
	g.SetLimit(s.mergeWorkers)
	for _, src := range sources {
		if src.MergedIntoID() == targetID {
			continue
		}
		g.Go(func() error {
			if err := s.write(ctx, src.Next(domain.MergeInto(targetID))); err != nil {
				mu.Lock()
				failed[src.ID] = err
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if len(failed) == 0 {
		return nil
	}
	perr := &domain.PartialMergeError{TargetID: targetID, Failed: failed}
	logger.Operation(opConsolidate, targetID).
		Error("PARTIAL MERGE %d source(s) not marked: %v; rerun consolidate or reconcile --repair",
			len(failed), perr.FailedIDs())
	return perr
}
