package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/custodia-labs/idledger/internal/core/domain"
	"github.com/custodia-labs/idledger/internal/core/ports/driven"
	"github.com/custodia-labs/idledger/internal/core/ports/driving"
	"github.com/custodia-labs/idledger/internal/logger"
)

// Ensure ReconcileService implements the interface.
var _ driving.ReconcileService = (*ReconcileService)(nil)

// ReconcileService audits the merge graph and finishes interrupted merges.
type ReconcileService struct {
	cards        driven.CardStore
	ledger       driven.Ledger
	consolidator driving.Consolidator
}

// NewReconcileService creates a new reconcile service.
func NewReconcileService(cards driven.CardStore, ledger driven.Ledger, consolidator driving.Consolidator) *ReconcileService {
	return &ReconcileService{
		cards:        cards,
		ledger:       ledger,
		consolidator: consolidator,
	}
}

// Check scans every card and event and reports inconsistencies.
func (s *ReconcileService) Check(ctx context.Context) (*domain.ReconcileReport, error) {
	if s.cards == nil || s.ledger == nil {
		return nil, errors.New("reconcile service not configured")
	}

	cards, err := collectCards(ctx, s.cards)
	if err != nil {
		return nil, fmt.Errorf("scan cards: %w", err)
	}
	logged, events, err := s.loggedAbsorptions(ctx)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(cards, func(a, b domain.Card) int { return strings.Compare(a.ID, b.ID) })
	byID := make(map[string]domain.Card, len(cards))
	for _, c := range cards {
		byID[c.ID] = c
	}

	report := &domain.ReconcileReport{Cards: len(cards), Events: events}
	conflicts := make(map[[2]string]bool)

	for _, target := range cards {
		if target.IsMerged() {
			if _, ok := byID[target.MergedIntoID()]; !ok {
				report.Dangling = append(report.Dangling, domain.DanglingMerge{
					ID:       target.ID,
					TargetID: target.MergedIntoID(),
				})
			}
		}
		for _, sourceID := range target.Absorbs {
			pair := domain.PendingMerge{TargetID: target.ID, SourceID: sourceID}
			if !logged[pair] {
				report.Unlogged = append(report.Unlogged, pair)
			}

			source, ok := byID[sourceID]
			switch {
			case !ok:
				// absorbed without a record, nothing to mark
			case source.HasAbsorbed(target.ID) || target.MergedIntoID() == sourceID:
				conflicts[orderedPair(target.ID, sourceID)] = true
			case source.IsMerged() && source.MergedIntoID() != target.ID:
				conflicts[orderedPair(target.ID, sourceID)] = true
			case !source.IsMerged():
				report.Pending = append(report.Pending, pair)
			}
		}
	}

	for pair := range conflicts {
		report.Conflicts = append(report.Conflicts, pair)
	}
	slices.SortFunc(report.Conflicts, func(a, b [2]string) int {
		return strings.Compare(a[0]+"\x00"+a[1], b[0]+"\x00"+b[1])
	})

	report.Cycles = mergeCycles(cards, byID)
	report.Collisions = registryCollisions(cards)

	logger.Debug("reconcile: %d cards, %d events, %d pending, %d dangling, %d cycles",
		report.Cards, report.Events, len(report.Pending), len(report.Dangling), len(report.Cycles))
	return report, nil
}

// Repair re-runs Consolidate for every target with pending or unlogged
// merges, then checks again. The returned report lists the merges
// completed and the absorptions logged.
func (s *ReconcileService) Repair(ctx context.Context) (*domain.ReconcileReport, error) {
	if s.consolidator == nil {
		return nil, errors.New("consolidator not configured")
	}
	before, err := s.Check(ctx)
	if err != nil {
		return nil, err
	}

	var targets []string
	byTarget := make(map[string][]string)
	add := func(p domain.PendingMerge) {
		if _, ok := byTarget[p.TargetID]; !ok {
			targets = append(targets, p.TargetID)
		}
		if !slices.Contains(byTarget[p.TargetID], p.SourceID) {
			byTarget[p.TargetID] = append(byTarget[p.TargetID], p.SourceID)
		}
	}
	pending := make(map[domain.PendingMerge]bool, len(before.Pending))
	for _, p := range before.Pending {
		pending[p] = true
		add(p)
	}
	unlogged := make(map[domain.PendingMerge]bool, len(before.Unlogged))
	for _, p := range before.Unlogged {
		unlogged[p] = true
		add(p)
	}

	var (
		repaired, relogged []domain.PendingMerge
		errs               []error
	)
	for _, target := range targets {
		sources := byTarget[target]
		if err := s.consolidator.Consolidate(ctx, target, sources); err != nil {
			logger.Operation("reconcile", target).Warn("repair failed: %v", err)
			errs = append(errs, fmt.Errorf("repair %s: %w", target, err))
			continue
		}
		for _, src := range sources {
			pair := domain.PendingMerge{TargetID: target, SourceID: src}
			if pending[pair] {
				repaired = append(repaired, pair)
			}
			if unlogged[pair] {
				relogged = append(relogged, pair)
			}
		}
	}

	after, err := s.Check(ctx)
	if err != nil {
		return nil, err
	}
	after.Repaired = repaired
	after.Relogged = relogged
	return after, errors.Join(errs...)
}

// loggedAbsorptions returns every (target, source) pair named by a
// CONSOLIDATE event, and the total number of events.
func (s *ReconcileService) loggedAbsorptions(ctx context.Context) (map[domain.PendingMerge]bool, int, error) {
	logged := make(map[domain.PendingMerge]bool)
	n := 0
	for event, err := range s.ledger.Events(ctx) {
		if err != nil {
			return nil, 0, fmt.Errorf("read ledger: %w", err)
		}
		n++
		if event.Type != domain.EventConsolidate {
			continue
		}
		for _, src := range event.Sources() {
			logged[domain.PendingMerge{TargetID: event.ID, SourceID: src}] = true
		}
	}
	return logged, n, nil
}

// mergeCycles follows merged_into from every card and returns each loop
// once, rotated to start at its smallest identifier.
func mergeCycles(cards []domain.Card, byID map[string]domain.Card) [][]string {
	const (
		unvisited = iota
		active
		done
	)
	state := make(map[string]int, len(cards))
	var cycles [][]string

	for _, start := range cards {
		var path []string
		id := start.ID
		for {
			if state[id] == done {
				break
			}
			if state[id] == active {
				i := slices.Index(path, id)
				cycles = append(cycles, rotateToMin(path[i:]))
				break
			}
			state[id] = active
			path = append(path, id)

			card, ok := byID[id]
			if !ok || !card.IsMerged() {
				break
			}
			id = card.MergedIntoID()
		}
		for _, p := range path {
			state[p] = done
		}
	}

	slices.SortFunc(cycles, func(a, b []string) int { return strings.Compare(a[0], b[0]) })
	return cycles
}

func rotateToMin(cycle []string) []string {
	minIdx := 0
	for i, id := range cycle {
		if id < cycle[minIdx] {
			minIdx = i
		}
	}
	out := make([]string, 0, len(cycle))
	out = append(out, cycle[minIdx:]...)
	return append(out, cycle[:minIdx]...)
}

// registryCollisions extracts every CollisionError from a registry build.
func registryCollisions(cards []domain.Card) []domain.CollisionError {
	_, err := domain.BuildRegistry(cards)
	if err == nil {
		return nil
	}
	var errs []error
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	} else {
		errs = []error{err}
	}

	var out []domain.CollisionError
	for _, e := range errs {
		var ce *domain.CollisionError
		if errors.As(e, &ce) {
			out = append(out, *ce)
		}
	}
	return out
}

func orderedPair(a, b string) [2]string {
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}
}
