package domain

// PendingMerge is a source listed in a target's Absorbs whose own record
// does not yet point back at the target.
type PendingMerge struct {
	TargetID string
	SourceID string
}

// DanglingMerge is a record whose MergedInto names a missing identity.
type DanglingMerge struct {
	ID       string
	TargetID string
}

// ReconcileReport summarises the consistency of the store and ledger.
type ReconcileReport struct {
	// Cards is the number of records scanned.
	Cards int

	// Events is the number of ledger events scanned.
	Events int

	// Pending merges left behind by a partially failed consolidate.
	Pending []PendingMerge

	// Dangling merges pointing at missing records.
	Dangling []DanglingMerge

	// Cycles lists merge chains that loop back on themselves.
	Cycles [][]string

	// Conflicts lists pairs where each side absorbs or is merged into the other.
	Conflicts [][2]string

	// Collisions lists keys claimed by several live identities.
	Collisions []CollisionError

	// Unlogged lists absorptions with no CONSOLIDATE event naming them.
	Unlogged []PendingMerge

	// Repaired lists merges completed by a repair pass.
	Repaired []PendingMerge

	// Relogged lists absorptions whose missing event a repair pass appended.
	Relogged []PendingMerge
}

// Clean reports whether no inconsistency was found.
func (r *ReconcileReport) Clean() bool {
	return len(r.Pending) == 0 &&
		len(r.Dangling) == 0 &&
		len(r.Cycles) == 0 &&
		len(r.Conflicts) == 0 &&
		len(r.Collisions) == 0 &&
		len(r.Unlogged) == 0
}
