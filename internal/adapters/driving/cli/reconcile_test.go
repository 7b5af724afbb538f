package cli

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/idledger/internal/core/domain"
)

func TestReconcileCmd_Clean(t *testing.T) {
	env := setupTestServices(t)
	env.mint(t, "T")
	env.mint(t, "S")
	_, err := execute(t, "consolidate", "T", "S")
	require.NoError(t, err)

	out, err := execute(t, "reconcile")

	require.NoError(t, err)
	assert.Contains(t, out, "Scanned 2 cards, 3 events")
	assert.Contains(t, out, "No inconsistencies found.")
}

// seedPendingMerge leaves target absorbing source with the merge logged
// but the source never marked, as after a failed consolidate.
func seedPendingMerge(t *testing.T, env *testEnv) (target, source domain.Card) {
	t.Helper()
	ctx := context.Background()
	target = env.mint(t, "T")
	source = env.mint(t, "S")

	next := target.Next(domain.Absorb(source.ID))
	require.NoError(t, env.cards.Save(ctx, next))
	require.NoError(t, env.ledger.Append(ctx, domain.NewConsolidateEvent(next, []string{source.ID}, time.Now())))
	return next, source
}

func TestReconcileCmd_ReportsPendingMerge(t *testing.T) {
	env := setupTestServices(t)
	target, source := seedPendingMerge(t, env)

	out, err := execute(t, "reconcile")

	assert.ErrorIs(t, err, errInconsistent)
	assert.Contains(t, out, "Pending merge: "+source.ID+" into "+target.ID)
	assert.False(t, env.card(t, source.ID).IsMerged())
}

func TestReconcileCmd_Repair(t *testing.T) {
	env := setupTestServices(t)
	target, source := seedPendingMerge(t, env)

	out, err := execute(t, "reconcile", "--repair")

	require.NoError(t, err)
	assert.Contains(t, out, "Repaired: "+source.ID+" merged into "+target.ID)
	assert.Contains(t, out, "No inconsistencies found.")
	assert.Equal(t, target.ID, env.card(t, source.ID).MergedIntoID())
}

func TestReconcileCmd_RepairLogsMissingEvent(t *testing.T) {
	env := setupTestServices(t)
	ctx := context.Background()
	target := env.mint(t, "T")
	source := env.mint(t, "S")
	require.NoError(t, env.cards.Save(ctx, target.Next(domain.Absorb(source.ID))))

	out, err := execute(t, "reconcile", "--repair")

	require.NoError(t, err)
	assert.Contains(t, out, "Logged: "+source.ID+" absorbed by "+target.ID)
	assert.Contains(t, out, "No inconsistencies found.")
	assert.Equal(t, []domain.EventType{domain.EventCreate, domain.EventCreate, domain.EventConsolidate}, env.eventTypes())
}
