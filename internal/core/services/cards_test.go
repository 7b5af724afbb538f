package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	storagefile "github.com/custodia-labs/idledger/internal/adapters/driven/storage/file"
	"github.com/custodia-labs/idledger/internal/core/domain"
)

func TestCardService_Resolve(t *testing.T) {
	a := fixtureCard(1, "A").Next(domain.ChangeKey("A2"))
	svc := NewCardService(seedCards(t, a))

	tests := []struct {
		name    string
		arg     string
		wantErr error
	}{
		{"by id", a.ID, nil},
		{"by key", "A2", nil},
		{"by alias", "A", nil},
		{"unknown", "NOPE", domain.ErrNotFound},
		{"empty", "", domain.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card, err := svc.Resolve(context.Background(), tt.arg)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, a.ID, card.ID)
		})
	}
}

func TestCardService_ResolveKeyThatIsNotAValidID(t *testing.T) {
	store := storagefile.NewCardStore(t.TempDir())
	a := fixtureCard(1, "POL/SEC-01")
	require.NoError(t, store.Save(context.Background(), a))

	card, err := NewCardService(store).Resolve(context.Background(), "POL/SEC-01")

	require.NoError(t, err)
	assert.Equal(t, a.ID, card.ID)
}

func TestCardService_Follow(t *testing.T) {
	root := fixtureCard(1, "ROOT")
	mid := fixtureCard(2, "MID").Next(domain.MergeInto(root.ID))
	leaf := fixtureCard(3, "LEAF").Next(domain.MergeInto(mid.ID))
	svc := NewCardService(seedCards(t, root, mid, leaf))

	card, err := svc.Follow(context.Background(), "LEAF")

	require.NoError(t, err)
	assert.Equal(t, root.ID, card.ID)
}

func TestCardService_FollowErrors(t *testing.T) {
	t.Run("cycle", func(t *testing.T) {
		a := fixtureCard(1, "A").Next(domain.MergeInto(fixtureID(2)))
		b := fixtureCard(2, "B").Next(domain.MergeInto(fixtureID(1)))
		svc := NewCardService(seedCards(t, a, b))

		_, err := svc.Follow(context.Background(), a.ID)

		assert.ErrorIs(t, err, domain.ErrMergeConflict)
	})

	t.Run("dangling", func(t *testing.T) {
		a := fixtureCard(1, "A").Next(domain.MergeInto(fixtureID(9)))
		svc := NewCardService(seedCards(t, a))

		_, err := svc.Follow(context.Background(), a.ID)

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
