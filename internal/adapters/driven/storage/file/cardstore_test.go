package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/idledger/internal/core/domain"
)

const (
	idA = "01J9ZQ4N8M0000000000000001"
	idB = "01J9ZQ4N8M0000000000000002"
	idC = "01J9ZQ4N8M0000000000000003"
)

func mintedCard(id, key string) domain.Card {
	return domain.NewCard(id, domain.MintRequest{
		DocKey:       key,
		SemVer:       "1.0.0",
		Owner:        "QA",
		ContractType: "policy",
	}, "2026-01-01")
}

func fullCard() domain.Card {
	card := mintedCard(idA, "DOC_A").Next(
		domain.ChangeKey("DOC_A_V2"),
		domain.SetStatus(domain.StatusDeprecated),
		domain.Absorb(idB, idC),
		domain.MergeInto(idC),
		domain.SetFingerprint("af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262"),
	)
	v := "0.9.0"
	card.SupersedesVersion = &v
	return card
}

func TestCardStore_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		card domain.Card
	}{
		{"optional fields absent", mintedCard(idA, "DOC_A")},
		{"optional fields present", fullCard()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := NewCardStore(t.TempDir())

			require.NoError(t, store.Save(ctx, tt.card))
			loaded, err := store.Load(ctx, tt.card.ID)

			require.NoError(t, err)
			assert.Equal(t, tt.card.Normalized(), *loaded)
		})
	}
}

func TestMarshalCard_WritesEveryField(t *testing.T) {
	data, err := MarshalCard(mintedCard(idA, "DOC_A"))
	require.NoError(t, err)

	out := string(data)
	for _, field := range []string{
		"doc_key: DOC_A", "id: " + idA, "semver: 1.0.0", "status: active",
		"effective_date:", "owner: QA", "contract_type: policy", "version: 1",
		"aliases: []", "supersedes_version: null", "merged_into: null",
		"absorbs: []", "fingerprint: null",
	} {
		assert.Contains(t, out, field)
	}
}

func TestCardStore_LoadMissing(t *testing.T) {
	store := NewCardStore(t.TempDir())

	_, err := store.Load(context.Background(), idA)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCardStore_RejectsPathLikeIDs(t *testing.T) {
	store := NewCardStore(t.TempDir())

	for _, id := range []string{"", "../escape", "a/b", ".hidden"} {
		_, err := store.Load(context.Background(), id)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, id)
	}
}

func TestCardStore_SaveReplacesFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := NewCardStore(dir)
	card := mintedCard(idA, "DOC_A")

	require.NoError(t, store.Save(ctx, card))
	require.NoError(t, store.Save(ctx, card.Next(domain.ChangeKey("DOC_B"))))

	loaded, err := store.Load(ctx, idA)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Version)
	assert.Equal(t, []string{"DOC_A"}, loaded.Aliases)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestCardStore_AllMissingDirIsEmpty(t *testing.T) {
	store := NewCardStore(filepath.Join(t.TempDir(), "does-not-exist"))

	count := 0
	for _, err := range store.All(context.Background()) {
		require.NoError(t, err)
		count++
	}
	assert.Zero(t, count)
}

func TestCardStore_AllSortedRestartableAndSkipsOthers(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := NewCardStore(dir)
	for _, id := range []string{idC, idA, idB} {
		require.NoError(t, store.Save(ctx, mintedCard(id, "KEY_"+id)))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "."+idA+".yaml.tmp.1"), []byte("x"), 0o644))

	for range 2 {
		var ids []string
		for card, err := range store.All(ctx) {
			require.NoError(t, err)
			ids = append(ids, card.ID)
		}
		assert.Equal(t, []string{idA, idB, idC}, ids)
	}
}

func TestCardStore_AllReportsCorruptFileAndContinues(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := NewCardStore(dir)
	require.NoError(t, store.Save(ctx, mintedCard(idB, "DOC_B")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, idA+".yaml"), []byte("doc_key: [unclosed"), 0o644))

	var (
		ids  []string
		errs []error
	)
	for card, err := range store.All(ctx) {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		ids = append(ids, card.ID)
	}

	assert.Equal(t, []string{idB}, ids)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], domain.ErrInvalidInput)
}

func TestCardStore_AllStopsEarly(t *testing.T) {
	ctx := context.Background()
	store := NewCardStore(t.TempDir())
	for _, id := range []string{idA, idB, idC} {
		require.NoError(t, store.Save(ctx, mintedCard(id, "KEY_"+id)))
	}

	count := 0
	for range store.All(ctx) {
		count++
		break
	}
	assert.Equal(t, 1, count)
}
