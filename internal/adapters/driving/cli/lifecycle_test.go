package cli

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/idledger/internal/core/domain"
)

var digestPattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

func TestMintCmd_Use(t *testing.T) {
	assert.Equal(t, "mint [doc-key]", mintCmd.Use)
}

func TestMintCmd_RequiresExactlyOneArg(t *testing.T) {
	_, err := execute(t, "mint")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestMintCmd_Executes(t *testing.T) {
	env := setupTestServices(t)

	out, err := execute(t, "mint", "SEC-01",
		"--semver", "1.2.0",
		"--owner", "Security",
		"--contract-type", "policy",
		"--effective-date", "2024-03-01",
		"--supersedes", "0.9.0")

	require.NoError(t, err)
	card := env.card(t, "SEC-01")
	assert.Contains(t, out, "Minted SEC-01")
	assert.Contains(t, out, "ID: "+card.ID)
	assert.Equal(t, "1.2.0", card.SemVer)
	assert.Equal(t, "Security", card.Owner)
	assert.Equal(t, "2024-03-01", card.EffectiveDate)
	require.NotNil(t, card.SupersedesVersion)
	assert.Equal(t, "0.9.0", *card.SupersedesVersion)
	assert.Equal(t, []domain.EventType{domain.EventCreate}, env.eventTypes())
}

func TestMintCmd_Rejects(t *testing.T) {
	t.Run("missing required flags", func(t *testing.T) {
		env := setupTestServices(t)

		_, err := execute(t, "mint", "SEC-01")

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Zero(t, env.cards.Len())
	})

	t.Run("duplicate key", func(t *testing.T) {
		env := setupTestServices(t)
		env.mint(t, "SEC-01")

		_, err := execute(t, "mint", "SEC-01", "--semver", "1.0.0", "--owner", "QA", "--contract-type", "policy")

		assert.ErrorIs(t, err, domain.ErrDuplicateKey)
		assert.Equal(t, 1, env.cards.Len())
	})

	t.Run("bad effective date", func(t *testing.T) {
		env := setupTestServices(t)

		_, err := execute(t, "mint", "SEC-01", "--semver", "1.0.0", "--owner", "QA",
			"--contract-type", "policy", "--effective-date", "01/03/2024")

		assert.ErrorIs(t, err, domain.ErrSchemaViolation)
		assert.Empty(t, env.ledger.Snapshot())
	})
}

func TestRekeyCmd_ByKeyAndAlias(t *testing.T) {
	env := setupTestServices(t)
	minted := env.mint(t, "OLD")

	out, err := execute(t, "rekey", "OLD", "NEW")
	require.NoError(t, err)
	assert.Contains(t, out, "Rekeyed OLD -> NEW")

	// The old key still resolves through the alias.
	_, err = execute(t, "rekey", "OLD", "NEWER")
	require.NoError(t, err)

	card := env.card(t, minted.ID)
	assert.Equal(t, "NEWER", card.DocKey)
	assert.Equal(t, []string{"OLD", "NEW"}, card.Aliases)
	assert.Equal(t, 3, card.Version)
}

func TestRekeyCmd_Rejects(t *testing.T) {
	env := setupTestServices(t)
	env.mint(t, "A")
	env.mint(t, "B")

	tests := []struct {
		name string
		args []string
		want error
	}{
		{"unknown identity", []string{"rekey", "NOPE", "C"}, domain.ErrNotFound},
		{"same key", []string{"rekey", "A", "A"}, domain.ErrNoOpRekey},
		{"key in use", []string{"rekey", "A", "B"}, domain.ErrDuplicateKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, ExitRejected, ExitCode(err))
		})
	}
}

func TestDeprecateCmd_RecordsReason(t *testing.T) {
	env := setupTestServices(t)
	minted := env.mint(t, "SEC-01")

	out, err := execute(t, "deprecate", "SEC-01", "--reason", "obsolete")

	require.NoError(t, err)
	assert.Contains(t, out, "Deprecated SEC-01")
	assert.Equal(t, domain.StatusDeprecated, env.card(t, minted.ID).Status)

	events := env.ledger.Snapshot()
	require.Len(t, events, 2)
	assert.Equal(t, domain.EventDeprecate, events[1].Type)
	assert.Equal(t, "obsolete", events[1].String(domain.DataReason))
}

func TestConsolidateCmd_ResolvesKeys(t *testing.T) {
	env := setupTestServices(t)
	target := env.mint(t, "T")
	s1 := env.mint(t, "S1")
	s2 := env.mint(t, "S2")

	out, err := execute(t, "consolidate", "T", "S1", s2.ID)

	require.NoError(t, err)
	assert.Contains(t, out, "Consolidated into "+target.ID)
	assert.ElementsMatch(t, []string{s1.ID, s2.ID}, env.card(t, target.ID).Absorbs)
	assert.Equal(t, target.ID, env.card(t, s1.ID).MergedIntoID())
	assert.Equal(t, target.ID, env.card(t, s2.ID).MergedIntoID())
	assert.Equal(t, domain.EventConsolidate, env.eventTypes()[3])
}

func TestConsolidateCmd_MissingSourceIsAbsorbedByID(t *testing.T) {
	env := setupTestServices(t)
	target := env.mint(t, "T")
	missing := "01J9ZQ4N8M0000000000000099"

	_, err := execute(t, "consolidate", "T", missing)

	require.NoError(t, err)
	assert.Equal(t, []string{missing}, env.card(t, target.ID).Absorbs)
}

func TestConsolidateCmd_RequiresSource(t *testing.T) {
	_, err := execute(t, "consolidate", "T")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 2 arg(s)")
}

func TestFingerprintCmd(t *testing.T) {
	t.Run("stdin without identity prints the digest only", func(t *testing.T) {
		env := setupTestServices(t)

		out, err := executeWithInput(t, strings.NewReader("hello"), "fingerprint", "-")

		require.NoError(t, err)
		assert.Regexp(t, digestPattern, strings.TrimSpace(out))
		assert.Empty(t, env.ledger.Snapshot())
	})

	t.Run("file with identity records the digest", func(t *testing.T) {
		env := setupTestServices(t)
		minted := env.mint(t, "SEC-01")
		path := filepath.Join(t.TempDir(), "sec-01.md")
		require.NoError(t, os.WriteFile(path, []byte("# Access control\n"), 0o644))

		out, err := execute(t, "fingerprint", path, "SEC-01")

		require.NoError(t, err)
		digest := strings.TrimSpace(out)
		assert.Regexp(t, digestPattern, digest)
		assert.Equal(t, digest, env.card(t, minted.ID).FingerprintValue())
		assert.Equal(t, []domain.EventType{domain.EventCreate, domain.EventFingerprintUpdate}, env.eventTypes())
	})

	t.Run("same content same digest", func(t *testing.T) {
		setupTestServices(t)

		a, err := executeWithInput(t, strings.NewReader("abc"), "fingerprint", "-")
		require.NoError(t, err)
		b, err := executeWithInput(t, strings.NewReader("abc"), "fingerprint", "-")
		require.NoError(t, err)

		assert.Equal(t, a, b)
	})

	t.Run("missing file", func(t *testing.T) {
		setupTestServices(t)

		_, err := execute(t, "fingerprint", filepath.Join(t.TempDir(), "nope.md"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read")
	})
}
