package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/idledger/internal/core/domain"
)

func nonEmptyLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func TestLogCmd(t *testing.T) {
	env := setupTestServices(t)
	a := env.mint(t, "A")
	env.mint(t, "B")
	_, err := execute(t, "rekey", "A", "A2")
	require.NoError(t, err)
	_, err = execute(t, "deprecate", "A2", "--reason", "obsolete")
	require.NoError(t, err)

	t.Run("all events in append order", func(t *testing.T) {
		out, err := execute(t, "log")
		require.NoError(t, err)

		lines := nonEmptyLines(out)
		require.Len(t, lines, 4)
		assert.Contains(t, lines[0], "CREATE")
		assert.Contains(t, lines[2], "REKEY")
		assert.Contains(t, lines[2], "new_key=A2 old_key=A")
		assert.Contains(t, lines[3], "reason=obsolete")
	})

	t.Run("one identity by alias", func(t *testing.T) {
		out, err := execute(t, "log", "A")
		require.NoError(t, err)

		lines := nonEmptyLines(out)
		require.Len(t, lines, 3)
		for _, line := range lines {
			assert.Contains(t, line, a.ID)
		}
	})

	t.Run("type filter is case insensitive", func(t *testing.T) {
		out, err := execute(t, "log", "--type", "rekey")
		require.NoError(t, err)
		assert.Len(t, nonEmptyLines(out), 1)
	})

	t.Run("limit keeps the latest", func(t *testing.T) {
		out, err := execute(t, "log", "--limit", "1")
		require.NoError(t, err)

		lines := nonEmptyLines(out)
		require.Len(t, lines, 1)
		assert.Contains(t, lines[0], "DEPRECATE")
	})

	t.Run("since in the future", func(t *testing.T) {
		out, err := execute(t, "log", "--since", "2999-01-01")
		require.NoError(t, err)
		assert.Contains(t, out, "No events found.")
	})
}

func TestLogCmd_Rejects(t *testing.T) {
	setupTestServices(t)

	tests := []struct {
		name string
		args []string
	}{
		{"unknown type", []string{"log", "--type", "RENAME"}},
		{"bad since", []string{"log", "--since", "yesterday"}},
		{"negative limit", []string{"log", "--limit", "-1"}},
		{"unknown identity", []string{"log", "NOPE"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitRejected, ExitCode(err))
		})
	}
}

func TestParseSince(t *testing.T) {
	date, err := parseSince("2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01T00:00:00Z", date.Format("2006-01-02T15:04:05Z07:00"))

	ts, err := parseSince("2024-03-01T12:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, 12, ts.Hour())

	_, err = parseSince("03/01/2024")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
