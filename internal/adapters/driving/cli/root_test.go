package cli

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/idledger/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/idledger/internal/core/domain"
	"github.com/custodia-labs/idledger/internal/core/ports/driving"
	"github.com/custodia-labs/idledger/internal/core/services"
)

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "idledger", rootCmd.Use)
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	names := make([]string, 0, len(rootCmd.Commands()))
	for _, cmd := range rootCmd.Commands() {
		names = append(names, cmd.Name())
	}

	for _, want := range []string{
		"mint", "rekey", "deprecate", "consolidate", "fingerprint", "show",
		"registry", "export", "log", "reconcile", "import", "config", "mcp", "version",
	} {
		assert.Contains(t, names, want)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"unlogged", &domain.UnloggedError{Event: domain.Event{Type: domain.EventRekey}, Err: errors.New("disk full")}, ExitUnlogged},
		{"partial merge", &domain.PartialMergeError{TargetID: "T", Failed: map[string]error{"S": errors.New("x")}}, ExitPartial},
		{"wrapped partial merge", fmt.Errorf("consolidate failed: %w", &domain.PartialMergeError{TargetID: "T"}), ExitPartial},
		{"not found", domain.ErrNotFound, ExitRejected},
		{"duplicate key", fmt.Errorf("mint failed: %w", domain.ErrDuplicateKey), ExitRejected},
		{"schema violation", &domain.SchemaViolationError{}, ExitRejected},
		{"collision", &domain.CollisionError{Key: "A", IDs: []string{"1", "2"}}, ExitRejected},
		{"io failure", domain.NewIOError("write", errors.New("disk full")), ExitError},
		{"other", errors.New("boom"), ExitError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestFormatError_DistinctMessages(t *testing.T) {
	unlogged := FormatError(&domain.UnloggedError{
		Event: domain.Event{Type: domain.EventDeprecate, ID: "01J9ZQ4N8M0000000000000001"},
		Err:   errors.New("disk full"),
	})
	partial := FormatError(&domain.PartialMergeError{
		TargetID: "01J9ZQ4N8M0000000000000001",
		Failed:   map[string]error{"01J9ZQ4N8M0000000000000002": errors.New("disk full")},
	})
	plain := FormatError(domain.ErrNotFound)

	assert.Contains(t, unlogged, "applied but not logged")
	assert.Contains(t, unlogged, "idledger reconcile")
	assert.Contains(t, partial, "partially merged")
	assert.Contains(t, partial, "reconcile --repair")
	assert.Equal(t, "Error: not found", plain)
}

func TestOpenServices(t *testing.T) {
	setupTestServices(t)
	t.Cleanup(func() { openers = Openers{} })

	var opened []string
	openers = Openers{
		Services: func(home string) (*Services, error) {
			opened = append(opened, "services:"+home)
			return &Services{Cards: services.NewCardService(memory.NewCardStore())}, nil
		},
		Settings: func(home string) (driving.SettingsService, error) {
			opened = append(opened, "settings:"+home)
			return services.NewSettingsService(memory.NewConfigStore()), nil
		},
	}

	_, err := execute(t, "version")
	require.NoError(t, err)
	assert.Empty(t, opened)

	_, err = execute(t, "--home", "/tmp/ledger", "config", "list")
	require.NoError(t, err)
	assert.Equal(t, []string{"settings:/tmp/ledger"}, opened)

	_, err = execute(t, "--home", "/tmp/ledger", "show", "NOPE")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, []string{"settings:/tmp/ledger", "services:/tmp/ledger"}, opened)
}

func TestOpenServices_Error(t *testing.T) {
	setupTestServices(t)
	t.Cleanup(func() { openers = Openers{} })
	openers = Openers{
		Services: func(string) (*Services, error) { return nil, errors.New("locked") },
	}

	_, err := execute(t, "show", "A")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open ledger: locked")
}

func TestExecute_ClosesServicesAndMapsExitCode(t *testing.T) {
	setupTestServices(t)
	resetFlags()
	closed := 0
	rootCmd.SetArgs([]string{"show", "NOPE"})
	defer rootCmd.SetArgs(nil)

	code := Execute(Openers{
		Services: func(string) (*Services, error) {
			return &Services{
				Cards: services.NewCardService(memory.NewCardStore()),
				Close: func() error { closed++; return nil },
			}, nil
		},
	})

	assert.Equal(t, ExitRejected, code)
	assert.Equal(t, 1, closed)
	assert.Nil(t, openers.Services)
}

func TestCommands_ErrorWithoutServices(t *testing.T) {
	clearServices(t)

	tests := [][]string{
		{"mint", "A"},
		{"rekey", "A", "B"},
		{"deprecate", "A"},
		{"consolidate", "A", "B"},
		{"fingerprint", "-"},
		{"show", "A"},
		{"registry", "build"},
		{"registry", "lookup", "A"},
		{"registry", "watch"},
		{"export"},
		{"log"},
		{"reconcile"},
		{"import", "."},
		{"config", "list"},
		{"config", "get", "storage.backend"},
		{"config", "set", "storage.backend", "file"},
	}

	for _, args := range tests {
		t.Run(fmt.Sprint(args), func(t *testing.T) {
			_, err := execute(t, args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "not configured")
		})
	}
}
