package cli

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/idledger/internal/adapters/driven/export"
	"github.com/custodia-labs/idledger/internal/adapters/driven/fingerprint"
	"github.com/custodia-labs/idledger/internal/adapters/driven/idgen"
	"github.com/custodia-labs/idledger/internal/adapters/driven/scanner"
	"github.com/custodia-labs/idledger/internal/adapters/driven/schema"
	storagefile "github.com/custodia-labs/idledger/internal/adapters/driven/storage/file"
	"github.com/custodia-labs/idledger/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/idledger/internal/core/domain"
	"github.com/custodia-labs/idledger/internal/core/services"
)

// testEnv exposes the stores behind the services installed by setupTestServices.
type testEnv struct {
	cards        *memory.CardStore
	ledger       *memory.Ledger
	registryPath string
}

// setupTestServices installs real services over in-memory stores and
// restores the previous services when the test ends.
func setupTestServices(t *testing.T) *testEnv {
	t.Helper()

	saved := Services{
		Lifecycle: lifecycle,
		Cards:     cardService,
		Registry:  registryService,
		Export:    exportService,
		History:   historyService,
		Reconcile: reconcileService,
		Import:    importService,
		Settings:  settingsService,
		Close:     closer,
	}
	t.Cleanup(func() { SetServices(&saved) })

	validator, err := schema.New()
	require.NoError(t, err)

	env := &testEnv{
		cards:        memory.NewCardStore(),
		ledger:       memory.NewLedger(),
		registryPath: filepath.Join(t.TempDir(), "registry.yaml"),
	}
	lc := services.NewLifecycleService(services.LifecycleConfig{
		Cards:         env.cards,
		Ledger:        env.ledger,
		Validator:     validator,
		IDs:           idgen.New(),
		Fingerprinter: fingerprint.Blake3{},
	})
	registry := services.NewRegistryService(env.cards, storagefile.NewRegistryStore(env.registryPath), nil, true)

	SetServices(&Services{
		Lifecycle: lc,
		Cards:     services.NewCardService(env.cards),
		Registry:  registry,
		Export:    services.NewExportService(registry, export.All()...),
		History:   services.NewHistoryService(env.ledger),
		Reconcile: services.NewReconcileService(env.cards, env.ledger, lc),
		Import:    services.NewImportService(scanner.New(), lc, lc),
		Settings:  services.NewSettingsService(memory.NewConfigStore()),
	})
	return env
}

// clearServices removes every service for the duration of the test.
func clearServices(t *testing.T) {
	t.Helper()
	setupTestServices(t)
	SetServices(&Services{})
}

// resetFlags restores command flags to their defaults. Cobra keeps flag
// values between executions of the same command tree.
func resetFlags() {
	homeDir, verbose = "", false
	mintSemVer, mintOwner, mintContractType, mintEffectiveDate, mintSupersedes = "", "", "", "", ""
	deprecateReason = ""
	showFollow = false
	exportFormat, exportOutput = "", ""
	logType, logSince, logLimit = "", "", 0
	reconcileRepair = false
	importPatterns, importDryRun = nil, false
}

// execute runs the root command with args and returns the combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeWithInput(t, nil, args...)
}

func executeWithInput(t *testing.T, in io.Reader, args ...string) (string, error) {
	t.Helper()
	resetFlags()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(in)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

// mint creates an identity through the command line and returns its card.
func (e *testEnv) mint(t *testing.T, key string) domain.Card {
	t.Helper()
	_, err := execute(t, "mint", key, "--semver", "1.0.0", "--owner", "QA", "--contract-type", "policy")
	require.NoError(t, err)
	return e.card(t, key)
}

// card resolves a key, alias or identifier against the store.
func (e *testEnv) card(t *testing.T, keyOrID string) domain.Card {
	t.Helper()
	card, err := services.NewCardService(e.cards).Resolve(context.Background(), keyOrID)
	require.NoError(t, err)
	return *card
}

func (e *testEnv) eventTypes() []domain.EventType {
	var types []domain.EventType
	for _, ev := range e.ledger.Snapshot() {
		types = append(types, ev.Type)
	}
	return types
}
