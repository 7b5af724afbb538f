// Package app wires driven adapters and core services for one ledger home
// directory. It is the only place that knows which adapter backs which port.
package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/idledger/internal/adapters/driven/config/file"
	"github.com/custodia-labs/idledger/internal/adapters/driven/export"
	"github.com/custodia-labs/idledger/internal/adapters/driven/fingerprint"
	"github.com/custodia-labs/idledger/internal/adapters/driven/idgen"
	"github.com/custodia-labs/idledger/internal/adapters/driven/metrics"
	"github.com/custodia-labs/idledger/internal/adapters/driven/scanner"
	"github.com/custodia-labs/idledger/internal/adapters/driven/schema"
	storagefile "github.com/custodia-labs/idledger/internal/adapters/driven/storage/file"
	"github.com/custodia-labs/idledger/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/idledger/internal/core/domain"
	"github.com/custodia-labs/idledger/internal/core/ports/driven"
	"github.com/custodia-labs/idledger/internal/core/services"
	"github.com/custodia-labs/idledger/internal/logger"
)

// HomeEnv overrides the default home directory.
const HomeEnv = "IDLEDGER_HOME"

// App holds every service for one ledger home.
type App struct {
	Home     string
	Settings domain.Settings

	Lifecycle       *services.LifecycleService
	Cards           *services.CardService
	Registry        *services.RegistryService
	Export          *services.ExportService
	History         *services.HistoryService
	Reconcile       *services.ReconcileService
	Import          *services.ImportService
	SettingsService *services.SettingsService

	// Metrics is written to Settings.Metrics.Textfile on Close.
	Metrics *metrics.Metrics

	closers []func() error
}

// ResolveHome picks the home directory: flag, then $IDLEDGER_HOME, then ~/.idledger.
func ResolveHome(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(HomeEnv); env != "" {
		return filepath.Abs(env)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to find home directory: %w", err)
	}
	return filepath.Join(home, ".idledger"), nil
}

// Open loads the configuration in home and builds the services it selects.
func Open(home string) (*App, error) {
	settingsService, err := OpenSettings(home)
	if err != nil {
		return nil, err
	}
	settings, err := settingsService.Get()
	if err != nil {
		return nil, err
	}

	a := &App{
		Home:            home,
		Settings:        *settings,
		SettingsService: settingsService,
		Metrics:         metrics.New(),
	}

	validator, err := a.validator()
	if err != nil {
		return nil, err
	}

	cards, ledger, notifier, err := a.storage()
	if err != nil {
		return nil, err
	}
	logger.Debug("home=%s backend=%s", home, settings.Storage.Backend)

	a.Lifecycle = services.NewLifecycleService(services.LifecycleConfig{
		Cards:         cards,
		Ledger:        ledger,
		Validator:     validator,
		IDs:           idgen.New(),
		Fingerprinter: fingerprint.Blake3{},
		Observer:      a.Metrics,
		Redeprecate:   settings.Lifecycle.Redeprecate,
		MergeWorkers:  settings.Lifecycle.MergeWorkers,
	})
	registryStore := storagefile.NewRegistryStore(a.path(settings.Storage.RegistryPath))

	a.Cards = services.NewCardService(cards)
	a.Registry = services.NewRegistryService(cards, registryStore, notifier, settings.Registry.Strict)
	a.Export = services.NewExportService(a.Registry, export.All()...)
	a.History = services.NewHistoryService(ledger)
	a.Reconcile = services.NewReconcileService(cards, ledger, a.Lifecycle)
	a.Import = services.NewImportService(scanner.New(), a.Lifecycle, a.Lifecycle)

	return a, nil
}

// OpenSettings loads only the configuration file in home.
func OpenSettings(home string) (*services.SettingsService, error) {
	if home == "" {
		return nil, fmt.Errorf("%w: home directory is required", domain.ErrInvalidInput)
	}
	configStore, err := file.NewConfigStore(home)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return services.NewSettingsService(configStore), nil
}

// Close writes the metrics textfile, if configured, and releases storage.
func (a *App) Close() error {
	var errs []error
	if path := a.Settings.Metrics.Textfile; path != "" {
		errs = append(errs, a.Metrics.WriteTextfile(a.path(path)))
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) validator() (*schema.Validator, error) {
	if a.Settings.Schema.CardPath == "" {
		return schema.New()
	}
	return schema.Load(a.path(a.Settings.Schema.CardPath))
}

// storage builds the card store, ledger and change notifier of the
// configured backend. The sqlite backend has no change notifier.
func (a *App) storage() (driven.CardStore, driven.Ledger, driven.ChangeNotifier, error) {
	s := a.Settings.Storage
	switch s.Backend {
	case domain.StorageBackendSQLite:
		store, err := sqlite.NewStore(a.path(s.DatabasePath))
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		a.closers = append(a.closers, store.Close)
		return store.CardStore(), store.Ledger(), nil, nil
	default:
		dir := a.path(s.CardsDir)
		return storagefile.NewCardStore(dir),
			storagefile.NewLedger(a.path(s.LedgerPath)),
			storagefile.NewWatcher(dir, storagefile.DefaultDebounce),
			nil
	}
}

// path resolves p against the home directory unless it is absolute.
func (a *App) path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(a.Home, p)
}
