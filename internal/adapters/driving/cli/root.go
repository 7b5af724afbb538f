// Package cli implements the idledger command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/idledger/internal/core/domain"
	"github.com/custodia-labs/idledger/internal/core/ports/driving"
	"github.com/custodia-labs/idledger/internal/logger"
)

// version is set at build time with -ldflags "-X ...cli.version=v1.2.3".
var version = "dev"

// Exit codes returned by Execute.
const (
	ExitOK       = 0
	ExitError    = 1
	ExitRejected = 2
	ExitUnlogged = 3
	ExitPartial  = 4
)

// openMode annotates commands that need less than the full set of services.
const (
	openMode         = "idledger/open"
	openNone         = "none"
	openSettingsOnly = "settings"
)

// Lifecycle is the set of mutating operations.
type Lifecycle interface {
	driving.Minter
	driving.Rekeyer
	driving.Deprecator
	driving.Consolidator
	driving.FingerprintUpdater
}

// Services holds everything the commands need.
type Services struct {
	Lifecycle Lifecycle
	Cards     driving.CardService
	Registry  driving.RegistryService
	Export    driving.ExportService
	History   driving.HistoryService
	Reconcile driving.ReconcileService
	Import    driving.ImportService
	Settings  driving.SettingsService

	// Close is optional and runs once after the command.
	Close func() error
}

// Openers build services for a home directory. An empty home means the default.
type Openers struct {
	Services func(home string) (*Services, error)

	// Settings opens only the configuration, so that a broken storage
	// or schema setting can still be fixed with "idledger config set".
	Settings func(home string) (driving.SettingsService, error)
}

var (
	homeDir string
	verbose bool

	openers Openers
	closer  func() error

	lifecycle        Lifecycle
	cardService      driving.CardService
	registryService  driving.RegistryService
	exportService    driving.ExportService
	historyService   driving.HistoryService
	reconcileService driving.ReconcileService
	importService    driving.ImportService
	settingsService  driving.SettingsService
)

var rootCmd = &cobra.Command{
	Use:   "idledger",
	Short: "Stable identities for governed documents",
	Long: `idledger mints a permanent identifier for every governed document and
records each lifecycle change (rekey, deprecate, consolidate, fingerprint)
in an append-only ledger. The key registry is derived from the cards and
can be rebuilt at any time.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: openServices,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "",
		"ledger home directory (default $IDLEDGER_HOME or ~/.idledger)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// SetServices replaces the services used by commands.
func SetServices(s *Services) {
	lifecycle = s.Lifecycle
	cardService = s.Cards
	registryService = s.Registry
	exportService = s.Export
	historyService = s.History
	reconcileService = s.Reconcile
	importService = s.Import
	settingsService = s.Settings
	closer = s.Close
}

func openServices(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	switch cmd.Annotations[openMode] {
	case openNone:
		return nil
	case openSettingsOnly:
		if openers.Settings == nil {
			return nil
		}
		s, err := openers.Settings(homeDir)
		if err != nil {
			return fmt.Errorf("failed to open config: %w", err)
		}
		settingsService = s
		return nil
	}

	if openers.Services == nil {
		return nil
	}
	s, err := openers.Services(homeDir)
	if err != nil {
		return fmt.Errorf("failed to open ledger: %w", err)
	}
	SetServices(s)
	return nil
}

func closeServices() error {
	if closer == nil {
		return nil
	}
	err := closer()
	closer = nil
	return err
}

// Execute runs the root command and returns the process exit code.
// Services are opened lazily so that help and version never touch the home directory.
func Execute(o Openers) int {
	openers = o
	defer func() { openers = Openers{} }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if cerr := closeServices(); cerr != nil {
		logger.Warn("close: %v", cerr)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, FormatError(err))
		return ExitCode(err)
	}
	return ExitOK
}

// ExitCode maps an error to a process exit code. Writes that were applied
// but not logged, and partially applied merges, get their own codes so
// scripts can tell them apart from clean rejections.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, domain.ErrNotLogged):
		return ExitUnlogged
	case errors.Is(err, domain.ErrPartialMerge):
		return ExitPartial
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrDuplicateKey),
		errors.Is(err, domain.ErrNoOpRekey),
		errors.Is(err, domain.ErrSchemaViolation),
		errors.Is(err, domain.ErrMergeConflict),
		errors.Is(err, domain.ErrIdentityMerged),
		errors.Is(err, domain.ErrKeyCollision),
		errors.Is(err, domain.ErrInvalidInput):
		return ExitRejected
	default:
		return ExitError
	}
}

// FormatError renders an error for the terminal with a recovery hint where one exists.
func FormatError(err error) string {
	msg := "Error: " + err.Error()
	switch {
	case errors.Is(err, domain.ErrNotLogged):
		msg += "\nThe card was written but its ledger event was not. Run 'idledger reconcile' to audit."
	case errors.Is(err, domain.ErrPartialMerge):
		msg += "\nRe-run the same consolidate, or 'idledger reconcile --repair', to finish the merge."
	}
	return msg
}

// resolveCard accepts an identifier, current key or alias.
func resolveCard(ctx context.Context, keyOrID string) (*domain.Card, error) {
	if cardService == nil {
		return nil, errors.New("card service not configured")
	}
	return cardService.Resolve(ctx, keyOrID)
}

// resolveID returns the identifier for an identifier, key or alias.
func resolveID(ctx context.Context, keyOrID string) (string, error) {
	card, err := resolveCard(ctx, keyOrID)
	if err != nil {
		return "", err
	}
	return card.ID, nil
}
