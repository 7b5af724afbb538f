package services

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/custodia-labs/idledger/internal/core/domain"
	"github.com/custodia-labs/idledger/internal/core/ports/driven"
	"github.com/custodia-labs/idledger/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyStorageBackend      = "storage.backend"
	keyStorageCardsDir     = "storage.cards_dir"
	keyStorageLedgerPath   = "storage.ledger_path"
	keyStorageRegistryPath = "storage.registry_path"
	keyStorageDatabasePath = "storage.database_path"
	keySchemaCardPath      = "schema.card_path"
	keyRegistryStrict      = "registry.strict"
	keyRedeprecate         = "lifecycle.redeprecate"
	keyMergeWorkers        = "lifecycle.merge_workers"
	keyMetricsTextfile     = "metrics.textfile"
	keyImportSemVer        = "import.semver"
	keyImportOwner         = "import.owner"
	keyImportContractType  = "import.contract_type"
	keyImportPatterns      = "import.patterns"
)

// settingKind describes how a key's string form is parsed on Set.
type settingKind int

const (
	kindString settingKind = iota
	kindBool
	kindPositiveInt
	kindList
	kindBackend
	kindRedeprecate
)

var settingKinds = map[string]settingKind{
	keyStorageBackend:      kindBackend,
	keyStorageCardsDir:     kindString,
	keyStorageLedgerPath:   kindString,
	keyStorageRegistryPath: kindString,
	keyStorageDatabasePath: kindString,
	keySchemaCardPath:      kindString,
	keyRegistryStrict:      kindBool,
	keyRedeprecate:         kindRedeprecate,
	keyMergeWorkers:        kindPositiveInt,
	keyMetricsTextfile:     kindString,
	keyImportSemVer:        kindString,
	keyImportOwner:         kindString,
	keyImportContractType:  kindString,
	keyImportPatterns:      kindList,
}

// SettingsService manages ledger settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current settings. Missing or invalid values fall back to defaults.
func (s *SettingsService) Get() (*domain.Settings, error) {
	if s.configStore == nil {
		return nil, errors.New("config store not configured")
	}
	defaults := domain.DefaultSettings()

	return &domain.Settings{
		Storage: domain.StorageSettings{
			Backend:      s.getBackend(defaults.Storage.Backend),
			CardsDir:     s.getString(keyStorageCardsDir, defaults.Storage.CardsDir),
			LedgerPath:   s.getString(keyStorageLedgerPath, defaults.Storage.LedgerPath),
			RegistryPath: s.getString(keyStorageRegistryPath, defaults.Storage.RegistryPath),
			DatabasePath: s.getString(keyStorageDatabasePath, defaults.Storage.DatabasePath),
		},
		Schema: domain.SchemaSettings{
			CardPath: s.configStore.GetString(keySchemaCardPath),
		},
		Registry: domain.RegistrySettings{
			Strict: s.getBool(keyRegistryStrict, defaults.Registry.Strict),
		},
		Lifecycle: domain.LifecycleSettings{
			Redeprecate:  s.getRedeprecate(defaults.Lifecycle.Redeprecate),
			MergeWorkers: s.getInt(keyMergeWorkers, defaults.Lifecycle.MergeWorkers),
		},
		Metrics: domain.MetricsSettings{
			Textfile: s.configStore.GetString(keyMetricsTextfile),
		},
		Import: domain.ImportSettings{
			SemVer:       s.getString(keyImportSemVer, defaults.Import.SemVer),
			Owner:        s.getString(keyImportOwner, defaults.Import.Owner),
			ContractType: s.getString(keyImportContractType, defaults.Import.ContractType),
			Patterns:     s.getStringSlice(keyImportPatterns, defaults.Import.Patterns),
		},
	}, nil
}

// Set parses value for key and persists it.
func (s *SettingsService) Set(key, value string) error {
	if s.configStore == nil {
		return errors.New("config store not configured")
	}
	kind, ok := settingKinds[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	var parsed any
	switch kind {
	case kindString:
		parsed = value
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be true or false", domain.ErrInvalidInput, key)
		}
		parsed = b
	case kindPositiveInt:
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("%w: %s must be a positive integer", domain.ErrInvalidInput, key)
		}
		parsed = n
	case kindList:
		var items []string
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		parsed = items
	case kindBackend:
		if !domain.StorageBackend(value).IsValid() {
			return fmt.Errorf("%w: invalid storage backend: %s", domain.ErrInvalidInput, value)
		}
		parsed = value
	case kindRedeprecate:
		if !domain.RedeprecatePolicy(value).IsValid() {
			return fmt.Errorf("%w: invalid redeprecate policy: %s", domain.ErrInvalidInput, value)
		}
		parsed = value
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Keys lists the supported keys in sorted order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingKinds))
	for key := range settingKinds {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.Settings {
	return domain.DefaultSettings()
}

// Helper methods for reading config with defaults

func (s *SettingsService) getString(key, defaultVal string) string {
	if val := s.configStore.GetString(key); val != "" {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if val := s.configStore.GetInt(key); val > 0 {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); exists {
		return s.configStore.GetBool(key)
	}
	return defaultVal
}

func (s *SettingsService) getStringSlice(key string, defaultVal []string) []string {
	if val := s.configStore.GetStringSlice(key); len(val) > 0 {
		return val
	}
	return slices.Clone(defaultVal)
}

func (s *SettingsService) getBackend(defaultVal domain.StorageBackend) domain.StorageBackend {
	backend := domain.StorageBackend(s.configStore.GetString(keyStorageBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}

func (s *SettingsService) getRedeprecate(defaultVal domain.RedeprecatePolicy) domain.RedeprecatePolicy {
	policy := domain.RedeprecatePolicy(s.configStore.GetString(keyRedeprecate))
	if !policy.IsValid() {
		return defaultVal
	}
	return policy
}
