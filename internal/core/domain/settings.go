package domain

import (
	"fmt"
	"strings"
)

const unknownDescription = "Unknown"

// ValidateSettingKey checks that key is dot notation with no empty segment.
func ValidateSettingKey(key string) error {
	if key == "" || strings.Contains("."+key+".", "..") {
		return fmt.Errorf("%w: invalid config key %q", ErrInvalidInput, key)
	}
	return nil
}

// StorageBackend selects where cards and ledger events are kept.
type StorageBackend string

// Available storage backends.
const (
	// StorageBackendFile keeps one YAML file per card and a JSONL ledger.
	StorageBackendFile StorageBackend = "file"

	// StorageBackendSQLite keeps cards and events in a single SQLite database.
	StorageBackendSQLite StorageBackend = "sqlite"
)

// IsValid returns true if the backend is recognised.
func (b StorageBackend) IsValid() bool {
	return b == StorageBackendFile || b == StorageBackendSQLite
}

// String returns the string representation.
func (b StorageBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b StorageBackend) Description() string {
	switch b {
	case StorageBackendFile:
		return "File (YAML cards + JSONL ledger)"
	case StorageBackendSQLite:
		return "SQLite (single database file)"
	default:
		return unknownDescription
	}
}

// RedeprecatePolicy decides what Deprecate does on an already deprecated record.
type RedeprecatePolicy string

// Available redeprecate policies.
const (
	// RedeprecateRecord bumps the version and appends another DEPRECATE event.
	RedeprecateRecord RedeprecatePolicy = "record"

	// RedeprecateSkip leaves the record and ledger untouched.
	RedeprecateSkip RedeprecatePolicy = "skip"
)

// IsValid returns true if the policy is recognised.
func (p RedeprecatePolicy) IsValid() bool {
	return p == RedeprecateRecord || p == RedeprecateSkip
}

// StorageSettings locates persisted state. Relative paths resolve
// against the ledger home directory.
type StorageSettings struct {
	Backend      StorageBackend
	CardsDir     string
	LedgerPath   string
	RegistryPath string
	DatabasePath string
}

// SchemaSettings locates the card schema.
type SchemaSettings struct {
	// CardPath is an external JSON Schema document. Empty uses the built-in schema.
	CardPath string
}

// RegistrySettings configures registry builds.
type RegistrySettings struct {
	// Strict turns key collisions into build failures.
	Strict bool
}

// LifecycleSettings tunes lifecycle operations.
type LifecycleSettings struct {
	Redeprecate  RedeprecatePolicy
	MergeWorkers int
}

// MetricsSettings configures operation metrics.
type MetricsSettings struct {
	// Textfile is written in Prometheus text format after each command. Empty disables it.
	Textfile string
}

// ImportSettings holds defaults for documents imported without front matter.
type ImportSettings struct {
	SemVer       string
	Owner        string
	ContractType string
	Patterns     []string
}

// Settings holds the ledger configuration.
type Settings struct {
	Storage   StorageSettings
	Schema    SchemaSettings
	Registry  RegistrySettings
	Lifecycle LifecycleSettings
	Metrics   MetricsSettings
	Import    ImportSettings
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		Storage: StorageSettings{
			Backend:      StorageBackendFile,
			CardsDir:     "cards",
			LedgerPath:   "ledger/ids.jsonl",
			RegistryPath: "registry.yaml",
			DatabasePath: "ledger.db",
		},
		Registry: RegistrySettings{
			Strict: true,
		},
		Lifecycle: LifecycleSettings{
			Redeprecate:  RedeprecateRecord,
			MergeWorkers: 4,
		},
		Import: ImportSettings{
			SemVer:       "1.0.0",
			Owner:        "Unknown",
			ContractType: "policy",
			Patterns:     []string{"**/*.md"},
		},
	}
}
