package file

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/idledger/internal/core/domain"
	"github.com/custodia-labs/idledger/internal/core/ports/driven"
	"github.com/custodia-labs/idledger/internal/fsutil"
)

// Ensure RegistryStore implements the interface.
var _ driven.RegistryStore = (*RegistryStore)(nil)

// RegistryStore writes the registry as a YAML mapping of identifier to
// {doc_key, aliases}.
type RegistryStore struct {
	path string
}

// NewRegistryStore returns a store writing to path.
func NewRegistryStore(path string) *RegistryStore {
	return &RegistryStore{path: path}
}

// Path returns the registry file path.
func (s *RegistryStore) Path() string {
	return s.path
}

// Save replaces the registry file atomically.
func (s *RegistryStore) Save(ctx context.Context, reg *domain.Registry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := MarshalRegistry(reg)
	if err != nil {
		return err
	}
	return domain.NewIOError("write registry", fsutil.WriteFileAtomic(s.path, data, 0o644))
}

// MarshalRegistry encodes the registry with identifiers in sorted order.
func MarshalRegistry(reg *domain.Registry) ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, entry := range reg.Entries() {
		var value yaml.Node
		if err := value.Encode(entry); err != nil {
			return nil, fmt.Errorf("encode registry entry %s: %w", entry.ID, err)
		}
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: entry.ID},
			&value,
		)
	}
	data, err := yaml.Marshal(root)
	if err != nil {
		return nil, fmt.Errorf("encode registry: %w", err)
	}
	return data, nil
}

// UnmarshalRegistry decodes a registry file into entries keyed by identifier.
func UnmarshalRegistry(data []byte) (map[string]domain.RegistryEntry, error) {
	entries := make(map[string]domain.RegistryEntry)
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: decode registry: %v", domain.ErrInvalidInput, err)
	}
	for id, e := range entries {
		e.ID = id
		if e.Aliases == nil {
			e.Aliases = []string{}
		}
		entries[id] = e
	}
	return entries, nil
}
