// Package schema validates cards against a JSON Schema before they are written.
package schema

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/custodia-labs/idledger/internal/core/domain"
	"github.com/custodia-labs/idledger/internal/core/ports/driven"
)

//go:embed card.schema.json
var builtinCardSchema []byte

// Ensure Validator implements the interface.
var _ driven.CardValidator = (*Validator)(nil)

// Validator checks cards against a resolved schema. It reports one
// violation per failing property before falling back to the whole-record
// check, so callers see every bad field at once.
type Validator struct {
	whole      *jsonschema.Resolved
	properties map[string]*jsonschema.Resolved
	names      []string
	required   []string
	closed     bool
}

// New returns a validator for the built-in card schema.
func New() (*Validator, error) {
	return Parse(builtinCardSchema)
}

// Load returns a validator for the schema at path, or the built-in schema
// when path is empty.
func Load(path string) (*Validator, error) {
	if path == "" {
		return New()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.NewIOError("read schema", err)
	}
	return Parse(data)
}

// Parse resolves a JSON Schema document.
func Parse(data []byte) (*Validator, error) {
	var s jsonschema.Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: parse schema: %v", domain.ErrInvalidInput, err)
	}
	whole, err := s.Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve schema: %v", domain.ErrInvalidInput, err)
	}

	v := &Validator{
		whole:      whole,
		properties: make(map[string]*jsonschema.Resolved, len(s.Properties)),
		required:   slices.Clone(s.Required),
		closed:     s.AdditionalProperties != nil,
	}
	for name, prop := range s.Properties {
		resolved, err := prop.Resolve(nil)
		if err != nil {
			return nil, fmt.Errorf("%w: resolve property %s: %v", domain.ErrInvalidInput, name, err)
		}
		v.properties[name] = resolved
		v.names = append(v.names, name)
	}
	slices.Sort(v.names)
	return v, nil
}

// Validate returns nil or a *domain.SchemaViolationError listing every violation.
func (v *Validator) Validate(card domain.Card) error {
	instance, err := toInstance(card)
	if err != nil {
		return err
	}

	var violations []domain.Violation
	for _, name := range v.required {
		if _, ok := instance[name]; !ok {
			violations = append(violations, domain.Violation{Field: name, Message: "is required"})
		}
	}
	for _, name := range v.names {
		value, ok := instance[name]
		if !ok {
			continue
		}
		if err := v.properties[name].Validate(value); err != nil {
			violations = append(violations, domain.Violation{Field: name, Message: err.Error()})
		}
	}
	if v.closed {
		for _, name := range sortedKeys(instance) {
			if _, known := v.properties[name]; !known {
				violations = append(violations, domain.Violation{Field: name, Message: "is not allowed"})
			}
		}
	}

	if len(violations) == 0 {
		if err := v.whole.Validate(instance); err != nil {
			violations = append(violations, domain.Violation{Message: err.Error()})
		}
	}
	if len(violations) > 0 {
		return &domain.SchemaViolationError{Violations: violations}
	}
	return nil
}

// toInstance converts a card to the generic JSON form the schema sees.
func toInstance(card domain.Card) (map[string]any, error) {
	data, err := json.Marshal(card.Normalized())
	if err != nil {
		return nil, fmt.Errorf("encode card: %w", err)
	}
	var instance map[string]any
	if err := json.Unmarshal(data, &instance); err != nil {
		return nil, fmt.Errorf("decode card: %w", err)
	}
	return instance, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
