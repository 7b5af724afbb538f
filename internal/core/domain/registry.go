package domain

import (
	"errors"
	"sort"
)

// Registry is the derived index of identities. It is rebuilt wholesale
// from the card store and never updated incrementally.
type Registry struct {
	// ByID maps identifier to current key.
	ByID map[string]string

	// ByKey maps every key and alias to its identifier.
	ByKey map[string]string

	// Aliases maps identifier to its aliases, oldest first.
	Aliases map[string][]string

	// MergedInto maps merged identifiers to their target.
	MergedInto map[string]string
}

// RegistryEntry is one identity in the registry.
type RegistryEntry struct {
	ID      string   `json:"id" yaml:"-"`
	DocKey  string   `json:"doc_key" yaml:"doc_key"`
	Aliases []string `json:"aliases" yaml:"aliases"`
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		ByID:       make(map[string]string),
		ByKey:      make(map[string]string),
		Aliases:    make(map[string][]string),
		MergedInto: make(map[string]string),
	}
}

// BuildRegistry folds cards into a registry.
//
// Cards are sorted by identifier and live cards are indexed before
// merged ones, so the result does not depend on scan order. A key held
// by two live identities is reported as a CollisionError; the first
// identifier in sorted order keeps the key. Keys of merged identities
// only fill gaps: they never collide with live keys.
func BuildRegistry(cards []Card) (*Registry, error) {
	sorted := make([]Card, len(cards))
	copy(sorted, cards)
	sort.SliceStable(sorted, func(i, j int) bool {
		mi, mj := sorted[i].IsMerged(), sorted[j].IsMerged()
		if mi != mj {
			return !mi
		}
		return sorted[i].ID < sorted[j].ID
	})

	reg := NewRegistry()
	claims := make(map[string][]string)
	var order []string

	for _, card := range sorted {
		reg.ByID[card.ID] = card.DocKey
		reg.Aliases[card.ID] = append([]string{}, card.Aliases...)
		if card.IsMerged() {
			reg.MergedInto[card.ID] = *card.MergedInto
		}
		for _, key := range card.Keys() {
			owner, taken := reg.ByKey[key]
			switch {
			case !taken:
				reg.ByKey[key] = card.ID
				if !card.IsMerged() {
					claims[key] = []string{card.ID}
					order = append(order, key)
				}
			case owner == card.ID, card.IsMerged():
				// merged identities never displace another claim
			default:
				if _, live := claims[key]; live {
					claims[key] = append(claims[key], card.ID)
				}
			}
		}
	}

	var errs []error
	for _, key := range order {
		if ids := claims[key]; len(ids) > 1 {
			errs = append(errs, &CollisionError{Key: key, IDs: ids})
		}
	}
	return reg, errors.Join(errs...)
}

// LookupID returns the identifier for a key or alias.
func (r *Registry) LookupID(key string) (string, bool) {
	id, ok := r.ByKey[key]
	return id, ok
}

// LookupKey returns the current key of an identifier.
func (r *Registry) LookupKey(id string) (string, bool) {
	key, ok := r.ByID[id]
	return key, ok
}

// IsLiveKey reports whether key is held by an identity that has not been merged.
func (r *Registry) IsLiveKey(key string) bool {
	id, ok := r.ByKey[key]
	if !ok {
		return false
	}
	_, merged := r.MergedInto[id]
	return !merged
}

// Len returns the number of identities.
func (r *Registry) Len() int {
	return len(r.ByID)
}

// Entries returns every identity sorted by identifier.
func (r *Registry) Entries() []RegistryEntry {
	ids := make([]string, 0, len(r.ByID))
	for id := range r.ByID {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	entries := make([]RegistryEntry, 0, len(ids))
	for _, id := range ids {
		entries = append(entries, RegistryEntry{
			ID:      id,
			DocKey:  r.ByID[id],
			Aliases: append([]string{}, r.Aliases[id]...),
		})
	}
	return entries
}
