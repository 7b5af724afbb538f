package domain

import (
	"fmt"
	"slices"
	"strings"
)

// Status is the lifecycle status of an identity.
type Status string

// Available statuses.
const (
	// StatusActive is the status of every freshly minted identity.
	StatusActive Status = "active"

	// StatusDeprecated marks an identity retired by Deprecate. One-way.
	StatusDeprecated Status = "deprecated"
)

// IsValid returns true if the status is recognised.
func (s Status) IsValid() bool {
	return s == StatusActive || s == StatusDeprecated
}

// String returns the string representation.
func (s Status) String() string {
	return string(s)
}

// EffectiveDateLayout is the layout of Card.EffectiveDate.
const EffectiveDateLayout = "2006-01-02"

// Card is the authoritative, versioned identity record of one document.
//
// Cards are values: every mutation derives a new Card through Next and
// the previous value is never modified. The struct tags define the
// persisted form, which carries every field including empty markers.
type Card struct {
	// DocKey is the current human key, unique among live records.
	DocKey string `json:"doc_key" yaml:"doc_key"`

	// ID is the ULID minted for this identity. Immutable.
	ID string `json:"id" yaml:"id"`

	// SemVer is the semantic version of the governed document.
	SemVer string `json:"semver" yaml:"semver"`

	// Status is active or deprecated.
	Status Status `json:"status" yaml:"status"`

	// EffectiveDate is the ISO date (YYYY-MM-DD) the identity took effect.
	EffectiveDate string `json:"effective_date" yaml:"effective_date"`

	// Owner is the owning team or person.
	Owner string `json:"owner" yaml:"owner"`

	// ContractType classifies the document (policy, standard, ...).
	ContractType string `json:"contract_type" yaml:"contract_type"`

	// Version starts at 1 and increases by exactly 1 per write.
	Version int `json:"version" yaml:"version"`

	// Aliases holds every previously used key, oldest first. Append-only.
	Aliases []string `json:"aliases" yaml:"aliases"`

	// SupersedesVersion optionally references the document version this one replaces.
	SupersedesVersion *string `json:"supersedes_version" yaml:"supersedes_version"`

	// MergedInto is set once this identity has been absorbed by another.
	MergedInto *string `json:"merged_into" yaml:"merged_into"`

	// Absorbs lists identities consolidated into this one.
	Absorbs []string `json:"absorbs" yaml:"absorbs"`

	// Fingerprint is the latest content digest, if any.
	Fingerprint *string `json:"fingerprint" yaml:"fingerprint"`
}

// MintRequest holds the inputs of a Mint operation.
type MintRequest struct {
	DocKey       string
	SemVer       string
	Owner        string
	ContractType string

	// EffectiveDate defaults to the mint day when empty.
	EffectiveDate string

	// SupersedesVersion is optional.
	SupersedesVersion string
}

// Validate checks the required fields are present.
func (r MintRequest) Validate() error {
	var missing []string
	if strings.TrimSpace(r.DocKey) == "" {
		missing = append(missing, "doc_key")
	}
	if strings.TrimSpace(r.SemVer) == "" {
		missing = append(missing, "semver")
	}
	if strings.TrimSpace(r.Owner) == "" {
		missing = append(missing, "owner")
	}
	if strings.TrimSpace(r.ContractType) == "" {
		missing = append(missing, "contract_type")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidInput, strings.Join(missing, ", "))
	}
	return nil
}

// NewCard builds the version-1 card for a freshly minted identifier.
func NewCard(id string, req MintRequest, effectiveDate string) Card {
	if req.EffectiveDate != "" {
		effectiveDate = req.EffectiveDate
	}
	return Card{
		DocKey:            req.DocKey,
		ID:                id,
		SemVer:            req.SemVer,
		Status:            StatusActive,
		EffectiveDate:     effectiveDate,
		Owner:             req.Owner,
		ContractType:      req.ContractType,
		Version:           1,
		Aliases:           []string{},
		SupersedesVersion: optional(req.SupersedesVersion),
		Absorbs:           []string{},
	}
}

// IsMerged reports whether the identity has been absorbed by another.
func (c Card) IsMerged() bool {
	return c.MergedInto != nil && *c.MergedInto != ""
}

// MergedIntoID returns the merge target or an empty string.
func (c Card) MergedIntoID() string {
	if c.MergedInto == nil {
		return ""
	}
	return *c.MergedInto
}

// FingerprintValue returns the fingerprint or an empty string.
func (c Card) FingerprintValue() string {
	if c.Fingerprint == nil {
		return ""
	}
	return *c.Fingerprint
}

// HasAbsorbed reports whether id is listed in Absorbs.
func (c Card) HasAbsorbed(id string) bool {
	return slices.Contains(c.Absorbs, id)
}

// Keys returns the current key followed by every alias, without duplicates.
func (c Card) Keys() []string {
	keys := make([]string, 0, len(c.Aliases)+1)
	keys = append(keys, c.DocKey)
	for _, alias := range c.Aliases {
		if !slices.Contains(keys, alias) {
			keys = append(keys, alias)
		}
	}
	return keys
}

// Clone returns a deep copy that shares no memory with c.
func (c Card) Clone() Card {
	out := c
	out.Aliases = cloneStrings(c.Aliases)
	out.Absorbs = cloneStrings(c.Absorbs)
	out.SupersedesVersion = clonePtr(c.SupersedesVersion)
	out.MergedInto = clonePtr(c.MergedInto)
	out.Fingerprint = clonePtr(c.Fingerprint)
	return out
}

// Normalized returns a copy whose list fields are never nil and whose
// empty optional fields are nil, so equal cards compare equal after a
// round trip through the persisted form.
func (c Card) Normalized() Card {
	out := c.Clone()
	out.SupersedesVersion = optional(derefOr(out.SupersedesVersion))
	out.MergedInto = optional(derefOr(out.MergedInto))
	out.Fingerprint = optional(derefOr(out.Fingerprint))
	return out
}

// Change modifies a card copy inside Next.
type Change func(*Card)

// Next derives the following version of the card. The receiver is left
// untouched, the version is incremented by one and the changes are
// applied to the copy in order.
func (c Card) Next(changes ...Change) Card {
	next := c.Normalized()
	next.Version = c.Version + 1
	for _, change := range changes {
		change(&next)
	}
	return next
}

// ChangeKey records the current key as an alias and replaces it.
func ChangeKey(newKey string) Change {
	return func(c *Card) {
		c.Aliases = append(c.Aliases, c.DocKey)
		c.DocKey = newKey
	}
}

// SetStatus sets the lifecycle status.
func SetStatus(status Status) Change {
	return func(c *Card) {
		c.Status = status
	}
}

// Absorb appends each id not already absorbed, skipping the card itself.
func Absorb(ids ...string) Change {
	return func(c *Card) {
		for _, id := range ids {
			if id == c.ID || slices.Contains(c.Absorbs, id) {
				continue
			}
			c.Absorbs = append(c.Absorbs, id)
		}
	}
}

// MergeInto marks the card as absorbed by target.
func MergeInto(target string) Change {
	return func(c *Card) {
		c.MergedInto = optional(target)
	}
}

// SetFingerprint records a content digest.
func SetFingerprint(digest string) Change {
	return func(c *Card) {
		c.Fingerprint = optional(digest)
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefOr(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func clonePtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
