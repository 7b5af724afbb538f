package driving

import (
	"context"

	"github.com/custodia-labs/idledger/internal/core/domain"
)

// Minter creates new identities.
type Minter interface {
	// Mint creates a version-1 active card and appends a CREATE event.
	// Returns domain.ErrDuplicateKey if the key is in live use.
	Mint(ctx context.Context, req domain.MintRequest) (*domain.Card, error)
}

// Rekeyer changes human keys.
type Rekeyer interface {
	// Rekey moves the current key to the aliases and appends a REKEY event.
	Rekey(ctx context.Context, id, newKey string) error
}

// Deprecator retires identities.
type Deprecator interface {
	// Deprecate sets the status to deprecated and appends a DEPRECATE event.
	Deprecate(ctx context.Context, id, reason string) error
}

// Consolidator merges identities.
type Consolidator interface {
	// Consolidate absorbs the sources into the target, appends one
	// CONSOLIDATE event and marks each existing source as merged.
	// Safe to retry with the same arguments.
	Consolidate(ctx context.Context, targetID string, sourceIDs []string) error
}

// FingerprintUpdater records content digests.
type FingerprintUpdater interface {
	// UpdateFingerprint digests content and, if a card exists for id,
	// records the digest and appends a FINGERPRINT_UPDATE event.
	UpdateFingerprint(ctx context.Context, id string, content []byte) (string, error)
}
