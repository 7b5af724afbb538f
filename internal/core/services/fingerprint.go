package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/idledger/internal/core/domain"
	"github.com/custodia-labs/idledger/internal/logger"
)

// UpdateFingerprint digests content and records the digest on id when a
// card exists. Content is hashed as given. The digest is returned even when
// no card exists, in which case nothing is written.
func (s *LifecycleService) UpdateFingerprint(ctx context.Context, id string, content []byte) (_ string, err error) {
	defer s.observe(opFingerprint, time.Now(), &err)
	if err := s.ready(); err != nil {
		return "", err
	}
	if s.fingerprinter == nil {
		return "", errors.New("fingerprinter not configured")
	}

	digest, err := s.fingerprinter.Sum(bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("failed to digest content: %w", err)
	}
	log := logger.Operation(opFingerprint, id)

	if id == "" {
		return digest, nil
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	card, err := s.cards.Load(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		log.Debug("no card, digest only")
		return digest, nil
	}
	if err != nil {
		return "", fmt.Errorf("load %s: %w", id, err)
	}

	next := card.Next(domain.SetFingerprint(digest))
	log.Debug("fingerprint=%s (v%d)", digest, next.Version)

	if err := s.commit(ctx, next, domain.NewFingerprintEvent(next, digest, s.now())); err != nil {
		if errors.Is(err, domain.ErrNotLogged) {
			return digest, err
		}
		return "", err
	}
	return digest, nil
}
