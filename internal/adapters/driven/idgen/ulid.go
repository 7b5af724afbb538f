// Package idgen mints ULID identifiers.
package idgen

import (
	"crypto/rand"
	"errors"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/custodia-labs/idledger/internal/core/ports/driven"
)

// Ensure Generator implements the interface.
var _ driven.IDGenerator = (*Generator)(nil)

// Generator produces ULIDs that sort by mint time and stay monotonic
// within the same millisecond.
type Generator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	now     func() time.Time
}

// New returns a generator backed by crypto/rand.
func New() *Generator {
	return NewWithClock(time.Now)
}

// NewWithClock returns a generator reading time from now.
func NewWithClock(now func() time.Time) *Generator {
	return &Generator{
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     now,
	}
}

// NewID returns a new 26-character identifier.
func (g *Generator) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := ulid.Timestamp(g.now())
	id, err := ulid.New(ms, g.entropy)
	if errors.Is(err, ulid.ErrMonotonicOverflow) {
		// Random bits exhausted within one millisecond: reseed and keep
		// uniqueness at the cost of ordering inside that millisecond.
		g.entropy = ulid.Monotonic(rand.Reader, 0)
		id, err = ulid.New(ms, g.entropy)
	}
	if err != nil {
		return ulid.Make().String()
	}
	return id.String()
}

// Valid reports whether s is a well-formed ULID.
func Valid(s string) bool {
	_, err := ulid.ParseStrict(s)
	return err == nil
}
