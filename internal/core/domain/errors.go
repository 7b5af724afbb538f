package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a referenced identifier does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey indicates a human key is already in live use.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrNoOpRekey indicates a rekey to the key the record already has.
	ErrNoOpRekey = errors.New("new key equals current key")

	// ErrSchemaViolation indicates a record failed schema validation before being written.
	ErrSchemaViolation = errors.New("schema violation")

	// ErrIOFailure indicates the underlying storage failed to read, write or append.
	ErrIOFailure = errors.New("io failure")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Identity graph errors.

	// ErrKeyCollision indicates two identities claim the same key or alias.
	ErrKeyCollision = errors.New("key collision")

	// ErrMergeConflict indicates a consolidate would break the merge graph:
	// a cycle, a source already merged elsewhere, or a merged target.
	ErrMergeConflict = errors.New("merge conflict")

	// ErrIdentityMerged indicates an identity operation on a record that has been merged.
	ErrIdentityMerged = errors.New("identity has been merged")

	// Partially applied operations.

	// ErrNotLogged indicates the record write succeeded but the ledger append failed.
	ErrNotLogged = errors.New("applied but not logged")

	// ErrPartialMerge indicates the consolidate target was updated but some sources were not marked.
	ErrPartialMerge = errors.New("partially merged")
)

// Violation is a single field-level schema failure.
type Violation struct {
	// Field is the offending field path, empty when the failure is record-wide.
	Field string

	// Message describes the failure.
	Message string
}

// String returns "field: message" or just the message.
func (v Violation) String() string {
	if v.Field == "" {
		return v.Message
	}
	return v.Field + ": " + v.Message
}

// SchemaViolationError lists every violation found for one record.
type SchemaViolationError struct {
	Violations []Violation
}

func (e *SchemaViolationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.String())
	}
	return fmt.Sprintf("%s: %s", ErrSchemaViolation, strings.Join(parts, "; "))
}

func (e *SchemaViolationError) Unwrap() error {
	return ErrSchemaViolation
}

// IOError wraps a storage failure.
type IOError struct {
	Op  string
	Err error
}

// NewIOError wraps err as an IOFailure for the named operation.
// Returns nil when err is nil.
func NewIOError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Op: op, Err: err}
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrIOFailure, e.Op, e.Err)
}

func (e *IOError) Unwrap() []error {
	return []error{ErrIOFailure, e.Err}
}

// CollisionError reports a key claimed by more than one identity.
type CollisionError struct {
	Key string
	IDs []string
}

func (e *CollisionError) Error() string {
	ids := append([]string(nil), e.IDs...)
	sort.Strings(ids)
	return fmt.Sprintf("%s: %q claimed by %s", ErrKeyCollision, e.Key, strings.Join(ids, ", "))
}

func (e *CollisionError) Unwrap() error {
	return ErrKeyCollision
}

// UnloggedError reports an operation whose record write is durable
// but whose ledger event could not be appended.
type UnloggedError struct {
	Event Event
	Err   error
}

func (e *UnloggedError) Error() string {
	return fmt.Sprintf("%s: %s %s: %v", ErrNotLogged, e.Event.Type, e.Event.ID, e.Err)
}

func (e *UnloggedError) Unwrap() []error {
	return []error{ErrNotLogged, e.Err}
}

// PartialMergeError reports source records that were not marked as merged
// after the consolidate target had already been updated.
type PartialMergeError struct {
	TargetID string
	Failed   map[string]error
}

// FailedIDs returns the failed source identifiers in sorted order.
func (e *PartialMergeError) FailedIDs() []string {
	ids := make([]string, 0, len(e.Failed))
	for id := range e.Failed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (e *PartialMergeError) Error() string {
	ids := e.FailedIDs()
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("%s (%v)", id, e.Failed[id]))
	}
	return fmt.Sprintf("%s into %s: %s", ErrPartialMerge, e.TargetID, strings.Join(parts, ", "))
}

func (e *PartialMergeError) Unwrap() error {
	return ErrPartialMerge
}
