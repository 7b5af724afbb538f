package driven

// IDGenerator mints identifiers.
type IDGenerator interface {
	// NewID returns a 26-character, lexicographically time-sortable identifier.
	NewID() string
}
