package driven

import "io"

// Fingerprinter computes content digests.
type Fingerprinter interface {
	// Sum digests every byte of r in order and returns the hex digest.
	Sum(r io.Reader) (string, error)
}
