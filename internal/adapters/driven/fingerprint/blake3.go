// Package fingerprint computes content digests.
package fingerprint

import (
	"encoding/hex"
	"fmt"
	"io"

	"lukechampine.com/blake3"

	"github.com/custodia-labs/idledger/internal/core/ports/driven"
)

// Ensure Blake3 implements the interface.
var _ driven.Fingerprinter = Blake3{}

// Size is the digest length in bytes.
const Size = 32

// Blake3 digests content with BLAKE3-256.
type Blake3 struct{}

// Sum hashes every byte of r and returns the lowercase hex digest.
func (Blake3) Sum(r io.Reader) (string, error) {
	h := blake3.New(Size, nil)
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("read content: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
