package mcp

import (
	"github.com/custodia-labs/idledger/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces used by the MCP server.
type Ports struct {
	// Cards resolves keys and reads identity records.
	Cards driving.CardService

	// History reads ledger events.
	History driving.HistoryService

	// Export renders the registry resource.
	Export driving.ExportService

	// Fingerprint computes digests. Only called without an identifier,
	// so it never writes.
	Fingerprint driving.FingerprintUpdater
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Cards == nil {
		return ErrMissingCardService
	}
	// History, Export and Fingerprint are optional; their tools report
	// an error when called without them.
	return nil
}
