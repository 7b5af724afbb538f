// Package driving defines interfaces that external actors (CLI, MCP) use
// to interact with core services. These are the "driving" ports in hexagonal
// architecture terminology - they drive the application.
//
// Each mutating lifecycle operation has its own interface with its own
// signature. Together they are the only way to write a card or a ledger event.
//
// Implementations of these interfaces live in internal/core/services.
package driving
