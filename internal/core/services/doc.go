// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Every lifecycle operation follows the same order: load, check
// preconditions, derive the next card version, validate, save, then
// append exactly one ledger event. Nothing is written before validation
// passes, and no event is appended unless the write succeeded.
//
// Services are pure Go with no CGO or external dependencies.
package services
