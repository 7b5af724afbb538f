// Package domain defines the core business entities for the identity ledger.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Card: The versioned identity record of one governed document
//   - Event: An immutable ledger fact describing one lifecycle operation
//   - Registry: The derived index of identifiers, keys and aliases
//   - Settings: Ledger configuration with defaults
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
