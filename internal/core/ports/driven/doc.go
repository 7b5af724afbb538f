// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - CardStore: Identity record persistence (YAML files or SQLite)
//   - Ledger: Append-only event log (JSONL file or SQLite)
//   - CardValidator: Schema gate run before any record is written
//   - IDGenerator: ULID minting
//   - Fingerprinter: Content digests
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - RegistryStore: Persists the derived registry file.
//   - ChangeNotifier: Signals card store changes. Without it, registry watch is disabled.
//   - DocumentScanner: Discovers documents for import.
//   - OperationObserver: Receives per-operation metrics.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
