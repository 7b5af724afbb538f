// Package file provides the TOML configuration store kept in the ledger home.
package file
