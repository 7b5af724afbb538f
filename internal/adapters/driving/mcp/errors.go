// Package mcp provides an MCP (Model Context Protocol) server adapter for idledger.
// It lets AI assistants resolve document keys, read identity cards and
// ledger history, and compute content fingerprints. Nothing it exposes writes.
package mcp

import "errors"

// ErrMissingCardService is returned when the card service is not provided.
var ErrMissingCardService = errors.New("mcp: card service is required")
