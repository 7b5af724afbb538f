package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/idledger/internal/core/domain"
)

const defaultHistoryLimit = 50

// LookupInput is the input schema for the lookup tool.
type LookupInput struct {
	Key    string `json:"key" jsonschema:"document key, former key (alias) or identifier"`
	Follow bool   `json:"follow,omitempty" jsonschema:"follow merged_into links to the surviving identity"`
}

// CardInput is the input schema for the card tool.
type CardInput struct {
	ID string `json:"id" jsonschema:"the 26-character identifier"`
}

// CardOutput is a single identity record.
type CardOutput struct {
	ID                string   `json:"id"`
	DocKey            string   `json:"doc_key"`
	SemVer            string   `json:"semver"`
	Status            string   `json:"status"`
	EffectiveDate     string   `json:"effective_date"`
	Owner             string   `json:"owner"`
	ContractType      string   `json:"contract_type"`
	Version           int      `json:"version"`
	Aliases           []string `json:"aliases"`
	SupersedesVersion string   `json:"supersedes_version,omitempty"`
	MergedInto        string   `json:"merged_into,omitempty"`
	Absorbs           []string `json:"absorbs"`
	Fingerprint       string   `json:"fingerprint,omitempty"`
}

// HistoryInput is the input schema for the history tool.
type HistoryInput struct {
	Key   string `json:"key" jsonschema:"document key, alias or identifier"`
	Type  string `json:"type,omitempty" jsonschema:"only events of this type (CREATE, REKEY, DEPRECATE, CONSOLIDATE, FINGERPRINT_UPDATE)"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of most recent events to return (default 50)"`
}

// HistoryOutput lists ledger events oldest first.
type HistoryOutput struct {
	ID     string        `json:"id"`
	Events []EventOutput `json:"events"`
	Count  int           `json:"count"`
}

// EventOutput is one ledger event.
type EventOutput struct {
	Type      string         `json:"event_type"`
	Timestamp string         `json:"timestamp"`
	ID        string         `json:"id"`
	DocKey    string         `json:"doc_key"`
	Data      map[string]any `json:"data"`
}

// FingerprintInput is the input schema for the fingerprint tool.
type FingerprintInput struct {
	Content string `json:"content" jsonschema:"document content to digest exactly as given"`
}

// FingerprintOutput holds a content digest.
type FingerprintOutput struct {
	Fingerprint string `json:"fingerprint"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "lookup",
		Description: "Resolve a document key or alias to its identity card",
	}, s.handleLookup)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "card",
		Description: "Read the identity card for an identifier",
	}, s.handleCard)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "history",
		Description: "List ledger events for a document",
	}, s.handleHistory)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "fingerprint",
		Description: "Compute the content fingerprint of a document without recording it",
	}, s.handleFingerprint)
}

// handleLookup handles the lookup tool invocation.
func (s *Server) handleLookup(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input LookupInput,
) (*mcp.CallToolResult, CardOutput, error) {
	resolve := s.ports.Cards.Resolve
	if input.Follow {
		resolve = s.ports.Cards.Follow
	}
	card, err := resolve(ctx, input.Key)
	if err != nil {
		return nil, CardOutput{}, err
	}
	return nil, toCardOutput(card), nil
}

// handleCard handles the card tool invocation.
func (s *Server) handleCard(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CardInput,
) (*mcp.CallToolResult, CardOutput, error) {
	card, err := s.ports.Cards.Get(ctx, input.ID)
	if err != nil {
		return nil, CardOutput{}, err
	}
	return nil, toCardOutput(card), nil
}

// handleHistory handles the history tool invocation.
func (s *Server) handleHistory(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input HistoryInput,
) (*mcp.CallToolResult, HistoryOutput, error) {
	if s.ports.History == nil {
		return nil, HistoryOutput{}, errors.New("history is not available")
	}

	card, err := s.ports.Cards.Resolve(ctx, input.Key)
	if err != nil {
		return nil, HistoryOutput{}, err
	}

	filter := domain.EventFilter{ID: card.ID, Limit: input.Limit}
	if filter.Limit <= 0 {
		filter.Limit = defaultHistoryLimit
	}
	if input.Type != "" {
		filter.Type, err = domain.ParseEventType(input.Type)
		if err != nil {
			return nil, HistoryOutput{}, err
		}
	}

	events, err := s.ports.History.Events(ctx, filter)
	if err != nil {
		return nil, HistoryOutput{}, fmt.Errorf("reading history: %w", err)
	}

	output := HistoryOutput{
		ID:     card.ID,
		Events: make([]EventOutput, len(events)),
		Count:  len(events),
	}
	for i, e := range events {
		output.Events[i] = EventOutput{
			Type:      string(e.Type),
			Timestamp: e.Timestamp.UTC().Format(time.RFC3339),
			ID:        e.ID,
			DocKey:    e.DocKey,
			Data:      e.Data,
		}
	}
	return nil, output, nil
}

// handleFingerprint handles the fingerprint tool invocation.
func (s *Server) handleFingerprint(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input FingerprintInput,
) (*mcp.CallToolResult, FingerprintOutput, error) {
	if s.ports.Fingerprint == nil {
		return nil, FingerprintOutput{}, errors.New("fingerprinting is not available")
	}
	digest, err := s.ports.Fingerprint.UpdateFingerprint(ctx, "", []byte(input.Content))
	if err != nil {
		return nil, FingerprintOutput{}, err
	}
	return nil, FingerprintOutput{Fingerprint: digest}, nil
}

func toCardOutput(card *domain.Card) CardOutput {
	return CardOutput{
		ID:                card.ID,
		DocKey:            card.DocKey,
		SemVer:            card.SemVer,
		Status:            card.Status.String(),
		EffectiveDate:     card.EffectiveDate,
		Owner:             card.Owner,
		ContractType:      card.ContractType,
		Version:           card.Version,
		Aliases:           nonNil(card.Aliases),
		SupersedesVersion: deref(card.SupersedesVersion),
		MergedInto:        card.MergedIntoID(),
		Absorbs:           nonNil(card.Absorbs),
		Fingerprint:       card.FingerprintValue(),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
