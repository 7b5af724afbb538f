package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for idledger resources.
	uriScheme = "idledger://"

	mimeJSON = "application/json"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for the whole registry.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "registry",
		Name:        "registry",
		Description: "Every identity with its current key and aliases",
		MIMEType:    mimeJSON,
	}, s.handleRegistryResource)

	// Template for a single card.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "cards/{id}",
		Name:        "card",
		Description: "Identity card for one identifier",
		MIMEType:    mimeJSON,
	}, s.handleCardResource)
}

// handleRegistryResource returns the registry in the json export format.
func (s *Server) handleRegistryResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Export == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	var buf bytes.Buffer
	if err := s.ports.Export.Export(ctx, "json", &buf); err != nil {
		return nil, fmt.Errorf("exporting registry: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: mimeJSON,
			Text:     buf.String(),
		}},
	}, nil
}

// handleCardResource returns one card as JSON.
func (s *Server) handleCardResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// Extract id from URI: idledger://cards/{id}
	id := extractCardID(req.Params.URI)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	card, err := s.ports.Cards.Get(ctx, id)
	if err != nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	data, err := json.MarshalIndent(toCardOutput(card), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling card: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: mimeJSON,
			Text:     string(data),
		}},
	}, nil
}

// extractCardID extracts the identifier from a URI like idledger://cards/{id}.
func extractCardID(uri string) string {
	const prefix = uriScheme + "cards/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
