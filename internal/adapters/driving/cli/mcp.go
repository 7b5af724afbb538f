package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/idledger/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server on stdio.

The server is read-only. It exposes the lookup, card, history and
fingerprint tools and the idledger://registry resource.

Client configuration:
  {
    "mcpServers": {
      "idledger": {
        "command": "/path/to/idledger",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	ports := &mcp.Ports{
		Cards:       cardService,
		History:     historyService,
		Export:      exportService,
		Fingerprint: lifecycle,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}
	return server.Run(cmd.Context())
}
