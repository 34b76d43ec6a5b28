package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragdex/internal/adapters/driving/mcp"
)

var (
	serveMCP  bool
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the corpus to AI assistants",
	Long: `Starts the Model Context Protocol (MCP) server exposing the search
and sync tools.

By default the server communicates over stdio using JSON-RPC and can
be used with Claude Desktop and other MCP-compatible AI assistants.
Use --port to serve over HTTP instead.

Examples:
  # Stdio mode (default, for Claude Desktop)
  ragdex serve --mcp

  # HTTP mode (for MCP Inspector, remote access)
  ragdex serve --mcp --port 8080

Claude Desktop configuration (claude_desktop_config.json):
  {
    "mcpServers": {
      "ragdex": {
        "command": "/path/to/ragdex",
        "args": ["serve", "--mcp"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveMCP, "mcp", false, "serve the Model Context Protocol")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "HTTP port (0 = use stdio)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if !serveMCP {
		return errors.New("no transport selected, pass --mcp")
	}
	if ragService == nil {
		return errors.New("rag service not configured")
	}

	server, err := mcp.NewServer(&mcp.Ports{Rag: ragService})
	if err != nil {
		return err
	}

	if servePort > 0 {
		addr := fmt.Sprintf(":%d", servePort)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}
	return server.Run(cmd.Context())
}
