package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/assetchat/internal/adapters/driving/mcp"
)

// serveMCP runs the server; replaced in tests.
var serveMCP = func(cmd *cobra.Command, server *mcp.Server, port int) error {
	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}
	return server.Run(cmd.Context())
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can ask
questions about the dataset.

Tools:      ask, search, reset_session
Resources:  assetchat://summary, assetchat://customers, assetchat://index

By default the server communicates over stdio. Use --port to serve over
HTTP instead.

Examples:
  assetchat mcp serve
  assetchat mcp serve --port 8080

Claude Desktop configuration (claude_desktop_config.json):
  {
    "mcpServers": {
      "assetchat": {
        "command": "/path/to/assetchat",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	rt, err := startApp(cmd, StartOptions{})
	if err != nil {
		return err
	}
	defer rt.Close()

	server, err := mcp.NewServer(&mcp.Ports{
		Sessions: rt.Sessions(),
		Index:    rt.Index(),
	})
	if err != nil {
		return err
	}

	return serveMCP(cmd, server, port)
}
