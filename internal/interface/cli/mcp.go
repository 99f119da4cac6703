package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/neilberkman/chronicler/cmd/chronicler/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "serve-mcp",
	Short: "Start MCP server for knowledge base access",
	Long: `Start an MCP (Model Context Protocol) server so an AI assistant can browse and
search your campaign's locations, plot threads and sessions.

Configure in your MCP client's config file:
  {
    "mcpServers": {
      "chronicler": {
        "command": "chronicler",
        "args": ["serve-mcp"]
      }
    }
  }
`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := mcp.StartServer(a.db, a.log); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}
