package cmd

import (
	"context"
	"fmt"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/soren-n/dusk/pkg/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve dusk's scan_directory/clear_cache tools over stdio as an MCP server",
	RunE: func(c *cobra.Command, args []string) error {
		ctx := context.Background()
		store, err := openStore(ctx)
		if err != nil {
			return fmt.Errorf("open cache: %w", err)
		}
		defer store.Close()

		s := mcpserver.NewMCPServer("dusk", rootCmd.Version)
		if err := mcp.RegisterAll(s, mcp.Config{Store: store}); err != nil {
			return fmt.Errorf("register tools: %w", err)
		}
		return mcpserver.ServeStdio(s)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
