package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start an MCP server exposing the automation tools",
	Long: `Start a Model Context Protocol (MCP) server that exposes screenshot capture,
element identification, template matching, and action dispatch as tools, so
agents can drive the desktop without shell overhead.

Supported transports:
  stdio             Standard I/O (default, for MCP clients)
  streamable-http   Streamable HTTP transport (for remote agents)

Examples:
  llm-computeruse serve
  llm-computeruse serve --transport streamable-http --port 8080`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("transport", "stdio", "Transport: stdio, streamable-http")
	serveCmd.Flags().Int("port", 8080, "HTTP port for streamable-http transport")
}

func runServe(cmd *cobra.Command, args []string) error {
	transport, _ := cmd.Flags().GetString("transport")
	port, _ := cmd.Flags().GetInt("port")

	srv, err := newMCPServer()
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	return srv.serve(MCPConfig{Transport: transport, Port: port})
}
