package main

import (
	"github.com/spf13/cobra"

	mcpTransport "github.com/kailas-cloud/sunbird/internal/transport/mcp"
	"github.com/kailas-cloud/sunbird/internal/version"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the content tools over MCP stdio",
	Long: `Registers search_<source>_content and read_<source>_content for every
configured source and serves them on stdin/stdout. Logs go to stderr.`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func runMCP(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd.Context(), envName, true)
	if err != nil {
		return err
	}
	defer a.close()

	s := mcpTransport.New(a.cfg.MCP.Name, version.Version, a.sources, a.logger)
	a.logger.Info("Serving MCP over stdio")
	return mcpTransport.ServeStdio(s) //nolint:wrapcheck // already wrapped
}
