// Command sunbird serves content search and artifact resolution over HTTP,
// MCP stdio or as one-shot CLI calls.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/sunbird/internal/config"
	"github.com/kailas-cloud/sunbird/internal/version"
)

var envName string

var rootCmd = &cobra.Command{
	Use:           "sunbird",
	Short:         "Content search and artifact resolution gateway",
	Version:       version.String(),
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envName, "env", config.GetEnv(),
		"Environment; selects config/<env>.yaml")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(artifactsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
