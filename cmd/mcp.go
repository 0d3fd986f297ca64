package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/loamworks/loam/internal/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the project tools over the Model Context Protocol",
	Long: `Run an MCP server on stdio exposing add_entity, add_link,
get_project_info, check_project_health, and generate_client, so coding
agents drive the project through the same code paths as the CLI.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		return mcpserver.New(cwd, version).ServeStdio()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
