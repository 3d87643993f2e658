package cmd

import (
	"github.com/SamuelRCrider/luhny/core"
	"github.com/SamuelRCrider/luhny/mcpserver"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve masking tools over MCP on stdio",
	Long: `Run a Model Context Protocol server on stdin/stdout.

Tools:
  mask_card_numbers     mask card numbers in the "text" argument
  validate_card_number  check the "number" argument with the Luhn algorithm

Logs go to stderr so they never mix with protocol messages.`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	audit, err := core.NewAuditLoggerFromPolicy(policy)
	if err != nil {
		return err
	}
	if audit != nil {
		defer audit.Close()
	}

	srv := mcpserver.New(&mcpserver.Config{Version: versionStr}, policy, audit, logger)
	return srv.ServeStdio()
}
