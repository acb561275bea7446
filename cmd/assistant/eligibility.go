package main

import (
	"os/signal"
	"syscall"

	"medi-cal-assistant/internal/infrastructure/mcp"

	"github.com/spf13/cobra"
)

// newEligibilityCmd serves the rule table to the assistant over stdio. It is
// what the default AUX_SERVICES entry spawns.
func newEligibilityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "eligibility",
		Short: "Run the eligibility MCP server on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return mcp.ServeStdio(ctx, mcp.NewEligibilityServer(version))
		},
	}
}
