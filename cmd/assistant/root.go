package main

import "github.com/spf13/cobra"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "assistant",
		Short: "Medi-Cal application form-filling assistant",
		Long: `Helps a user complete a Medi-Cal application by combining a model
tool-use loop with simulated mouse and keyboard input.

  assistant serve          start the websocket server
  assistant eligibility    run the eligibility MCP server on stdio
  assistant check          evaluate eligibility locally`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	root.AddCommand(newServeCmd(), newEligibilityCmd(), newCheckCmd())
	return root
}
