package main

import (
	"fmt"
	"strings"

	"medi-cal-assistant/internal/domain/eligibility"

	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	var query string
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Evaluate Medi-Cal eligibility locally",
		Example: `  assistant check --age 70 --household-size 1
  assistant check --age 40 --annual-income 40000 --household-size 4
  assistant check --query "I'm 34, pregnant, household of 2 making $30k"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			values := map[string]any{}
			if query != "" {
				values[eligibility.ArgQuery] = query
			}
			for _, name := range checkFlagNames() {
				if cmd.Flags().Changed(flagName(name)) {
					v, _ := cmd.Flags().GetString(flagName(name))
					values[name] = v
				}
			}
			verdict := eligibility.Evaluate(eligibility.WithQuery(values))
			fmt.Fprintln(cmd.OutOrStdout(), verdict.Message)
			return nil
		},
	}

	cmd.Flags().StringVar(&query, "query", "", "free-text description to read values from")
	cmd.Flags().String(flagName(eligibility.ArgAge), "", "applicant age in years")
	cmd.Flags().String(flagName(eligibility.ArgAnnualIncome), "", "household annual income in dollars")
	cmd.Flags().String(flagName(eligibility.ArgHouseholdSize), "", "number of people in the household")
	for _, f := range eligibility.Flags {
		cmd.Flags().String(flagName(f.Name), "", f.Reason+" (yes/no)")
	}
	return cmd
}

// checkFlagNames lists the rule arguments in validation order.
func checkFlagNames() []string {
	names := []string{eligibility.ArgAge, eligibility.ArgAnnualIncome, eligibility.ArgHouseholdSize}
	for _, f := range eligibility.Flags {
		names = append(names, f.Name)
	}
	return names
}

func flagName(arg string) string {
	return strings.ReplaceAll(arg, "_", "-")
}
