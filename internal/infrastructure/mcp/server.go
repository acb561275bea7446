package mcp

import (
	"context"
	"encoding/json"

	"medi-cal-assistant/internal/domain/eligibility"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

const EligibilityTool = "check_medicaid_eligibility"

const eligibilityDescription = `Check a person's Medi-Cal (Medicaid) eligibility.
Any one of these qualifies: over 65, blind or disabled, pregnant, living in a nursing or
skilled nursing facility, under 21, a refugee temporarily in the U.S., a recipient of cervical
or breast cancer screening. Otherwise annual income must be at or below the limit for the
household size: 1: $20,783; 2: $28,208; 3: $35,632; 4: $43,056; 5: $50,481; add $7,425 for each
additional member. Missing inputs are reported back so they can be asked for.`

// NewEligibilityServer builds the MCP server exposing the eligibility rules.
func NewEligibilityServer(version string) *mcpsdk.Server {
	server := mcpsdk.NewServer(&mcpsdk.Implementation{Name: "medi-cal-eligibility", Version: version}, nil)
	server.AddTool(&mcpsdk.Tool{
		Name:        EligibilityTool,
		Description: eligibilityDescription,
		InputSchema: eligibilitySchema(),
	}, handleEligibility)
	return server
}

// ServeStdio runs the server on stdin/stdout until ctx ends or the client
// disconnects.
func ServeStdio(ctx context.Context, server *mcpsdk.Server) error {
	return server.Run(ctx, &mcpsdk.StdioTransport{})
}

func eligibilitySchema() map[string]any {
	flag := func(desc string) map[string]any {
		return map[string]any{"type": []string{"boolean", "string"}, "description": desc}
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"age":                        map[string]any{"type": []string{"integer", "string"}, "description": "Age in years"},
			"annual_income":              map[string]any{"type": []string{"number", "string"}, "description": "Household annual income in dollars"},
			"household_size":             map[string]any{"type": []string{"integer", "string"}, "description": "People in the household"},
			"blind_or_disabled":          flag("Blind or disabled"),
			"pregnant":                   flag("Pregnant"),
			"nursing_home":               flag("Lives in a nursing or skilled nursing facility"),
			"under_21":                   flag("Under 21"),
			"refugee":                    flag("Refugee temporarily in the U.S."),
			"cancer_screening_recipient": flag("Receives cervical or breast cancer screening"),
			"query":                      map[string]any{"type": "string", "description": "The user's own words, used for answers not given above"},
		},
	}
}

func handleEligibility(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
	args := map[string]any{}
	if len(req.Params.Arguments) > 0 {
		if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
			return &mcpsdk.CallToolResult{
				IsError: true,
				Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: "Invalid input: arguments must be a JSON object"}},
			}, nil
		}
	}

	verdict := eligibility.Evaluate(eligibility.WithQuery(args))
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: verdict.Message}},
		StructuredContent: map[string]any{
			"eligible": verdict.Eligible,
			"status":   string(verdict.Status),
			"message":  verdict.Message,
		},
	}, nil
}
