// Package eligibility sends users who ask about Medi-Cal straight to the
// application page when the eligibility service says they qualify.
package eligibility

import (
	"context"
	"strings"

	"medi-cal-assistant/internal/application/port/input"
	"medi-cal-assistant/internal/application/port/output"
	"medi-cal-assistant/internal/domain/entity"
)

const (
	ServiceID = "eligibility"

	ActionOpenURL = "open_url"

	CanonicalHomeURL = "https://www.dhcs.ca.gov/Pages/myMedi-Cal.aspx"

	EligibleMessage = "**You appear to be eligible for Medi-Cal.** I'll open the Medi-Cal page and guide you through the application."

	applySelector = "a.apply, a.start, button.apply, button.start, a:contains('Apply for Medi-Cal')"
)

var (
	keywords     = []string{"medicaid", "medicare", "medcal", "medic-al", "medi-cal", "mymedi-cal", "medica", "medic"}
	placeholders = []string{"example.", "localhost", "127.0.0.1", "::1", "example-medical-home"}
)

// HomeURL returns the configured Medi-Cal home page, or the canonical DHCS
// page when the configured value is empty or a placeholder.
func HomeURL(configured string) string {
	low := strings.ToLower(strings.TrimSpace(configured))
	if low == "" {
		return CanonicalHomeURL
	}
	for _, p := range placeholders {
		if strings.Contains(low, p) {
			return CanonicalHomeURL
		}
	}
	return strings.TrimSpace(configured)
}

// Mentions reports whether the text names a Medi-Cal related program.
func Mentions(text string) bool {
	low := strings.ToLower(text)
	for _, k := range keywords {
		if strings.Contains(low, k) {
			return true
		}
	}
	return false
}

type Shortcut struct {
	registry output.ToolRegistry
	homeURL  string
	logger   output.LoggerPort
}

func NewShortcut(registry output.ToolRegistry, configuredHomeURL string, logger output.LoggerPort) *Shortcut {
	return &Shortcut{
		registry: registry,
		homeURL:  HomeURL(configuredHomeURL),
		logger:   logger,
	}
}

// Try asks the eligibility service about the query. It reports false,
// without error, whenever the user should continue with the normal flow.
func (s *Shortcut) Try(ctx context.Context, query string) (*input.TurnResult, bool) {
	if !Mentions(query) {
		return nil, false
	}
	tools := s.registry.ToolsForService(ServiceID)
	if len(tools) == 0 {
		return nil, false
	}

	outcome := s.registry.Invoke(ctx, tools[0], map[string]any{"query": query})
	if outcome.IsError() {
		s.logger.Warn("Eligibility check failed", "tool", tools[0], "error", outcome.Text)
		return nil, false
	}
	if !eligible(outcome) {
		s.logger.Debug("Eligibility check negative", "tool", tools[0], "result", outcome.Text)
		return nil, false
	}

	s.logger.Info("Eligible user, opening Medi-Cal page", "url", s.homeURL)
	return &input.TurnResult{
		Action:  ActionOpenURL,
		URL:     s.homeURL,
		Message: EligibleMessage,
		Actions: []entity.ScriptedAction{
			{Type: "navigate", Value: s.homeURL},
			{Type: "wait", Ms: 1000},
			{Type: "click", Selector: applySelector},
			{Type: "wait", Ms: 500},
		},
	}, true
}

// eligible prefers the structured flag; text-only services are read by
// their verdict prefix.
func eligible(outcome entity.ToolOutcome) bool {
	if _, ok := outcome.Fields["eligible"]; ok {
		return outcome.Bool("eligible")
	}
	return strings.HasPrefix(strings.TrimSpace(outcome.Text), "ELIGIBLE:")
}
