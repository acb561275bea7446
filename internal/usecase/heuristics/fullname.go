package heuristics

import (
	"context"
	"fmt"
	"strings"
)

const maxNameLen = 120

var (
	firstNameSelectors = attributeSelectors("first", "given")
	lastNameSelectors  = attributeSelectors("last", "surname", "family")
)

func attributeSelectors(words ...string) []string {
	var sels []string
	for _, attr := range []string{"name", "id", "placeholder", "aria-label"} {
		for _, w := range words {
			sels = append(sels, fmt.Sprintf("input[%s*='%s' i]", attr, w))
		}
	}
	return sels
}

// FullName answers a first-name question with a "First Last" reply,
// filling both name inputs when a page is open.
type FullName struct{}

func (FullName) Match(ctx context.Context, in Input) Outcome {
	query := strings.TrimSpace(in.Query)
	tokens := strings.Fields(query)
	if len(tokens) < 2 || len(query) >= maxNameLen || !asksFirstName(in.Asked) {
		return Declined()
	}
	first, last := tokens[0], strings.Join(tokens[1:], " ")

	filled := false
	if in.Device != nil && in.Device.HasActivePage() {
		for _, f := range []struct {
			selectors []string
			value     string
		}{
			{firstNameSelectors, first},
			{lastNameSelectors, last},
		} {
			ok, err := in.Device.FillFirst(ctx, f.selectors, f.value)
			if err != nil {
				logDecline(in, "full_name_fill", err)
				continue
			}
			filled = filled || ok
		}
	}

	if filled {
		return Matched(fmt.Sprintf("Auto-filled first name: %s and last name: %s. %s", first, last, anythingElse))
	}
	return Matched(fmt.Sprintf("Received first and last name. First name: %s; Last name: %s. %s", first, last, anythingElse))
}

func asksFirstName(asked string) bool {
	low := strings.ToLower(asked)
	return strings.Contains(low, "first name") ||
		strings.Contains(low, "given name") ||
		strings.Contains(low, "what is your first") ||
		(strings.Contains(low, "your name") && strings.Contains(low, "first"))
}
