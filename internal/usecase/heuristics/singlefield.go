package heuristics

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"medi-cal-assistant/internal/domain/entity"
	"medi-cal-assistant/internal/usecase/textfmt"
)

const maxCityLen = 100

var (
	digitRun    = regexp.MustCompile(`\d+`)
	zipDigitRun = regexp.MustCompile(`\d{3,10}`)
	wordToken   = regexp.MustCompile(`[a-z]+`)

	streetWords = map[string]bool{
		"street": true, "st": true, "ave": true, "road": true, "rd": true,
		"lane": true, "ln": true, "blvd": true, "drive": true, "dr": true,
	}
	askWords = []string{"what", "?", "please", "enter", "provide"}
)

// SingleField fills the one address field the assistant just asked for.
type SingleField struct{}

func (SingleField) Match(ctx context.Context, in Input) Outcome {
	in = in.withProgress()
	field, ok := AskedField(in.Asked)
	if !ok || in.Device == nil {
		return Declined()
	}
	value := strings.TrimSpace(in.Query)
	if !validFor(field, value) {
		return Declined()
	}

	filled, err := fillField(ctx, in.Device, field, value)
	if err != nil || !filled {
		logDecline(in, "single_field", err)
		return Declined()
	}
	in.Progress.MarkFilled(field)
	return Matched(fmt.Sprintf("Auto-filled %s: %s. %s", field, value, NextPrompt(in.Progress)))
}

// AskedField finds the address field requested by the last question in an
// assistant message. A message without any question is matched as a whole,
// so a request followed by a closing remark still counts.
func AskedField(asked string) (entity.FormField, bool) {
	last, question := lastQuestion(asked)
	if f, ok := requestedField(strings.ToLower(last)); ok {
		return f, true
	}
	if question {
		return "", false
	}
	return requestedField(strings.ToLower(asked))
}

func requestedField(low string) (entity.FormField, bool) {
	if strings.TrimSpace(low) == "" {
		return "", false
	}
	for _, f := range entity.AddressFields {
		if strings.Contains(low, string(f)) && containsAny(low, askWords) {
			return f, true
		}
	}
	if strings.Contains(low, "city") && (strings.Contains(low, "what") || strings.Contains(low, "?")) {
		return entity.FieldCity, true
	}
	if strings.Contains(low, "zip") || strings.Contains(low, "postal code") {
		return entity.FieldZip, true
	}
	return "", false
}

// lastQuestion returns the last sentence ending in '?', or the last
// sentence when none does. The flag reports whether a question was found.
func lastQuestion(text string) (string, bool) {
	sentences := textfmt.SplitSentences(strings.TrimSpace(text))
	for i := len(sentences) - 1; i >= 0; i-- {
		if strings.HasSuffix(strings.TrimSpace(sentences[i]), "?") {
			return sentences[i], true
		}
	}
	if len(sentences) == 0 {
		return "", false
	}
	return sentences[len(sentences)-1], false
}

func validFor(field entity.FormField, value string) bool {
	if value == "" {
		return false
	}
	switch field {
	case entity.FieldZip:
		return zipDigitRun.MatchString(value)
	case entity.FieldCity:
		return len(value) <= maxCityLen && !strings.HasSuffix(value, "?")
	default:
		if digitRun.MatchString(value) {
			return true
		}
		for _, tok := range wordToken.FindAllString(strings.ToLower(value), -1) {
			if streetWords[tok] {
				return true
			}
		}
		return false
	}
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
