package entity

import "fmt"

type OutcomeKind string

const (
	OutcomeText  OutcomeKind = "text"
	OutcomeImage OutcomeKind = "image"
	OutcomeError OutcomeKind = "error"
)

// ToolOutcome is the normalized result of any tool invocation, whether it
// ran on the device or on an auxiliary service.
type ToolOutcome struct {
	Kind   OutcomeKind
	Text   string
	Image  *Image
	Fields map[string]any
}

func TextOutcome(format string, args ...any) ToolOutcome {
	return ToolOutcome{Kind: OutcomeText, Text: fmt.Sprintf(format, args...)}
}

func ImageOutcome(img Image) ToolOutcome {
	return ToolOutcome{Kind: OutcomeImage, Image: &img}
}

func ErrorOutcome(format string, args ...any) ToolOutcome {
	return ToolOutcome{Kind: OutcomeError, Text: fmt.Sprintf(format, args...)}
}

func (o ToolOutcome) IsError() bool {
	return o.Kind == OutcomeError
}

// Bool reads a boolean field, tolerating "true"/"false" strings.
func (o ToolOutcome) Bool(key string) bool {
	switch v := o.Fields[key].(type) {
	case bool:
		return v
	case string:
		return v == "true" || v == "True"
	default:
		return false
	}
}
