package entity

import "strings"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

type PartType string

const (
	PartText       PartType = "text"
	PartToolUse    PartType = "tool_use"
	PartToolResult PartType = "tool_result"
	PartImage      PartType = "image"
)

// Part is one typed element of a Turn. Exactly one of the payload fields
// is set, matching Type.
type Part struct {
	Type       PartType
	Text       string
	ToolUse    *ToolCall
	ToolResult *ToolResult
	Image      *Image
}

type ToolCall struct {
	ID    string
	Name  string
	Input map[string]any
}

type ToolResult struct {
	CallID  string
	Outcome ToolOutcome
}

type Image struct {
	MediaType string
	Data      []byte
}

type Turn struct {
	Role  Role
	Parts []Part
}

func TextPart(text string) Part {
	return Part{Type: PartText, Text: text}
}

func ToolUsePart(call ToolCall) Part {
	return Part{Type: PartToolUse, ToolUse: &call}
}

func ToolResultPart(callID string, outcome ToolOutcome) Part {
	return Part{Type: PartToolResult, ToolResult: &ToolResult{CallID: callID, Outcome: outcome}}
}

func UserText(text string) Turn {
	return Turn{Role: RoleUser, Parts: []Part{TextPart(text)}}
}

func AssistantText(text string) Turn {
	return Turn{Role: RoleAssistant, Parts: []Part{TextPart(text)}}
}

// Text joins the turn's text parts with newlines.
func (t Turn) Text() string {
	var texts []string
	for _, p := range t.Parts {
		if p.Type == PartText && p.Text != "" {
			texts = append(texts, p.Text)
		}
	}
	return strings.Join(texts, "\n")
}

func (t Turn) ToolCalls() []ToolCall {
	var calls []ToolCall
	for _, p := range t.Parts {
		if p.Type == PartToolUse && p.ToolUse != nil {
			calls = append(calls, *p.ToolUse)
		}
	}
	return calls
}

// Conversation is the ordered turn history of a single session.
type Conversation struct {
	Turns []Turn
}

func (c *Conversation) Append(turns ...Turn) {
	c.Turns = append(c.Turns, turns...)
}

func (c *Conversation) Len() int {
	return len(c.Turns)
}

// LastAssistantText returns the text of the most recent assistant turn
// that has any, looking only at the first `before` turns.
func (c *Conversation) LastAssistantText(before int) string {
	if before > len(c.Turns) {
		before = len(c.Turns)
	}
	for i := before - 1; i >= 0; i-- {
		if c.Turns[i].Role != RoleAssistant {
			continue
		}
		if text := c.Turns[i].Text(); text != "" {
			return text
		}
	}
	return ""
}

// ReplaceLastText swaps the text parts of the final turn for a single
// text part. No-op when the conversation is empty.
func (c *Conversation) ReplaceLastText(text string) {
	if len(c.Turns) == 0 {
		return
	}
	last := &c.Turns[len(c.Turns)-1]
	parts := make([]Part, 0, len(last.Parts))
	for _, p := range last.Parts {
		if p.Type != PartText {
			parts = append(parts, p)
		}
	}
	last.Parts = append(parts, TextPart(text))
}
