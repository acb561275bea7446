// Package heuristics short-circuits turns whose structured answers can be
// typed into the form without asking the model.
package heuristics

import (
	"context"

	"medi-cal-assistant/internal/application/port/input"
	"medi-cal-assistant/internal/application/port/output"
	"medi-cal-assistant/internal/domain/entity"
)

// Input is what a matcher sees of the current turn.
type Input struct {
	Query string
	// Asked is the text of the assistant turn preceding the user's reply.
	Asked    string
	Device   output.DevicePort
	Progress *entity.FormProgress
	Logger   output.LoggerPort
}

// FromSession builds the matcher input for a query whose user turn was
// already appended to the session conversation.
func FromSession(s *input.Session, query string) Input {
	return Input{
		Query:    query,
		Asked:    s.Conversation.LastAssistantText(s.Conversation.Len() - 1),
		Device:   s.Device,
		Progress: s.Progress,
		Logger:   s.Logger,
	}
}

func (in Input) withProgress() Input {
	if in.Progress == nil {
		in.Progress = entity.NewFormProgress()
	}
	return in
}

type Outcome struct {
	Reply   string
	matched bool
}

func Declined() Outcome {
	return Outcome{}
}

func Matched(reply string) Outcome {
	return Outcome{Reply: reply, matched: true}
}

func (o Outcome) OK() bool {
	return o.matched
}

type Matcher interface {
	Match(ctx context.Context, in Input) Outcome
}

// Chain tries matchers in order and stops at the first match.
type Chain struct {
	matchers []Matcher
}

var _ Matcher = (*Chain)(nil)

func NewChain(matchers ...Matcher) *Chain {
	return &Chain{matchers: matchers}
}

// Default is the full-name, single-field, multi-field chain.
func Default() *Chain {
	return NewChain(FullName{}, SingleField{}, MultiField{})
}

func (c *Chain) Match(ctx context.Context, in Input) Outcome {
	in = in.withProgress()
	for _, m := range c.matchers {
		if out := m.Match(ctx, in); out.OK() {
			return out
		}
	}
	return Declined()
}
