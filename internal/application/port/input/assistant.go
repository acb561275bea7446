package input

import (
	"context"

	"medi-cal-assistant/internal/domain/entity"
)

type Verbosity string

const (
	VerbosityNormal  Verbosity = "normal"
	VerbosityConcise Verbosity = "concise"
)

type TurnRequest struct {
	Text      string
	Lang      string
	Verbosity Verbosity
}

// TurnResult is either a plain Response or, for navigation short-circuits,
// an Action with its URL, Message and scripted Actions.
type TurnResult struct {
	Response   string
	Action     string
	URL        string
	Message    string
	Actions    []entity.ScriptedAction
	ModelCalls int
}

type TurnProcessor interface {
	ProcessTurn(ctx context.Context, session *Session, req TurnRequest) (*TurnResult, error)
}
