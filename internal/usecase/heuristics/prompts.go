package heuristics

import (
	"context"
	"fmt"
	"time"

	"medi-cal-assistant/internal/application/port/output"
	"medi-cal-assistant/internal/domain/entity"
)

const anythingElse = "What else can I help with?"

var fieldQuestions = map[entity.FormField]string{
	entity.FieldAddress: "What's the street address (Address Line 1)?",
	entity.FieldCity:    "What's the city?",
	entity.FieldZip:     "What's the ZIP/postal code?",
}

// fillPause lets the field take focus between the select and the typing.
var fillPause = 50 * time.Millisecond

// NextPrompt asks for the first address field not yet filled.
func NextPrompt(progress *entity.FormProgress) string {
	if progress == nil {
		return fieldQuestions[entity.FieldAddress]
	}
	if f, ok := progress.NextMissing(); ok {
		return fieldQuestions[f]
	}
	return anythingElse
}

// fillField selects the field's current content through its named target
// and types value over it. It reports false when the target is unknown.
func fillField(ctx context.Context, dev output.DevicePort, field entity.FormField, value string) (bool, error) {
	pt, ok := dev.ResolveNamedTarget(field.Target())
	if !ok {
		return false, nil
	}
	if err := dev.TripleClick(ctx, pt, false); err != nil {
		return false, fmt.Errorf("select %s: %w", field, err)
	}

	timer := time.NewTimer(fillPause)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case <-timer.C:
	}

	if err := dev.TypeText(ctx, value); err != nil {
		return false, fmt.Errorf("type %s: %w", field, err)
	}
	return true, nil
}

func logDecline(in Input, matcher string, err error) {
	if in.Logger != nil {
		in.Logger.Debug("Heuristic declined", "matcher", matcher, "error", err)
	}
}
