package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"math"

	"medi-cal-assistant/internal/application/port/output"
	"medi-cal-assistant/internal/domain/entity"
)

var (
	errNoDevice        = errors.New("no device session")
	errInvalidPosition = errors.New("coordinate must be [x, y]")
)

// dispatchResult tells the loop whether the action entered data into the
// form, which ends the turn without another model call.
type dispatchResult struct {
	outcome entity.ToolOutcome
	filled  bool
}

func (uc *UseCase) dispatch(ctx context.Context, dev output.DevicePort, call entity.ToolCall) dispatchResult {
	if call.Name != entity.ComputerTool {
		return dispatchResult{outcome: uc.registry.Invoke(ctx, call.Name, call.Input)}
	}

	action, _ := call.Input["action"].(string)
	res, err := runAction(ctx, dev, entity.DeviceAction(action), call.Input)
	if err != nil {
		uc.logger.Warn("Device action failed", "action", action, "error", err)
		return dispatchResult{outcome: entity.ErrorOutcome("Error executing %s: %v", action, err)}
	}
	return res
}

func runAction(ctx context.Context, dev output.DevicePort, action entity.DeviceAction, in map[string]any) (dispatchResult, error) {
	if dev == nil {
		return dispatchResult{}, errNoDevice
	}

	text := func(format string, args ...any) (dispatchResult, error) {
		return dispatchResult{outcome: entity.TextOutcome(format, args...)}, nil
	}

	switch action {
	case entity.ActionScreenshot:
		shot, err := dev.CaptureFrame(ctx)
		if err != nil {
			return dispatchResult{}, err
		}
		return dispatchResult{outcome: entity.ImageOutcome(entity.Image{MediaType: shot.MediaType(), Data: shot.Data})}, nil

	case entity.ActionLeftClick:
		return leftClick(ctx, dev, in)

	case entity.ActionType:
		s, _ := in["text"].(string)
		if err := dev.TypeText(ctx, s); err != nil {
			return dispatchResult{}, err
		}
		return dispatchResult{outcome: entity.TextOutcome("Typed: %s", s), filled: true}, nil

	case entity.ActionKey:
		key, _ := in["text"].(string)
		if err := dev.KeyPress(ctx, key); err != nil {
			return dispatchResult{}, err
		}
		return text("Pressed key: %s", key)

	case entity.ActionCursorPosition:
		return text("Cursor position: %s", dev.CursorPosition())
	}

	pointer := map[entity.DeviceAction]struct {
		do    func(context.Context, entity.Point) error
		label string
	}{
		entity.ActionMouseMove:     {dev.Move, "Moved mouse to"},
		entity.ActionLeftClickDrag: {withOffset(dev.Click), "Drag clicked at"},
		entity.ActionRightClick:    {withOffset(dev.RightClick), "Right clicked at"},
		entity.ActionMiddleClick:   {withOffset(dev.MiddleClick), "Middle clicked at"},
		entity.ActionDoubleClick:   {withOffset(dev.DoubleClick), "Double clicked at"},
		entity.ActionTripleClick:   {withOffset(dev.TripleClick), "Triple clicked at"},
	}
	op, ok := pointer[action]
	if !ok {
		return text("Unknown action: %s", action)
	}
	p, err := coordinate(in)
	if err != nil {
		return dispatchResult{}, err
	}
	if err := op.do(ctx, p); err != nil {
		return dispatchResult{}, err
	}
	return text("%s %s", op.label, p)
}

func withOffset(click func(context.Context, entity.Point, bool) error) func(context.Context, entity.Point) error {
	return func(ctx context.Context, p entity.Point) error {
		return click(ctx, p, true)
	}
}

// leftClick tries a named form target, then a CSS selector on the open
// page, then the raw coordinate.
func leftClick(ctx context.Context, dev output.DevicePort, in map[string]any) (dispatchResult, error) {
	for _, key := range namedKeys {
		name, _ := in[key].(string)
		if name == "" {
			continue
		}
		if p, ok := dev.ResolveNamedTarget(name); ok {
			if err := dev.Click(ctx, p, false); err != nil {
				return dispatchResult{}, err
			}
			return dispatchResult{outcome: entity.TextOutcome("Clicked named target %s at %s", name, p), filled: true}, nil
		}
		break
	}

	selector, _ := in["selector"].(string)
	if selector == "" || !dev.HasActivePage() {
		return rawClick(ctx, dev, in, "")
	}

	center, found, err := dev.ElementCenter(ctx, selector)
	switch {
	case err != nil:
		return rawClick(ctx, dev, in, fmt.Sprintf(" after selector attempt failed: %v", err))
	case !found:
		return rawClick(ctx, dev, in, " (selector not found)")
	}
	if err := dev.Click(ctx, center, false); err != nil {
		return dispatchResult{}, err
	}
	return dispatchResult{outcome: entity.TextOutcome("Clicked selector %s at center %s", selector, center), filled: true}, nil
}

func rawClick(ctx context.Context, dev output.DevicePort, in map[string]any, suffix string) (dispatchResult, error) {
	p, err := coordinate(in)
	if err != nil {
		return dispatchResult{}, err
	}
	if err := dev.Click(ctx, p, true); err != nil {
		return dispatchResult{}, err
	}
	return dispatchResult{outcome: entity.TextOutcome("Clicked at %s%s", p, suffix)}, nil
}

// coordinate reads the [x, y] input; a missing coordinate is the origin.
func coordinate(in map[string]any) (entity.Point, error) {
	raw, ok := in["coordinate"]
	if !ok || raw == nil {
		return entity.Point{}, nil
	}

	var xy []float64
	switch v := raw.(type) {
	case []any:
		for _, n := range v {
			f, ok := number(n)
			if !ok {
				return entity.Point{}, errInvalidPosition
			}
			xy = append(xy, f)
		}
	case []int:
		for _, n := range v {
			xy = append(xy, float64(n))
		}
	case []float64:
		xy = v
	default:
		return entity.Point{}, errInvalidPosition
	}
	if len(xy) != 2 {
		return entity.Point{}, errInvalidPosition
	}
	return entity.Point{X: int(math.Round(xy[0])), Y: int(math.Round(xy[1]))}, nil
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
