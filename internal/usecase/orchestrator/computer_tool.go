package orchestrator

import (
	"fmt"

	"medi-cal-assistant/internal/domain/entity"
)

const (
	DefaultDisplayWidth  = 1710
	DefaultDisplayHeight = 1107
)

// namedKeys are the inputs a left_click may use to name a form target.
var namedKeys = []string{"name", "field", "target", "logical"}

// ComputerTool describes the built-in device tool for a display of the
// given size.
func ComputerTool(width, height int) entity.ToolDefinition {
	actions := make([]string, 0, len(entity.DeviceActions))
	for _, a := range entity.DeviceActions {
		actions = append(actions, a.String())
	}

	return entity.ToolDefinition{
		Name: entity.ComputerTool,
		Description: fmt.Sprintf(
			"Use the mouse and keyboard on the user's screen. The display is %dx%d pixels; "+
				"coordinates are [x, y] from the top-left corner. For form fields prefer "+
				"left_click with a name such as address_line_1, city, state or zip.",
			width, height),
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"action": map[string]any{
					"type": "string",
					"enum": actions,
				},
				"coordinate": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "integer"},
					"minItems":    2,
					"maxItems":    2,
					"description": "Screen position [x, y] for mouse actions.",
				},
				"text": map[string]any{
					"type":        "string",
					"description": "Text to type, or the key combination for the key action (e.g. Return, ctrl+a).",
				},
				"name": map[string]any{
					"type":        "string",
					"description": "Logical form field to click instead of a coordinate.",
				},
				"selector": map[string]any{
					"type":        "string",
					"description": "CSS selector to click when a browser page is open.",
				},
			},
			"required": []string{"action"},
			"x-display": map[string]any{
				"width":  width,
				"height": height,
			},
		},
	}
}
