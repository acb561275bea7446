package entity

// ComputerTool is the name of the built-in device tool advertised to the model.
const ComputerTool = "computer"

type DeviceAction string

const (
	ActionScreenshot     DeviceAction = "screenshot"
	ActionMouseMove      DeviceAction = "mouse_move"
	ActionLeftClick      DeviceAction = "left_click"
	ActionLeftClickDrag  DeviceAction = "left_click_drag"
	ActionRightClick     DeviceAction = "right_click"
	ActionMiddleClick    DeviceAction = "middle_click"
	ActionDoubleClick    DeviceAction = "double_click"
	ActionTripleClick    DeviceAction = "triple_click"
	ActionType           DeviceAction = "type"
	ActionKey            DeviceAction = "key"
	ActionCursorPosition DeviceAction = "cursor_position"
)

// DeviceActions lists every action the computer tool accepts, in the order
// they are advertised.
var DeviceActions = []DeviceAction{
	ActionScreenshot,
	ActionMouseMove,
	ActionLeftClick,
	ActionLeftClickDrag,
	ActionRightClick,
	ActionMiddleClick,
	ActionDoubleClick,
	ActionTripleClick,
	ActionType,
	ActionKey,
	ActionCursorPosition,
}

func (a DeviceAction) String() string {
	return string(a)
}

type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]any
}
