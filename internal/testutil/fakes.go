// Package testutil holds fakes shared by package tests.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"medi-cal-assistant/internal/application/port/output"
	"medi-cal-assistant/internal/domain/entity"
)

// NopLogger discards everything.
type NopLogger struct{}

var _ output.LoggerPort = NopLogger{}

func (NopLogger) Debug(string, ...any) {}
func (NopLogger) Info(string, ...any) {}
func (NopLogger) Warn(string, ...any) {}
func (NopLogger) Error(string, ...any) {}
func (l NopLogger) WithField(string, any) output.LoggerPort { return l }
func (l NopLogger) WithFields(map[string]any) output.LoggerPort { return l }
func (NopLogger) Close() error { return nil }

// FakeDevice records every action as a short string.
type FakeDevice struct {
	mu sync.Mutex

	DeviceMode entity.DeviceMode
	Targets    map[string]entity.Point
	ActivePage bool
	Elements   map[string]entity.Point
	Fields     map[string]string
	Frame      *entity.Screenshot
	FailWith   map[string]error

	Calls  []string
	Cursor entity.Point
	Closed bool
}

var _ output.DevicePort = (*FakeDevice)(nil)

func NewFakeDevice() *FakeDevice {
	return &FakeDevice{
		DeviceMode: entity.ModeBrowser,
		Targets:    make(map[string]entity.Point),
		Elements:   make(map[string]entity.Point),
		Fields:     make(map[string]string),
		FailWith:   make(map[string]error),
		Frame:      &entity.Screenshot{Data: []byte("png"), Format: "png", Width: 10, Height: 10},
	}
}

func (d *FakeDevice) record(op, format string, args ...any) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.FailWith[op]; err != nil {
		return err
	}
	d.Calls = append(d.Calls, op+" "+fmt.Sprintf(format, args...))
	return nil
}

func (d *FakeDevice) Mode() entity.DeviceMode { return d.DeviceMode }

func (d *FakeDevice) CaptureFrame(ctx context.Context) (*entity.Screenshot, error) {
	if err := d.record("capture", ""); err != nil {
		return nil, err
	}
	return d.Frame, nil
}

func (d *FakeDevice) Navigate(ctx context.Context, url string) error {
	return d.record("navigate", "%s", url)
}

func (d *FakeDevice) Move(ctx context.Context, p entity.Point) error {
	d.Cursor = p
	return d.record("move", "%s", p)
}

func (d *FakeDevice) click(op string, p entity.Point, applyOffset bool) error {
	d.Cursor = p
	return d.record(op, "%s offset=%t", p, applyOffset)
}

func (d *FakeDevice) Click(ctx context.Context, p entity.Point, applyOffset bool) error {
	return d.click("click", p, applyOffset)
}

func (d *FakeDevice) DoubleClick(ctx context.Context, p entity.Point, applyOffset bool) error {
	return d.click("double_click", p, applyOffset)
}

func (d *FakeDevice) TripleClick(ctx context.Context, p entity.Point, applyOffset bool) error {
	return d.click("triple_click", p, applyOffset)
}

func (d *FakeDevice) RightClick(ctx context.Context, p entity.Point, applyOffset bool) error {
	return d.click("right_click", p, applyOffset)
}

func (d *FakeDevice) MiddleClick(ctx context.Context, p entity.Point, applyOffset bool) error {
	return d.click("middle_click", p, applyOffset)
}

func (d *FakeDevice) TypeText(ctx context.Context, text string) error {
	return d.record("type", "%s", text)
}

func (d *FakeDevice) KeyPress(ctx context.Context, key string) error {
	return d.record("key", "%s", key)
}

func (d *FakeDevice) CursorPosition() entity.Point { return d.Cursor }

func (d *FakeDevice) ResolveNamedTarget(name string) (entity.Point, bool) {
	p, ok := d.Targets[name]
	return p, ok
}

func (d *FakeDevice) HasActivePage() bool { return d.ActivePage }

func (d *FakeDevice) ElementCenter(ctx context.Context, selector string) (entity.Point, bool, error) {
	if err := d.FailWith["element"]; err != nil {
		return entity.Point{}, false, err
	}
	p, ok := d.Elements[selector]
	return p, ok, nil
}

func (d *FakeDevice) FillFirst(ctx context.Context, selectors []string, value string) (bool, error) {
	if err := d.FailWith["fill"]; err != nil {
		return false, err
	}
	for _, sel := range selectors {
		if _, ok := d.Fields[sel]; ok {
			d.Fields[sel] = value
			return true, d.record("fill", "%s=%s", sel, value)
		}
	}
	return false, nil
}

func (d *FakeDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Closed = true
	return nil
}

func (d *FakeDevice) IsClosed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Closed
}

// Ops returns the recorded operations without their arguments.
func (d *FakeDevice) Ops() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	ops := make([]string, 0, len(d.Calls))
	for _, c := range d.Calls {
		op, _, _ := strings.Cut(c, " ")
		ops = append(ops, op)
	}
	return ops
}

// ScriptedLLM replays Responses in order and repeats the last one when the
// script runs out.
type ScriptedLLM struct {
	Responses []entity.Turn
	Err       error
	Requests  []output.ChatRequest
}

var _ output.LLMPort = (*ScriptedLLM)(nil)

func (m *ScriptedLLM) Chat(ctx context.Context, req output.ChatRequest) (*output.ChatResponse, error) {
	turns := make([]entity.Turn, len(req.Turns))
	copy(turns, req.Turns)
	req.Turns = turns
	m.Requests = append(m.Requests, req)
	if m.Err != nil {
		return nil, m.Err
	}
	if len(m.Responses) == 0 {
		return &output.ChatResponse{Turn: entity.AssistantText("")}, nil
	}
	idx := len(m.Requests) - 1
	if idx >= len(m.Responses) {
		idx = len(m.Responses) - 1
	}
	return &output.ChatResponse{Turn: m.Responses[idx]}, nil
}

// ToolCallTurn builds an assistant turn requesting the computer tool.
func ToolCallTurn(id string, input map[string]any, text string) entity.Turn {
	turn := entity.Turn{Role: entity.RoleAssistant}
	if text != "" {
		turn.Parts = append(turn.Parts, entity.TextPart(text))
	}
	turn.Parts = append(turn.Parts, entity.ToolUsePart(entity.ToolCall{ID: id, Name: entity.ComputerTool, Input: input}))
	return turn
}

// FakeConnector serves canned outcomes per tool name.
type FakeConnector struct {
	Tools    []string
	Outcomes map[string]entity.ToolOutcome
	Err      error
	Calls    []map[string]any
	Closed   bool
}

var _ output.AuxiliaryConnector = (*FakeConnector)(nil)

func (c *FakeConnector) ListTools(ctx context.Context) ([]string, error) {
	return c.Tools, nil
}

func (c *FakeConnector) CallTool(ctx context.Context, name string, args map[string]any) (entity.ToolOutcome, error) {
	c.Calls = append(c.Calls, args)
	if c.Err != nil {
		return entity.ToolOutcome{}, c.Err
	}
	return c.Outcomes[name], nil
}

func (c *FakeConnector) Close() error {
	c.Closed = true
	return nil
}
