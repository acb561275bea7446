package device

import (
	"context"
	"fmt"
	"sync"

	"medi-cal-assistant/internal/application/port/output"
	"medi-cal-assistant/internal/domain/entity"
)

var _ output.DevicePort = (*Facade)(nil)

type Config struct {
	Mode   entity.DeviceMode
	Offset entity.Point
	Debug  bool
}

// Facade is the device session of one connection.
type Facade struct {
	mode    entity.DeviceMode
	backend Backend
	page    PageBackend
	targets *TargetTable
	offset  entity.Point
	debug   bool
	logger  output.LoggerPort

	mu     sync.Mutex
	cursor entity.Point
	closed bool
}

func NewFacade(cfg Config, backend Backend, targets *TargetTable, logger output.LoggerPort) *Facade {
	f := &Facade{
		mode:    cfg.Mode,
		backend: backend,
		targets: targets,
		offset:  cfg.Offset,
		debug:   cfg.Debug,
		logger:  logger.WithField("device", string(cfg.Mode)),
	}
	if page, ok := backend.(PageBackend); ok {
		f.page = page
	}
	return f
}

func (f *Facade) Mode() entity.DeviceMode {
	return f.mode
}

func (f *Facade) CaptureFrame(ctx context.Context) (*entity.Screenshot, error) {
	shot, err := f.backend.Capture(ctx)
	if err != nil {
		return nil, fmt.Errorf("capture frame: %w", err)
	}
	return shot, nil
}

func (f *Facade) Navigate(ctx context.Context, url string) error {
	if err := f.backend.Navigate(ctx, url); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	return nil
}

func (f *Facade) Move(ctx context.Context, p entity.Point) error {
	if err := f.backend.Move(ctx, p); err != nil {
		return fmt.Errorf("move pointer: %w", err)
	}
	f.setCursor(p)
	return nil
}

func (f *Facade) Click(ctx context.Context, p entity.Point, applyOffset bool) error {
	return f.press(ctx, p, entity.ButtonLeft, 1, applyOffset)
}

func (f *Facade) DoubleClick(ctx context.Context, p entity.Point, applyOffset bool) error {
	return f.press(ctx, p, entity.ButtonLeft, 2, applyOffset)
}

func (f *Facade) TripleClick(ctx context.Context, p entity.Point, applyOffset bool) error {
	return f.press(ctx, p, entity.ButtonLeft, 3, applyOffset)
}

func (f *Facade) RightClick(ctx context.Context, p entity.Point, applyOffset bool) error {
	return f.press(ctx, p, entity.ButtonRight, 1, applyOffset)
}

func (f *Facade) MiddleClick(ctx context.Context, p entity.Point, applyOffset bool) error {
	return f.press(ctx, p, entity.ButtonMiddle, 1, applyOffset)
}

// press applies the session offset only on the simulated OS; page
// coordinates are already relative to the viewport.
func (f *Facade) press(ctx context.Context, p entity.Point, button entity.MouseButton, count int, applyOffset bool) error {
	target := p
	if applyOffset && f.mode == entity.ModeOS {
		target = p.Add(f.offset)
	}
	if f.debug {
		f.logger.Debug("Click", "button", button, "count", count, "requested", p.String(), "actual", target.String())
	}
	if err := f.backend.Click(ctx, target, button, count); err != nil {
		return fmt.Errorf("%s click x%d at %s: %w", button, count, target, err)
	}
	f.setCursor(target)
	return nil
}

func (f *Facade) TypeText(ctx context.Context, text string) error {
	if err := f.backend.Type(ctx, text); err != nil {
		return fmt.Errorf("type text: %w", err)
	}
	return nil
}

func (f *Facade) KeyPress(ctx context.Context, key string) error {
	if err := f.backend.Key(ctx, key); err != nil {
		return fmt.Errorf("press key %q: %w", key, err)
	}
	return nil
}

func (f *Facade) CursorPosition() entity.Point {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cursor
}

func (f *Facade) setCursor(p entity.Point) {
	f.mu.Lock()
	f.cursor = p
	f.mu.Unlock()
}

func (f *Facade) ResolveNamedTarget(name string) (entity.Point, bool) {
	p, ok := f.targets.Resolve(name)
	if f.debug {
		f.logger.Debug("Resolve named target", "name", name, "found", ok, "point", p.String())
	}
	return p, ok
}

func (f *Facade) HasActivePage() bool {
	return f.page != nil && f.page.HasActivePage()
}

func (f *Facade) ElementCenter(ctx context.Context, selector string) (entity.Point, bool, error) {
	if !f.HasActivePage() {
		return entity.Point{}, false, nil
	}
	return f.page.ElementCenter(ctx, selector)
}

func (f *Facade) FillFirst(ctx context.Context, selectors []string, value string) (bool, error) {
	if !f.HasActivePage() {
		return false, nil
	}
	return f.page.FillFirst(ctx, selectors, value)
}

// Close releases the backend. Safe to call more than once.
func (f *Facade) Close() error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	f.closed = true
	f.mu.Unlock()
	return f.backend.Close()
}
