package output

import (
	"context"

	"medi-cal-assistant/internal/domain/entity"
)

// DevicePort is the input device facade of one session. Coordinate actions
// add the session click offset when applyOffset is set and the backend is
// the simulated OS.
type DevicePort interface {
	Mode() entity.DeviceMode

	CaptureFrame(ctx context.Context) (*entity.Screenshot, error)
	Navigate(ctx context.Context, url string) error

	Move(ctx context.Context, p entity.Point) error
	Click(ctx context.Context, p entity.Point, applyOffset bool) error
	DoubleClick(ctx context.Context, p entity.Point, applyOffset bool) error
	TripleClick(ctx context.Context, p entity.Point, applyOffset bool) error
	RightClick(ctx context.Context, p entity.Point, applyOffset bool) error
	MiddleClick(ctx context.Context, p entity.Point, applyOffset bool) error
	TypeText(ctx context.Context, text string) error
	KeyPress(ctx context.Context, key string) error
	CursorPosition() entity.Point

	// ResolveNamedTarget returns the screen point for a logical field name
	// with its offset already applied.
	ResolveNamedTarget(name string) (entity.Point, bool)

	// HasActivePage reports whether a page-automation backend has a live page;
	// the two element methods below only work when it does.
	HasActivePage() bool
	ElementCenter(ctx context.Context, selector string) (entity.Point, bool, error)
	FillFirst(ctx context.Context, selectors []string, value string) (bool, error)

	Close() error
}

// DeviceFactory opens a device session for a new connection.
type DeviceFactory func(ctx context.Context) (DevicePort, error)
