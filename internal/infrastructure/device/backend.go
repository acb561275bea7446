package device

import (
	"context"
	"errors"

	"medi-cal-assistant/internal/domain/entity"
)

// ErrBackendUnavailable is returned when the selected backend cannot run in
// this build or environment.
var ErrBackendUnavailable = errors.New("device backend unavailable")

// Backend drives one input device.
type Backend interface {
	Capture(ctx context.Context) (*entity.Screenshot, error)
	Navigate(ctx context.Context, url string) error
	Move(ctx context.Context, p entity.Point) error
	Click(ctx context.Context, p entity.Point, button entity.MouseButton, count int) error
	Type(ctx context.Context, text string) error
	Key(ctx context.Context, key string) error
	Close() error
}

// PageBackend is a Backend bound to a controlled browser page.
type PageBackend interface {
	Backend
	HasActivePage() bool
	ElementCenter(ctx context.Context, selector string) (entity.Point, bool, error)
	FillFirst(ctx context.Context, selectors []string, value string) (bool, error)
}
