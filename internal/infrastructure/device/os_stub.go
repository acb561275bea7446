//go:build !desktop

package device

import (
	"fmt"

	"medi-cal-assistant/internal/application/port/output"
)

// NewOSBackend is unavailable without the desktop build tag.
func NewOSBackend(logger output.LoggerPort) (Backend, error) {
	return nil, fmt.Errorf("%w: simulated OS input is not compiled in; rebuild with -tags desktop or set DEVICE_BACKEND=browser", ErrBackendUnavailable)
}
