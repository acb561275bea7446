//go:build desktop

package device

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"medi-cal-assistant/internal/application/port/output"
	"medi-cal-assistant/internal/domain/entity"

	"github.com/disintegration/imaging"
	"github.com/go-vgo/robotgo"
	"github.com/pkg/browser"
)

const clickPause = 60 * time.Millisecond

var robotButtons = map[entity.MouseButton]string{
	entity.ButtonLeft:   "left",
	entity.ButtonRight:  "right",
	entity.ButtonMiddle: "center",
}

type osBackend struct {
	logger output.LoggerPort
}

// NewOSBackend injects input at the operating system level and captures
// the whole primary display.
func NewOSBackend(logger output.LoggerPort) (Backend, error) {
	w, h := robotgo.GetScreenSize()
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("%w: no display detected", ErrBackendUnavailable)
	}
	logger.Info("Simulated OS backend ready", "width", w, "height", h)
	return &osBackend{logger: logger}, nil
}

// Capture scales the frame to the logical screen size so that coordinates
// read from the image match injected pointer coordinates on HiDPI screens.
func (b *osBackend) Capture(ctx context.Context) (*entity.Screenshot, error) {
	img, err := robotgo.CaptureImg()
	if err != nil {
		return nil, fmt.Errorf("capture screen: %w", err)
	}
	w, h := robotgo.GetScreenSize()
	if img.Bounds().Dx() != w || img.Bounds().Dy() != h {
		img = imaging.Resize(img, w, h, imaging.Lanczos)
	}

	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("png encode failed: %w", err)
	}
	return &entity.Screenshot{Data: buf.Bytes(), Format: "png", Width: w, Height: h}, nil
}

func (b *osBackend) Navigate(ctx context.Context, url string) error {
	return browser.OpenURL(url)
}

func (b *osBackend) Move(ctx context.Context, p entity.Point) error {
	robotgo.Move(p.X, p.Y)
	return nil
}

func (b *osBackend) Click(ctx context.Context, p entity.Point, button entity.MouseButton, count int) error {
	name, ok := robotButtons[button]
	if !ok {
		return fmt.Errorf("unsupported mouse button %q", button)
	}
	robotgo.Move(p.X, p.Y)
	for i := 0; i < count; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(clickPause):
			}
		}
		robotgo.Click(name)
	}
	return nil
}

func (b *osBackend) Type(ctx context.Context, text string) error {
	robotgo.TypeStr(text)
	return nil
}

func (b *osBackend) Key(ctx context.Context, key string) error {
	main, mods := splitKeyCombo(key)
	args := make([]interface{}, 0, len(mods))
	for _, m := range mods {
		args = append(args, m)
	}
	if err := robotgo.KeyTap(main, args...); err != nil {
		return fmt.Errorf("key tap %q: %w", key, err)
	}
	return nil
}

func (b *osBackend) Close() error {
	return nil
}
