package rod

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	"math"
	"net/url"
	"strings"
	"sync"
	"time"

	"medi-cal-assistant/internal/domain/entity"

	"github.com/disintegration/imaging"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
)

const (
	defaultSlowMotion = 0
	defaultTimeout    = 10 * time.Second
	defaultWidth      = 1710
	defaultHeight     = 1107
)

var ErrInvalidURL = errors.New("invalid url")

var ErrPageClosed = errors.New("page is closed")

// BrowserAdapter drives a single page of a rod-controlled Chromium.
type BrowserAdapter struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	page     *rod.Page
	timeout  time.Duration
	width    int
	height   int

	mu     sync.Mutex
	closed bool
}

type BrowserConfig struct {
	Headless   bool
	SlowMotion time.Duration
	Timeout    time.Duration
	NoSandbox  bool
	DevTools   bool
	Trace      bool
	Width      int
	Height     int
}

func DefaultConfig() BrowserConfig {
	return BrowserConfig{
		Headless:   false,
		SlowMotion: defaultSlowMotion,
		Timeout:    defaultTimeout,
		NoSandbox:  false,
		DevTools:   false,
		Width:      defaultWidth,
		Height:     defaultHeight,
	}
}

func NewBrowserAdapter(ctx context.Context, cfg BrowserConfig) (*BrowserAdapter, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = defaultWidth, defaultHeight
	}

	l := launcher.New().
		Context(ctx).
		Headless(cfg.Headless).
		Devtools(cfg.DevTools).
		NoSandbox(cfg.NoSandbox).
		Delete("use-mock-keychain").
		Set("window-size", fmt.Sprintf("%d,%d", cfg.Width, cfg.Height))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().
		ControlURL(controlURL).
		Trace(cfg.Trace).
		SlowMotion(cfg.SlowMotion)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = browser.Close()
		l.Kill()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	err = page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             cfg.Width,
		Height:            cfg.Height,
		DeviceScaleFactor: 1,
	})
	if err != nil {
		_ = browser.Close()
		l.Kill()
		return nil, fmt.Errorf("failed to set viewport: %w", err)
	}

	return &BrowserAdapter{
		browser:  browser,
		launcher: l,
		page:     page,
		timeout:  cfg.Timeout,
		width:    cfg.Width,
		height:   cfg.Height,
	}, nil
}

func (b *BrowserAdapter) IsReady() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.page != nil && !b.closed
}

// HasActivePage is IsReady under the name the device facade expects.
func (b *BrowserAdapter) HasActivePage() bool {
	return b.IsReady()
}

func (b *BrowserAdapter) activePage(ctx context.Context) (*rod.Page, error) {
	if !b.IsReady() {
		return nil, ErrPageClosed
	}
	return b.page.Context(ctx), nil
}

func validateURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	switch u.Scheme {
	case "http", "https":
		if u.Host == "" {
			return fmt.Errorf("%w: missing host in %q", ErrInvalidURL, raw)
		}
	case "file", "about":
	default:
		return fmt.Errorf("%w: unsupported scheme in %q", ErrInvalidURL, raw)
	}
	return nil
}

func (b *BrowserAdapter) Navigate(ctx context.Context, rawURL string) error {
	if err := validateURL(rawURL); err != nil {
		return err
	}
	page, err := b.activePage(ctx)
	if err != nil {
		return err
	}
	if err := page.Navigate(rawURL); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	if err := page.Timeout(b.timeout).WaitLoad(); err != nil {
		return fmt.Errorf("wait load: %w", err)
	}
	return nil
}

func (b *BrowserAdapter) CurrentURL() string {
	if !b.IsReady() {
		return ""
	}
	info, err := b.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

// Capture grabs the viewport. Frames wider than the viewport (device scale
// above 1) are scaled down so image pixels equal page coordinates.
func (b *BrowserAdapter) Capture(ctx context.Context) (*entity.Screenshot, error) {
	page, err := b.activePage(ctx)
	if err != nil {
		return nil, err
	}
	imgBytes, err := page.Screenshot(false, &proto.PageCaptureScreenshot{
		Format:  proto.PageCaptureScreenshotFormatJpeg,
		Quality: gson.Int(80),
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(imgBytes))
	if err != nil {
		return nil, fmt.Errorf("image decode failed: %w", err)
	}
	if img.Bounds().Dx() > b.width {
		img = imaging.Resize(img, b.width, 0, imaging.Lanczos)
	}

	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, img, imaging.JPEG, imaging.JPEGQuality(75)); err != nil {
		return nil, fmt.Errorf("jpeg encode failed: %w", err)
	}

	return &entity.Screenshot{
		Data:   buf.Bytes(),
		Format: "jpeg",
		Width:  img.Bounds().Dx(),
		Height: img.Bounds().Dy(),
	}, nil
}

func (b *BrowserAdapter) Move(ctx context.Context, p entity.Point) error {
	page, err := b.activePage(ctx)
	if err != nil {
		return err
	}
	return page.Mouse.MoveTo(proto.Point{X: float64(p.X), Y: float64(p.Y)})
}

var mouseButtons = map[entity.MouseButton]proto.InputMouseButton{
	entity.ButtonLeft:   proto.InputMouseButtonLeft,
	entity.ButtonRight:  proto.InputMouseButtonRight,
	entity.ButtonMiddle: proto.InputMouseButtonMiddle,
}

// Click sends count as the DOM click count, so a count of 3 selects the
// text of an input the way a physical triple click does.
func (b *BrowserAdapter) Click(ctx context.Context, p entity.Point, button entity.MouseButton, count int) error {
	btn, ok := mouseButtons[button]
	if !ok {
		return fmt.Errorf("unsupported mouse button %q", button)
	}
	page, err := b.activePage(ctx)
	if err != nil {
		return err
	}
	if err := page.Mouse.MoveTo(proto.Point{X: float64(p.X), Y: float64(p.Y)}); err != nil {
		return fmt.Errorf("move failed: %w", err)
	}
	if err := page.Mouse.Click(btn, count); err != nil {
		return fmt.Errorf("click failed: %w", err)
	}
	return nil
}

func (b *BrowserAdapter) Type(ctx context.Context, text string) error {
	page, err := b.activePage(ctx)
	if err != nil {
		return err
	}
	if err := page.InsertText(text); err != nil {
		return fmt.Errorf("input failed: %w", err)
	}
	return nil
}

func (b *BrowserAdapter) Key(ctx context.Context, combo string) error {
	main, mods, err := parseKeyCombo(combo)
	if err != nil {
		return err
	}
	page, err := b.activePage(ctx)
	if err != nil {
		return err
	}

	for _, m := range mods {
		if err := page.Keyboard.Press(m); err != nil {
			return fmt.Errorf("press %q: %w", combo, err)
		}
	}
	typeErr := page.Keyboard.Type(main)
	for i := len(mods) - 1; i >= 0; i-- {
		_ = page.Keyboard.Release(mods[i])
	}
	if typeErr != nil {
		return fmt.Errorf("press %q: %w", combo, typeErr)
	}
	return nil
}

const boundingRectJS = `(sel) => {
	const el = document.querySelector(sel);
	if (!el) return null;
	const r = el.getBoundingClientRect();
	return {x: r.left, y: r.top, w: r.width, h: r.height};
}`

// ElementCenter finds the first element matching selector without waiting
// and returns the center of its box, falling back to getBoundingClientRect.
func (b *BrowserAdapter) ElementCenter(ctx context.Context, selector string) (entity.Point, bool, error) {
	active, err := b.activePage(ctx)
	if err != nil {
		return entity.Point{}, false, err
	}
	page := active.Timeout(b.timeout)
	defer page.CancelTimeout()

	has, el, err := page.Has(selector)
	if err != nil {
		return entity.Point{}, false, fmt.Errorf("query %s: %w", selector, err)
	}
	if !has {
		return entity.Point{}, false, nil
	}

	if shape, err := el.Shape(); err == nil {
		if box := shape.Box(); box != nil && box.Width > 0 && box.Height > 0 {
			return center(box.X, box.Y, box.Width, box.Height), true, nil
		}
	}

	obj, err := page.Eval(boundingRectJS, selector)
	if err != nil {
		return entity.Point{}, false, fmt.Errorf("bounding rect of %s: %w", selector, err)
	}
	if obj.Value.Nil() {
		return entity.Point{}, false, nil
	}
	r := obj.Value
	return center(r.Get("x").Num(), r.Get("y").Num(), r.Get("w").Num(), r.Get("h").Num()), true, nil
}

func center(x, y, w, h float64) entity.Point {
	return entity.Point{X: int(math.Round(x + w/2)), Y: int(math.Round(y + h/2))}
}

// FillFirst replaces the value of the first editable element matched by any
// of the selectors, tried in order. Disabled, readonly and hidden matches are
// skipped.
func (b *BrowserAdapter) FillFirst(ctx context.Context, selectors []string, value string) (bool, error) {
	active, err := b.activePage(ctx)
	if err != nil {
		return false, err
	}
	page := active.Timeout(b.timeout)
	defer page.CancelTimeout()

	for _, sel := range selectors {
		els, err := page.Elements(sel)
		if err != nil {
			continue
		}
		for _, el := range els {
			if !editable(el) {
				continue
			}
			if err := el.SelectAllText(); err == nil {
				_ = el.Input("")
			}
			if err := el.Input(value); err != nil {
				return false, fmt.Errorf("fill %s: %w", sel, err)
			}
			return true, nil
		}
	}
	return false, nil
}

func editable(el *rod.Element) bool {
	if disabled, err := el.Disabled(); err != nil || disabled {
		return false
	}
	if ro, err := el.Property("readOnly"); err != nil || ro.Bool() {
		return false
	}
	visible, err := el.Visible()
	return err == nil && visible
}

func (b *BrowserAdapter) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	var err error
	if b.browser != nil {
		err = b.browser.Close()
	}
	if b.launcher != nil {
		b.launcher.Kill()
		b.launcher.Cleanup()
	}
	return err
}

var namedKeys = map[string]input.Key{
	"enter":     input.Enter,
	"return":    input.Enter,
	"tab":       input.Tab,
	"backspace": input.Backspace,
	"escape":    input.Escape,
	"esc":       input.Escape,
	"delete":    input.Delete,
	"space":     input.Key(' '),
	"up":        input.ArrowUp,
	"down":      input.ArrowDown,
	"left":      input.ArrowLeft,
	"right":     input.ArrowRight,
	"home":      input.Home,
	"end":       input.End,
	"pageup":    input.PageUp,
	"page_up":   input.PageUp,
	"pagedown":  input.PageDown,
	"page_down": input.PageDown,
}

var modifierKeys = map[string]input.Key{
	"ctrl":    input.ControlLeft,
	"control": input.ControlLeft,
	"shift":   input.ShiftLeft,
	"alt":     input.AltLeft,
	"cmd":     input.MetaLeft,
	"meta":    input.MetaLeft,
	"super":   input.MetaLeft,
}

func parseKeyCombo(combo string) (input.Key, []input.Key, error) {
	trimmed := strings.TrimSpace(combo)
	var modPart, last string
	switch i := strings.LastIndex(trimmed, "+"); {
	case strings.HasSuffix(trimmed, "+"):
		// A trailing "+" is the plus key itself, as in "+" or "ctrl++".
		last = "+"
		modPart = strings.TrimSuffix(strings.TrimSpace(strings.TrimSuffix(trimmed, "+")), "+")
	case i >= 0:
		modPart, last = trimmed[:i], strings.TrimSpace(trimmed[i+1:])
	default:
		last = trimmed
	}

	var mods []input.Key
	if strings.TrimSpace(modPart) != "" {
		for _, p := range strings.Split(modPart, "+") {
			m, ok := modifierKeys[strings.ToLower(strings.TrimSpace(p))]
			if !ok {
				return 0, nil, fmt.Errorf("unknown modifier %q in %q", p, combo)
			}
			mods = append(mods, m)
		}
	}

	if k, ok := namedKeys[strings.ToLower(last)]; ok {
		return k, mods, nil
	}
	if r := []rune(last); len(r) == 1 {
		return input.Key(r[0]), mods, nil
	}
	return 0, nil, fmt.Errorf("unknown key %q", combo)
}
