// Package playwright implements driver.Backend on top of playwright-go.
// Element handles are playwright.Locator values; selectors are passed with
// explicit engine prefixes ("css=", "xpath=", "text=", "id=").
package playwright

import (
	"fmt"
	"strings"

	"github.com/devicelab-dev/pagekit/pkg/core"
	"github.com/devicelab-dev/pagekit/pkg/driver"
	"github.com/devicelab-dev/pagekit/pkg/locator"
	"github.com/devicelab-dev/pagekit/pkg/platform"
	"github.com/playwright-community/playwright-go"
)

// LaunchOptions configures a new browser for Launch.
type LaunchOptions struct {
	Browser  string // chromium (default), firefox, webkit
	Headless bool
	Viewport core.Size // zero keeps the browser default
	Mobile   bool      // emulate a touch device
	Tablet   bool

	// DriverDir overrides where the Playwright driver is installed.
	DriverDir string
}

// Backend drives a single Playwright page.
type Backend struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	page    playwright.Page
	facts   platform.Facts
}

// Launch starts Playwright, a browser and a fresh page.
func Launch(opts LaunchOptions) (*Backend, error) {
	var runOpts []*playwright.RunOptions
	if opts.DriverDir != "" {
		runOpts = append(runOpts, &playwright.RunOptions{DriverDirectory: opts.DriverDir})
	}
	pw, err := playwright.Run(runOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	browserType, err := selectBrowser(pw, opts.Browser)
	if err != nil {
		_ = pw.Stop()
		return nil, err
	}

	browser, err := browserType.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to launch %s: %w", browserType.Name(), err)
	}

	contextOptions := playwright.BrowserNewContextOptions{
		IsMobile: playwright.Bool(opts.Mobile),
		HasTouch: playwright.Bool(opts.Mobile),
	}
	if opts.Viewport.Width > 0 && opts.Viewport.Height > 0 {
		contextOptions.Viewport = &playwright.Size{
			Width:  opts.Viewport.Width,
			Height: opts.Viewport.Height,
		}
	}

	context, err := browser.NewContext(contextOptions)
	if err != nil {
		_ = browser.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}

	page, err := context.NewPage()
	if err != nil {
		_ = browser.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	b := NewFromPage(page, factsFor(opts))
	b.pw = pw
	b.browser = browser
	return b, nil
}

// NewFromPage wraps a page owned by the caller. Close only closes the page.
func NewFromPage(page playwright.Page, facts platform.Facts) *Backend {
	facts.Kind = platform.KindEngine
	return &Backend{page: page, facts: facts}
}

// Page exposes the underlying page.
func (b *Backend) Page() playwright.Page {
	return b.page
}

func selectBrowser(pw *playwright.Playwright, name string) (playwright.BrowserType, error) {
	switch strings.ToLower(name) {
	case "", "chromium", "chrome":
		return pw.Chromium, nil
	case "firefox":
		return pw.Firefox, nil
	case "webkit", "safari":
		return pw.WebKit, nil
	}
	return nil, fmt.Errorf("unsupported browser: %s", name)
}

func factsFor(opts LaunchOptions) platform.Facts {
	mobile := opts.Mobile || opts.Tablet
	return platform.Facts{
		Desktop: !mobile,
		Mobile:  mobile,
		Tablet:  opts.Tablet,
		Kind:    platform.KindEngine,
	}
}

// Kind implements driver.Backend.
func (b *Backend) Kind() platform.Kind {
	return platform.KindEngine
}

// Facts implements driver.Backend.
func (b *Backend) Facts() platform.Facts {
	return b.facts
}

// Locate implements driver.Backend.
func (b *Backend) Locate(scope driver.Handle, loc locator.Normalized) ([]driver.Handle, error) {
	var base playwright.Locator
	if scope == nil {
		base = b.page.Locator(loc.Value)
	} else {
		parent, err := asLocator(scope)
		if err != nil {
			return nil, err
		}
		base = parent.Locator(loc.Value)
	}

	all, err := base.All()
	if err != nil {
		return nil, err
	}

	handles := make([]driver.Handle, len(all))
	for i, l := range all {
		handles[i] = l
	}
	return handles, nil
}

// IsDisplayed implements driver.Backend.
func (b *Backend) IsDisplayed(h driver.Handle) (bool, error) {
	l, err := asLocator(h)
	if err != nil {
		return false, err
	}
	return l.IsVisible()
}

// BoundingBox implements driver.Backend. Detached or hidden elements
// report an empty box.
func (b *Backend) BoundingBox(h driver.Handle) (core.Bounds, error) {
	l, err := asLocator(h)
	if err != nil {
		return core.Bounds{}, err
	}
	rect, err := l.BoundingBox()
	if err != nil {
		return core.Bounds{}, err
	}
	return toBounds(rect), nil
}

func toBounds(rect *playwright.Rect) core.Bounds {
	if rect == nil {
		return core.Bounds{}
	}
	return core.Bounds{
		X:      int(rect.X),
		Y:      int(rect.Y),
		Width:  int(rect.Width),
		Height: int(rect.Height),
	}
}

// Text implements driver.Backend.
func (b *Backend) Text(h driver.Handle) (string, error) {
	l, err := asLocator(h)
	if err != nil {
		return "", err
	}
	return l.InnerText()
}

// Value implements driver.Backend.
func (b *Backend) Value(h driver.Handle) (string, error) {
	l, err := asLocator(h)
	if err != nil {
		return "", err
	}
	return l.InputValue()
}

// Click implements driver.Backend.
func (b *Backend) Click(h driver.Handle) error {
	l, err := asLocator(h)
	if err != nil {
		return err
	}
	return l.Click()
}

// Type implements driver.Backend.
func (b *Backend) Type(h driver.Handle, text string) error {
	l, err := asLocator(h)
	if err != nil {
		return err
	}
	return l.PressSequentially(text)
}

// Clear implements driver.Backend.
func (b *Backend) Clear(h driver.Handle) error {
	l, err := asLocator(h)
	if err != nil {
		return err
	}
	return l.Clear()
}

// PressKey implements driver.Backend. Key names match Playwright's.
func (b *Backend) PressKey(h driver.Handle, key string) error {
	l, err := asLocator(h)
	if err != nil {
		return err
	}
	if key == driver.KeySpace {
		key = " "
	}
	return l.Press(key)
}

// ViewportSize implements driver.Backend.
func (b *Backend) ViewportSize() (core.Size, error) {
	size := b.page.ViewportSize()
	if size == nil {
		return core.Size{}, fmt.Errorf("page has no fixed viewport")
	}
	return core.Size{Width: size.Width, Height: size.Height}, nil
}

// CurrentURL implements driver.Backend.
func (b *Backend) CurrentURL() (string, error) {
	return b.page.URL(), nil
}

// Refresh implements driver.Backend.
func (b *Backend) Refresh() error {
	_, err := b.page.Reload()
	return err
}

// Navigate implements driver.Backend.
func (b *Backend) Navigate(url string) error {
	if _, err := b.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
	}); err != nil {
		return fmt.Errorf("can't proceed to %s: %w", url, err)
	}
	return nil
}

// Close implements driver.Backend. Browsers started by Launch are shut
// down with the page.
func (b *Backend) Close() error {
	var errs []string
	if err := b.page.Close(); err != nil {
		errs = append(errs, err.Error())
	}
	if b.browser != nil {
		if err := b.browser.Close(); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if b.pw != nil {
		if err := b.pw.Stop(); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close: %s", strings.Join(errs, "; "))
	}
	return nil
}

func asLocator(h driver.Handle) (playwright.Locator, error) {
	l, ok := h.(playwright.Locator)
	if !ok || l == nil {
		return nil, fmt.Errorf("unexpected element handle %T", h)
	}
	return l, nil
}
