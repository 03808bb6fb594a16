package pageobject

import (
	"fmt"
	"strconv"
	"time"

	"github.com/devicelab-dev/pagekit/pkg/core"
	"github.com/devicelab-dev/pagekit/pkg/driver"
	"github.com/devicelab-dev/pagekit/pkg/logger"
)

// Element operations are defined on the shared node, so groups and pages
// with a locator support them too.

// scope returns the handle children of b are searched in. found is false
// when a located owner has no match, in which case b has none either.
func (b *base) scope() (h driver.Handle, found bool, err error) {
	for p := b.parent; p != nil; p = p.parent {
		if p.page != nil {
			return nil, true, nil
		}
		if p.loc.IsZero() {
			continue
		}
		hs, err := p.Handles()
		if err != nil || len(hs) == 0 {
			return nil, false, err
		}
		return hs[0], true, nil
	}
	return nil, true, nil
}

// Handles locates every element currently matching the object.
func (b *base) Handles() ([]driver.Handle, error) {
	if err := b.ensureBound(); err != nil {
		return nil, err
	}
	if b.pinned != nil {
		return []driver.Handle{b.pinned}, nil
	}
	if b.loc.IsZero() {
		return nil, core.ErrLocator.WithMessagef("%q has no locator", b.name)
	}

	scope, found, err := b.scope()
	if err != nil || !found {
		return nil, err
	}
	handles, err := b.backend.Locate(scope, b.resolved)
	if err != nil {
		return nil, core.ErrBackend.WithMessagef("locate %q failed", b.name).WithCause(err)
	}
	return handles, nil
}

// first returns the first match or ErrElementNotFound.
func (b *base) first() (driver.Handle, error) {
	handles, err := b.Handles()
	if err != nil {
		return nil, err
	}
	if len(handles) == 0 {
		return nil, core.ErrElementNotFound.
			WithMessagef("%q not found. %s", b.name, b.SelectorInfo()).
			WithDetails(map[string]interface{}{"name": b.name, "selector": b.SelectorInfo()})
	}
	return handles[0], nil
}

// Count returns the number of matching elements.
func (b *base) Count() (int, error) {
	handles, err := b.Handles()
	return len(handles), err
}

// IsDisplayed returns true if the first match is displayed. No match is
// not displayed.
func (b *base) IsDisplayed() (bool, error) {
	handles, err := b.Handles()
	if err != nil || len(handles) == 0 {
		return false, err
	}
	displayed, err := b.backend.IsDisplayed(handles[0])
	if err != nil {
		return false, core.ErrBackend.WithMessagef("displayed state of %q", b.name).WithCause(err)
	}
	return displayed, nil
}

// IsVisible returns true if the element is displayed and its top-left or
// bottom-right corner lies inside the viewport.
func (b *base) IsVisible() (bool, error) {
	return b.visibleBy(core.Size.PartiallyInside)
}

// IsFullyVisible returns true if the element is displayed and both its
// top-left and bottom-right corners lie inside the viewport.
func (b *base) IsFullyVisible() (bool, error) {
	return b.visibleBy(core.Size.FullyInside)
}

func (b *base) visibleBy(inside func(core.Size, core.Bounds) bool) (bool, error) {
	displayed, err := b.IsDisplayed()
	if err != nil || !displayed {
		return false, err
	}
	box, err := b.BoundingBox()
	if err != nil {
		return false, err
	}
	viewport, err := b.backend.ViewportSize()
	if err != nil {
		return false, core.ErrBackend.WithMessage("viewport size").WithCause(err)
	}
	return inside(viewport, box), nil
}

// BoundingBox returns the first match's bounds.
func (b *base) BoundingBox() (core.Bounds, error) {
	h, err := b.first()
	if err != nil {
		return core.Bounds{}, err
	}
	box, err := b.backend.BoundingBox(h)
	if err != nil {
		return core.Bounds{}, core.ErrBackend.WithMessagef("bounding box of %q", b.name).WithCause(err)
	}
	return box, nil
}

// Text returns the first match's text.
func (b *base) Text() (string, error) {
	h, err := b.first()
	if err != nil {
		return "", err
	}
	text, err := b.backend.Text(h)
	if err != nil {
		return "", core.ErrBackend.WithMessagef("text of %q", b.name).WithCause(err)
	}
	return text, nil
}

// Value returns the first match's input value.
func (b *base) Value() (string, error) {
	h, err := b.first()
	if err != nil {
		return "", err
	}
	value, err := b.backend.Value(h)
	if err != nil {
		return "", core.ErrBackend.WithMessagef("value of %q", b.name).WithCause(err)
	}
	return value, nil
}

// Click clicks the first match.
func (b *base) Click() error {
	logger.Info("Click into %q", b.name)
	h, err := b.first()
	if err != nil {
		return err
	}
	if err := b.backend.Click(h); err != nil {
		return core.ErrBackend.WithMessagef("click %q", b.name).WithCause(err)
	}
	return nil
}

// TypeText types text into the first match without clearing it.
func (b *base) TypeText(text string) error {
	logger.Info("Type text %q into %q", text, b.name)
	h, err := b.first()
	if err != nil {
		return err
	}
	if err := b.backend.Type(h, text); err != nil {
		return core.ErrBackend.WithMessagef("type into %q", b.name).WithCause(err)
	}
	return nil
}

// ClearText clears the first match.
func (b *base) ClearText() error {
	logger.Info("Clear text in %q", b.name)
	h, err := b.first()
	if err != nil {
		return err
	}
	if err := b.backend.Clear(h); err != nil {
		return core.ErrBackend.WithMessagef("clear %q", b.name).WithCause(err)
	}
	return nil
}

// SetText clears the first match and types text.
func (b *base) SetText(text string) error {
	logger.Info("Set text %q into %q", text, b.name)
	h, err := b.first()
	if err != nil {
		return err
	}
	if err := b.backend.Clear(h); err != nil {
		return core.ErrBackend.WithMessagef("clear %q", b.name).WithCause(err)
	}
	if err := b.backend.Type(h, text); err != nil {
		return core.ErrBackend.WithMessagef("type into %q", b.name).WithCause(err)
	}
	return nil
}

// SendKeys presses named keys (see driver.KeyEnter and friends) on the
// first match.
func (b *base) SendKeys(keys ...string) error {
	logger.Info("Send keys %v to %q", keys, b.name)
	h, err := b.first()
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := b.backend.PressKey(h, k); err != nil {
			return core.ErrBackend.WithMessagef("press %s on %q", k, b.name).WithCause(err)
		}
	}
	return nil
}

// All returns one element per current match. Each is pinned to its
// handle and is not registered with the owner.
func (e *Element) All() ([]*Element, error) {
	handles, err := e.Handles()
	if err != nil {
		return nil, err
	}

	out := make([]*Element, len(handles))
	for i, h := range handles {
		nb := *e.base
		nb.name = fmt.Sprintf("%s[%d]", e.name, i)
		nb.pinned = h
		item := &Element{base: &nb}
		nb.self = item
		out[i] = item
	}
	return out, nil
}

// Waits

// poll evaluates cond until it holds or timeout elapses, measured from the
// first call. cond runs at least once and is retried without sleeping.
// Errors from cond end the wait immediately.
func poll(timeout time.Duration, cond func() (bool, error)) (bool, error) {
	deadline := time.Now().Add(timeout)
	for {
		ok, err := cond()
		if err != nil || ok {
			return ok, err
		}
		if !time.Now().Before(deadline) {
			return false, nil
		}
	}
}

func orDefault(timeout time.Duration) time.Duration {
	if timeout <= 0 {
		return DefaultWait
	}
	return timeout
}

func seconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}

// timeoutError decorates a predefined timeout error with the element's
// name and selector chain.
func (b *base) timeoutError(kind *core.ExecutionError, timeout time.Duration, msg string, details map[string]interface{}) error {
	selector := b.SelectorInfo()
	d := map[string]interface{}{
		"name":     b.name,
		"selector": selector,
		"timeout":  timeout.String(),
	}
	for k, v := range details {
		d[k] = v
	}
	return kind.WithMessage(msg + " " + selector).WithDetails(d)
}

// WaitElementsCount waits until exactly expected elements match.
func (b *base) WaitElementsCount(expected int, timeout time.Duration) error {
	timeout = orDefault(timeout)
	logger.Info("Wait until elements count of %q will be equal to %d", b.name, expected)

	actual := 0
	ok, err := poll(timeout, func() (bool, error) {
		n, err := b.Count()
		actual = n
		return n == expected, err
	})
	if err != nil || ok {
		return err
	}
	return b.timeoutError(core.ErrUnexpectedElementsCount, timeout,
		fmt.Sprintf("Unexpected elements count of %q after %s seconds. Actual: %d; Expected: %d.",
			b.name, seconds(timeout), actual, expected),
		map[string]interface{}{"expected": expected, "actual": actual})
}

// WaitText waits until the element has non-empty text.
func (b *base) WaitText(timeout time.Duration) error {
	timeout = orDefault(timeout)
	logger.Info("Wait for any text of %q", b.name)

	ok, err := poll(timeout, func() (bool, error) {
		text, err := b.readIfPresent(false)
		return text != "", err
	})
	if err != nil || ok {
		return err
	}
	return b.timeoutError(core.ErrUnexpectedText, timeout,
		fmt.Sprintf("Text of %q is empty after %s seconds.", b.name, seconds(timeout)),
		map[string]interface{}{"expected": "non-empty text", "actual": ""})
}

// WaitValue waits until the element has a non-empty value.
func (b *base) WaitValue(timeout time.Duration) error {
	timeout = orDefault(timeout)
	logger.Info("Wait for any value of %q", b.name)

	ok, err := poll(timeout, func() (bool, error) {
		value, err := b.readIfPresent(true)
		return value != "", err
	})
	if err != nil || ok {
		return err
	}
	return b.timeoutError(core.ErrUnexpectedValue, timeout,
		fmt.Sprintf("Value of %q is empty after %s seconds.", b.name, seconds(timeout)),
		map[string]interface{}{"expected": "non-empty value", "actual": ""})
}

// readIfPresent reads the text or value of the first match, treating no
// match as empty.
func (b *base) readIfPresent(value bool) (string, error) {
	handles, err := b.Handles()
	if err != nil || len(handles) == 0 {
		return "", err
	}
	read := b.backend.Text
	if value {
		read = b.backend.Value
	}
	s, err := read(handles[0])
	if err != nil {
		return "", core.ErrBackend.WithMessagef("read %q", b.name).WithCause(err)
	}
	return s, nil
}

// WaitVisible waits until the element is displayed.
func (b *base) WaitVisible(timeout time.Duration) error {
	timeout = orDefault(timeout)
	logger.Info("Wait until %q becomes visible", b.name)

	ok, err := poll(timeout, b.IsDisplayed)
	if err != nil || ok {
		return err
	}
	return b.timeoutError(core.ErrElementNotVisible, timeout,
		fmt.Sprintf("%q is not visible after %s seconds.", b.name, seconds(timeout)),
		map[string]interface{}{"expected": "visible", "actual": "hidden"})
}

// WaitHidden waits until the element is not displayed or gone.
func (b *base) WaitHidden(timeout time.Duration) error {
	timeout = orDefault(timeout)
	logger.Info("Wait until %q becomes hidden", b.name)

	ok, err := poll(timeout, func() (bool, error) {
		displayed, err := b.IsDisplayed()
		return !displayed, err
	})
	if err != nil || ok {
		return err
	}
	return b.timeoutError(core.ErrElementNotHidden, timeout,
		fmt.Sprintf("%q is not hidden after %s seconds.", b.name, seconds(timeout)),
		map[string]interface{}{"expected": "hidden", "actual": "visible"})
}

// IgnoreTimeout drops timeout-class errors and returns any other error
// unchanged.
func IgnoreTimeout(err error) error {
	if core.IsTimeout(err) {
		logger.Debug("Ignored: %v", err)
		return nil
	}
	return err
}

// WaitElementsCountWithoutError is WaitElementsCount that ignores timeouts.
func (b *base) WaitElementsCountWithoutError(expected int, timeout time.Duration) error {
	return IgnoreTimeout(b.WaitElementsCount(expected, timeout))
}

// WaitTextWithoutError is WaitText that ignores timeouts.
func (b *base) WaitTextWithoutError(timeout time.Duration) error {
	return IgnoreTimeout(b.WaitText(timeout))
}

// WaitValueWithoutError is WaitValue that ignores timeouts.
func (b *base) WaitValueWithoutError(timeout time.Duration) error {
	return IgnoreTimeout(b.WaitValue(timeout))
}

// WaitVisibleWithoutError is WaitVisible that ignores timeouts.
func (b *base) WaitVisibleWithoutError(timeout time.Duration) error {
	return IgnoreTimeout(b.WaitVisible(timeout))
}

// WaitHiddenWithoutError is WaitHidden that ignores timeouts.
func (b *base) WaitHiddenWithoutError(timeout time.Duration) error {
	return IgnoreTimeout(b.WaitHidden(timeout))
}
