// Package mock provides an in-memory driver.Backend for testing without a
// browser or device.
package mock

import (
	"fmt"
	"sync"
	"time"

	"github.com/devicelab-dev/pagekit/pkg/core"
	"github.com/devicelab-dev/pagekit/pkg/driver"
	"github.com/devicelab-dev/pagekit/pkg/locator"
	"github.com/devicelab-dev/pagekit/pkg/platform"
)

// Element is a scripted element. Children are keyed the same way as the
// backend's root elements.
type Element struct {
	ID        string
	Text      string
	Value     string
	Displayed bool
	Bounds    core.Bounds

	children map[string][]*Element
}

// NewElement returns a displayed element inside the default viewport.
func NewElement(id string) *Element {
	return &Element{
		ID:        id,
		Displayed: true,
		Bounds:    core.Bounds{X: 100, Y: 200, Width: 200, Height: 50},
	}
}

// Add registers children found under selector when this element is the
// search scope.
func (e *Element) Add(selector string, children ...*Element) *Element {
	if e.children == nil {
		e.children = make(map[string][]*Element)
	}
	e.children[selector] = append(e.children[selector], children...)
	return e
}

func (e *Element) String() string {
	return "mock:" + e.ID
}

// Config configures mock backend behavior.
type Config struct {
	Kind     platform.Kind  // defaults to KindRemote
	Facts    platform.Facts // defaults to desktop
	Viewport core.Size      // defaults to 1920x1080
	URL      string

	// LocateDelay adds artificial latency to every lookup
	LocateDelay time.Duration
	// LocateError makes every lookup fail
	LocateError error
}

// Backend is a scriptable driver.Backend. Elements are keyed by the
// normalized locator value, falling back to its log form, so tests can
// register either "#login" or "css=#login".
type Backend struct {
	Config Config

	mu     sync.Mutex
	root   map[string][]*Element
	calls  map[string]int
	typed  map[*Element][]string
	visits []string
	closed bool
}

// New creates a new mock backend.
func New(cfg Config) *Backend {
	if cfg.Kind == platform.KindUnknown {
		cfg.Kind = platform.KindRemote
	}
	if cfg.Facts == (platform.Facts{}) {
		cfg.Facts = platform.Facts{Desktop: true}
	}
	cfg.Facts.Kind = cfg.Kind
	if cfg.Viewport == (core.Size{}) {
		cfg.Viewport = core.Size{Width: 1920, Height: 1080}
	}
	return &Backend{
		Config: cfg,
		root:   make(map[string][]*Element),
		calls:  make(map[string]int),
		typed:  make(map[*Element][]string),
	}
}

// Add registers root elements under selector.
func (b *Backend) Add(selector string, els ...*Element) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.root[selector] = append(b.root[selector], els...)
}

// Set replaces the root elements under selector. No elements removes it.
func (b *Backend) Set(selector string, els ...*Element) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(els) == 0 {
		delete(b.root, selector)
		return
	}
	b.root[selector] = els
}

// Mutate runs fn under the backend lock, for changing element state while
// another goroutine is waiting on it.
func (b *Backend) Mutate(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn()
}

// Calls returns how many times method was invoked.
func (b *Backend) Calls(method string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[method]
}

// Typed returns the text sequences sent to an element.
func (b *Backend) Typed(e *Element) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.typed[e]...)
}

// Visits returns the URLs passed to Navigate.
func (b *Backend) Visits() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.visits...)
}

// Closed reports whether Close was called.
func (b *Backend) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

func (b *Backend) record(method string) {
	b.calls[method]++
}

// Kind implements driver.Backend.
func (b *Backend) Kind() platform.Kind {
	return b.Config.Kind
}

// Facts implements driver.Backend.
func (b *Backend) Facts() platform.Facts {
	return b.Config.Facts
}

// Locate implements driver.Backend.
func (b *Backend) Locate(scope driver.Handle, loc locator.Normalized) ([]driver.Handle, error) {
	if b.Config.LocateDelay > 0 {
		time.Sleep(b.Config.LocateDelay)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("Locate")

	if b.Config.LocateError != nil {
		return nil, b.Config.LocateError
	}

	index := b.root
	if scope != nil {
		parent, err := asElement(scope)
		if err != nil {
			return nil, err
		}
		index = parent.children
	}

	found, ok := index[loc.Value]
	if !ok {
		found = index[loc.Log]
	}

	handles := make([]driver.Handle, len(found))
	for i, e := range found {
		handles[i] = e
	}
	return handles, nil
}

// IsDisplayed implements driver.Backend.
func (b *Backend) IsDisplayed(h driver.Handle) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("IsDisplayed")
	e, err := asElement(h)
	if err != nil {
		return false, err
	}
	return e.Displayed, nil
}

// BoundingBox implements driver.Backend.
func (b *Backend) BoundingBox(h driver.Handle) (core.Bounds, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("BoundingBox")
	e, err := asElement(h)
	if err != nil {
		return core.Bounds{}, err
	}
	return e.Bounds, nil
}

// Text implements driver.Backend.
func (b *Backend) Text(h driver.Handle) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("Text")
	e, err := asElement(h)
	if err != nil {
		return "", err
	}
	return e.Text, nil
}

// Value implements driver.Backend.
func (b *Backend) Value(h driver.Handle) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("Value")
	e, err := asElement(h)
	if err != nil {
		return "", err
	}
	return e.Value, nil
}

// Click implements driver.Backend.
func (b *Backend) Click(h driver.Handle) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("Click")
	_, err := asElement(h)
	return err
}

// Type implements driver.Backend. Typed text is appended to the value.
func (b *Backend) Type(h driver.Handle, text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("Type")
	e, err := asElement(h)
	if err != nil {
		return err
	}
	e.Value += text
	b.typed[e] = append(b.typed[e], text)
	return nil
}

// Clear implements driver.Backend.
func (b *Backend) Clear(h driver.Handle) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("Clear")
	e, err := asElement(h)
	if err != nil {
		return err
	}
	e.Value = ""
	return nil
}

// PressKey implements driver.Backend.
func (b *Backend) PressKey(h driver.Handle, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("PressKey")
	e, err := asElement(h)
	if err != nil {
		return err
	}
	b.typed[e] = append(b.typed[e], "<"+key+">")
	return nil
}

// ViewportSize implements driver.Backend.
func (b *Backend) ViewportSize() (core.Size, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("ViewportSize")
	return b.Config.Viewport, nil
}

// CurrentURL implements driver.Backend.
func (b *Backend) CurrentURL() (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("CurrentURL")
	return b.Config.URL, nil
}

// Refresh implements driver.Backend.
func (b *Backend) Refresh() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("Refresh")
	return nil
}

// Navigate implements driver.Backend.
func (b *Backend) Navigate(url string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("Navigate")
	b.visits = append(b.visits, url)
	b.Config.URL = url
	return nil
}

// Close implements driver.Backend.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("Close")
	b.closed = true
	return nil
}

func asElement(h driver.Handle) (*Element, error) {
	e, ok := h.(*Element)
	if !ok || e == nil {
		return nil, fmt.Errorf("unexpected element handle %T", h)
	}
	return e, nil
}
