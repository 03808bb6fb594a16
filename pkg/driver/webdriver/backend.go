package webdriver

import (
	"fmt"

	"github.com/devicelab-dev/pagekit/pkg/core"
	"github.com/devicelab-dev/pagekit/pkg/driver"
	"github.com/devicelab-dev/pagekit/pkg/locator"
	"github.com/devicelab-dev/pagekit/pkg/platform"
)

const viewportScript = "return [window.innerWidth, window.innerHeight];"

// Backend implements driver.Backend over a WebDriver session.
// Element handles are W3C element ids.
type Backend struct {
	client *Client
	facts  platform.Facts
}

// New connects to a WebDriver server and creates a session.
func New(serverURL string, capabilities map[string]interface{}) (*Backend, error) {
	client := NewClient(serverURL)
	if err := client.Connect(capabilities); err != nil {
		return nil, err
	}
	return NewWithClient(client, platform.FromCapabilities(platform.KindRemote, client.Capabilities())), nil
}

// NewWithClient wraps an already connected client.
func NewWithClient(client *Client, facts platform.Facts) *Backend {
	return &Backend{client: client, facts: facts}
}

// Client exposes the underlying protocol client.
func (b *Backend) Client() *Client {
	return b.client
}

// Kind implements driver.Backend.
func (b *Backend) Kind() platform.Kind {
	return b.facts.Kind
}

// Facts implements driver.Backend.
func (b *Backend) Facts() platform.Facts {
	return b.facts
}

// Locate implements driver.Backend.
func (b *Backend) Locate(scope driver.Handle, loc locator.Normalized) ([]driver.Handle, error) {
	if loc.Using == "" {
		return nil, fmt.Errorf("locator %q has no WebDriver strategy", loc.Log)
	}

	var (
		ids []string
		err error
	)
	if scope == nil {
		ids, err = b.client.FindElements(loc.Using, loc.Value)
	} else {
		parentID, idErr := ElementID(scope)
		if idErr != nil {
			return nil, idErr
		}
		ids, err = b.client.FindElementsFrom(parentID, loc.Using, loc.Value)
	}
	if err != nil {
		return nil, err
	}

	handles := make([]driver.Handle, len(ids))
	for i, id := range ids {
		handles[i] = id
	}
	return handles, nil
}

// IsDisplayed implements driver.Backend.
func (b *Backend) IsDisplayed(h driver.Handle) (bool, error) {
	id, err := ElementID(h)
	if err != nil {
		return false, err
	}
	return b.client.IsElementDisplayed(id)
}

// BoundingBox implements driver.Backend.
func (b *Backend) BoundingBox(h driver.Handle) (core.Bounds, error) {
	id, err := ElementID(h)
	if err != nil {
		return core.Bounds{}, err
	}
	x, y, w, hgt, err := b.client.GetElementRect(id)
	if err != nil {
		return core.Bounds{}, err
	}
	return core.Bounds{X: x, Y: y, Width: w, Height: hgt}, nil
}

// Text implements driver.Backend.
func (b *Backend) Text(h driver.Handle) (string, error) {
	id, err := ElementID(h)
	if err != nil {
		return "", err
	}
	return b.client.GetElementText(id)
}

// Value implements driver.Backend using the DOM "value" property.
func (b *Backend) Value(h driver.Handle) (string, error) {
	id, err := ElementID(h)
	if err != nil {
		return "", err
	}
	return b.client.GetElementProperty(id, "value")
}

// Click implements driver.Backend.
func (b *Backend) Click(h driver.Handle) error {
	id, err := ElementID(h)
	if err != nil {
		return err
	}
	return b.client.ClickElement(id)
}

// Type implements driver.Backend.
func (b *Backend) Type(h driver.Handle, text string) error {
	id, err := ElementID(h)
	if err != nil {
		return err
	}
	return b.client.SendKeysToElement(id, text)
}

// Clear implements driver.Backend.
func (b *Backend) Clear(h driver.Handle) error {
	id, err := ElementID(h)
	if err != nil {
		return err
	}
	return b.client.ClearElement(id)
}

// PressKey implements driver.Backend.
func (b *Backend) PressKey(h driver.Handle, key string) error {
	id, err := ElementID(h)
	if err != nil {
		return err
	}
	return b.client.SendKeysToElement(id, driver.KeyCode(key))
}

// ViewportSize returns the inner window size, falling back to the outer
// window rect when scripts are unavailable.
func (b *Backend) ViewportSize() (core.Size, error) {
	if v, err := b.client.ExecuteScript(viewportScript, nil); err == nil {
		if dims, ok := v.([]interface{}); ok && len(dims) == 2 {
			w, _ := dims[0].(float64)
			h, _ := dims[1].(float64)
			if w > 0 && h > 0 {
				return core.Size{Width: int(w), Height: int(h)}, nil
			}
		}
	}

	w, h, err := b.client.WindowRect()
	if err != nil {
		return core.Size{}, err
	}
	return core.Size{Width: w, Height: h}, nil
}

// CurrentURL implements driver.Backend.
func (b *Backend) CurrentURL() (string, error) {
	return b.client.CurrentURL()
}

// Refresh implements driver.Backend.
func (b *Backend) Refresh() error {
	return b.client.Refresh()
}

// Navigate implements driver.Backend.
func (b *Backend) Navigate(url string) error {
	if err := b.client.Navigate(url); err != nil {
		return fmt.Errorf("can't proceed to %s: %w", url, err)
	}
	return nil
}

// Close implements driver.Backend.
func (b *Backend) Close() error {
	return b.client.Disconnect()
}

// ElementID extracts the W3C element id from a handle.
func ElementID(h driver.Handle) (string, error) {
	id, ok := h.(string)
	if !ok || id == "" {
		return "", fmt.Errorf("unexpected element handle %T(%v)", h, h)
	}
	return id, nil
}
