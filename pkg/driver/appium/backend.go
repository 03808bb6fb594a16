package appium

import (
	"fmt"
	"strings"

	"github.com/devicelab-dev/pagekit/pkg/core"
	"github.com/devicelab-dev/pagekit/pkg/driver"
	"github.com/devicelab-dev/pagekit/pkg/driver/webdriver"
	"github.com/devicelab-dev/pagekit/pkg/platform"
)

// Backend implements driver.Backend for Appium sessions, native or mobile
// web. It speaks the same W3C protocol as the webdriver backend and only
// overrides what differs on devices.
type Backend struct {
	*webdriver.Backend
	client *webdriver.Client
}

// New connects to an Appium server and creates a session.
func New(serverURL string, capabilities map[string]interface{}) (*Backend, error) {
	client := webdriver.NewClient(serverURL)
	if err := client.Connect(capabilities); err != nil {
		return nil, err
	}

	facts := platform.FromCapabilities(platform.KindMobile, mergeCaps(capabilities, client.Capabilities()))
	configure(client, facts)

	return NewWithClient(client, facts), nil
}

// NewWithClient wraps an already connected client.
func NewWithClient(client *webdriver.Client, facts platform.Facts) *Backend {
	facts.Kind = platform.KindMobile
	return &Backend{
		Backend: webdriver.NewWithClient(client, facts),
		client:  client,
	}
}

// configure disables the implicit idle/selector waits so element lookups
// return at the driver's natural latency.
func configure(client *webdriver.Client, facts platform.Facts) {
	settings := map[string]interface{}{"waitForIdleTimeout": 0}
	if facts.IOS {
		settings["animationCoolOffTimeout"] = 0
	} else {
		settings["waitForSelectorTimeout"] = 0
	}
	// Not every automation driver supports settings; lookups still work.
	_ = client.SetSettings(settings)
}

// Value returns the "value" attribute, falling back to "text" which is
// where UiAutomator2 exposes editable content.
func (b *Backend) Value(h driver.Handle) (string, error) {
	id, err := webdriver.ElementID(h)
	if err != nil {
		return "", err
	}
	if v, err := b.client.GetElementAttribute(id, "value"); err == nil && v != "" {
		return v, nil
	}
	return b.client.GetElementAttribute(id, "text")
}

// ViewportSize returns the device window size.
func (b *Backend) ViewportSize() (core.Size, error) {
	w, h, err := b.client.WindowRect()
	if err != nil {
		return core.Size{}, err
	}
	return core.Size{Width: w, Height: h}, nil
}

// CurrentURL returns the web context URL; native contexts have none.
func (b *Backend) CurrentURL() (string, error) {
	url, err := b.client.CurrentURL()
	if err != nil {
		return "", fmt.Errorf("current url is unavailable in this context: %w", err)
	}
	return url, nil
}

// mergeCaps overlays server-returned capabilities on the requested ones.
// Servers drop unknown vendor capabilities such as appium:isTablet.
func mergeCaps(requested, returned map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(requested)+len(returned))
	for k, v := range requested {
		merged[k] = v
	}
	for k, v := range returned {
		if _, exists := merged[k]; exists && strings.HasPrefix(k, "appium:") {
			continue
		}
		merged[k] = v
	}
	return merged
}
