// Package driver defines the contract between the page-object layer and
// the automation backends.
package driver

import (
	"github.com/devicelab-dev/pagekit/pkg/core"
	"github.com/devicelab-dev/pagekit/pkg/locator"
	"github.com/devicelab-dev/pagekit/pkg/platform"
)

// Handle is an opaque native element reference owned by a backend:
// a WebDriver element id, a Playwright locator, etc.
type Handle interface{}

// Backend is implemented by each automation engine.
// Implementations: webdriver (remote control), appium (mobile), playwright (engine).
// The page-object layer never talks to a transport directly.
type Backend interface {
	// Kind identifies the protocol, used to pick the locator normalizer
	Kind() platform.Kind

	// Facts describes the automated platform
	Facts() platform.Facts

	// Locate returns all elements matching loc inside scope.
	// A nil scope searches the whole document/screen.
	Locate(scope Handle, loc locator.Normalized) ([]Handle, error)

	// Element state
	IsDisplayed(h Handle) (bool, error)
	BoundingBox(h Handle) (core.Bounds, error)
	Text(h Handle) (string, error)
	Value(h Handle) (string, error)

	// Element interaction
	Click(h Handle) error
	Type(h Handle, text string) error
	Clear(h Handle) error
	PressKey(h Handle, key string) error

	// Session state
	ViewportSize() (core.Size, error)
	CurrentURL() (string, error)
	Refresh() error
	Navigate(url string) error

	// Close ends the backend session
	Close() error
}
