// Package platform describes the target a backend session automates.
package platform

import (
	"fmt"
	"strings"
)

// Kind identifies which automation protocol a backend speaks.
type Kind int

const (
	KindUnknown Kind = iota
	KindEngine       // browser automation engine (Playwright)
	KindMobile       // mobile automation (Appium)
	KindRemote       // browser remote control (W3C WebDriver / Selenium)
)

// String returns the configuration name of the kind.
func (k Kind) String() string {
	switch k {
	case KindEngine:
		return "engine"
	case KindMobile:
		return "mobile"
	case KindRemote:
		return "remote"
	default:
		return "unknown"
	}
}

// ParseKind maps a configuration name to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "engine", "playwright":
		return KindEngine, nil
	case "mobile", "appium":
		return KindMobile, nil
	case "remote", "selenium", "webdriver":
		return KindRemote, nil
	}
	return KindUnknown, fmt.Errorf("unknown backend kind %q", s)
}

// Facts are the platform attributes of a session, derived once when the
// session is registered.
type Facts struct {
	Desktop bool `json:"desktop"`
	Tablet  bool `json:"tablet"`
	Mobile  bool `json:"mobile"`
	Android bool `json:"android"`
	IOS     bool `json:"ios"`
	Kind    Kind `json:"kind"`
}

// String returns a short description like "mobile/android".
func (f Facts) String() string {
	var parts []string
	switch {
	case f.Desktop:
		parts = append(parts, "desktop")
	case f.Tablet:
		parts = append(parts, "tablet")
	case f.Mobile:
		parts = append(parts, "mobile")
	}
	switch {
	case f.Android:
		parts = append(parts, "android")
	case f.IOS:
		parts = append(parts, "ios")
	}
	if len(parts) == 0 {
		parts = append(parts, "unknown")
	}
	return f.Kind.String() + ":" + strings.Join(parts, "/")
}

// FromCapabilities derives facts from W3C capabilities returned by a
// WebDriver or Appium server.
func FromCapabilities(kind Kind, caps map[string]interface{}) Facts {
	f := Facts{Kind: kind}

	name, _ := lookup(caps, "platformName").(string)
	switch strings.ToLower(name) {
	case "android":
		f.Android = true
	case "ios":
		f.IOS = true
	}

	// Appium sessions are mobile even for mobile web.
	f.Mobile = kind == KindMobile || f.Android || f.IOS || truthy(lookup(caps, "mobileEmulationEnabled"))
	if f.Mobile {
		f.Tablet = truthy(lookup(caps, "isTablet")) || truthy(lookup(caps, "is_tablet"))
	}
	f.Desktop = !f.Mobile
	return f
}

// lookup finds a capability with or without the "appium:" vendor prefix.
func lookup(caps map[string]interface{}, key string) interface{} {
	if v, ok := caps[key]; ok {
		return v
	}
	return caps["appium:"+key]
}

func truthy(v interface{}) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return strings.EqualFold(b, "true")
	}
	return false
}
