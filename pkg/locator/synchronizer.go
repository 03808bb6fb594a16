package locator

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/devicelab-dev/pagekit/pkg/platform"
)

var (
	xpathStarts = []string{"/", "./", "(/"}
	cssStarts   = []string{"#", "."}
	cssPattern  = regexp.MustCompile(`[#.\[\]=]`)
)

// Normalized is a locator ready to be handed to a backend.
type Normalized struct {
	Value   string  // what the backend receives
	Dialect Dialect // classification of the original string
	Using   string  // W3C location strategy; empty for engine backends
	Log     string  // human-readable form used in logs and errors
}

// String returns the log form.
func (n Normalized) String() string {
	return n.Log
}

// Normalizer turns a raw locator string into a backend-ready form.
// override is the declared dialect, empty when it should be inferred.
type Normalizer func(raw string, override Dialect) Normalized

// For returns the normalizer used by backends of the given kind.
func For(kind platform.Kind) Normalizer {
	switch kind {
	case platform.KindEngine:
		return ForEngine
	case platform.KindMobile:
		return ForMobile
	default:
		return ForRemote
	}
}

// Infer classifies an unprefixed locator.
func Infer(loc string) Dialect {
	switch {
	case hasAnyPrefix(loc, xpathStarts):
		return XPath
	case hasAnyPrefix(loc, cssStarts) || cssPattern.MatchString(loc):
		return CSS
	case IsTagSelector(loc):
		return CSS
	case strings.IndexFunc(loc, unicode.IsSpace) >= 0:
		return Text
	default:
		return ID
	}
}

// classify strips an explicit prefix, or falls back to the declared
// override, or infers the dialect.
func classify(raw string, override Dialect) (Dialect, string) {
	loc := strings.TrimSpace(raw)
	if d, rest, ok := SplitPrefix(loc); ok {
		return d, rest
	}
	if override != "" {
		return override.Canonical(), loc
	}
	return Infer(loc), loc
}

// ForRemote normalizes for W3C WebDriver browsers. Text and id locators are
// rewritten into XPath and CSS, which every driver supports.
func ForRemote(raw string, override Dialect) Normalized {
	d, value := classify(raw, override)
	return remoteForm(d, value)
}

func remoteForm(d Dialect, value string) Normalized {
	switch d {
	case XPath:
		return Normalized{Value: value, Dialect: XPath, Using: UsingXPath, Log: XPath.Prefix() + value}
	case Text:
		return Normalized{Value: ContainsText(value), Dialect: Text, Using: UsingXPath, Log: Text.Prefix() + value}
	case CSS:
		return Normalized{Value: value, Dialect: CSS, Using: UsingCSS, Log: CSS.Prefix() + value}
	case ID:
		return Normalized{Value: fmt.Sprintf(`[id="%s"]`, value), Dialect: ID, Using: UsingCSS, Log: ID.Prefix() + value}
	}
	// Driver-specific strategy such as "accessibility id".
	return Normalized{Value: value, Dialect: d, Using: string(d), Log: string(d) + "=" + value}
}

// ForMobile normalizes for Appium. Native resource ids such as
// "com.android.chrome:id/toolbar" use the native id strategy; everything
// else follows the WebDriver rules.
func ForMobile(raw string, override Dialect) Normalized {
	d, value := classify(raw, override)
	_, _, explicit := SplitPrefix(strings.TrimSpace(raw))
	native := strings.Contains(value, ":id")

	if native && (d == ID || (!explicit && override == "")) {
		return Normalized{Value: value, Dialect: ID, Using: UsingID, Log: ID.Prefix() + value}
	}
	return remoteForm(d, value)
}

// ForEngine normalizes for engines that understand dialect prefixes
// natively; the result always carries an explicit prefix.
func ForEngine(raw string, override Dialect) Normalized {
	d, value := classify(raw, override)
	v := string(d) + "=" + value
	return Normalized{Value: v, Dialect: d, Log: v}
}

// ContainsText renders an XPath query matching elements whose text
// contains s.
func ContainsText(s string) string {
	return fmt.Sprintf("//*[contains(text(), %s)]", xpathLiteral(s))
}

// xpathLiteral quotes s for XPath 1.0, which has no escape sequences.
func xpathLiteral(s string) string {
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	parts := strings.Split(s, `"`)
	quoted := make([]string, 0, len(parts)*2)
	for i, p := range parts {
		if i > 0 {
			quoted = append(quoted, `'"'`)
		}
		if p != "" {
			quoted = append(quoted, `"`+p+`"`)
		}
	}
	return "concat(" + strings.Join(quoted, ", ") + ")"
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
