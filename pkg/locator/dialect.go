package locator

import "strings"

// Dialect is the locator sub-language a raw locator string belongs to.
type Dialect string

// Supported dialects. Any of them may prefix a locator explicitly,
// e.g. "xpath=//div" or "text=Sign in".
const (
	CSS   Dialect = "css"
	XPath Dialect = "xpath"
	ID    Dialect = "id"
	Text  Dialect = "text"
)

// W3C WebDriver location strategies.
const (
	UsingCSS   = "css selector"
	UsingXPath = "xpath"
	UsingID    = "id"
)

var explicitDialects = []Dialect{XPath, Text, CSS, ID}

// Canonical maps WebDriver strategy names and casing variants onto the
// four known dialects. Unknown names are returned lower-cased and trimmed.
func (d Dialect) Canonical() Dialect {
	s := strings.ToLower(strings.TrimSpace(string(d)))
	switch s {
	case "css", UsingCSS, "css_selector":
		return CSS
	case "xpath":
		return XPath
	case "id":
		return ID
	case "text":
		return Text
	}
	return Dialect(s)
}

// Known returns true for the four dialects every backend understands.
func (d Dialect) Known() bool {
	switch d {
	case CSS, XPath, ID, Text:
		return true
	}
	return false
}

// Prefix returns the explicit prefix form, e.g. "css=".
func (d Dialect) Prefix() string {
	return string(d) + "="
}

// SplitPrefix strips an explicit dialect prefix. ok is false when the
// locator carries none.
func SplitPrefix(loc string) (d Dialect, rest string, ok bool) {
	for _, candidate := range explicitDialects {
		if strings.HasPrefix(loc, candidate.Prefix()) {
			return candidate, loc[len(candidate.Prefix()):], true
		}
	}
	return "", loc, false
}
