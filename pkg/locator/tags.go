package locator

import "strings"

// htmlTags are element names that are treated as CSS tag selectors when a
// locator consists only of them.
var htmlTags = map[string]bool{
	"a": true, "area": true, "article": true, "aside": true,
	"body": true, "button": true,
	"circle": true,
	"div": true,
	"footer": true, "form": true, "frame": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"head": true, "header": true,
	"iframe": true, "img": true, "input": true,
	"label": true, "li": true, "link": true,
	"main": true,
	"nav": true,
	"ol": true, "option": true,
	"p": true, "path": true,
	"section": true, "select": true, "span": true, "svg": true,
	"table": true, "tbody": true, "td": true, "textarea": true, "th": true, "thead": true, "tr": true,
	"ul": true,
}

// IsTag returns true if s is exactly a known HTML tag name.
func IsTag(s string) bool {
	return htmlTags[s]
}

// IsTagSelector returns true if every space-separated token of s is a
// known tag name, e.g. "header h4".
func IsTagSelector(s string) bool {
	tokens := strings.Fields(s)
	if len(tokens) == 0 {
		return false
	}
	for _, tok := range tokens {
		if !htmlTags[tok] {
			return false
		}
	}
	return true
}
