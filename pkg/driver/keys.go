package driver

// Key names accepted by Backend.PressKey. Engine backends take the name as
// is; WebDriver backends translate it with KeyCode.
const (
	KeyEnter      = "Enter"
	KeyTab        = "Tab"
	KeyEscape     = "Escape"
	KeyBackspace  = "Backspace"
	KeyDelete     = "Delete"
	KeySpace      = "Space"
	KeyArrowUp    = "ArrowUp"
	KeyArrowDown  = "ArrowDown"
	KeyArrowLeft  = "ArrowLeft"
	KeyArrowRight = "ArrowRight"
	KeyHome       = "Home"
	KeyEnd        = "End"
	KeyPageUp     = "PageUp"
	KeyPageDown   = "PageDown"
)

// W3C WebDriver code points for named keys.
var w3cKeys = map[string]string{
	KeyEnter:      "\uE007",
	KeyTab:        "\uE004",
	KeyEscape:     "\uE00C",
	KeyBackspace:  "\uE003",
	KeyDelete:     "\uE017",
	KeySpace:      "\uE00D",
	KeyArrowUp:    "\uE013",
	KeyArrowDown:  "\uE015",
	KeyArrowLeft:  "\uE012",
	KeyArrowRight: "\uE014",
	KeyHome:       "\uE011",
	KeyEnd:        "\uE010",
	KeyPageUp:     "\uE00E",
	KeyPageDown:   "\uE00F",
}

// KeyCode returns the WebDriver code point for a named key. Unknown names
// are returned unchanged so single characters can be sent directly.
func KeyCode(name string) string {
	if code, ok := w3cKeys[name]; ok {
		return code
	}
	return name
}
