// Package locator holds per-platform locator declarations and the
// backend-specific normalizers that classify raw locator strings.
package locator

import (
	"strings"

	"github.com/devicelab-dev/pagekit/pkg/core"
	"github.com/devicelab-dev/pagekit/pkg/platform"
	"gopkg.in/yaml.v3"
)

// Locator is an immutable element locator with optional platform variants.
// An empty string means the variant is absent. A plain string locator is a
// Locator with only Default set.
type Locator struct {
	Default string  `yaml:"default"`
	Type    Dialect `yaml:"type"` // explicit dialect, overrides inference

	Desktop string `yaml:"desktop"`
	Mobile  string `yaml:"mobile"` // any mobile platform without a more specific variant
	Tablet  string `yaml:"tablet"`
	IOS     string `yaml:"ios"`
	Android string `yaml:"android"`
}

// New returns a locator with only a default variant.
func New(s string) Locator {
	return Locator{Default: s}
}

// Typed returns a default locator with an explicit dialect.
func Typed(d Dialect, s string) Locator {
	return Locator{Default: s, Type: d}
}

// IsZero returns true if no variant is declared.
func (l Locator) IsZero() bool {
	return l.Default == "" && l.Desktop == "" && l.Mobile == "" &&
		l.Tablet == "" && l.IOS == "" && l.Android == ""
}

// HasVariants returns true if any platform-specific variant is set.
func (l Locator) HasVariants() bool {
	return l.Desktop != "" || l.Mobile != "" || l.Tablet != "" || l.IOS != "" || l.Android != ""
}

// String returns the default locator, or the first declared variant.
func (l Locator) String() string {
	for _, s := range []string{l.Default, l.Desktop, l.Mobile, l.Tablet, l.Android, l.IOS} {
		if s != "" {
			return s
		}
	}
	return ""
}

// Resolve selects the variant matching the platform facts.
// Precedence is fixed: desktop > tablet > android/ios > mobile > default.
func Resolve(l Locator, f platform.Facts) (string, error) {
	var picked string
	switch {
	case f.Desktop:
		picked = first(l.Desktop, l.Default)
	case f.Tablet:
		picked = first(l.Tablet, l.Default)
	case f.Android:
		picked = first(l.Android, l.Mobile, l.Default)
	case f.IOS:
		picked = first(l.IOS, l.Mobile, l.Default)
	case f.Mobile:
		picked = first(l.Mobile, l.Default)
	default:
		picked = l.Default
	}

	if picked == "" {
		return "", core.ErrLocator.
			WithMessagef("cannot extract locator for %s platform from %s", f, l.describe()).
			WithDetails(map[string]interface{}{"facts": f.String()})
	}
	return picked, nil
}

func first(candidates ...string) string {
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return ""
}

func (l Locator) describe() string {
	var parts []string
	add := func(k, v string) {
		if v != "" {
			parts = append(parts, k+"="+v)
		}
	}
	add("default", l.Default)
	add("desktop", l.Desktop)
	add("mobile", l.Mobile)
	add("tablet", l.Tablet)
	add("ios", l.IOS)
	add("android", l.Android)
	return "Locator(" + strings.Join(parts, ", ") + ")"
}

// locatorRaw mirrors Locator for mapping-form YAML.
type locatorRaw struct {
	Default string  `yaml:"default"`
	Type    Dialect `yaml:"type"`
	LocType Dialect `yaml:"loc_type"`
	Desktop string  `yaml:"desktop"`
	Mobile  string  `yaml:"mobile"`
	Tablet  string  `yaml:"tablet"`
	IOS     string  `yaml:"ios"`
	Android string  `yaml:"android"`
}

// UnmarshalYAML allows Locator to be unmarshaled from string or mapping.
func (l *Locator) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*l = New(node.Value)
		return nil
	}

	var raw locatorRaw
	if err := node.Decode(&raw); err != nil {
		return err
	}

	*l = Locator{
		Default: raw.Default,
		Type:    raw.Type,
		Desktop: raw.Desktop,
		Mobile:  raw.Mobile,
		Tablet:  raw.Tablet,
		IOS:     raw.IOS,
		Android: raw.Android,
	}
	// "loc_type" is accepted as an alias of "type"
	if l.Type == "" {
		l.Type = raw.LocType
	}
	l.Type = l.Type.Canonical()
	return nil
}
