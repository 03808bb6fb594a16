package locator

import (
	"errors"
	"testing"

	"github.com/devicelab-dev/pagekit/pkg/core"
	"github.com/devicelab-dev/pagekit/pkg/platform"
	"gopkg.in/yaml.v3"
)

var (
	desktop = platform.Facts{Desktop: true, Kind: platform.KindRemote}
	tablet  = platform.Facts{Mobile: true, Tablet: true, Android: true, Kind: platform.KindMobile}
	android = platform.Facts{Mobile: true, Android: true, Kind: platform.KindMobile}
	ios     = platform.Facts{Mobile: true, IOS: true, Kind: platform.KindMobile}
	mobile  = platform.Facts{Mobile: true, Kind: platform.KindEngine}
)

func TestResolve(t *testing.T) {
	full := Locator{
		Default: "default",
		Desktop: "desktop",
		Mobile:  "mobile",
		Tablet:  "tablet",
		IOS:     "ios",
		Android: "android",
	}

	tests := []struct {
		name  string
		loc   Locator
		facts platform.Facts
		want  string
	}{
		{"plain string desktop", New("x"), desktop, "x"},
		{"plain string android", New("x"), android, "x"},
		{"android variant", Locator{Default: "x", Android: "y"}, android, "y"},
		{"android variant on desktop", Locator{Default: "x", Android: "y"}, desktop, "x"},
		{"desktop wins", full, desktop, "desktop"},
		{"tablet beats android", full, tablet, "tablet"},
		{"android", full, android, "android"},
		{"ios", full, ios, "ios"},
		{"generic mobile", full, mobile, "mobile"},
		{"ios falls back to mobile", Locator{Default: "d", Mobile: "m"}, ios, "m"},
		{"android falls back to default", Locator{Default: "d", IOS: "i"}, android, "d"},
		{"tablet skips mobile", Locator{Default: "d", Mobile: "m"}, tablet, "d"},
		{"no facts uses default", full, platform.Facts{}, "default"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.loc, tt.facts)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolve_NoVariant(t *testing.T) {
	tests := []struct {
		loc   Locator
		facts platform.Facts
	}{
		{Locator{Android: "a"}, desktop},
		{Locator{Desktop: "d"}, ios},
		{Locator{}, desktop},
		{Locator{Mobile: "m"}, tablet},
	}

	for _, tt := range tests {
		_, err := Resolve(tt.loc, tt.facts)
		if !errors.Is(err, core.ErrLocator) {
			t.Errorf("Resolve(%+v, %s) error = %v, want ErrLocator", tt.loc, tt.facts, err)
		}
	}
}

// Resolve must return either a string or a locator error for every
// combination of variants and facts.
func TestResolve_Total(t *testing.T) {
	values := []string{"", "v"}
	bools := []bool{false, true}

	for _, d := range values {
		for _, m := range values {
			for _, a := range values {
				loc := Locator{Default: d, Mobile: m, Android: a, Desktop: a, IOS: m}
				for _, isDesktop := range bools {
					for _, isTablet := range bools {
						for _, isAndroid := range bools {
							f := platform.Facts{Desktop: isDesktop, Tablet: isTablet, Android: isAndroid, Mobile: !isDesktop}
							got, err := Resolve(loc, f)
							if err == nil && got == "" {
								t.Fatalf("Resolve(%+v, %+v) returned empty string without error", loc, f)
							}
							if err != nil && core.CategoryOf(err) != core.ErrCategoryLocator {
								t.Fatalf("Resolve(%+v, %+v) returned unrelated error %v", loc, f, err)
							}
						}
					}
				}
			}
		}
	}
}

func TestLocator_String(t *testing.T) {
	if got := New("#a").String(); got != "#a" {
		t.Errorf("String() = %q", got)
	}
	if got := (Locator{IOS: "i", Android: "a"}).String(); got != "a" {
		t.Errorf("String() = %q, want first declared variant", got)
	}
	if !(Locator{}).IsZero() {
		t.Error("zero locator should report IsZero")
	}
	if (Locator{Tablet: "t"}).IsZero() {
		t.Error("tablet-only locator is not zero")
	}
	if !(Locator{Default: "x", Tablet: "t"}).HasVariants() {
		t.Error("HasVariants() should be true")
	}
}

func TestLocator_UnmarshalYAML(t *testing.T) {
	var doc struct {
		Plain  Locator `yaml:"plain"`
		Mapped Locator `yaml:"mapped"`
		Legacy Locator `yaml:"legacy"`
	}

	src := `
plain: "#login"
mapped:
  default: delement
  ios: ielement
  android: aelement
  type: css
legacy:
  default: //div
  loc_type: xpath
`
	if err := yaml.Unmarshal([]byte(src), &doc); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if doc.Plain != New("#login") {
		t.Errorf("plain = %+v", doc.Plain)
	}
	want := Locator{Default: "delement", IOS: "ielement", Android: "aelement", Type: CSS}
	if doc.Mapped != want {
		t.Errorf("mapped = %+v, want %+v", doc.Mapped, want)
	}
	if doc.Legacy.Type != XPath {
		t.Errorf("legacy type = %q, want xpath", doc.Legacy.Type)
	}
}
