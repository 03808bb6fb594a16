package playwright

import (
	"testing"

	"github.com/devicelab-dev/pagekit/pkg/core"
	"github.com/devicelab-dev/pagekit/pkg/platform"
	"github.com/playwright-community/playwright-go"
)

func TestFactsFor(t *testing.T) {
	tests := []struct {
		name string
		opts LaunchOptions
		want platform.Facts
	}{
		{
			name: "desktop",
			opts: LaunchOptions{},
			want: platform.Facts{Desktop: true, Kind: platform.KindEngine},
		},
		{
			name: "mobile",
			opts: LaunchOptions{Mobile: true},
			want: platform.Facts{Mobile: true, Kind: platform.KindEngine},
		},
		{
			name: "tablet implies mobile",
			opts: LaunchOptions{Tablet: true},
			want: platform.Facts{Mobile: true, Tablet: true, Kind: platform.KindEngine},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := factsFor(tt.opts); got != tt.want {
				t.Errorf("factsFor() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestToBounds(t *testing.T) {
	if got := toBounds(nil); got != (core.Bounds{}) {
		t.Errorf("toBounds(nil) = %v", got)
	}

	got := toBounds(&playwright.Rect{X: 1.6, Y: 2, Width: 30.2, Height: 40})
	want := core.Bounds{X: 1, Y: 2, Width: 30, Height: 40}
	if got != want {
		t.Errorf("toBounds() = %v, want %v", got, want)
	}
}

func TestSelectBrowserUnsupported(t *testing.T) {
	if _, err := selectBrowser(&playwright.Playwright{}, "netscape"); err == nil {
		t.Error("expected error for unsupported browser")
	}
}

func TestAsLocatorRejectsForeignHandles(t *testing.T) {
	if _, err := asLocator("element-id"); err == nil {
		t.Error("expected error for string handle")
	}
	if _, err := asLocator(nil); err == nil {
		t.Error("expected error for nil handle")
	}
}

func TestNewFromPageForcesEngineKind(t *testing.T) {
	b := NewFromPage(nil, platform.Facts{Desktop: true, Kind: platform.KindRemote})
	if b.Kind() != platform.KindEngine || b.Facts().Kind != platform.KindEngine {
		t.Errorf("kind = %v / %v", b.Kind(), b.Facts().Kind)
	}
}
