package pageobject

import (
	"errors"
	"testing"
	"time"

	"github.com/devicelab-dev/pagekit/pkg/core"
	"github.com/devicelab-dev/pagekit/pkg/driver/mock"
	"github.com/devicelab-dev/pagekit/pkg/locator"
	"github.com/devicelab-dev/pagekit/pkg/session"
	"github.com/google/go-cmp/cmp"
)

func loginAnchor() locator.Locator {
	return locator.New("#login")
}

func newLoginPage(t *testing.T) (*loginPage, *mock.Backend) {
	t.Helper()
	resetRegistry(t)
	m, _ := newLoginBackend()
	session.Register(m)
	p, err := NewPage[loginPage]()
	if err != nil {
		t.Fatalf("NewPage() error = %v", err)
	}
	return p, m
}

func TestWaitPageLoaded(t *testing.T) {
	p, _ := newLoginPage(t)

	if err := p.WaitPageLoaded(time.Second); err != nil {
		t.Fatalf("WaitPageLoaded() error = %v", err)
	}
}

func TestWaitPageLoadedAnchorFirst(t *testing.T) {
	p, m := newLoginPage(t)
	m.Set("#login")

	err := p.WaitPageLoaded(30 * time.Millisecond)
	if !errors.Is(err, core.ErrElementNotVisible) {
		t.Fatalf("WaitPageLoaded() error = %v, want ErrElementNotVisible", err)
	}
	want := `"loginPage" is not visible after 0.03 seconds. Selector='css=#login'`
	if err.Error() != want {
		t.Errorf("error = %q, want %q", err.Error(), want)
	}
	// The form is rendered; checking it would have asked for its state.
	if m.Calls("IsDisplayed") != 0 {
		t.Errorf("children were evaluated after the anchor failed: %d IsDisplayed calls", m.Calls("IsDisplayed"))
	}
}

func TestWaitPageLoadedJoinsChildFailures(t *testing.T) {
	p, m := newLoginPage(t)
	m.Set(".form")
	m.Add(".spinner", mock.NewElement("spinner"))

	err := p.WaitPageLoaded(20 * time.Millisecond)
	if err == nil {
		t.Fatal("WaitPageLoaded() succeeded with a missing form and a visible spinner")
	}
	if !errors.Is(err, core.ErrElementNotVisible) {
		t.Errorf("error %v does not report the missing form", err)
	}
	if !errors.Is(err, core.ErrElementNotHidden) {
		t.Errorf("error %v does not report the visible spinner", err)
	}
}

func TestWaitPageLoadedOnlyDirectChildren(t *testing.T) {
	p, m := newLoginPage(t)
	// User is declared visible inside the form, but only direct children
	// of the page are checked.
	m.Set(".form", mock.NewElement("empty-form"))

	if err := p.WaitPageLoaded(20 * time.Millisecond); err != nil {
		t.Fatalf("WaitPageLoaded() error = %v", err)
	}
}

func TestIsPageOpened(t *testing.T) {
	tests := []struct {
		name         string
		prepare      func(m *mock.Backend)
		withElements bool
		withURL      bool
		want         bool
	}{
		{"anchor only", func(m *mock.Backend) {}, false, false, true},
		{"anchor missing", func(m *mock.Backend) { m.Set("#login") }, false, false, false},
		{"elements", func(m *mock.Backend) {}, true, false, true},
		{"form missing", func(m *mock.Backend) { m.Set(".form") }, true, false, false},
		{"form missing without element check", func(m *mock.Backend) { m.Set(".form") }, false, false, true},
		{"url matches", func(m *mock.Backend) { m.Config.URL = "https://example.org/login" }, false, true, true},
		{"url differs", func(m *mock.Backend) { m.Config.URL = "https://example.org/home" }, false, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, m := newLoginPage(t)
			tt.prepare(m)

			got, err := p.IsPageOpened(tt.withElements, tt.withURL)
			if err != nil {
				t.Fatalf("IsPageOpened() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("IsPageOpened(%v, %v) = %v, want %v", tt.withElements, tt.withURL, got, tt.want)
			}
		})
	}
}

func TestOpen(t *testing.T) {
	p, m := newLoginPage(t)

	if err := p.Open(""); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := p.Open("https://example.org/login?next=/"); err != nil {
		t.Fatalf("Open(url) error = %v", err)
	}

	want := []string{"https://example.org/login", "https://example.org/login?next=/"}
	if diff := cmp.Diff(want, m.Visits()); diff != "" {
		t.Errorf("visits mismatch (-want +got):\n%s", diff)
	}
}

func TestOpenWithoutURL(t *testing.T) {
	resetRegistry(t)
	m, _ := newLoginBackend()
	session.Register(m)

	p, err := PageBlueprint(Decl{Name: "Blank", Locator: loginAnchor()}).Instantiate()
	if err != nil {
		t.Fatalf("Instantiate() error = %v", err)
	}
	if err := p.(*Page).Open(""); !errors.Is(err, ErrDeclaration) {
		t.Errorf("Open() error = %v, want ErrDeclaration", err)
	}
	if len(m.Visits()) != 0 {
		t.Errorf("visits = %v, want none", m.Visits())
	}
}

func TestIsPageOpenedWithoutURL(t *testing.T) {
	resetRegistry(t)
	m, _ := newLoginBackend()
	m.Config.URL = "https://example.org/anywhere"
	session.Register(m)

	p, err := PageBlueprint(Decl{Name: "Blank", Locator: loginAnchor()}).Instantiate()
	if err != nil {
		t.Fatalf("Instantiate() error = %v", err)
	}
	opened, err := p.(*Page).IsPageOpened(false, true)
	if err != nil {
		t.Fatalf("IsPageOpened() error = %v", err)
	}
	if !opened {
		t.Error("IsPageOpened(false, true) = false for a page without url")
	}
	if n := m.Calls("CurrentURL"); n != 0 {
		t.Errorf("CurrentURL calls = %d, want 0", n)
	}
}

func TestOpenUnbound(t *testing.T) {
	resetRegistry(t)

	p, err := NewPage[loginPage]()
	if err != nil {
		t.Fatalf("NewPage() error = %v", err)
	}
	if err := p.Open(""); !errors.Is(err, core.ErrNotBound) {
		t.Errorf("Open() error = %v, want ErrNotBound", err)
	}
}

func TestReload(t *testing.T) {
	p, m := newLoginPage(t)

	if err := p.Reload(false); err != nil {
		t.Fatalf("Reload(false) error = %v", err)
	}
	if m.Calls("Locate") != 0 {
		t.Errorf("Reload(false) located elements: %d", m.Calls("Locate"))
	}
	if err := p.Reload(true); err != nil {
		t.Fatalf("Reload(true) error = %v", err)
	}
	if m.Calls("Refresh") != 2 {
		t.Errorf("Refresh calls = %d, want 2", m.Calls("Refresh"))
	}
	if m.Calls("Locate") == 0 {
		t.Error("Reload(true) did not wait for the page")
	}
}

func TestPageOn(t *testing.T) {
	resetRegistry(t)
	m1, _ := newLoginBackend()
	m2, _ := newLoginBackend()
	s1 := session.Register(m1)
	s2 := session.Register(m2)

	p, err := PageBlueprint(Decl{Name: "Login", Locator: loginAnchor(), URL: "https://example.org/login"}).Instantiate(WithSession(s1))
	if err != nil {
		t.Fatalf("Instantiate() error = %v", err)
	}
	page := p.(*Page)

	copied, err := page.On(s2)
	if err != nil {
		t.Fatalf("On() error = %v", err)
	}
	if copied == page || copied.Session() != s2 || page.Session() != s1 {
		t.Fatal("On did not produce an independent copy")
	}
	if copied.URL() != page.URL() || copied.Anchor().Session() != s2 {
		t.Errorf("copy = %v", copied)
	}
	if err := copied.Open(""); err != nil {
		t.Fatalf("Open() on copy error = %v", err)
	}
	if len(m1.Visits()) != 0 || len(m2.Visits()) != 1 {
		t.Errorf("visits: first=%v second=%v", m1.Visits(), m2.Visits())
	}
}
