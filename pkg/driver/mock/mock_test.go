package mock

import (
	"errors"
	"testing"

	"github.com/devicelab-dev/pagekit/pkg/driver"
	"github.com/devicelab-dev/pagekit/pkg/locator"
	"github.com/devicelab-dev/pagekit/pkg/platform"
)

var _ driver.Backend = (*Backend)(nil)

func TestNewDefaults(t *testing.T) {
	b := New(Config{})
	if b.Kind() != platform.KindRemote {
		t.Errorf("Kind() = %v", b.Kind())
	}
	if !b.Facts().Desktop || b.Facts().Kind != platform.KindRemote {
		t.Errorf("Facts() = %+v", b.Facts())
	}
	size, _ := b.ViewportSize()
	if size.Width != 1920 || size.Height != 1080 {
		t.Errorf("ViewportSize() = %v", size)
	}
}

func TestLocate(t *testing.T) {
	b := New(Config{})
	row1, row2 := NewElement("row1"), NewElement("row2")
	cell := NewElement("cell")
	row1.Add("td", cell)
	b.Add(".row", row1, row2)

	handles, err := b.Locate(nil, locator.ForRemote(".row", ""))
	if err != nil {
		t.Fatalf("Locate failed: %v", err)
	}
	if len(handles) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(handles))
	}

	children, err := b.Locate(handles[0], locator.ForRemote("td", ""))
	if err != nil {
		t.Fatalf("scoped Locate failed: %v", err)
	}
	if len(children) != 1 || children[0] != cell {
		t.Errorf("scoped Locate() = %v", children)
	}

	none, _ := b.Locate(handles[1], locator.ForRemote("td", ""))
	if len(none) != 0 {
		t.Errorf("row2 should have no cells, got %v", none)
	}

	if b.Calls("Locate") != 3 {
		t.Errorf("Calls(Locate) = %d", b.Calls("Locate"))
	}
}

func TestLocateByLogForm(t *testing.T) {
	b := New(Config{})
	b.Add("id=login", NewElement("login"))

	handles, err := b.Locate(nil, locator.ForRemote("login", ""))
	if err != nil {
		t.Fatalf("Locate failed: %v", err)
	}
	if len(handles) != 1 {
		t.Errorf("expected log-form match, got %v", handles)
	}
}

func TestLocateError(t *testing.T) {
	boom := errors.New("boom")
	b := New(Config{LocateError: boom})

	if _, err := b.Locate(nil, locator.ForRemote("#x", "")); !errors.Is(err, boom) {
		t.Errorf("Locate() error = %v", err)
	}
}

func TestTypeClearPress(t *testing.T) {
	b := New(Config{})
	input := NewElement("input")

	_ = b.Type(input, "hello")
	_ = b.PressKey(input, driver.KeyEnter)
	if input.Value != "hello" {
		t.Errorf("Value = %q", input.Value)
	}
	if got := b.Typed(input); len(got) != 2 || got[1] != "<Enter>" {
		t.Errorf("Typed() = %v", got)
	}

	_ = b.Clear(input)
	if v, _ := b.Value(input); v != "" {
		t.Errorf("Value after Clear = %q", v)
	}
}

func TestSetRemoves(t *testing.T) {
	b := New(Config{})
	b.Add("#x", NewElement("x"))
	b.Set("#x")

	handles, _ := b.Locate(nil, locator.ForRemote("#x", ""))
	if len(handles) != 0 {
		t.Errorf("expected no elements after Set, got %v", handles)
	}
}

func TestNavigateAndClose(t *testing.T) {
	b := New(Config{URL: "about:blank"})

	_ = b.Navigate("https://example.com")
	if url, _ := b.CurrentURL(); url != "https://example.com" {
		t.Errorf("CurrentURL() = %q", url)
	}
	if v := b.Visits(); len(v) != 1 {
		t.Errorf("Visits() = %v", v)
	}

	_ = b.Close()
	if !b.Closed() {
		t.Error("expected Closed() after Close")
	}
}

func TestBadHandle(t *testing.T) {
	b := New(Config{})
	if _, err := b.Text("nope"); err == nil {
		t.Error("expected error for foreign handle")
	}
}
