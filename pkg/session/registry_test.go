package session

import (
	"errors"
	"testing"

	"github.com/devicelab-dev/pagekit/pkg/core"
	"github.com/devicelab-dev/pagekit/pkg/driver/mock"
	"github.com/devicelab-dev/pagekit/pkg/platform"
)

func TestRegister(t *testing.T) {
	Reset()
	defer Reset()

	if Current() != nil {
		t.Fatal("empty registry should have no current session")
	}

	first := Register(mock.New(mock.Config{}))
	second := RegisterNamed("pixel", mock.New(mock.Config{
		Kind:  platform.KindMobile,
		Facts: platform.Facts{Mobile: true, Android: true},
	}))

	if first.Label() != "1_driver" || second.Label() != "2_driver" {
		t.Errorf("labels = %s, %s", first.Label(), second.Label())
	}
	if Current() != second {
		t.Error("most recently registered session should be current")
	}
	if Count() != 2 || len(All()) != 2 || All()[0] != first {
		t.Errorf("All() = %v", All())
	}
	if got := second.Facts(); got.Kind != platform.KindMobile || !got.Android {
		t.Errorf("Facts() = %+v", got)
	}

	s, ok := Lookup("pixel")
	if !ok || s != second {
		t.Errorf("Lookup(pixel) = %v, %v", s, ok)
	}
	if _, ok := Lookup("missing"); ok {
		t.Error("Lookup(missing) should fail")
	}
}

func TestCloseKeepsIndex(t *testing.T) {
	Reset()
	defer Reset()

	backend := mock.New(mock.Config{})
	s := Register(backend)
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if !backend.Closed() {
		t.Error("backend not closed")
	}

	next := Register(mock.New(mock.Config{}))
	if next.Label() != "2_driver" {
		t.Errorf("closed sessions must keep their index, got %s", next.Label())
	}
}

type bound struct{ s *Session }

func (b bound) Session() *Session { return b.s }

func TestResolve(t *testing.T) {
	Reset()
	defer Reset()

	s := Register(mock.New(mock.Config{}))

	tests := []struct {
		name      string
		candidate interface{}
		want      *Session
		wantErr   error
	}{
		{"session", s, s, nil},
		{"provider", bound{s}, s, nil},
		{"unbound provider", bound{}, nil, core.ErrSessionResolution},
		{"nil session", (*Session)(nil), nil, core.ErrAmbiguousBinding},
		{"other", "driver", nil, core.ErrAmbiguousBinding},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.candidate)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Resolve() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNilSessionString(t *testing.T) {
	var s *Session
	if s.String() != "unbound" {
		t.Errorf("String() = %q", s.String())
	}
}
