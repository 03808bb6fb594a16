// Package session keeps the process-wide registry of automation sessions.
//
// The registry is append-only: sessions keep their 1-based index for the
// life of the process, even after their backend is closed, so log lines
// and error messages stay comparable across a test run.
package session

import (
	"fmt"
	"sync"

	"github.com/devicelab-dev/pagekit/pkg/core"
	"github.com/devicelab-dev/pagekit/pkg/driver"
	"github.com/devicelab-dev/pagekit/pkg/logger"
	"github.com/devicelab-dev/pagekit/pkg/platform"
)

// Session is a registered backend connection.
type Session struct {
	backend driver.Backend
	facts   platform.Facts
	index   int
	name    string
}

// Backend returns the backend the session drives.
func (s *Session) Backend() driver.Backend {
	return s.backend
}

// Facts returns the platform facts computed at registration.
func (s *Session) Facts() platform.Facts {
	return s.facts
}

// Index returns the 1-based registration index.
func (s *Session) Index() int {
	return s.index
}

// Name returns the configured session name, if any.
func (s *Session) Name() string {
	return s.name
}

// Label returns the display label, e.g. "2_driver".
func (s *Session) Label() string {
	return fmt.Sprintf("%d_driver", s.index)
}

func (s *Session) String() string {
	if s == nil {
		return "unbound"
	}
	return s.Label()
}

// Close closes the backend. The session stays registered.
func (s *Session) Close() error {
	logger.Info("Close session %s", s.Label())
	return s.backend.Close()
}

// Provider is implemented by anything bound to a session.
type Provider interface {
	Session() *Session
}

var (
	mu       sync.Mutex
	sessions []*Session
)

// Register adds a backend to the registry and makes it the current session.
func Register(backend driver.Backend) *Session {
	return RegisterNamed("", backend)
}

// RegisterNamed is Register with a configured name, used by Lookup.
func RegisterNamed(name string, backend driver.Backend) *Session {
	mu.Lock()
	defer mu.Unlock()

	facts := backend.Facts()
	facts.Kind = backend.Kind()

	s := &Session{
		backend: backend,
		facts:   facts,
		index:   len(sessions) + 1,
		name:    name,
	}
	sessions = append(sessions, s)

	logger.Info("Register session %s (%s)", s.Label(), facts)
	return s
}

// Current returns the most recently registered session, or nil.
func Current() *Session {
	mu.Lock()
	defer mu.Unlock()

	if len(sessions) == 0 {
		return nil
	}
	return sessions[len(sessions)-1]
}

// All returns the registered sessions in registration order.
func All() []*Session {
	mu.Lock()
	defer mu.Unlock()

	return append([]*Session(nil), sessions...)
}

// Count returns the number of registered sessions.
func Count() int {
	mu.Lock()
	defer mu.Unlock()

	return len(sessions)
}

// Lookup returns the first session registered under name.
func Lookup(name string) (*Session, bool) {
	mu.Lock()
	defer mu.Unlock()

	for _, s := range sessions {
		if s.name == name {
			return s, true
		}
	}
	return nil, false
}

// Reset empties the registry. Indices restart at 1.
// Intended for tests and for CLI runs that reconnect from scratch.
func Reset() {
	mu.Lock()
	defer mu.Unlock()

	sessions = nil
}

// Resolve returns the session for candidate, which is either a *Session or
// a Provider.
func Resolve(candidate interface{}) (*Session, error) {
	switch c := candidate.(type) {
	case *Session:
		if c != nil {
			return c, nil
		}
	case Provider:
		if s := c.Session(); s != nil {
			return s, nil
		}
		return nil, core.ErrSessionResolution.WithMessagef("%v is not bound to a session", c)
	}
	return nil, core.ErrAmbiguousBinding.WithMessagef("cannot resolve a session from %T", candidate)
}
