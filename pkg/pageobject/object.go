// Package pageobject binds declared elements, groups and pages to
// automation sessions.
//
// Declarations are immutable blueprints, either parsed from struct tags or
// built in code. Every construction produces a fresh instance tree, so two
// pages built from the same declaration never share binding state. An
// instance binds to a session when one can be resolved: explicitly, from
// its owner, from the enclosing Builder frame, or from the registry. Until
// then it stays declared and binds on first use.
package pageobject

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/devicelab-dev/pagekit/pkg/driver"
	"github.com/devicelab-dev/pagekit/pkg/locator"
	"github.com/devicelab-dev/pagekit/pkg/session"
)

// Default timeouts for element waits and page loading.
var (
	DefaultWait     = 10 * time.Second
	DefaultPageWait = 20 * time.Second
)

// WaitPolicy tells WaitPageLoaded what to expect from a child.
type WaitPolicy int

const (
	WaitIgnored WaitPolicy = iota
	WaitVisible
	WaitHidden
)

func (w WaitPolicy) String() string {
	switch w {
	case WaitVisible:
		return "visible"
	case WaitHidden:
		return "hidden"
	}
	return "ignored"
}

// ParseWaitPolicy parses "visible", "hidden" or an empty string.
func ParseWaitPolicy(s string) (WaitPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "ignored":
		return WaitIgnored, nil
	case "visible", "true":
		return WaitVisible, nil
	case "hidden", "false":
		return WaitHidden, nil
	}
	return WaitIgnored, ErrDeclaration.WithMessagef("unknown wait policy %q", s)
}

// Object is implemented by elements, groups, pages and by user structs
// embedding *Group or *Page.
type Object interface {
	Name() string
	Session() *session.Session
	IsBound() bool
	String() string
	node() *base
}

// base is the state shared by every object kind.
type base struct {
	bp   *Blueprint
	kind objectKind
	key  string
	name string
	loc  locator.Locator
	wait WaitPolicy

	noParent bool
	parent   *Group // owner: search scope and selector chain
	holder   *Group // group listing this node among its children
	group    *Group // set when this node is a group or page
	self     Object

	session  *session.Session
	backend  driver.Backend
	resolved locator.Normalized
	bound    bool

	pinned driver.Handle // set for elements produced by All
}

func newBase(bp *Blueprint, self Object) *base {
	return &base{
		bp:       bp,
		kind:     bp.kind,
		key:      bp.decl.Key,
		name:     bp.decl.Name,
		loc:      bp.decl.Locator,
		wait:     bp.decl.Wait,
		noParent: bp.decl.NoParent,
		self:     self,
	}
}

func (b *base) node() *base {
	return b
}

// Name returns the display name.
func (b *base) Name() string {
	return b.name
}

// Key returns the lookup key inside the owning group.
func (b *base) Key() string {
	return b.key
}

// Locator returns the declared locator.
func (b *base) Locator() locator.Locator {
	return b.loc
}

// Resolved returns the backend-ready locator, zero until bound.
func (b *base) Resolved() locator.Normalized {
	return b.resolved
}

// Session returns the bound session, nil while declared.
func (b *base) Session() *session.Session {
	return b.session
}

// IsBound returns true once a session is attached.
func (b *base) IsBound() bool {
	return b.bound
}

// WaitPolicy returns the page-load expectation for this object.
func (b *base) WaitPolicy() WaitPolicy {
	return b.wait
}

// Parent returns the owning group or page, nil for roots.
func (b *base) Parent() Object {
	if b.parent == nil {
		return nil
	}
	return b.parent.self
}

// label is the type-level name used in renderings: the Go struct name for
// typed declarations, the display name otherwise.
func (b *base) label() string {
	if b.group != nil && b.group.typed != nil {
		return reflect.TypeOf(b.group.typed).Elem().Name()
	}
	return b.name
}

func (b *base) locatorText() string {
	if b.bound && b.resolved.Log != "" {
		return b.resolved.Log
	}
	return b.loc.String()
}

// String renders the object like
// Element(locator="css=.x", name="x", parent=Form) at 1_driver.
func (b *base) String() string {
	parent := "None"
	if b.parent != nil {
		parent = b.parent.label()
	}
	return fmt.Sprintf("%s(locator=%q, name=%q, parent=%s) at %s",
		b.kind, b.locatorText(), b.name, parent, b.session)
}

// SelectorInfo renders the located ancestor chain, outermost first:
// Selector='css=.form >> id=submit'.
func (b *base) SelectorInfo() string {
	var chain []string
	for p := b.parent; p != nil; p = p.parent {
		if p.page != nil {
			break
		}
		if !p.loc.IsZero() {
			chain = append([]string{p.locatorText()}, chain...)
		}
	}
	chain = append(chain, b.locatorText())
	return fmt.Sprintf("Selector='%s'", strings.Join(chain, " >> "))
}

// Element is a single UI element.
type Element struct {
	*base
}

// Group owns named child objects. A group with a locator is a search scope
// for its children; a group without one is a plain container.
type Group struct {
	*base

	page     *Page // set when the group is a page's body
	children []Object
	byKey    map[string]Object
	typed    interface{} // user struct pointer for typed declarations
}

func (g *Group) add(key string, child Object) {
	if g.byKey == nil {
		g.byKey = make(map[string]Object)
	}
	if _, exists := g.byKey[key]; !exists {
		g.byKey[key] = child
	}
	g.children = append(g.children, child)
}

// Children returns the child objects in declaration order, followed by
// objects attached at runtime.
func (g *Group) Children() []Object {
	return append([]Object(nil), g.children...)
}

// Child returns the child registered under key.
func (g *Group) Child(key string) Object {
	return g.byKey[key]
}

// ChildElement returns the child element registered under key, or nil.
func (g *Group) ChildElement(key string) *Element {
	e, _ := g.byKey[key].(*Element)
	return e
}

// ChildGroup returns the child group or page body registered under key,
// or nil.
func (g *Group) ChildGroup(key string) *Group {
	if c, ok := g.byKey[key]; ok && c.node().group != nil {
		return c.node().group
	}
	return nil
}

// Typed returns the user struct for typed declarations, nil otherwise.
func (g *Group) Typed() interface{} {
	return g.typed
}

// Page is a group whose own locator is the anchor that tells whether the
// page is open. Pages are not a search scope: children are located from
// the document root.
type Page struct {
	*Group

	url    string
	anchor *Element
}

// URL returns the declared page URL.
func (p *Page) URL() string {
	return p.url
}

// Anchor returns the element that marks the page as loaded.
func (p *Page) Anchor() *Element {
	return p.anchor
}

// typedOf returns the value user code holds for obj: the user struct for
// typed groups and pages, the object itself otherwise.
func typedOf(obj Object) interface{} {
	n := obj.node()
	if n.group != nil {
		if n.group.typed != nil {
			return n.group.typed
		}
		if n.group.page != nil {
			return n.group.page
		}
		return n.group
	}
	return obj
}
