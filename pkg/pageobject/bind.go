package pageobject

import (
	"errors"
	"reflect"

	"github.com/devicelab-dev/pagekit/pkg/core"
	"github.com/devicelab-dev/pagekit/pkg/locator"
	"github.com/devicelab-dev/pagekit/pkg/logger"
	"github.com/devicelab-dev/pagekit/pkg/session"
)

// normalizerFor picks the locator normalizer for a backend kind.
var normalizerFor = locator.For

// Option configures a constructed object.
type Option func(*options)

type options struct {
	name     string
	wait     *WaitPolicy
	parent   Object
	noParent bool
	session  *session.Session
	source   interface{}
	sourced  bool
	builder  *Builder
}

// Name overrides the display name.
func Name(name string) Option {
	return func(o *options) { o.name = name }
}

// Wait overrides the page-load wait policy.
func Wait(w WaitPolicy) Option {
	return func(o *options) { o.wait = &w }
}

// Parent sets the owner explicitly. It must be a group or page.
func Parent(p Object) Option {
	return func(o *options) { o.parent = p }
}

// NoParent disables owner inference.
func NoParent() Option {
	return func(o *options) { o.noParent = true }
}

// WithSession binds to s regardless of owner or registry state.
func WithSession(s *session.Session) Option {
	return func(o *options) { o.session = s }
}

// SessionOf binds to the session of candidate: a *session.Session or any
// object that has one, such as another page.
func SessionOf(candidate interface{}) Option {
	return func(o *options) {
		o.source = candidate
		o.sourced = true
	}
}

// In lets the object infer its owner and session from the innermost
// group or page entered on b.
func In(b *Builder) Option {
	return func(o *options) { o.builder = b }
}

func collect(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Instantiation

// Instantiate creates a fresh instance of the declaration: an *Element,
// *Group or *Page, or the user struct for typed declarations (use
// NewPage/NewGroup to get it typed).
func (bp *Blueprint) Instantiate(opts ...Option) (Object, error) {
	if err := bp.validate(); err != nil {
		return nil, err
	}
	obj := bp.instantiate(nil)
	if err := construct(obj, collect(opts)); err != nil {
		return nil, err
	}
	return obj, nil
}

// instantiate builds an unbound instance tree owned by parent.
func (bp *Blueprint) instantiate(parent *Group) Object {
	if bp.kind == kindElement {
		e := &Element{}
		e.base = newBase(bp, e)
		e.attach(parent)
		return e
	}

	g := &Group{}
	g.base = newBase(bp, g)
	g.group = g
	g.attach(parent)

	var obj Object = g
	if bp.kind == kindPage {
		p := &Page{Group: g, url: bp.decl.URL}
		p.anchor = &Element{base: g.base}
		g.page = p
		obj = p
	}
	g.self = obj

	var sv reflect.Value
	if bp.goType != nil {
		sv = reflect.New(bp.goType)
		sv.Elem().FieldByIndex(bp.embedIndex).Set(reflect.ValueOf(typedOf(obj)))
		g.typed = sv.Interface()
		g.self = typedSelf(g)
	}

	for _, cbp := range bp.children {
		child := cbp.instantiate(g)
		g.add(cbp.decl.Key, child)
		if sv.IsValid() && cbp.fieldIndex != nil {
			sv.Elem().FieldByIndex(cbp.fieldIndex).Set(reflect.ValueOf(typedOf(child)))
		}
	}
	return g.self
}

// attach records holder as the group listing b. It also becomes the
// owner unless b was declared without a parent.
func (b *base) attach(holder *Group) {
	b.holder = holder
	b.parent = nil
	if !b.noParent {
		b.parent = holder
	}
}

// owner returns the group b takes its session from.
func (b *base) owner() *Group {
	if b.parent != nil {
		return b.parent
	}
	return b.holder
}

// typedSelf returns the user struct as an Object when it is one.
func typedSelf(g *Group) Object {
	if obj, ok := g.typed.(Object); ok {
		return obj
	}
	if g.page != nil {
		return g.page
	}
	return g
}

// construct applies options to a new root object, infers its owner and
// binds it when a session can be resolved.
func construct(obj Object, o *options) error {
	b := obj.node()
	if o.name != "" {
		b.name = o.name
	}
	if o.wait != nil {
		b.wait = *o.wait
	}

	switch {
	case o.noParent || b.noParent:
		b.noParent = true
	case o.parent != nil:
		owner := o.parent.node().group
		if owner == nil {
			return ErrDeclaration.WithMessagef("parent of %q must be a group or page, got %s", b.name, o.parent)
		}
		b.parent = owner
	case o.builder != nil && b.kind != kindPage:
		b.parent = o.builder.enclosing()
	}
	if b.parent != nil {
		b.holder = b.parent
		b.parent.add(b.key, b.self)
	}

	s, err := resolveSession(b, o)
	if err != nil {
		return err
	}
	if s == nil {
		logger.Debug("%s stays declared: no session", b.name)
		return nil
	}
	if b.bound && b.session == s {
		return nil
	}
	return b.bindTree(s)
}

// resolveSession applies the resolution order: explicit session or the
// session of another object, owner's session, enclosing builder frame when
// several sessions exist, then the registry's current session.
func resolveSession(b *base, o *options) (*session.Session, error) {
	if o.session != nil {
		return o.session, nil
	}
	if o.sourced {
		return sessionFrom(o.source)
	}

	if owner := b.owner(); owner != nil {
		err := owner.ensureBound()
		if err == nil {
			return owner.session, nil
		}
		if !errors.Is(err, core.ErrNotBound) {
			return nil, err
		}
	}

	if o.builder != nil && session.Count() > 1 {
		s, err := o.builder.inferSession(b.name)
		if err != nil {
			return nil, err
		}
		if s != nil {
			return s, nil
		}
	}

	return session.Current(), nil
}

// sessionFrom resolves the session of candidate, binding it first when it
// is a declared object that can bind.
func sessionFrom(candidate interface{}) (*session.Session, error) {
	if obj, ok := candidate.(Object); ok && !obj.IsBound() {
		if err := obj.node().ensureBound(); err != nil && !errors.Is(err, core.ErrNotBound) {
			return nil, err
		}
	}
	return session.Resolve(candidate)
}

// ensureBound binds a declared object on first use, through its owner
// when it has one.
func (b *base) ensureBound() error {
	if b.bound {
		return nil
	}

	if owner := b.owner(); owner != nil {
		if err := owner.ensureBound(); err != nil {
			return err
		}
		if b.bound {
			return nil
		}
		return b.bindTree(owner.session)
	}

	s := session.Current()
	if s == nil {
		return core.ErrNotBound.WithMessagef("%q is not bound to any session", b.name).
			WithDetails(map[string]interface{}{"name": b.name})
	}
	return b.bindTree(s)
}

// bindTree binds the object and every child to s.
func (b *base) bindTree(s *session.Session) error {
	if err := b.bind(s); err != nil {
		return err
	}
	if b.group == nil {
		return nil
	}
	for _, c := range b.group.children {
		if err := c.node().bindTree(s); err != nil {
			return err
		}
	}
	return nil
}

// bind resolves the platform variant, normalizes it for the session's
// backend kind and attaches the session.
func (b *base) bind(s *session.Session) error {
	var resolved locator.Normalized
	if !b.loc.IsZero() {
		raw, err := locator.Resolve(b.loc, s.Facts())
		if err != nil {
			var ee *core.ExecutionError
			if errors.As(err, &ee) {
				return ee.WithDetails(map[string]interface{}{"name": b.name})
			}
			return err
		}
		resolved = normalizerFor(s.Facts().Kind)(raw, b.loc.Type)
	}

	b.session = s
	b.backend = s.Backend()
	b.resolved = resolved
	b.bound = true

	logger.Debug("Bind %q to %s as %s", b.name, s.Label(), resolved.Log)
	return nil
}

// Rebinding

// On returns a copy of the element bound to s. The owner chain is copied
// too, so the receiver and its tree are left untouched.
func (e *Element) On(s *session.Session) (*Element, error) {
	c, err := rebind(e, s)
	if err != nil {
		return nil, err
	}
	if el, ok := c.(*Element); ok {
		return el, nil
	}
	// A page anchor shares its page's node.
	return c.node().group.page.anchor, nil
}

// On returns a copy of the group, with its whole subtree, bound to s.
func (g *Group) On(s *session.Session) (*Group, error) {
	c, err := rebind(g.self, s)
	if err != nil {
		return nil, err
	}
	return c.node().group, nil
}

// On returns a copy of the page, with its whole subtree, bound to s.
func (p *Page) On(s *session.Session) (*Page, error) {
	c, err := rebind(p.self, s)
	if err != nil {
		return nil, err
	}
	return c.node().group.page, nil
}

// Rebind returns a deep copy of a typed page or group bound to s.
func Rebind[T any](obj *T, s *session.Session) (*T, error) {
	o, ok := interface{}(obj).(Object)
	if !ok {
		return nil, ErrDeclaration.WithMessagef("%T does not embed *Group or *Page", obj)
	}
	c, err := rebind(o, s)
	if err != nil {
		return nil, err
	}
	typed, ok := typedOf(c).(*T)
	if !ok {
		return nil, ErrDeclaration.WithMessagef("rebind of %T produced %T", obj, typedOf(c))
	}
	return typed, nil
}

// rebind copies the whole tree containing obj and binds the copy to s.
// It returns the copy corresponding to obj.
func rebind(obj Object, s *session.Session) (Object, error) {
	if s == nil {
		return nil, core.ErrSessionResolution.WithMessagef("cannot rebind %q to a nil session", obj.Name())
	}

	root := obj.node()
	for root.owner() != nil {
		root = root.owner().base
	}

	copies := make(map[*base]Object)
	newRoot := cloneObject(root.self, nil, copies)
	if err := newRoot.node().bindTree(s); err != nil {
		return nil, err
	}

	logger.Info("Rebind %q to %s", obj.Name(), s.Label())
	return copies[obj.node()], nil
}

// cloneObject deep-copies obj and its subtree under parent, recording
// every copy in copies.
func cloneObject(obj Object, parent *Group, copies map[*base]Object) Object {
	old := obj.node()
	nb := *old
	nb.attach(parent)
	nb.session = nil
	nb.backend = nil
	nb.resolved = locator.Normalized{}
	nb.bound = false

	if old.group == nil {
		e := &Element{base: &nb}
		nb.self = e
		copies[old] = e
		return e
	}

	og := old.group
	g := &Group{base: &nb}
	nb.group = g

	var self Object = g
	if og.page != nil {
		p := &Page{Group: g, url: og.page.url}
		p.anchor = &Element{base: &nb}
		g.page = p
		self = p
	}
	nb.self = self

	mapping := make(map[interface{}]interface{})
	var nv reflect.Value
	if og.typed != nil {
		ov := reflect.ValueOf(og.typed)
		nv = reflect.New(ov.Elem().Type())
		nv.Elem().Set(ov.Elem())
		if og.page != nil {
			mapping[og.page] = g.page
		} else {
			mapping[og] = g
		}
	}

	for _, c := range og.children {
		nc := cloneObject(c, g, copies)
		g.add(c.node().key, nc)
		mapping[typedOf(c)] = typedOf(nc)
	}

	if nv.IsValid() {
		rewireFields(nv.Elem(), mapping)
		g.typed = nv.Interface()
		nb.self = typedSelf(g)
	}
	copies[old] = nb.self
	return nb.self
}

// rewireFields points every settable pointer field of v that refers to an
// original object at its copy.
func rewireFields(v reflect.Value, mapping map[interface{}]interface{}) {
	for i := 0; i < v.NumField(); i++ {
		f := v.Field(i)
		if !f.CanSet() || f.Kind() != reflect.Ptr || f.IsNil() {
			continue
		}
		if repl, ok := mapping[f.Interface()]; ok {
			f.Set(reflect.ValueOf(repl))
		}
	}
}
