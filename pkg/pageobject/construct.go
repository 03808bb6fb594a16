package pageobject

import (
	"reflect"

	"github.com/devicelab-dev/pagekit/pkg/locator"
)

// Setupper is implemented by typed pages and groups that create further
// objects at construction time. Setup runs with the object entered on b,
// so objects created there with In(b) are owned by it.
type Setupper interface {
	Setup(b *Builder) error
}

// NewPage instantiates a typed page declaration.
//
//	type LoginPage struct {
//		*pageobject.Page `locator:"#login" url:"https://example.org/login"`
//		Submit *pageobject.Element `locator:"button[type=submit]" wait:"visible"`
//	}
//
//	page, err := pageobject.NewPage[LoginPage]()
func NewPage[T any](opts ...Option) (*T, error) {
	return newTyped[T](kindPage, opts)
}

// NewGroup instantiates a typed group declaration.
func NewGroup[T any](opts ...Option) (*T, error) {
	return newTyped[T](kindGroup, opts)
}

func newTyped[T any](want objectKind, opts []Option) (*T, error) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	bp, err := BlueprintOf(t)
	if err != nil {
		return nil, err
	}
	if bp.kind != want {
		return nil, ErrDeclaration.WithMessagef("%s is a %s declaration, not a %s", t, bp.kind, want)
	}

	obj := bp.instantiate(nil)
	o := collect(opts)
	if err := construct(obj, o); err != nil {
		return nil, err
	}

	b := o.builder
	if b == nil {
		b = NewBuilder()
	}
	if err := runSetup(obj, b); err != nil {
		return nil, err
	}
	return typedOf(obj).(*T), nil
}

// runSetup calls Setup on obj and then on its declared typed children,
// each entered on b for the duration of its hook.
func runSetup(obj Object, b *Builder) error {
	g := obj.node().group
	if g == nil {
		return nil
	}
	declared := g.Children()

	leave := b.Enter(obj)
	defer leave()

	if s, ok := g.typed.(Setupper); ok {
		if err := s.Setup(b); err != nil {
			return err
		}
	}
	for _, c := range declared {
		if err := runSetup(c, b); err != nil {
			return err
		}
	}
	return nil
}

// NewElement creates an element from a locator string or a
// locator.Locator.
func NewElement(loc interface{}, opts ...Option) (*Element, error) {
	l, err := toLocator(loc)
	if err != nil {
		return nil, err
	}
	bp := ElementBlueprint(Decl{Locator: l})
	if err := bp.validate(); err != nil {
		return nil, err
	}

	e := bp.instantiate(nil).(*Element)
	if err := construct(e, collect(opts)); err != nil {
		return nil, err
	}
	return e, nil
}

func toLocator(loc interface{}) (locator.Locator, error) {
	switch l := loc.(type) {
	case string:
		return locator.New(l), nil
	case locator.Locator:
		return l, nil
	case *locator.Locator:
		if l != nil {
			return *l, nil
		}
	}
	return locator.Locator{}, ErrDeclaration.WithMessagef("unsupported locator %T", loc)
}
