package pageobject

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/devicelab-dev/pagekit/pkg/core"
	"github.com/devicelab-dev/pagekit/pkg/locator"
)

// ErrDeclaration reports a malformed page, group or element declaration.
var ErrDeclaration = core.NewExecutionError(core.ErrCategoryBinding, "invalid_declaration",
	"invalid page object declaration")

type objectKind int

const (
	kindElement objectKind = iota
	kindGroup
	kindPage
)

func (k objectKind) String() string {
	switch k {
	case kindGroup:
		return "Group"
	case kindPage:
		return "Page"
	}
	return "Element"
}

// Decl is the configuration shared by every declaration kind.
type Decl struct {
	Key      string // lookup key inside the owning group; defaults to Name
	Name     string // display name; defaults to the locator text, then Key
	Locator  locator.Locator
	Wait     WaitPolicy
	NoParent bool   // never infer an owner
	URL      string // pages only
}

// Blueprint is an immutable declaration. It is shared by every instance
// created from it and never modified after construction.
type Blueprint struct {
	kind     objectKind
	decl     Decl
	children []*Blueprint

	// typed declarations
	goType     reflect.Type // struct type, nil for untyped blueprints
	embedIndex []int        // index of the embedded *Group or *Page
	fieldIndex []int        // index of this child in the owner's struct
}

// ElementBlueprint declares an element.
func ElementBlueprint(d Decl) *Blueprint {
	return &Blueprint{kind: kindElement, decl: normalizeDecl(d)}
}

// GroupBlueprint declares a group owning children. A zero locator makes
// the group a pure container whose children are located in its owner's
// scope.
func GroupBlueprint(d Decl, children ...*Blueprint) *Blueprint {
	return &Blueprint{kind: kindGroup, decl: normalizeDecl(d), children: children}
}

// PageBlueprint declares a page. Its locator is the anchor element.
func PageBlueprint(d Decl, children ...*Blueprint) *Blueprint {
	return &Blueprint{kind: kindPage, decl: normalizeDecl(d), children: children}
}

func normalizeDecl(d Decl) Decl {
	if d.Name == "" {
		d.Name = d.Locator.String()
	}
	if d.Name == "" {
		d.Name = d.Key
	}
	if d.Key == "" {
		d.Key = d.Name
	}
	return d
}

// Key returns the lookup key of the declaration.
func (bp *Blueprint) Key() string {
	return bp.decl.Key
}

// Name returns the display name of the declaration.
func (bp *Blueprint) Name() string {
	return bp.decl.Name
}

// IsPage returns true for page declarations.
func (bp *Blueprint) IsPage() bool {
	return bp.kind == kindPage
}

// Children returns the child declarations in declaration order.
func (bp *Blueprint) Children() []*Blueprint {
	return append([]*Blueprint(nil), bp.children...)
}

func (bp *Blueprint) validate() error {
	if bp.kind == kindElement && bp.decl.Locator.IsZero() {
		return ErrDeclaration.WithMessagef("element %q has no locator", bp.decl.Key)
	}
	if bp.kind == kindPage && bp.decl.Locator.IsZero() {
		return ErrDeclaration.WithMessagef("page %q has no anchor locator", bp.decl.Key)
	}
	for _, c := range bp.children {
		if c.kind == kindPage {
			return ErrDeclaration.WithMessagef("page %q cannot be a child of %q", c.decl.Key, bp.decl.Key)
		}
		if err := c.validate(); err != nil {
			return err
		}
	}
	return nil
}

// Struct tag declarations

var (
	elementPtrType = reflect.TypeOf((*Element)(nil))
	groupPtrType   = reflect.TypeOf((*Group)(nil))
	pagePtrType    = reflect.TypeOf((*Page)(nil))

	blueprintCache sync.Map // reflect.Type -> *Blueprint
)

// BlueprintOf parses a struct type embedding *Group or *Page into a
// blueprint. Results are cached per type.
//
// Recognised tags: locator, type, desktop, mobile, tablet, ios, android,
// name, wait (visible|hidden), parent (none) and url (pages only). Tags on
// the embedded *Group or *Page field configure the struct itself; tags on
// a field holding another group struct override that group's own.
// *Element fields without a locator are left for the caller to fill.
func BlueprintOf(t reflect.Type) (*Blueprint, error) {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if cached, ok := blueprintCache.Load(t); ok {
		return cached.(*Blueprint), nil
	}

	bp, err := parseStruct(t, map[reflect.Type]bool{})
	if err != nil {
		return nil, err
	}
	if err := bp.validate(); err != nil {
		return nil, err
	}

	actual, _ := blueprintCache.LoadOrStore(t, bp)
	return actual.(*Blueprint), nil
}

func parseStruct(t reflect.Type, visiting map[reflect.Type]bool) (*Blueprint, error) {
	if t.Kind() != reflect.Struct {
		return nil, ErrDeclaration.WithMessagef("%s is not a struct", t)
	}
	if visiting[t] {
		return nil, ErrDeclaration.WithMessagef("%s declares itself recursively", t)
	}
	visiting[t] = true
	defer delete(visiting, t)

	bp := &Blueprint{goType: t}
	embedded := false

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)

		if f.Anonymous && (f.Type == groupPtrType || f.Type == pagePtrType) {
			if embedded {
				return nil, ErrDeclaration.WithMessagef("%s embeds more than one *Group or *Page", t)
			}
			embedded = true
			bp.kind = kindGroup
			if f.Type == pagePtrType {
				bp.kind = kindPage
			}
			bp.embedIndex = f.Index

			d, err := declFromTag(f.Tag, Decl{Name: t.Name()})
			if err != nil {
				return nil, fmt.Errorf("%s: %w", t, err)
			}
			bp.decl = d
			continue
		}

		if !f.IsExported() {
			continue
		}

		switch {
		case f.Type == elementPtrType:
			d, err := declFromTag(f.Tag, Decl{})
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", t, f.Name, err)
			}
			if d.Locator.IsZero() {
				continue
			}
			d.Key = f.Name
			child := ElementBlueprint(d)
			child.fieldIndex = f.Index
			bp.children = append(bp.children, child)

		case f.Type.Kind() == reflect.Ptr && f.Type.Elem().Kind() == reflect.Struct && embedsGroup(f.Type.Elem()):
			nested, err := parseStruct(f.Type.Elem(), visiting)
			if err != nil {
				return nil, err
			}
			d, err := declFromTag(f.Tag, nested.decl)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", t, f.Name, err)
			}
			d.Key = f.Name
			child := *nested
			child.decl = d
			child.fieldIndex = f.Index
			bp.children = append(bp.children, &child)
		}
	}

	if !embedded {
		return nil, ErrDeclaration.WithMessagef("%s must embed *pageobject.Group or *pageobject.Page", t)
	}
	bp.decl = normalizeDecl(bp.decl)
	return bp, nil
}

func embedsGroup(t reflect.Type) bool {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous && (f.Type == groupPtrType || f.Type == pagePtrType) {
			return true
		}
	}
	return false
}

// declFromTag overlays struct tag values on base.
func declFromTag(tag reflect.StructTag, base Decl) (Decl, error) {
	d := base
	loc := d.Locator

	if v, ok := tag.Lookup("locator"); ok {
		loc.Default = v
	}
	if v, ok := tag.Lookup("type"); ok {
		loc.Type = locator.Dialect(v).Canonical()
	}
	for key, slot := range map[string]*string{
		"desktop": &loc.Desktop,
		"mobile":  &loc.Mobile,
		"tablet":  &loc.Tablet,
		"ios":     &loc.IOS,
		"android": &loc.Android,
	} {
		if v, ok := tag.Lookup(key); ok {
			*slot = v
		}
	}
	d.Locator = loc

	if v, ok := tag.Lookup("name"); ok {
		d.Name = v
	}
	if v, ok := tag.Lookup("url"); ok {
		d.URL = v
	}
	if v, ok := tag.Lookup("wait"); ok {
		w, err := ParseWaitPolicy(v)
		if err != nil {
			return d, err
		}
		d.Wait = w
	}
	if v, ok := tag.Lookup("parent"); ok {
		switch strings.ToLower(v) {
		case "none", "false":
			d.NoParent = true
		case "", "auto":
			d.NoParent = false
		default:
			return d, ErrDeclaration.WithMessagef("unknown parent tag %q", v)
		}
	}
	return d, nil
}
