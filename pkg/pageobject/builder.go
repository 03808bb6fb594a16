package pageobject

import (
	"github.com/devicelab-dev/pagekit/pkg/core"
	"github.com/devicelab-dev/pagekit/pkg/session"
)

// maxInferenceDepth bounds the frame walk. Deeper frames are treated as
// having no inferable owner.
const maxInferenceDepth = 40

// Builder is an explicit construction stack. Pages and groups are pushed
// while their Setup hook runs; helpers can push any value with Enter.
// Objects created with In(b) take their owner and session from the
// innermost group or page frame.
//
// A Builder is not safe for concurrent use.
type Builder struct {
	frames []interface{}
}

// NewBuilder returns an empty construction stack.
func NewBuilder() *Builder {
	return &Builder{}
}

// Enter pushes self and returns the function that pops it.
func (b *Builder) Enter(self interface{}) (leave func()) {
	b.frames = append(b.frames, self)
	depth := len(b.frames)
	return func() {
		if len(b.frames) >= depth {
			b.frames = b.frames[:depth-1]
		}
	}
}

// Depth returns the number of frames on the stack.
func (b *Builder) Depth() int {
	return len(b.frames)
}

// enclosingObject walks frames outward, skipping values that are not
// groups or pages.
func (b *Builder) enclosingObject() Object {
	for i, walked := len(b.frames)-1, 0; i >= 0 && walked < maxInferenceDepth; i, walked = i-1, walked+1 {
		if obj, ok := b.frames[i].(Object); ok && obj.node().group != nil {
			return obj
		}
	}
	return nil
}

// enclosing returns the innermost group or page frame, nil if none.
func (b *Builder) enclosing() *Group {
	if obj := b.enclosingObject(); obj != nil {
		return obj.node().group
	}
	return nil
}

// inferSession returns the enclosing frame's session when it differs from
// the registry's current one. A frame without a session is an error: the
// caller would otherwise bind silently to the wrong session.
func (b *Builder) inferSession(name string) (*session.Session, error) {
	obj := b.enclosingObject()
	if obj == nil {
		return nil, nil
	}

	s := obj.Session()
	if s == nil {
		return nil, core.ErrSessionResolution.
			WithMessagef("cannot resolve session for %q: enclosing %s is not bound", name, obj).
			WithDetails(map[string]interface{}{"name": name})
	}
	if s == session.Current() {
		return nil, nil
	}
	return s, nil
}
