package view

import (
	"fmt"

	"github.com/elizafairlady/go-lensui/ui/proto"
)

// Element is a description node with a tag, props and children.
type Element struct {
	Tag      Tag
	Props    proto.Props
	Children []Node
}

func (*Element) isNode() {}

// --- Builders ---
//
// Builders return the element so calls chain:
//
//	view.E("div").Attr("id", "riscos").Style("display", "flex").Child(...)

// New creates an element with any tag.
func New(tag Tag, children ...Node) *Element {
	return &Element{Tag: tag, Children: children}
}

// E creates a primitive element.
func E(tag string, children ...Node) *Element {
	return New(Primitive(tag), children...)
}

// C creates a component element.
func C(c Component, children ...Node) *Element {
	return New(c, children...)
}

// Attr sets a presentation attribute, or an argument of a component.
//
// On primitive elements a directive key ("value", "style", "scrollTop",
// ...) or an "on" key holding a proto.Event sets the matching directive
// instead. A directive key whose value has the wrong type is kept in
// Attrs, where it is shadowed and never reaches the document.
func (e *Element) Attr(k string, v any) *Element {
	if _, ok := e.Tag.(Primitive); ok && e.directive(k, v) {
		return e
	}
	return e.Arg(k, v)
}

// Arg sets an argument of a component element. Unlike Attr it never
// interprets k.
func (e *Element) Arg(k string, v any) *Element {
	if e.Props.Attrs == nil {
		e.Props.Attrs = make(map[string]any)
	}
	e.Props.Attrs[k] = v
	return e
}

func (e *Element) directive(k string, v any) bool {
	switch k {
	case proto.KeyValue:
		e.Value(fmt.Sprint(v))
		return true
	case proto.KeyStyle:
		switch v := v.(type) {
		case string:
			e.StyleMap(proto.ParseStyle(v))
			return true
		case map[string]string:
			e.StyleMap(v)
			return true
		}
	case proto.KeyScrollTop:
		if v, ok := v.(int); ok {
			e.ScrollTop(v)
			return true
		}
	case proto.KeyScroll:
		if v, ok := v.([]any); ok {
			e.Scroll(v...)
			return true
		}
	case proto.KeyDrag:
		if v, ok := v.(map[string]any); ok {
			e.Drag(v)
			return true
		}
	case proto.KeyDrop:
		if v, ok := v.(map[string]any); ok {
			e.Drop(v)
			return true
		}
	case proto.KeyWindowHandle:
		if v, ok := v.(string); ok {
			e.WindowHandle(v)
			return true
		}
	case proto.KeyCanvas:
		e.Canvas(v)
		return true
	default:
		if name, ok := proto.IsOnKey(k); ok {
			if ev, ok := v.(proto.Event); ok {
				e.On(name, ev)
				return true
			}
		}
	}
	return false
}

// Style sets one style property.
func (e *Element) Style(k, v string) *Element {
	if e.Props.Style == nil {
		e.Props.Style = make(map[string]string)
	}
	e.Props.Style[k] = v
	return e
}

// StyleMap sets several style properties.
func (e *Element) StyleMap(m map[string]string) *Element {
	for k, v := range m {
		e.Style(k, v)
	}
	return e
}

// Value sets the value directive of an input.
func (e *Element) Value(v string) *Element {
	e.Props.Value = &v
	return e
}

// On binds event name to ev: when the live node raises name, ev is
// dispatched with the platform data attached.
func (e *Element) On(name string, ev proto.Event) *Element {
	if e.Props.On == nil {
		e.Props.On = make(map[string]proto.Event)
	}
	e.Props.On[name] = ev
	return e
}

// OnReason binds event name to an event carrying only reason.
func (e *Element) OnReason(name, reason string) *Element {
	return e.On(name, proto.Event{Reason: reason})
}

// Scroll routes the node's scroll offset into state at lens.
func (e *Element) Scroll(lens ...any) *Element {
	e.Props.Scroll = &proto.ScrollBinding{Lens: lens}
	return e
}

// ScrollTop scrolls the node to offset after attachment.
func (e *Element) ScrollTop(offset int) *Element {
	e.Props.ScrollTop = &offset
	return e
}

// Drag makes the node a drag source carrying data.
func (e *Element) Drag(data map[string]any) *Element {
	e.Props.Drag = data
	return e
}

// Drop makes the node a drop target carrying data.
func (e *Element) Drop(data map[string]any) *Element {
	e.Props.Drop = data
	return e
}

// WindowHandle makes the node move the window element with id windowID.
func (e *Element) WindowHandle(windowID string) *Element {
	e.Props.WindowHandle = &proto.WindowHandle{WindowID: windowID}
	return e
}

// Canvas attaches drawing instructions to a canvas element.
func (e *Element) Canvas(v any) *Element {
	e.Props.Canvas = v
	return e
}

// Child appends children.
func (e *Element) Child(children ...Node) *Element {
	e.Children = append(e.Children, children...)
	return e
}
