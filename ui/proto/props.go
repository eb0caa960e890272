package proto

import (
	"strings"
)

// Keys of the attribute protocol. Presentation attributes use their own
// names; handler bindings use OnKey.
const (
	KeyStyle        = "style"
	KeyValue        = "value"
	KeyScroll       = "with-scroll"
	KeyScrollTop    = "scrollTop"
	KeyDrag         = "with-drag"
	KeyDrop         = "with-drop"
	KeyWindowHandle = "window-handle"
	KeyCanvas       = "canvas-draw"

	onPrefix = "on"
)

// OnKey returns the protocol key of the handler binding for event name,
// e.g. "onclick".
func OnKey(name string) string {
	return onPrefix + strings.ToLower(name)
}

// IsDirective reports whether key is one of the directive keys, whose
// values live in the typed fields of Props rather than in Attrs.
func IsDirective(key string) bool {
	switch key {
	case KeyStyle, KeyValue, KeyScroll, KeyScrollTop, KeyDrag, KeyDrop, KeyWindowHandle, KeyCanvas:
		return true
	}
	return false
}

// IsOnKey reports whether key names a handler binding and returns the
// event name.
func IsOnKey(key string) (name string, ok bool) {
	if !strings.HasPrefix(key, onPrefix) || len(key) == len(onPrefix) {
		return "", false
	}
	return key[len(onPrefix):], true
}

// ScrollBinding routes scroll offsets of a node into state at Lens.
type ScrollBinding struct {
	Lens []any
}

// WindowHandle marks a node that drags the window element WindowID.
type WindowHandle struct {
	WindowID string
}

// Props is the structured attribute set of an element.
//
// Attrs holds presentation attributes of primitive elements and the
// arguments of component elements. Handler bindings map an event name
// ("click", "input") to the event the node raises. The remaining fields
// are protocol directives interpreted by the attachment layer. Measure
// is set by the renderer only and never reaches the attachment layer.
type Props struct {
	Attrs        map[string]any
	Style        map[string]string
	Value        *string
	On           map[string]Event
	Scroll       *ScrollBinding
	ScrollTop    *int
	Drag         map[string]any
	Drop         map[string]any
	WindowHandle *WindowHandle
	Canvas       any

	Measure *Measure
}

// Keys returns the protocol keys set in p, attributes first in sorted
// order, then bindings, then directives. An attribute named after a
// directive, or after an event bound in On, is shadowed and not listed.
func (p *Props) Keys() []string {
	var keys []string
	for _, k := range sortedKeys(p.Attrs) {
		if !p.shadowed(k) {
			keys = append(keys, k)
		}
	}
	for _, name := range sortedKeys(p.On) {
		keys = append(keys, OnKey(name))
	}
	if p.Style != nil {
		keys = append(keys, KeyStyle)
	}
	if p.Value != nil {
		keys = append(keys, KeyValue)
	}
	if p.Scroll != nil {
		keys = append(keys, KeyScroll)
	}
	if p.ScrollTop != nil {
		keys = append(keys, KeyScrollTop)
	}
	if p.Drag != nil {
		keys = append(keys, KeyDrag)
	}
	if p.Drop != nil {
		keys = append(keys, KeyDrop)
	}
	if p.WindowHandle != nil {
		keys = append(keys, KeyWindowHandle)
	}
	if p.Canvas != nil {
		keys = append(keys, KeyCanvas)
	}
	return keys
}

func (p *Props) shadowed(key string) bool {
	if IsDirective(key) {
		return true
	}
	name, ok := IsOnKey(key)
	if !ok {
		return false
	}
	_, bound := p.On[name]
	return bound
}

// Get returns the value stored under a protocol key.
func (p *Props) Get(key string) (any, bool) {
	switch key {
	case KeyStyle:
		return p.Style, p.Style != nil
	case KeyValue:
		if p.Value == nil {
			return nil, false
		}
		return *p.Value, true
	case KeyScroll:
		return p.Scroll, p.Scroll != nil
	case KeyScrollTop:
		if p.ScrollTop == nil {
			return nil, false
		}
		return *p.ScrollTop, true
	case KeyDrag:
		return p.Drag, p.Drag != nil
	case KeyDrop:
		return p.Drop, p.Drop != nil
	case KeyWindowHandle:
		return p.WindowHandle, p.WindowHandle != nil
	case KeyCanvas:
		return p.Canvas, p.Canvas != nil
	}
	if name, ok := IsOnKey(key); ok {
		if ev, ok := p.On[name]; ok {
			return ev, true
		}
	}
	v, ok := p.Attrs[key]
	return v, ok
}

// Pick returns a new Props holding only the given keys of p.
func (p *Props) Pick(keys ...string) *Props {
	out := &Props{}
	for _, key := range keys {
		switch key {
		case KeyStyle:
			out.Style = p.Style
		case KeyValue:
			out.Value = p.Value
		case KeyScroll:
			out.Scroll = p.Scroll
		case KeyScrollTop:
			out.ScrollTop = p.ScrollTop
		case KeyDrag:
			out.Drag = p.Drag
		case KeyDrop:
			out.Drop = p.Drop
		case KeyWindowHandle:
			out.WindowHandle = p.WindowHandle
		case KeyCanvas:
			out.Canvas = p.Canvas
		default:
			if name, ok := IsOnKey(key); ok {
				if ev, ok := p.On[name]; ok {
					if out.On == nil {
						out.On = make(map[string]Event)
					}
					out.On[name] = ev
					continue
				}
			}
			if v, ok := p.Attrs[key]; ok {
				if out.Attrs == nil {
					out.Attrs = make(map[string]any)
				}
				out.Attrs[key] = v
			}
		}
	}
	return out
}

// Clone returns a copy of p whose maps may be modified independently.
func (p Props) Clone() Props {
	out := p
	if p.Attrs != nil {
		out.Attrs = make(map[string]any, len(p.Attrs))
		for k, v := range p.Attrs {
			out.Attrs[k] = v
		}
	}
	if p.Style != nil {
		out.Style = make(map[string]string, len(p.Style))
		for k, v := range p.Style {
			out.Style[k] = v
		}
	}
	if p.On != nil {
		out.On = make(map[string]Event, len(p.On))
		for k, v := range p.On {
			out.On[k] = v
		}
	}
	return out
}

// Arg returns the attribute key, for components reading their
// arguments.
func (p *Props) Arg(key string) any {
	return p.Attrs[key]
}

// StyleText serializes a style map the way the style attribute is
// written: "k: v;" pairs in key order.
func StyleText(style map[string]string) string {
	parts := make([]string, 0, len(style))
	for _, k := range sortedKeys(style) {
		parts = append(parts, k+": "+style[k]+";")
	}
	return strings.Join(parts, " ")
}

// ParseStyle parses the text of a style attribute.
func ParseStyle(s string) map[string]string {
	style := make(map[string]string)
	for _, decl := range strings.Split(s, ";") {
		k, v, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		style[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return style
}
