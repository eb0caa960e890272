// Package view provides the Go API for describing UI declaratively.
//
// A description is a tree of Nodes. An Element pairs a Tag with props
// and children; the Tag decides how the renderer expands it:
//
//   - Primitive: a presentation tag such as "div" or "svg". The special
//     tag "fragment" splices its children into its parent.
//   - Component: a function from props to a description. It may block
//     while loading data.
//   - *EventHandlers: a component that also contributes transitions to
//     the handler table.
//   - *WithMeasures: a component that receives the last sampled
//     measurement of the element it renders.
//
// Descriptions are built fresh on every render pass and never mutated
// after they are handed to the renderer.
package view

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/elizafairlady/go-lensui/ui/proto"
)

// Node is a description node: nil, Text or *Element.
type Node interface {
	isNode()
}

// Text is a text leaf.
type Text string

func (Text) isNode() {}

// Scalar turns a scalar into a description node: nil stays nil, a Node
// is returned as is, anything else becomes its fmt.Sprint text.
func Scalar(v any) Node {
	switch v := v.(type) {
	case nil:
		return nil
	case Node:
		return v
	case string:
		return Text(v)
	}
	return Text(fmt.Sprint(v))
}

// Textf formats a text leaf.
func Textf(format string, args ...any) Text {
	return Text(fmt.Sprintf(format, args...))
}

// Tag is the closed set of element tags.
type Tag interface {
	isTag()
}

// Primitive is a presentation tag.
type Primitive string

// FragmentTag splices children into the parent instead of wrapping
// them.
const FragmentTag Primitive = "fragment"

// Props is what a component receives: the element's props and its
// children.
type Props struct {
	proto.Props
	Children []Node
}

// Component renders props to a description.
type Component func(ctx context.Context, p Props) (Node, error)

// Transition computes the next application state from the current one.
// Returning state itself (the same reference) signals no change.
type Transition func(state any, ev proto.Event) any

// Handlers maps event reasons to transitions.
type Handlers map[string]Transition

// EventHandlers wraps a component and contributes Handlers to the
// handler table whenever it is rendered.
type EventHandlers struct {
	Component Component
	Handlers  Handlers
}

// WithMeasures wraps a component whose rendered element is sampled
// after attachment. The last sample is passed back in under Property.
type WithMeasures struct {
	Component Component
	Measure   proto.Measure
	Property  string
}

func (Primitive) isTag()      {}
func (Component) isTag()      {}
func (*EventHandlers) isTag() {}
func (*WithMeasures) isTag()  {}

// WithHandlers attaches handlers to c.
func WithHandlers(c Component, h Handlers) *EventHandlers {
	return &EventHandlers{Component: c, Handlers: h}
}

// SizeProperty is the argument under which WithSize passes the sampled
// [offsetWidth, offsetHeight] pair.
const SizeProperty = "size"

// WithSize wraps c so it receives its own rendered size. Each call
// allocates a fresh measurement id; call it once per component, not
// once per render.
func WithSize(c Component) *WithMeasures {
	return &WithMeasures{
		Component: c,
		Measure: proto.Measure{
			ID:         uuid.NewString(),
			Properties: []string{"offsetWidth", "offsetHeight"},
		},
		Property: SizeProperty,
	}
}

// Fragment renders its children in place of itself.
func Fragment(_ context.Context, p Props) (Node, error) {
	return New(FragmentTag, p.Children...), nil
}
