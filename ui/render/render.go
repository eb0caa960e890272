// Package render implements the expand phase of a render pass: it
// resolves a view description (components, handler wrappers,
// measurement wrappers, fragments) into a normalized proto.Tree ready
// for reconciliation.
//
// Components are called on the caller's goroutine, siblings strictly
// in declaration order, so a component that blocks on data suspends the
// whole pass. Handler-table writes and measurement injection therefore
// happen in a deterministic order.
package render

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/elizafairlady/go-lensui/ui/proto"
	"github.com/elizafairlady/go-lensui/ui/view"
)

// ErrNotElement is reported when a measurement wrapper's component
// renders something other than an element, leaving nothing to measure.
var ErrNotElement = errors.New("measured component did not render an element")

// Error is a render failure with the chain of tags leading to it.
type Error struct {
	Path []string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("render: %s: %v", strings.Join(e.Path, " > "), e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Render expands desc into a normalized tree.
//
// handlers is an output parameter: every *view.EventHandlers wrapper
// met during the pass merges its transitions into it. measures supplies
// the last sampled values for *view.WithMeasures wrappers.
func Render(ctx context.Context, handlers view.Handlers, desc view.Node, measures proto.Measures) (proto.Tree, error) {
	r := &renderer{handlers: handlers, measures: measures}
	return r.node(context.WithValue(ctx, measuresKey{}, measures), desc)
}

type measuresKey struct{}

// Sampled returns the last sampled values of measurement id as seen by
// the render pass running in ctx, such as the WINDOW size. It returns
// nil outside a render pass or before the first sample.
func Sampled(ctx context.Context, id string) []any {
	m, _ := ctx.Value(measuresKey{}).(proto.Measures)
	return m[id]
}

type renderer struct {
	handlers view.Handlers
	measures proto.Measures
	path     []string
}

func (r *renderer) fail(err error) error {
	var re *Error
	if errors.As(err, &re) {
		return err
	}
	path := make([]string, len(r.path))
	copy(path, r.path)
	return &Error{Path: path, Err: err}
}

func (r *renderer) node(ctx context.Context, n view.Node) (proto.Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, r.fail(err)
	}
	switch n := n.(type) {
	case nil:
		return nil, nil
	case view.Text:
		return proto.Tree{proto.Text(n)}, nil
	case *view.Element:
		if n == nil {
			return nil, nil
		}
		return r.element(ctx, n)
	}
	return nil, r.fail(fmt.Errorf("unknown description node %T", n))
}

func (r *renderer) element(ctx context.Context, el *view.Element) (proto.Tree, error) {
	r.path = append(r.path, tagName(el.Tag))
	defer func() { r.path = r.path[:len(r.path)-1] }()

	props := view.Props{Props: el.Props, Children: el.Children}

	switch tag := el.Tag.(type) {
	case view.Component:
		if tag == nil {
			return nil, r.fail(errors.New("nil component"))
		}
		out, err := tag(ctx, props)
		if err != nil {
			return nil, r.fail(err)
		}
		return r.node(ctx, out)

	case *view.EventHandlers:
		if tag == nil || tag.Component == nil {
			return nil, r.fail(errors.New("event handlers wrapper without component"))
		}
		for reason, t := range tag.Handlers {
			r.handlers[reason] = t
		}
		out, err := tag.Component(ctx, props)
		if err != nil {
			return nil, r.fail(err)
		}
		return r.node(ctx, out)

	case *view.WithMeasures:
		if tag == nil || tag.Component == nil {
			return nil, r.fail(errors.New("measures wrapper without component"))
		}
		return r.measured(ctx, tag, props)

	case view.Primitive:
		var children proto.Tree
		for _, child := range el.Children {
			out, err := r.node(ctx, child)
			if err != nil {
				return nil, err
			}
			children = append(children, out...)
		}
		if tag == view.FragmentTag {
			return children, nil
		}
		return proto.Tree{&proto.Element{Tag: string(tag), Props: el.Props, Children: children}}, nil
	}
	return nil, r.fail(fmt.Errorf("unknown tag %T", el.Tag))
}

func (r *renderer) measured(ctx context.Context, tag *view.WithMeasures, props view.Props) (proto.Tree, error) {
	if _, given := props.Attrs[tag.Property]; !given {
		props.Props = props.Props.Clone()
		if props.Attrs == nil {
			props.Attrs = make(map[string]any)
		}
		var sample any
		if v, ok := r.measures[tag.Measure.ID]; ok {
			sample = v
		}
		props.Attrs[tag.Property] = sample
	}
	out, err := tag.Component(ctx, props)
	if err != nil {
		return nil, r.fail(err)
	}
	el, ok := out.(*view.Element)
	if !ok || el == nil {
		return nil, r.fail(fmt.Errorf("%w (got %T)", ErrNotElement, out))
	}
	m := tag.Measure
	tagged := *el
	tagged.Props = el.Props.Clone()
	tagged.Props.Measure = &m
	return r.node(ctx, &tagged)
}

func tagName(t view.Tag) string {
	switch t := t.(type) {
	case view.Primitive:
		return string(t)
	case view.Component:
		return "component"
	case *view.EventHandlers:
		return "event-handlers"
	case *view.WithMeasures:
		return "with-measures"
	}
	return fmt.Sprintf("%T", t)
}
