// Package app is the showcase application: an editable greeting, a
// lazily loaded virtualized list, drag and drop squares, a movable
// window and a canvas.
package app

import (
	"context"

	"github.com/elizafairlady/go-lensui/ui/proto"
	"github.com/elizafairlady/go-lensui/ui/view"
)

// Button renders a button labelled "label" raising the "onClick"
// event.
func Button(_ context.Context, p view.Props) (view.Node, error) {
	b := view.E("button", view.Scalar(p.Arg("label")))
	if ev, ok := p.Arg("onClick").(proto.Event); ok {
		b.On("click", ev)
	}
	return b, nil
}

// Canvas renders a canvas of "width" by "height" drawing its children.
func Canvas(_ context.Context, p view.Props) (view.Node, error) {
	return view.E("canvas").
		Attr("width", p.Arg("width")).
		Attr("height", p.Arg("height")).
		Canvas(p.Children), nil
}

// HGroup lays its children out in a row. "style" adds to the row's
// style.
func HGroup(_ context.Context, p view.Props) (view.Node, error) {
	style, _ := p.Arg("style").(map[string]string)
	return view.E("div", p.Children...).
		Style("display", "flex").
		StyleMap(style), nil
}

// VGroup stacks its children in a column.
func VGroup(_ context.Context, p view.Props) (view.Node, error) {
	return view.E("div", p.Children...).StyleMap(map[string]string{
		"align-items":    "start",
		"display":        "flex",
		"flex-direction": "column",
		"height":         "100%",
	}), nil
}

// Window renders a movable window with id "id", a title bar showing
// "title" that drags it, and a close control raising "onClose".
func Window(_ context.Context, p view.Props) (view.Node, error) {
	id, _ := p.Arg("id").(string)
	closer := view.E("div", view.Text("🗙")).
		Attr("title", "Close window").
		StyleMap(map[string]string{"cursor": "pointer", "position": "relative", "top": "-3px"})
	if ev, ok := p.Arg("onClose").(proto.Event); ok {
		closer.On("click", ev)
	}

	return view.E("div",
		view.E("div",
			view.E("div",
				view.E("div", view.Scalar(p.Arg("title"))),
				closer,
			).Attr("class", "window-title").Style("display", "flex").WindowHandle(id),
		).Attr("class", "window__div"),
		view.E("div", p.Children...).Attr("class", "window-body"),
	).Attr("id", id).Attr("class", "window").Style("position", "fixed"), nil
}
