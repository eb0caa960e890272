package view

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elizafairlady/go-lensui/ui/proto"
)

func TestElementBuilders(t *testing.T) {
	root := E("div",
		E("span", Text("Hello")).OnReason("click", "edit"),
		E("input").Value("Nico").Attr("type", "text"),
	).Attr("id", "root").Style("display", "flex").Style("height", "100%")

	require.Equal(t, Primitive("div"), root.Tag)
	require.Len(t, root.Children, 2)
	assert.Equal(t, "root", root.Props.Attrs["id"])
	assert.Equal(t, map[string]string{"display": "flex", "height": "100%"}, root.Props.Style)

	span := root.Children[0].(*Element)
	assert.Equal(t, proto.Event{Reason: "edit"}, span.Props.On["click"])
	assert.Equal(t, Text("Hello"), span.Children[0])

	input := root.Children[1].(*Element)
	require.NotNil(t, input.Props.Value)
	assert.Equal(t, "Nico", *input.Props.Value)
}

func TestDirectiveBuilders(t *testing.T) {
	el := E("div").
		Scroll("list", "scrollTop").
		ScrollTop(45).
		Drag(map[string]any{"color": "green"}).
		Drop(map[string]any{"color": "white"}).
		WindowHandle("riscos").
		Canvas("draw")

	p := el.Props
	assert.Equal(t, []any{"list", "scrollTop"}, p.Scroll.Lens)
	assert.Equal(t, 45, *p.ScrollTop)
	assert.Equal(t, "green", p.Drag["color"])
	assert.Equal(t, "white", p.Drop["color"])
	assert.Equal(t, "riscos", p.WindowHandle.WindowID)
	assert.Equal(t, "draw", p.Canvas)
	assert.Equal(t, []string{proto.KeyScroll, proto.KeyScrollTop, proto.KeyDrag, proto.KeyDrop, proto.KeyWindowHandle, proto.KeyCanvas}, p.Keys())
}

func TestScalar(t *testing.T) {
	assert.Nil(t, Scalar(nil))
	assert.Equal(t, Text("x"), Scalar("x"))
	assert.Equal(t, Text("42"), Scalar(42))
	assert.Equal(t, Text("true"), Scalar(true))
	el := E("br")
	assert.Same(t, el, Scalar(el))
	assert.Equal(t, Text("3. "), Textf("%d. ", 3))
}

func TestWithSizeAllocatesIDs(t *testing.T) {
	c := func(context.Context, Props) (Node, error) { return E("div"), nil }
	a, b := WithSize(c), WithSize(c)
	assert.NotEmpty(t, a.Measure.ID)
	assert.NotEqual(t, a.Measure.ID, b.Measure.ID)
	assert.Equal(t, []string{"offsetWidth", "offsetHeight"}, a.Measure.Properties)
	assert.Equal(t, SizeProperty, a.Property)
}

func TestFragment(t *testing.T) {
	n, err := Fragment(context.Background(), Props{Children: []Node{Text("a"), Text("b")}})
	require.NoError(t, err)
	el := n.(*Element)
	assert.Equal(t, FragmentTag, el.Tag)
	assert.Equal(t, []Node{Text("a"), Text("b")}, el.Children)
}

func TestComponentElement(t *testing.T) {
	c := Component(func(context.Context, Props) (Node, error) { return nil, nil })
	el := C(c, Text("child")).Arg("state", map[string]any{"user": "x"})
	_, ok := el.Tag.(Component)
	assert.True(t, ok)
	assert.Equal(t, map[string]any{"user": "x"}, el.Props.Arg("state"))

	h := WithHandlers(c, Handlers{"go": func(s any, _ proto.Event) any { return s }})
	assert.Contains(t, h.Handlers, "go")
}

func TestAttrRoutesDirectives(t *testing.T) {
	in := E("input").
		Attr("value", "x").
		Attr("style", "color: red; width: 10px").
		Attr("scrollTop", 30).
		Attr("onclick", proto.Event{Reason: "go"}).
		Attr("with-drag", "not a map")

	p := in.Props
	require.NotNil(t, p.Value)
	assert.Equal(t, "x", *p.Value)
	assert.Equal(t, map[string]string{"color": "red", "width": "10px"}, p.Style)
	assert.Equal(t, 30, *p.ScrollTop)
	assert.Equal(t, proto.Event{Reason: "go"}, p.On["click"])
	assert.Nil(t, p.Drag)
	assert.Equal(t, map[string]any{"with-drag": "not a map"}, p.Attrs)
	assert.Equal(t, []string{"onclick", proto.KeyStyle, proto.KeyValue, proto.KeyScrollTop}, p.Keys())

	// Component arguments are never interpreted.
	c := Component(func(context.Context, Props) (Node, error) { return nil, nil })
	el := C(c).Attr("style", map[string]string{"height": "100px"})
	assert.Nil(t, el.Props.Style)
	assert.Equal(t, map[string]string{"height": "100px"}, el.Props.Arg("style"))
}
