package render

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elizafairlady/go-lensui/ui/proto"
	"github.com/elizafairlady/go-lensui/ui/view"
)

func render(t *testing.T, desc view.Node, measures proto.Measures) (proto.Tree, view.Handlers) {
	t.Helper()
	h := view.Handlers{}
	tree, err := Render(context.Background(), h, desc, measures)
	require.NoError(t, err)
	return tree, h
}

func TestRenderLeaves(t *testing.T) {
	tree, _ := render(t, nil, nil)
	assert.Empty(t, tree)

	tree, _ = render(t, view.Text("hi"), nil)
	assert.Equal(t, proto.Tree{proto.Text("hi")}, tree)

	var typedNil *view.Element
	tree, _ = render(t, typedNil, nil)
	assert.Empty(t, tree)
}

func TestRenderPrimitive(t *testing.T) {
	desc := view.E("div",
		view.E("span", view.Text("a")),
		nil,
		view.Text("b"),
	).Attr("id", "root")

	tree, _ := render(t, desc, nil)
	want := proto.Tree{
		&proto.Element{
			Tag:   "div",
			Props: proto.Props{Attrs: map[string]any{"id": "root"}},
			Children: proto.Tree{
				&proto.Element{Tag: "span", Children: proto.Tree{proto.Text("a")}},
				proto.Text("b"),
			},
		},
	}
	if diff := cmp.Diff(want, tree); diff != "" {
		t.Errorf("tree (-want +got):\n%s", diff)
	}
}

func TestRenderFragmentSplices(t *testing.T) {
	desc := view.E("ul",
		view.E("li", view.Text("0")),
		view.C(view.Fragment, view.E("li", view.Text("1")), view.E("li", view.Text("2"))),
		view.E("li", view.Text("3")),
	)
	tree, _ := render(t, desc, nil)
	require.Len(t, tree, 1)
	ul := tree[0].(*proto.Element)
	require.Len(t, ul.Children, 4)
	for i, c := range ul.Children {
		li := c.(*proto.Element)
		assert.Equal(t, "li", li.Tag)
		assert.Equal(t, proto.Tree{proto.Text(string(rune('0' + i)))}, li.Children)
	}

	// A top-level fragment yields several roots.
	tree, _ = render(t, view.New(view.FragmentTag, view.Text("x"), view.Text("y")), nil)
	assert.Equal(t, proto.Tree{proto.Text("x"), proto.Text("y")}, tree)
}

func TestRenderComponent(t *testing.T) {
	greet := func(_ context.Context, p view.Props) (view.Node, error) {
		return view.E("p", view.Scalar(p.Arg("name"))).Child(p.Children...), nil
	}
	desc := view.C(greet, view.Text("!")).Arg("name", "Nicolette")
	tree, _ := render(t, desc, nil)

	want := proto.Tree{&proto.Element{Tag: "p", Children: proto.Tree{proto.Text("Nicolette"), proto.Text("!")}}}
	if diff := cmp.Diff(want, tree); diff != "" {
		t.Errorf("tree (-want +got):\n%s", diff)
	}
}

func TestRenderSiblingOrder(t *testing.T) {
	var order []string
	named := func(name string) view.Component {
		return func(context.Context, view.Props) (view.Node, error) {
			order = append(order, name)
			return view.Text(name), nil
		}
	}
	desc := view.E("div", view.C(named("a")), view.E("div", view.C(named("b"))), view.C(named("c")))
	render(t, desc, nil)
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestRenderEventHandlersMerged(t *testing.T) {
	inc := func(s any, _ proto.Event) any { return s.(int) + 1 }
	dec := func(s any, _ proto.Event) any { return s.(int) - 1 }
	inner := view.WithHandlers(func(context.Context, view.Props) (view.Node, error) {
		return view.E("b"), nil
	}, view.Handlers{"dec": dec})
	outer := view.WithHandlers(func(context.Context, view.Props) (view.Node, error) {
		return view.E("div", view.New(inner)), nil
	}, view.Handlers{"inc": inc})

	tree, h := render(t, view.New(outer), nil)
	require.Len(t, tree, 1)
	require.Contains(t, h, "inc")
	require.Contains(t, h, "dec")
	assert.Equal(t, 2, h["inc"](1, proto.Event{}))
	assert.Equal(t, 0, h["dec"](1, proto.Event{}))
}

func TestRenderWithMeasures(t *testing.T) {
	var got []any
	sized := view.WithSize(func(_ context.Context, p view.Props) (view.Node, error) {
		got = append(got, p.Arg(view.SizeProperty))
		return view.E("div"), nil
	})

	tree, _ := render(t, view.New(sized), nil)
	el := tree[0].(*proto.Element)
	require.NotNil(t, el.Props.Measure)
	assert.Equal(t, sized.Measure, *el.Props.Measure)

	measures := proto.Measures{sized.Measure.ID: {800, 600}}
	render(t, view.New(sized), measures)
	assert.Equal(t, []any{nil, []any{800, 600}}, got)

	// Arguments given by the caller win.
	render(t, view.New(sized).Arg(view.SizeProperty, "fixed"), measures)
	assert.Equal(t, "fixed", got[2])
}

func TestRenderWithMeasuresDoesNotMutateResult(t *testing.T) {
	shared := view.E("div").Attr("id", "x")
	sized := view.WithSize(func(context.Context, view.Props) (view.Node, error) {
		return shared, nil
	})
	render(t, view.New(sized), nil)
	assert.Nil(t, shared.Props.Measure)
}

func TestRenderWithMeasuresNotElement(t *testing.T) {
	sized := view.WithSize(func(context.Context, view.Props) (view.Node, error) {
		return view.Text("oops"), nil
	})
	_, err := Render(context.Background(), view.Handlers{}, view.E("div", view.New(sized)), nil)
	require.ErrorIs(t, err, ErrNotElement)

	var re *Error
	require.ErrorAs(t, err, &re)
	assert.Equal(t, []string{"div", "with-measures"}, re.Path)
}

func TestRenderComponentError(t *testing.T) {
	boom := errors.New("boom")
	failing := func(context.Context, view.Props) (view.Node, error) { return nil, boom }
	desc := view.E("main", view.E("section", view.C(failing)))

	_, err := Render(context.Background(), view.Handlers{}, desc, nil)
	require.ErrorIs(t, err, boom)
	var re *Error
	require.ErrorAs(t, err, &re)
	assert.Equal(t, []string{"main", "section", "component"}, re.Path)
	assert.Equal(t, "render: main > section > component: boom", err.Error())
}

func TestRenderMalformed(t *testing.T) {
	_, err := Render(context.Background(), view.Handlers{}, view.New(view.Component(nil)), nil)
	assert.Error(t, err)

	_, err = Render(context.Background(), view.Handlers{}, view.New(&view.EventHandlers{}), nil)
	assert.Error(t, err)

	_, err = Render(context.Background(), view.Handlers{}, view.New(nil), nil)
	assert.Error(t, err)
}

func TestRenderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	c := func(context.Context, view.Props) (view.Node, error) {
		calls++
		cancel()
		return view.Text("x"), nil
	}
	_, err := Render(ctx, view.Handlers{}, view.E("div", view.C(c), view.C(c)), nil)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestSampledInContext(t *testing.T) {
	var got []any
	c := func(ctx context.Context, _ view.Props) (view.Node, error) {
		got = Sampled(ctx, proto.WindowMeasureID)
		return nil, nil
	}
	render(t, view.C(c), proto.Measures{proto.WindowMeasureID: {800, 600}})
	assert.Equal(t, []any{800, 600}, got)

	assert.Nil(t, Sampled(context.Background(), proto.WindowMeasureID))
}

func TestRenderSerialized(t *testing.T) {
	greet := func(_ context.Context, p view.Props) (view.Node, error) {
		return view.E("p", view.Scalar(p.Arg("name"))).
			Attr("class", "greeting").
			OnReason("click", "edit").
			Child(p.Children...), nil
	}
	desc := view.E("div",
		view.C(greet, view.Text("!")).Arg("name", "Nicolette"),
		view.C(view.Fragment, view.E("li", view.Text("1")), view.E("li", view.Text("2"))),
		view.E("input").Attr("value", "Nico").Attr("type", "text"),
	).Style("display", "flex")

	tree, _ := render(t, desc, nil)
	const want = `elem 0 div
style 0 display=flex
elem 0.0 p
attr 0.0 class=greeting
on 0.0 click=edit
text 0.0.0 Nicolette
text 0.0.1 !
elem 0.1 li
text 0.1.0 1
elem 0.2 li
text 0.2.0 2
elem 0.3 input
attr 0.3 type=text
value 0.3 Nico
`
	if diff := cmp.Diff(want, proto.SerializeTree(tree)); diff != "" {
		t.Errorf("serialized tree (-want +got):\n%s", diff)
	}
}
