package app

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/elizafairlady/go-lensui/ui/lazy"
	"github.com/elizafairlady/go-lensui/ui/loop"
	"github.com/elizafairlady/go-lensui/ui/proto"
	"github.com/elizafairlady/go-lensui/ui/view"
)

// Reasons handled by App.
const (
	ReasonFooterClick = "footer-click"
	ReasonShowItems   = "show-items"
)

// WindowID is the id of the showcase window.
const WindowID = "riscos"

var sonnet = []string{
	"Two households, both alike in dignity",
	"(In fair Verona, where we lay our scene),",
	"From ancient grudge break to new mutiny,",
	"Where civil blood makes civil hands unclean.",
	"From forth the fatal loins of these two foes",
	"A pair of star-crossed lovers take their life.",
}

// App is the showcase application. It renders "state" and loads its
// list from "items".
var App = view.WithHandlers(renderApp, view.Handlers{
	ReasonFooterClick: func(state any, _ proto.Event) any {
		return toggle(state, "showWindow")
	},
	ReasonShowItems: func(state any, _ proto.Event) any {
		return with(state, "showItems", true)
	},
})

func renderApp(_ context.Context, p view.Props) (view.Node, error) {
	state, _ := p.Arg("state").(map[string]any)

	var items view.Node = view.C(Button).
		Arg("label", "Show items").
		Arg("onClick", proto.Event{Reason: ReasonShowItems})
	if state["showItems"] == true {
		items = view.C(List).Arg("items", p.Arg("items")).Arg("state", state)
	}

	var window view.Node
	if state["showWindow"] == true {
		var lines []view.Node
		for i, l := range sonnet {
			if i > 0 {
				lines = append(lines, view.E("br"))
			}
			lines = append(lines, view.Text(l))
		}
		window = view.C(Window, lines...).
			Arg("id", WindowID).
			Arg("title", "RISC-OS").
			Arg("onClose", proto.Event{Reason: ReasonFooterClick})
	}

	return view.C(VGroup,
		view.E("h2",
			view.Text("Welcome "),
			view.New(Editable).Arg("state", state).Arg("lens", []any{"user"}),
			view.Text("!"),
		),
		items,
		view.C(HGroup,
			square(map[string]any{"color": "green"}, nil, "green"),
			square(nil, map[string]any{"color": "white"}, "white"),
			square(map[string]any{"color": "blue"}, nil, "blue"),
		).Arg("style", map[string]string{"height": "100px"}),
		view.C(Button).Arg("label", "Footer").Arg("onClick", proto.Event{Reason: ReasonFooterClick}),
		window,
		view.C(Canvas,
			view.E("svg", view.E("rect").
				Attr("x", 10).Attr("y", 10).Attr("width", 80).Attr("height", 80).Attr("fill", "red")),
		).Arg("width", 100).Arg("height", 100),
	), nil
}

// square is a 100px drag source or drop target holding a filled rect.
func square(drag, drop map[string]any, fill string) *view.Element {
	d := view.E("div",
		view.E("svg",
			view.E("rect").
				Attr("x", 10).Attr("y", 10).Attr("width", 80).Attr("height", 80).
				Attr("stroke", "black").Attr("fill", fill),
		).Attr("width", 100).Attr("height", 100),
	).Style("height", "100px").Style("width", "100px")
	if drag != nil {
		d.Drag(drag)
	}
	if drop != nil {
		d.Drop(drop)
	}
	return d
}

func toggle(state any, key string) any {
	rec, _ := state.(map[string]any)
	return with(state, key, rec[key] != true)
}

func with(state any, key string, v any) any {
	rec, _ := state.(map[string]any)
	out := make(map[string]any, len(rec)+1)
	for k, x := range rec {
		out[k] = x
	}
	out[key] = v
	return out
}

// Root returns the root function rendering App over state with the
// list loaded from items.
func Root(items *lazy.Value[[]string]) loop.RootFunc {
	return func(state any) view.Node {
		return view.New(App).Arg("state", state).Arg("items", items)
	}
}

// DefaultState is the initial state without a state file.
func DefaultState() map[string]any {
	return map[string]any{
		"user":       "Nicolette",
		"showItems":  false,
		"showWindow": false,
		"scrollTop":  0,
	}
}

// LoadState reads a YAML mapping from path and lays it over the
// default state. An empty path returns the default state.
func LoadState(path string) (map[string]any, error) {
	state := DefaultState()
	if path == "" {
		return state, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("app: read state: %w", err)
	}
	var overrides map[string]any
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("app: parse state %s: %w", path, err)
	}
	for k, v := range overrides {
		state[k] = v
	}
	return state, nil
}
