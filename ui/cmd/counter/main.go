// Counter is a minimal example app using the ui framework.
//
// It displays a counter with increment/decrement buttons, a text input
// and a greeting, demonstrating the whole framework: components, state
// transitions, bindings and re-rendering.
//
// Input lines are read from standard input and the body is written as
// HTML after each batch:
//
//	click path=0.1.0
//	input path=0.2.1 value=Nicolette
//
// Usage: counter
package main

import (
	"context"
	"log"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/elizafairlady/go-lensui/ui"
	"github.com/elizafairlady/go-lensui/ui/optic"
	"github.com/elizafairlady/go-lensui/ui/proto"
	"github.com/elizafairlady/go-lensui/ui/view"
)

var counterApp = view.WithHandlers(func(_ context.Context, p view.Props) (view.Node, error) {
	s, _ := p.Arg("state").(map[string]any)
	count, _ := s["count"].(int)
	name, _ := s["name"].(string)

	return view.E("div",
		view.E("h1", view.Text("Counter Demo")).Style("padding", "8px"),
		view.E("div",
			view.E("button", view.Text("-")).OnReason("click", "dec").Style("min-width", "40px"),
			view.E("span", view.Textf("%d", count)).Style("padding", "8px"),
			view.E("button", view.Text("+")).OnReason("click", "inc").Style("min-width", "40px"),
		).Style("display", "flex"),
		view.E("div",
			view.E("span", view.Text("Name:")).Style("padding", "4px"),
			view.E("input").Value(name).Attr("placeholder", "type here...").OnReason("input", "name"),
		).Style("display", "flex"),
		view.E("p", view.Text(greeting(name))),
	).Style("padding", "4px"), nil
}, view.Handlers{
	"inc": func(s any, _ proto.Event) any {
		return optic.Over(s, optic.Path("count"), func(v any) any { n, _ := v.(int); return n + 1 })
	},
	"dec": func(s any, _ proto.Event) any {
		return optic.Over(s, optic.Path("count"), func(v any) any { n, _ := v.(int); return n - 1 })
	},
	"name": func(s any, ev proto.Event) any {
		return optic.Set(s, optic.Path("name"), ev.Raw.Value)
	},
})

func greeting(name string) string {
	if name == "" {
		return ""
	}
	return "Hello, " + name + "!"
}

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	initial := map[string]any{"count": 0, "name": ""}
	root := func(state any) view.Node { return view.New(counterApp).Arg("state", state) }
	s, err := ui.Start(ctx, initial, root, ui.Options{Logger: logger})
	if err != nil {
		logger.Fatal("start", zap.Error(err))
	}

	if err := ui.ServeLines(ctx, s, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
		logger.Fatal("run", zap.Error(err))
	}
}
