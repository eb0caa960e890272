// Todo is THE example app for the ui framework.
//
// It demonstrates dynamic lists, nested state addressed by lenses,
// checkbox toggles and text input.
//
// Input lines are read from standard input and the body is written as
// HTML after each batch:
//
//	input path=0.1 value="buy milk"
//	change path=0.1
//	click path=0.2.0.0.0
//	click path=0.0.1
//
// The first two lines add an item, the third toggles it and the last
// clears completed items.
//
// Usage: todo
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"go.uber.org/zap"

	"github.com/elizafairlady/go-lensui/ui"
	"github.com/elizafairlady/go-lensui/ui/optic"
	"github.com/elizafairlady/go-lensui/ui/proto"
	"github.com/elizafairlady/go-lensui/ui/view"
)

// Reasons handled by the app.
const (
	reasonInput  = "input"
	reasonAdd    = "add"
	reasonToggle = "toggle"
	reasonClear  = "clear"
)

var todoApp = view.WithHandlers(renderTodo, view.Handlers{
	reasonInput: func(s any, ev proto.Event) any {
		return optic.Set(s, optic.Path("input"), ev.Raw.Value)
	},
	reasonAdd: addItem,
	reasonToggle: func(s any, ev proto.Event) any {
		return optic.Over(s, optic.Path(ev.Lens...), func(v any) any { return v != true })
	},
	reasonClear: clearDone,
})

func renderTodo(_ context.Context, p view.Props) (view.Node, error) {
	s := p.Arg("state")
	items, _ := optic.View(s, optic.Path("items")).([]any)
	input, _ := optic.View(s, optic.Path("input")).(string)

	// Build item rows
	var rows []view.Node
	done := 0
	for i, it := range items {
		text, _ := optic.View(it, optic.Path("text")).(string)
		checked := optic.View(it, optic.Path("done")) == true
		if checked {
			done++
		}
		box := view.E("input").Attr("type", "checkbox").
			On("click", proto.Event{Reason: reasonToggle, Lens: []any{"items", i, "done"}})
		if checked {
			box.Attr("checked", "checked")
		}
		rows = append(rows, view.E("li", view.E("label", box, view.Text(text))))
	}

	// Empty state message
	if len(rows) == 0 {
		rows = append(rows, view.E("li", view.Text("No items yet. Type above and Add.")).Attr("class", "empty"))
	}

	status := fmt.Sprintf("%d/%d done", done, len(items))
	if len(items) == 0 {
		status = "no items"
	}

	return view.E("div",
		// Tag bar
		view.E("div",
			view.E("button", view.Text("Add")).OnReason("click", reasonAdd),
			view.E("button", view.Text("Clear")).OnReason("click", reasonClear),
		).Attr("class", "tag").Style("display", "flex"),
		view.E("input").
			Attr("placeholder", "new todo...").
			Value(input).
			OnReason("input", reasonInput).
			OnReason("change", reasonAdd),
		view.E("ul", rows...),
		view.E("p", view.Text(status)).Attr("class", "status"),
	), nil
}

// addItem appends the typed text as a new item and clears the input.
func addItem(s any, _ proto.Event) any {
	text, _ := optic.View(s, optic.Path("input")).(string)
	text = strings.TrimSpace(text)
	if text == "" {
		return s
	}
	items, _ := optic.View(s, optic.Path("items")).([]any)
	s = optic.Set(s, optic.Path("items", len(items)), map[string]any{"text": text, "done": false})
	return optic.Set(s, optic.Path("input"), "")
}

// clearDone removes completed items.
func clearDone(s any, _ proto.Event) any {
	items, _ := optic.View(s, optic.Path("items")).([]any)
	kept := make([]any, 0, len(items))
	for _, it := range items {
		if optic.View(it, optic.Path("done")) != true {
			kept = append(kept, it)
		}
	}
	if len(kept) == len(items) {
		return s
	}
	return optic.Set(s, optic.Path("items"), kept)
}

func root(state any) view.Node { return view.New(todoApp).Arg("state", state) }

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	initial := map[string]any{"input": "", "items": []any{}}
	s, err := ui.Start(ctx, initial, root, ui.Options{Logger: logger})
	if err != nil {
		logger.Fatal("start", zap.Error(err))
	}
	if err := ui.ServeLines(ctx, s, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
		logger.Fatal("run", zap.Error(err))
	}
}
