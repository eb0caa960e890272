package app

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/elizafairlady/go-lensui/ui/lazy"
	"github.com/elizafairlady/go-lensui/ui/optic"
	"github.com/elizafairlady/go-lensui/ui/view"
)

// Height in pixels of a list row.
const itemHeight = 15

// Height assumed for the scroller before it has been measured.
const defaultScrollerHeight = 300

// RowFunc renders row i of a Scroller.
type RowFunc func(i int, item string) view.Node

// Scroller renders the rows of "items" visible in its measured height,
// tracking its scroll offset in "state" at "scrollLens". Rows are drawn
// by the RowFunc "row".
var Scroller = view.WithSize(func(_ context.Context, p view.Props) (view.Node, error) {
	items, _ := p.Arg("items").([]string)
	lens, _ := p.Arg("scrollLens").([]any)
	row, _ := p.Arg("row").(RowFunc)
	if row == nil {
		return nil, fmt.Errorf("scroller: no row function")
	}

	scrollTop, _ := optic.View(p.Arg("state"), optic.Path(lens...)).(int)
	scrollTop = max(scrollTop, 0)
	height := defaultScrollerHeight
	if size, ok := p.Arg(view.SizeProperty).([]any); ok && len(size) == 2 {
		if h, ok := size[1].(int); ok {
			height = h
		}
	}

	start := min(scrollTop/itemHeight, len(items))
	end := min(len(items), start+(height+itemHeight-1)/itemHeight)
	rows := make([]view.Node, 0, max(end-start, 0))
	for i := start; i < end; i++ {
		rows = append(rows, row(i, items[i]))
	}

	return view.E("div",
		view.E("div",
			view.E("div", rows...).StyleMap(map[string]string{
				"left":     "0px",
				"position": "absolute",
				"top":      strconv.Itoa(scrollTop) + "px",
			}),
		).StyleMap(map[string]string{
			"height":     strconv.Itoa(itemHeight*(len(items)+1)) + "px",
			"overflow-y": "hidden",
			"position":   "relative",
			"width":      "100%",
		}),
	).Scroll(lens...).ScrollTop(scrollTop).StyleMap(map[string]string{
		"overflow-y": "scroll",
		"width":      "100%",
	}), nil
})

// Variants shown beside each item, each with one character dropped.
const variants = 14

// List loads "items", a *lazy.Value[[]string], and shows them in a
// Scroller driven by the state's scrollTop.
func List(ctx context.Context, p view.Props) (view.Node, error) {
	lv, _ := p.Arg("items").(*lazy.Value[[]string])
	if lv == nil {
		return nil, fmt.Errorf("list: no items")
	}
	items, err := lv.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("list: load items: %w", err)
	}

	return view.New(Scroller).
		Arg("items", items).
		Arg("scrollLens", []any{"scrollTop"}).
		Arg("state", p.Arg("state")).
		Arg("row", RowFunc(listRow)), nil
}

func listRow(i int, item string) view.Node {
	cells := []view.Node{
		view.E("div", view.Textf("%d. ", i+1), view.Text(item)).Style("width", "200px"),
	}
	for c := 0; c < variants; c++ {
		dropped := item
		if c < len(item) {
			dropped = item[:c] + item[c+1:]
		}
		cells = append(cells, view.E("div", view.Text(dropped)).Style("width", "150px"))
	}
	return view.C(HGroup, cells...)
}

// LoadItems returns n random hex strings after delay.
func LoadItems(n int, delay time.Duration) *lazy.Value[[]string] {
	return lazy.New(func(ctx context.Context) ([]string, error) {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		items := make([]string, n)
		for i := range items {
			items[i] = strconv.FormatUint(rand.Uint64(), 16)
		}
		return items, nil
	})
}
