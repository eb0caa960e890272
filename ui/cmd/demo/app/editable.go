package app

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/elizafairlady/go-lensui/ui/optic"
	"github.com/elizafairlady/go-lensui/ui/proto"
	"github.com/elizafairlady/go-lensui/ui/view"
)

// Reasons raised by Editable.
const (
	ReasonEdit   = "Editable/edit-user"
	ReasonUpdate = "Editable/update-user"
	ReasonInput  = "Editable/user-input"
)

// Fields of the record an Editable keeps at its lens while editing.
const (
	editingKey = "_edit"
	draftKey   = "tmp"
)

// Editable shows the string at "lens" in "state". Clicking it swaps in
// an input holding a draft; input title-cases the draft and change
// commits it.
var Editable = view.WithHandlers(renderEditable, view.Handlers{
	ReasonEdit: func(state any, ev proto.Event) any {
		return optic.Over(state, optic.Path(ev.Lens...), func(v any) any {
			return map[string]any{editingKey: true, draftKey: v}
		})
	},
	ReasonUpdate: func(state any, ev proto.Event) any {
		return optic.Over(state, optic.Path(ev.Lens...), func(v any) any {
			rec, _ := v.(map[string]any)
			return rec[draftKey]
		})
	},
	ReasonInput: func(state any, ev proto.Event) any {
		typed := ""
		if ev.Raw != nil {
			typed = ev.Raw.Value
		}
		return optic.Over(state, optic.Path(ev.Lens...), func(v any) any {
			rec, _ := v.(map[string]any)
			return map[string]any{editingKey: rec[editingKey], draftKey: TitleCase(typed)}
		})
	},
})

func renderEditable(_ context.Context, p view.Props) (view.Node, error) {
	lens, _ := p.Arg("lens").([]any)
	v := optic.View(p.Arg("state"), optic.Path(lens...))

	rec, editing := v.(map[string]any)
	if !editing || rec[editingKey] != true {
		return view.E("span", view.Scalar(v)).
			On("click", proto.Event{Reason: ReasonEdit, Lens: lens}).
			Style("cursor", "pointer"), nil
	}
	draft, _ := rec[draftKey].(string)
	return view.E("input").
		Attr("autofocus", true).
		Attr("data-lpignore", true).
		Attr("type", "text").
		Value(draft).
		On("change", proto.Event{Reason: ReasonUpdate, Lens: lens}).
		On("input", proto.Event{Reason: ReasonInput, Lens: lens}), nil
}

// TitleCase collapses runs of white space to one space and upper-cases
// the first letter of every word.
func TitleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r, n := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[n:]
	}
	return strings.Join(words, " ")
}
