package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elizafairlady/go-lensui/ui"
	"github.com/elizafairlady/go-lensui/ui/proto"
)

func TestTodo(t *testing.T) {
	ctx := context.Background()
	s, err := ui.Start(ctx, map[string]any{"input": ""}, root, ui.Options{})
	require.NoError(t, err)
	assert.Contains(t, s.HTML(), "No items yet.")
	assert.Contains(t, s.HTML(), `<p class="status">no items</p>`)

	add := func(text string) {
		require.NoError(t, s.Handle(ctx, ui.Input{Name: "input", Path: "0.1", Raw: proto.RawEvent{Value: text}}))
		require.NoError(t, s.Handle(ctx, ui.Input{Name: "change", Path: "0.1", Raw: proto.RawEvent{Value: text}}))
	}
	add("buy milk")
	add("   ")
	add("call Juliet")

	state := s.State().(map[string]any)
	assert.Equal(t, "", state["input"])
	assert.Equal(t, []any{
		map[string]any{"text": "buy milk", "done": false},
		map[string]any{"text": "call Juliet", "done": false},
	}, state["items"])
	assert.Contains(t, s.HTML(), `<p class="status">0/2 done</p>`)

	require.NoError(t, s.Handle(ctx, ui.Input{Name: "click", Path: "0.2.0.0.0"}))
	assert.Contains(t, s.HTML(), `<input type="checkbox" checked="checked"/>buy milk`)
	assert.Contains(t, s.HTML(), `<p class="status">1/2 done</p>`)

	require.NoError(t, s.Handle(ctx, ui.Input{Name: "click", Path: "0.0.1"}))
	state = s.State().(map[string]any)
	assert.Equal(t, []any{map[string]any{"text": "call Juliet", "done": false}}, state["items"])
	assert.Contains(t, s.HTML(), `<p class="status">0/1 done</p>`)

	// Nothing left to clear.
	before := s.State()
	require.NoError(t, s.Handle(ctx, ui.Input{Name: "click", Path: "0.0.1"}))
	assert.Equal(t, before, s.State())
}
