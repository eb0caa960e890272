package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elizafairlady/go-lensui/ui"
	"github.com/elizafairlady/go-lensui/ui/htmldom"
	"github.com/elizafairlady/go-lensui/ui/layout"
	"github.com/elizafairlady/go-lensui/ui/lazy"
	"github.com/elizafairlady/go-lensui/ui/proto"
)

// Paths below the body.
const (
	pathGreeting = "0.0.1"
	pathItems    = "0.1"
	pathSquares  = "0.2"
	pathFooter   = "0.3"
	pathWindow   = "0.4"
)

func testItems(n int) []string {
	items := make([]string, n)
	for i := range items {
		items[i] = fmt.Sprintf("item-%02d", i)
	}
	return items
}

func start(t *testing.T, state map[string]any) *ui.Session {
	t.Helper()
	if state == nil {
		state = DefaultState()
	}
	s, err := ui.Start(context.Background(), state, Root(lazy.Of(testItems(50))), ui.Options{Width: 800, Height: 600})
	require.NoError(t, err)
	return s
}

func handle(t *testing.T, s *ui.Session, in ui.Input) {
	t.Helper()
	require.NoError(t, s.Handle(context.Background(), in))
}

func state(s *ui.Session) map[string]any {
	return s.State().(map[string]any)
}

func TestInitialPage(t *testing.T) {
	s := start(t, nil)
	out := s.HTML()
	assert.Contains(t, out, `<h2>Welcome <span style="cursor: pointer;">Nicolette</span>!</h2>`)
	assert.Contains(t, out, "<button>Show items</button>")
	assert.Contains(t, out, "<button>Footer</button>")
	assert.Contains(t, out, `<canvas height="100" width="100"></canvas>`)
	assert.NotContains(t, out, WindowID)
}

func TestEditable(t *testing.T) {
	s := start(t, nil)

	handle(t, s, ui.Input{Name: "click", Path: pathGreeting})
	assert.Equal(t, map[string]any{"_edit": true, "tmp": "Nicolette"}, state(s)["user"])
	in, err := s.Document().NodeAt(pathGreeting)
	require.NoError(t, err)
	assert.Equal(t, "input", in.Data)
	assert.Equal(t, "Nicolette", layout.Attr(in, "value"))

	handle(t, s, ui.Input{Name: htmldom.EventInput, Path: pathGreeting, Raw: proto.RawEvent{Value: "romeo  of   verona"}})
	assert.Equal(t, map[string]any{"_edit": true, "tmp": "Romeo Of Verona"}, state(s)["user"])

	handle(t, s, ui.Input{Name: htmldom.EventChange, Path: pathGreeting, Raw: proto.RawEvent{Value: "Romeo Of Verona"}})
	assert.Equal(t, "Romeo Of Verona", state(s)["user"])
	assert.Contains(t, s.HTML(), `<span style="cursor: pointer;">Romeo Of Verona</span>`)
}

func TestWindowToggleAndMove(t *testing.T) {
	s := start(t, nil)
	doc := s.Document()

	handle(t, s, ui.Input{Name: "click", Path: pathFooter})
	assert.Equal(t, true, state(s)["showWindow"])
	w, ok := doc.Lookup(WindowID)
	require.True(t, ok)
	left0 := doc.Property(w, "offsetLeft").(int)
	top0 := doc.Property(w, "offsetTop").(int)

	handle(t, s, ui.Input{Name: ui.InputMouseDown, Path: pathWindow + ".0.0", Positioned: true, Raw: proto.RawEvent{ClientX: 100, ClientY: 100}})
	handle(t, s, ui.Input{Name: ui.InputMouseMove, Positioned: true, Raw: proto.RawEvent{ClientX: 110, ClientY: 105}})
	handle(t, s, ui.Input{Name: ui.InputMouseUp, Positioned: true, Raw: proto.RawEvent{ClientX: 110, ClientY: 105}})
	handle(t, s, ui.Input{Name: ui.InputMouseMove, Positioned: true, Raw: proto.RawEvent{ClientX: 300, ClientY: 300}})

	assert.Equal(t, left0+10, doc.Property(w, "offsetLeft"))
	assert.Equal(t, top0+5, doc.Property(w, "offsetTop"))

	// The close control toggles the window off again.
	handle(t, s, ui.Input{Name: "click", Path: pathWindow + ".0.0.1"})
	assert.Equal(t, false, state(s)["showWindow"])
	_, ok = doc.Lookup(WindowID)
	assert.False(t, ok)
}

func TestDragAndDrop(t *testing.T) {
	s := start(t, nil)
	doc := s.Document()
	target := pathSquares + ".1.0.0"

	handle(t, s, ui.Input{Name: htmldom.EventDragStart, Path: pathSquares + ".0"})
	handle(t, s, ui.Input{Name: htmldom.EventDrop, Path: target})
	rect, err := doc.NodeAt(target)
	require.NoError(t, err)
	assert.Equal(t, "green", layout.Attr(rect, "fill"))

	handle(t, s, ui.Input{Name: htmldom.EventDragEnd, Path: pathSquares + ".0"})
	handle(t, s, ui.Input{Name: htmldom.EventDragStart, Path: pathSquares + ".2"})
	handle(t, s, ui.Input{Name: htmldom.EventDrop, Path: target})
	assert.Equal(t, "blue", layout.Attr(rect, "fill"))
}

func TestListScrolls(t *testing.T) {
	s := start(t, nil)
	handle(t, s, ui.Input{Name: "click", Path: pathItems})
	assert.Equal(t, true, state(s)["showItems"])
	assert.Contains(t, s.HTML(), ">1. item-00<")
	assert.Contains(t, s.HTML(), ">tem-00<")

	handle(t, s, ui.Input{Name: htmldom.EventScroll, Path: pathItems, Raw: proto.RawEvent{ScrollTop: 150}})
	assert.Equal(t, 150, state(s)["scrollTop"])
	out := s.HTML()
	assert.Contains(t, out, ">11. item-10<")
	assert.NotContains(t, out, ">1. item-00<")
	assert.Contains(t, out, "top: 150px;")
}

func TestListScrollOutOfRange(t *testing.T) {
	s := start(t, nil)
	handle(t, s, ui.Input{Name: "click", Path: pathItems})

	handle(t, s, ui.Input{Name: htmldom.EventScroll, Path: pathItems, Raw: proto.RawEvent{ScrollTop: -30}})
	assert.Equal(t, -30, state(s)["scrollTop"])
	out := s.HTML()
	assert.Contains(t, out, ">1. item-00<")
	assert.Contains(t, out, "top: 0px;")

	handle(t, s, ui.Input{Name: htmldom.EventScroll, Path: pathItems, Raw: proto.RawEvent{ScrollTop: 1 << 20}})
	assert.NotContains(t, s.HTML(), "item-00<")
}

func TestListLoadError(t *testing.T) {
	failing := lazy.New(func(context.Context) ([]string, error) {
		return nil, fmt.Errorf("offline")
	})
	st := DefaultState()
	st["showItems"] = true
	_, err := ui.Start(context.Background(), st, Root(failing), ui.Options{})
	require.Error(t, err)
	assert.ErrorContains(t, err, "offline")
}

func TestTitleCase(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", ""},
		{"nicolette", "Nicolette"},
		{"  romeo   and juliet ", "Romeo And Juliet"},
		{"élodie", "Élodie"},
	}
	for _, tt := range tests {
		if got := TitleCase(tt.in); got != tt.want {
			t.Errorf("TitleCase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLoadState(t *testing.T) {
	st, err := LoadState("")
	require.NoError(t, err)
	assert.Equal(t, DefaultState(), st)

	path := filepath.Join(t.TempDir(), "state.yaml")
	require.NoError(t, os.WriteFile(path, []byte("user: Romeo\nshowWindow: true\nscrollTop: 30\n"), 0o644))
	st, err = LoadState(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"user":       "Romeo",
		"showItems":  false,
		"showWindow": true,
		"scrollTop":  30,
	}, st)

	require.NoError(t, os.WriteFile(path, []byte("user: [unclosed\n"), 0o644))
	_, err = LoadState(path)
	assert.Error(t, err)

	_, err = LoadState(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadItems(t *testing.T) {
	items, err := LoadItems(5, 0).Get(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 5)
	for _, it := range items {
		assert.NotEmpty(t, it)
	}

	begin := time.Now()
	_, err = LoadItems(1, 20*time.Millisecond).Get(context.Background())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(begin), 20*time.Millisecond)
}
