package ui

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/elizafairlady/go-lensui/ui/layout"
	"github.com/elizafairlady/go-lensui/ui/optic"
	"github.com/elizafairlady/go-lensui/ui/proto"
	"github.com/elizafairlady/go-lensui/ui/render"
	"github.com/elizafairlady/go-lensui/ui/view"
)

var counter = view.WithHandlers(
	func(_ context.Context, p view.Props) (view.Node, error) {
		s, _ := p.Arg("state").(map[string]any)
		name, _ := s["name"].(string)
		return view.E("div",
			view.E("button", view.Text("+")).OnReason("click", "inc"),
			view.E("span", view.Scalar(s["count"])),
			view.E("input").Value(name).OnReason("input", "typed"),
		), nil
	},
	view.Handlers{
		"inc": func(s any, _ proto.Event) any {
			return optic.Over(s, optic.Path("count"), func(v any) any { return v.(int) + 1 })
		},
		"typed": func(s any, ev proto.Event) any {
			return optic.Set(s, optic.Path("name"), ev.Raw.Value)
		},
	},
)

func counterRoot(state any) view.Node { return view.New(counter).Arg("state", state) }

func start(t *testing.T) *Session {
	t.Helper()
	s, err := Start(context.Background(), map[string]any{"count": 0}, counterRoot, Options{})
	require.NoError(t, err)
	return s
}

func TestStart(t *testing.T) {
	s := start(t)
	assert.Contains(t, s.HTML(), "<span>0</span>")
	assert.Equal(t, "opacity: 1;", layout.Attr(s.Document().Body(), "style"))
	assert.Equal(t, image.Pt(DefaultWidth, DefaultHeight), s.Document().Viewport())
}

func TestHandleClickBubbles(t *testing.T) {
	s := start(t)
	ctx := context.Background()

	require.NoError(t, s.Handle(ctx, Input{Name: "click", Path: "0.0"}))
	assert.Contains(t, s.HTML(), "<span>1</span>")

	// The button's text raises the click; the button handles it.
	require.NoError(t, s.Handle(ctx, Input{Name: "click", Path: "0.0.0"}))
	assert.Contains(t, s.HTML(), "<span>2</span>")

	// Nothing is bound on the span.
	require.NoError(t, s.Handle(ctx, Input{Name: "click", Path: "0.1"}))
	assert.Equal(t, 2, s.State().(map[string]any)["count"])
}

func TestHandleInput(t *testing.T) {
	s := start(t)
	err := s.Handle(context.Background(), Input{Name: "input", Path: "0.2", Raw: proto.RawEvent{Value: "nicolette"}})
	require.NoError(t, err)
	assert.Equal(t, "nicolette", s.State().(map[string]any)["name"])
	assert.Contains(t, s.HTML(), `value="nicolette"`)
}

func TestHandleEvent(t *testing.T) {
	s := start(t)
	in, err := ParseInput("event inc")
	require.NoError(t, err)
	require.NoError(t, s.Handle(context.Background(), in))
	assert.Contains(t, s.HTML(), "<span>1</span>")
	assert.Contains(t, s.Tree(), "text 0.1.0 1\n")

	assert.Error(t, s.Handle(context.Background(), Input{Name: InputEvent}))
}

func TestHandleBadPath(t *testing.T) {
	s := start(t)
	assert.Error(t, s.Handle(context.Background(), Input{Name: "click", Path: "7"}))
}

func TestHandleResize(t *testing.T) {
	root := func(any) view.Node {
		return view.C(func(ctx context.Context, _ view.Props) (view.Node, error) {
			size := render.Sampled(ctx, proto.WindowMeasureID)
			if size == nil {
				return view.Text("unmeasured"), nil
			}
			return view.Textf("%vx%v", size[0], size[1]), nil
		})
	}
	s, err := Start(context.Background(), nil, root, Options{Width: 800, Height: 600})
	require.NoError(t, err)
	assert.Equal(t, "800x600", s.HTML())

	require.NoError(t, s.Handle(context.Background(), Input{Name: InputResize, Width: 801, Height: 600}))
	assert.Equal(t, "801x600", s.HTML())
}

func TestStartRenderError(t *testing.T) {
	root := func(any) view.Node {
		return view.C(func(context.Context, view.Props) (view.Node, error) {
			return nil, fmt.Errorf("no data")
		})
	}
	s, err := Start(context.Background(), nil, root, Options{})
	require.Error(t, err)
	require.NotNil(t, s)
	assert.Empty(t, s.HTML())
}

func TestParseInput(t *testing.T) {
	tests := []struct {
		line string
		want Input
	}{
		{"click path=0.1", Input{Name: "click", Path: "0.1"}},
		{"mousemove x=10 y=-4", Input{Name: InputMouseMove, Positioned: true, Raw: proto.RawEvent{ClientX: 10, ClientY: -4}}},
		{`input path=2 value="hello world"`, Input{Name: "input", Path: "2", Raw: proto.RawEvent{Value: "hello world"}}},
		{"scroll path=0 scrolltop=45", Input{Name: "scroll", Path: "0", Raw: proto.RawEvent{ScrollTop: 45}}},
		{"resize w=800 h=600", Input{Name: InputResize, Width: 800, Height: 600}},
		{"event inc lens=items/2 color=green", Input{Name: InputEvent, Event: &proto.Event{
			Reason: "inc", Lens: []any{"items", 2}, Data: map[string]any{"color": "green"},
		}}},
	}
	for _, tt := range tests {
		got, err := ParseInput(tt.line)
		require.NoError(t, err, tt.line)
		assert.Equal(t, tt.want, got, tt.line)
		assert.Equal(t, tt.line, got.String())
	}

	for _, bad := range []string{"", "x=1", "click path", "click x=one", "click color=red", "event", "event k=v"} {
		_, err := ParseInput(bad)
		assert.Error(t, err, bad)
	}
}

func TestRunSendsFrames(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := start(t)
	inputs := make(chan Input, 3)
	for i := 0; i < 3; i++ {
		inputs <- Input{Name: "click", Path: "0.0"}
	}
	close(inputs)

	var frames []string
	err := Run(context.Background(), s, inputs, func(html string) error {
		frames = append(frames, html)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, frames, 2)
	assert.Contains(t, frames[0], "<span>0</span>")
	assert.Contains(t, frames[1], "<span>3</span>")
}

func TestRunStops(t *testing.T) {
	defer goleak.VerifyNone(t)
	s := start(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Run(ctx, s, make(chan Input), func(string) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)

	boom := fmt.Errorf("closed")
	err = Run(context.Background(), s, make(chan Input), func(string) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestServeLines(t *testing.T) {
	defer goleak.VerifyNone(t)
	s := start(t)

	in := strings.NewReader("click path=0.0\n\nclick color=red\nclick path=0.0\n")
	var out bytes.Buffer
	require.NoError(t, ServeLines(context.Background(), s, in, &out))

	frames := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.GreaterOrEqual(t, len(frames), 2)
	assert.Contains(t, frames[0], "<span>0</span>")
	assert.Contains(t, frames[len(frames)-1], "<span>2</span>")
}
