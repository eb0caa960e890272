package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/elizafairlady/go-lensui/ui/htmldom"
	"github.com/elizafairlady/go-lensui/ui/proto"
)

// Inputs handled by the session itself. Every other name is raised on
// the input's target, e.g. "click", "input" or htmldom.EventScroll.
const (
	InputEvent     = "event"
	InputResize    = "resize"
	InputMouseMove = "mousemove"
	InputMouseUp   = "mouseup"
	InputMouseDown = htmldom.EventMouseDown
)

// Input is one platform input.
type Input struct {
	Name string
	// Path addresses the target as child positions below the body,
	// e.g. "0.2". When empty, a positioned input targets the element
	// under the pointer and any other input targets the body.
	Path       string
	Positioned bool
	Raw        proto.RawEvent
	// Width and Height are the new viewport of a resize.
	Width, Height int
	// Event is the application event of an InputEvent, dispatched as is.
	Event *proto.Event
}

// ParseInput decodes an input from one line:
//
//	<name> path=<p> x=<n> y=<n> scrolltop=<n> value=<v> w=<n> h=<n>
//	event <reason> lens=<l> <key>=<v>...
//
// All fields are optional. Values use the escaping of the proto
// package. The rest of an event line is an event in the format of
// proto.ParseEvent.
func ParseInput(line string) (Input, error) {
	line = strings.TrimSpace(line)
	tokens := proto.Tokenize(line)
	if len(tokens) == 0 {
		return Input{}, fmt.Errorf("ui: empty input")
	}
	if strings.Contains(tokens[0], "=") {
		return Input{}, fmt.Errorf("ui: input starts with %q, want a name", tokens[0])
	}
	in := Input{Name: tokens[0]}
	if in.Name == InputEvent {
		ev, err := proto.ParseEvent(strings.TrimPrefix(line, InputEvent))
		if err != nil {
			return Input{}, fmt.Errorf("ui: bad event: %w", err)
		}
		in.Event = ev
		return in, nil
	}
	for _, tok := range tokens[1:] {
		k, v, ok := proto.ParseKV(tok)
		if !ok {
			return Input{}, fmt.Errorf("ui: bad input field %q", tok)
		}
		var err error
		switch k {
		case "path":
			in.Path = v
		case "value":
			in.Raw.Value = v
		case "x":
			in.Raw.ClientX, err = strconv.Atoi(v)
			in.Positioned = true
		case "y":
			in.Raw.ClientY, err = strconv.Atoi(v)
			in.Positioned = true
		case "scrolltop":
			in.Raw.ScrollTop, err = strconv.Atoi(v)
		case "w":
			in.Width, err = strconv.Atoi(v)
		case "h":
			in.Height, err = strconv.Atoi(v)
		default:
			return Input{}, fmt.Errorf("ui: unknown input field %q", k)
		}
		if err != nil {
			return Input{}, fmt.Errorf("ui: bad %s: %w", k, err)
		}
	}
	return in, nil
}

// String encodes in in the format read by ParseInput.
func (in Input) String() string {
	if in.Name == InputEvent && in.Event != nil {
		return InputEvent + " " + proto.SerializeEvent(in.Event)
	}
	parts := []string{in.Name}
	if in.Path != "" {
		parts = append(parts, proto.FormatKV("path", in.Path))
	}
	if in.Positioned {
		parts = append(parts, "x="+strconv.Itoa(in.Raw.ClientX), "y="+strconv.Itoa(in.Raw.ClientY))
	}
	if in.Raw.ScrollTop != 0 {
		parts = append(parts, "scrolltop="+strconv.Itoa(in.Raw.ScrollTop))
	}
	if in.Raw.Value != "" {
		parts = append(parts, proto.FormatKV("value", in.Raw.Value))
	}
	if in.Name == InputResize {
		parts = append(parts, "w="+strconv.Itoa(in.Width), "h="+strconv.Itoa(in.Height))
	}
	return strings.Join(parts, " ")
}
