package proto

import (
	"fmt"
	"strconv"
	"strings"
)

// Reasons handled by the loop itself rather than by application
// handlers.
const (
	ReasonInit         = "init"
	ReasonMeasures     = "with-measures"
	ReasonDragStart    = "drag-start"
	ReasonDragEnd      = "drag-end"
	ReasonDrop         = "drop"
	ReasonWindowHandle = "window-handle"
	ReasonScroll       = "with-scroll"
	ReasonPointerMove  = "pointer-move"
	ReasonPointerUp    = "pointer-up"
)

// WindowMeasureID is the measurement id of the viewport.
const WindowMeasureID = "WINDOW"

// Event is a semantic event. Reason selects the transition; the other
// fields are reason-specific payload.
type Event struct {
	Reason string
	// Lens is the state path the event refers to, as optic.Path
	// segments.
	Lens []any
	Data map[string]any
	// Raw is the platform event that raised this one, if any.
	Raw *RawEvent
	// Measures are the sampling targets of a ReasonMeasures event.
	Measures []MeasureTarget
}

// RawEvent is the platform data accompanying an event raised by a live
// node: the node it was raised on, pointer position, the scroll offset
// of the target and the current value of an input.
type RawEvent struct {
	Target    any
	ClientX   int
	ClientY   int
	ScrollTop int
	Value     string
}

// With returns a copy of ev carrying raw.
func (ev Event) With(raw *RawEvent) Event {
	ev.Raw = raw
	return ev
}

// Measure names a sampling of live node properties.
type Measure struct {
	ID         string
	Properties []string
}

// MeasureTarget binds a Measure to the live node it samples.
type MeasureTarget struct {
	Measure
	Node any
}

// Measures caches the last sampled values per measurement id.
type Measures map[string][]any

// --- Event serialization ---

// FormatLens encodes lens segments as a slash-separated path.
func FormatLens(lens []any) string {
	parts := make([]string, len(lens))
	for i, seg := range lens {
		parts[i] = fmt.Sprint(seg)
	}
	return strings.Join(parts, "/")
}

// ParseLens decodes a slash-separated path. Segments that are decimal
// integers become sequence positions.
func ParseLens(s string) []any {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, "/")
	lens := make([]any, len(parts))
	for i, p := range parts {
		if n, err := strconv.Atoi(p); err == nil {
			lens[i] = n
		} else {
			lens[i] = p
		}
	}
	return lens
}

// Keys of the event line format that map onto Event fields rather than
// Data.
const (
	eventKeyLens      = "lens"
	eventKeyValue     = "raw.value"
	eventKeyClientX   = "raw.x"
	eventKeyClientY   = "raw.y"
	eventKeyScrollTop = "raw.scrolltop"
)

// SerializeEvent encodes an event to one protocol line. Measures and
// the raw target are not representable and are omitted.
func SerializeEvent(ev *Event) string {
	var b strings.Builder
	b.WriteString(ev.Reason)
	if len(ev.Lens) > 0 {
		b.WriteByte(' ')
		b.WriteString(FormatKV(eventKeyLens, FormatLens(ev.Lens)))
	}
	for _, k := range sortedKeys(ev.Data) {
		b.WriteByte(' ')
		b.WriteString(FormatKV(k, fmt.Sprint(ev.Data[k])))
	}
	if r := ev.Raw; r != nil {
		fmt.Fprintf(&b, " %s %s %s", FormatKV(eventKeyClientX, strconv.Itoa(r.ClientX)),
			FormatKV(eventKeyClientY, strconv.Itoa(r.ClientY)),
			FormatKV(eventKeyScrollTop, strconv.Itoa(r.ScrollTop)))
		if r.Value != "" {
			b.WriteByte(' ')
			b.WriteString(FormatKV(eventKeyValue, r.Value))
		}
	}
	return b.String()
}

// ParseEvent decodes an event from one protocol line.
func ParseEvent(line string) (*Event, error) {
	tokens := Tokenize(strings.TrimSpace(line))
	if len(tokens) == 0 {
		return nil, fmt.Errorf("proto: empty event")
	}
	if strings.Contains(tokens[0], "=") {
		return nil, fmt.Errorf("proto: event starts with %q, want a reason", tokens[0])
	}
	ev := &Event{Reason: tokens[0]}
	raw := func() *RawEvent {
		if ev.Raw == nil {
			ev.Raw = &RawEvent{}
		}
		return ev.Raw
	}
	for _, tok := range tokens[1:] {
		k, v, ok := ParseKV(tok)
		if !ok {
			return nil, fmt.Errorf("proto: bad event field %q", tok)
		}
		var err error
		switch k {
		case eventKeyLens:
			ev.Lens = ParseLens(v)
		case eventKeyValue:
			raw().Value = v
		case eventKeyClientX:
			raw().ClientX, err = strconv.Atoi(v)
		case eventKeyClientY:
			raw().ClientY, err = strconv.Atoi(v)
		case eventKeyScrollTop:
			raw().ScrollTop, err = strconv.Atoi(v)
		default:
			if ev.Data == nil {
				ev.Data = make(map[string]any)
			}
			ev.Data[k] = v
		}
		if err != nil {
			return nil, fmt.Errorf("proto: bad %s: %w", k, err)
		}
	}
	return ev, nil
}
