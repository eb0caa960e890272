// Package loop implements the event/render loop.
//
// A Loop owns the application state, the handler table, the previously
// rendered tree and the measurement cache. Each event is processed to
// completion before the next one starts: the reason selects a kernel
// action or an application transition, an effective state change
// renders the root component, the live tree is reconciled, and the
// nodes that asked to be measured are sampled. When a sample differs
// from the cache the pass repeats, up to a fixed number of times.
package loop

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/elizafairlady/go-lensui/ui/dom"
	"github.com/elizafairlady/go-lensui/ui/metrics"
	"github.com/elizafairlady/go-lensui/ui/optic"
	"github.com/elizafairlady/go-lensui/ui/proto"
	"github.com/elizafairlady/go-lensui/ui/reconcile"
	"github.com/elizafairlady/go-lensui/ui/render"
	"github.com/elizafairlady/go-lensui/ui/value"
	"github.com/elizafairlady/go-lensui/ui/view"
)

// Buffer size of the posted event channel.
const inputChSize = 128

// DefaultMaxMeasurePasses bounds the measurement feedback loop when
// Config.MaxMeasurePasses is zero.
const DefaultMaxMeasurePasses = 32

// ErrMeasureLimit is returned when measurements keep changing after
// the maximum number of re-renders.
var ErrMeasureLimit = errors.New("loop: measurements did not settle")

// RootFunc describes the whole UI for a state.
type RootFunc func(state any) view.Node

// Config holds loop configuration.
type Config struct {
	// Initial is the state installed by the init event.
	Initial any
	Logger  *zap.Logger
	Metrics *metrics.Collector
	// MaxMeasurePasses bounds how many times one event may re-render
	// because measurements changed.
	MaxMeasurePasses int
	// Progress is called with true before and false after each render
	// pass.
	Progress func(busy bool)
	// Viewport is the node sampled for the WINDOW measurement on
	// Resize. It defaults to the reconcile target.
	Viewport dom.Node
}

// Loop is the event/render loop of one application.
type Loop struct {
	cfg    Config
	log    *zap.Logger
	doc    dom.Document
	target dom.Node
	root   RootFunc

	inputCh chan proto.Event
	busy    atomic.Bool

	// mu serializes event processing and guards the fields below.
	mu       sync.Mutex
	state    any
	prev     proto.Tree
	handlers view.Handlers
	measures proto.Measures
	drag     *proto.Event
	position func(x, y int)
}

// New creates a loop that renders root into the children of target.
// Nothing is rendered until the init event is dispatched.
func New(cfg Config, doc dom.Document, target dom.Node, root RootFunc) *Loop {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.MaxMeasurePasses <= 0 {
		cfg.MaxMeasurePasses = DefaultMaxMeasurePasses
	}
	if cfg.Viewport == nil {
		cfg.Viewport = target
	}
	return &Loop{
		cfg:      cfg,
		log:      cfg.Logger,
		doc:      doc,
		target:   target,
		root:     root,
		inputCh:  make(chan proto.Event, inputChSize),
		handlers: make(view.Handlers),
		measures: make(proto.Measures),
	}
}

// Dispatch processes one event to completion. Concurrent calls are
// serialized. Components must not call Dispatch while rendering.
//
// An event with an unknown reason is logged and dropped; it is not an
// error. A failed render leaves the state, the previous tree and the
// live tree as they were and returns the error.
func (l *Loop) Dispatch(ctx context.Context, ev proto.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.handle(ctx, ev)
}

func (l *Loop) handle(ctx context.Context, ev proto.Event) error {
	if ce := l.log.Check(zap.DebugLevel, "dispatch"); ce != nil {
		ce.Write(zap.String("reason", ev.Reason), zap.String("event", proto.SerializeEvent(&ev)))
	}

	var next any
	switch ev.Reason {
	case proto.ReasonInit:
		l.kernel(ev)
		next = l.cfg.Initial

	case proto.ReasonMeasures:
		l.kernel(ev)
		return l.measure(ctx, ev.Measures, 0)

	case proto.ReasonDragStart:
		l.kernel(ev)
		drag := ev
		l.drag = &drag
		return nil

	case proto.ReasonDragEnd:
		l.kernel(ev)
		l.drag = nil
		return nil

	case proto.ReasonDrop:
		l.kernel(ev)
		if l.drag != nil && ev.Raw != nil && ev.Raw.Target != nil {
			if color, ok := l.drag.Data["color"]; ok {
				l.doc.SetAttribute(ev.Raw.Target, "fill", fmt.Sprint(color))
			}
		}
		return nil

	case proto.ReasonWindowHandle:
		l.kernel(ev)
		l.startPositioning(ev)
		return nil

	case proto.ReasonPointerMove:
		if l.position != nil && ev.Raw != nil {
			l.position(ev.Raw.ClientX, ev.Raw.ClientY)
		}
		return nil

	case proto.ReasonPointerUp:
		l.position = nil
		return nil

	case proto.ReasonScroll:
		l.kernel(ev)
		top := 0
		if ev.Raw != nil {
			top = ev.Raw.ScrollTop
		}
		next = optic.Set(l.state, optic.Path(ev.Lens...), top)

	default:
		t, ok := l.handlers[ev.Reason]
		if !ok {
			l.log.Warn("unknown event", zap.String("reason", ev.Reason))
			l.cfg.Metrics.RecordEvent(ev.Reason, metrics.ResultUnknown)
			return nil
		}
		next = t(l.state, ev)
		if value.Same(next, l.state) {
			l.cfg.Metrics.RecordEvent(ev.Reason, metrics.ResultUnchanged)
			return nil
		}
		l.cfg.Metrics.RecordEvent(ev.Reason, metrics.ResultHandled)
	}

	return l.update(ctx, ev.Reason, next, 0, nil)
}

func (l *Loop) kernel(ev proto.Event) {
	l.cfg.Metrics.RecordEvent(ev.Reason, metrics.ResultKernel)
}

// update renders next with the measurement cache overlaid by sampled,
// commits both and patches the live tree, then samples the measurements
// the new tree asked for. pass counts the re-renders caused by
// measurements within the current event. Nothing is committed when the
// render fails.
func (l *Loop) update(ctx context.Context, reason string, next any, pass int, sampled proto.Measures) error {
	handlers := make(view.Handlers, len(l.handlers))
	for k, t := range l.handlers {
		handlers[k] = t
	}
	measures := l.measures
	if len(sampled) > 0 {
		measures = make(proto.Measures, len(l.measures)+len(sampled))
		for k, v := range l.measures {
			measures[k] = v
		}
		for k, v := range sampled {
			measures[k] = v
		}
	}

	l.setBusy(true)
	start := time.Now()
	tree, err := render.Render(ctx, handlers, l.root(next), measures)
	l.cfg.Metrics.RecordRender(time.Since(start), err)
	if err != nil {
		l.setBusy(false)
		l.cfg.Metrics.RecordEvent(reason, metrics.ResultError)
		l.log.Error("render failed", zap.String("reason", reason), zap.Int("pass", pass), zap.Error(err))
		return fmt.Errorf("loop: %s: %w", reason, err)
	}
	l.state = next
	l.handlers = handlers
	l.measures = measures
	if ce := l.log.Check(zap.DebugLevel, "rendered"); ce != nil {
		ce.Write(zap.String("reason", reason), zap.Int("pass", pass), zap.String("tree", proto.SerializeTree(tree)))
	}

	start = time.Now()
	targets := reconcile.Reconcile(l.doc, l.target, tree, l.prev)
	l.prev = tree
	if f, ok := l.doc.(dom.Framer); ok {
		f.Frame()
	}
	l.cfg.Metrics.RecordReconcile(time.Since(start))
	l.setBusy(false)

	return l.measure(ctx, targets, pass)
}

// measure samples targets and renders again if any sample differs from
// the cache. The new samples enter the cache only with a successful
// render, so an identical sample after a failure tries again.
func (l *Loop) measure(ctx context.Context, targets []proto.MeasureTarget, pass int) error {
	var sampled proto.Measures
	for _, t := range targets {
		values := make([]any, len(t.Properties))
		for i, p := range t.Properties {
			values[i] = l.doc.Property(t.Node, p)
		}
		if old, ok := l.measures[t.ID]; !ok || !value.Equal(old, values) {
			if sampled == nil {
				sampled = make(proto.Measures)
			}
			sampled[t.ID] = values
		}
	}
	l.cfg.Metrics.RecordMeasurePass(sampled != nil)
	if sampled == nil {
		return nil
	}
	if pass >= l.cfg.MaxMeasurePasses {
		l.cfg.Metrics.RecordMeasureLimit()
		l.log.Error("measurements did not settle", zap.Int("pass", pass))
		return ErrMeasureLimit
	}
	return l.update(ctx, proto.ReasonMeasures, l.state, pass+1, sampled)
}

// startPositioning begins dragging the window named by the event: the
// window follows pointer moves until the pointer is released.
func (l *Loop) startPositioning(ev proto.Event) {
	id, _ := ev.Data["windowId"].(string)
	w, ok := l.doc.Lookup(id)
	if !ok {
		l.log.Warn("window handle without window", zap.String("window", id))
		return
	}
	if ev.Raw == nil {
		return
	}
	left, _ := l.doc.Property(w, "offsetLeft").(int)
	top, _ := l.doc.Property(w, "offsetTop").(int)
	x0, y0 := ev.Raw.ClientX, ev.Raw.ClientY
	l.position = func(x, y int) {
		l.doc.SetStyle(w, "left", strconv.Itoa(left+x-x0)+"px")
		l.doc.SetStyle(w, "top", strconv.Itoa(top+y-y0)+"px")
	}
}

func (l *Loop) setBusy(busy bool) {
	l.busy.Store(busy)
	l.cfg.Metrics.RecordBusy(busy)
	if l.cfg.Progress != nil {
		l.cfg.Progress(busy)
	}
}

// Init dispatches the init event.
func (l *Loop) Init(ctx context.Context) error {
	return l.Dispatch(ctx, proto.Event{Reason: proto.ReasonInit})
}

// Resize samples the viewport into the WINDOW measurement and renders
// again if its size changed.
func (l *Loop) Resize(ctx context.Context) error {
	return l.Dispatch(ctx, proto.Event{
		Reason: proto.ReasonMeasures,
		Measures: []proto.MeasureTarget{{
			Measure: proto.Measure{
				ID:         proto.WindowMeasureID,
				Properties: []string{"offsetWidth", "offsetHeight"},
			},
			Node: l.cfg.Viewport,
		}},
	})
}

// Post queues an event for Run. It may block if the queue is full.
func (l *Loop) Post(ev proto.Event) {
	l.inputCh <- ev
	l.cfg.Metrics.RecordQueueDepth(len(l.inputCh))
}

// Run dispatches posted events until ctx is done and returns ctx.Err().
// It is fully serial: events are handled one at a time on the calling
// goroutine. Dispatch errors are logged and do not stop the loop.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case ev := <-l.inputCh:
			// Consume all queued events before waiting again.
		consumeAllEvents:
			for {
				l.cfg.Metrics.RecordQueueDepth(len(l.inputCh))
				if err := l.Dispatch(ctx, ev); err != nil {
					l.log.Debug("dispatch failed", zap.String("reason", ev.Reason), zap.Error(err))
				}
				if ctx.Err() != nil {
					return ctx.Err()
				}
				select {
				case ev = <-l.inputCh:
				default:
					break consumeAllEvents
				}
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Busy reports whether a render pass is in progress.
func (l *Loop) Busy() bool { return l.busy.Load() }

// State returns the current state.
func (l *Loop) State() any {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Tree returns the last committed tree.
func (l *Loop) Tree() proto.Tree {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.prev
}

// Measures returns a copy of the measurement cache.
func (l *Loop) Measures() proto.Measures {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(proto.Measures, len(l.measures))
	for k, v := range l.measures {
		out[k] = v
	}
	return out
}
