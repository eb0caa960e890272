// Package ui runs an application against an in-memory HTML document.
//
// A Session owns the live document and the event/render loop of one
// application. Hosts feed it platform input (clicks, key input, scroll,
// pointer moves, resizes) and read back HTML snapshots.
//
// Example usage:
//
//	s, err := ui.Start(ctx, initial, root, ui.Options{Width: 1024, Height: 768})
//	if err != nil {
//		log.Fatal(err)
//	}
//	err = ui.Run(ctx, s, inputs, func(html string) error {
//		return send(html)
//	})
package ui

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/elizafairlady/go-lensui/ui/dom"
	"github.com/elizafairlady/go-lensui/ui/htmldom"
	"github.com/elizafairlady/go-lensui/ui/layout"
	"github.com/elizafairlady/go-lensui/ui/loop"
	"github.com/elizafairlady/go-lensui/ui/metrics"
	"github.com/elizafairlady/go-lensui/ui/proto"
)

// Default viewport size.
const (
	DefaultWidth  = 1024
	DefaultHeight = 768
)

// Opacity of the body while a render pass is in progress.
const busyOpacity = "0.5"

// Options configures a Session. The zero value is usable.
type Options struct {
	Width, Height    int
	Logger           *zap.Logger
	Metrics          *metrics.Collector
	Layout           *layout.Config
	MaxMeasurePasses int
}

// Session is one running application.
type Session struct {
	log  *zap.Logger
	loop *loop.Loop

	// mu serializes input handling and snapshots; htmldom is not safe
	// for concurrent use.
	mu  sync.Mutex
	doc *htmldom.Document
}

// Start creates the document, renders initial and samples the viewport.
// A render failure of the initial state is returned, with the session,
// which stays usable.
func Start(ctx context.Context, initial any, root loop.RootFunc, opts Options) (*Session, error) {
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	doc := htmldom.New(opts.Width, opts.Height, opts.Layout)
	var d dom.Document = doc
	if opts.Metrics != nil {
		d = metrics.WrapDocument(doc, opts.Metrics)
	}
	body := doc.Body()

	s := &Session{log: opts.Logger, doc: doc}
	s.loop = loop.New(loop.Config{
		Initial:          initial,
		Logger:           opts.Logger.Named("loop"),
		Metrics:          opts.Metrics,
		MaxMeasurePasses: opts.MaxMeasurePasses,
		Progress: func(busy bool) {
			if busy {
				d.SetStyle(body, "opacity", busyOpacity)
			} else {
				d.SetStyle(body, "opacity", "1")
			}
		},
		Viewport: body,
	}, d, body, root)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loop.Init(ctx); err != nil {
		return s, fmt.Errorf("ui: init: %w", err)
	}
	if err := s.loop.Resize(ctx); err != nil {
		return s, fmt.Errorf("ui: measure viewport: %w", err)
	}
	return s, nil
}

// Handle processes one platform input to completion.
//
// Resize changes the viewport and samples it. Pointer moves and
// releases go to the loop whatever their target, so a dragged window
// follows the pointer everywhere. Any other input is raised on its
// target and bubbles to the nearest node bound to it; input nobody is
// bound to is ignored.
func (s *Session) Handle(ctx context.Context, in Input) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw := in.Raw
	switch in.Name {
	case InputEvent:
		if in.Event == nil {
			return fmt.Errorf("ui: event input without event")
		}
		return s.loop.Dispatch(ctx, *in.Event)
	case InputResize:
		s.doc.Resize(in.Width, in.Height)
		return s.loop.Resize(ctx)
	case InputMouseMove:
		return s.loop.Dispatch(ctx, proto.Event{Reason: proto.ReasonPointerMove, Raw: &raw})
	case InputMouseUp:
		if err := s.loop.Dispatch(ctx, proto.Event{Reason: proto.ReasonPointerUp, Raw: &raw}); err != nil {
			return err
		}
	}

	target, err := s.target(in)
	if err != nil {
		return err
	}
	ev, ok := s.doc.Trigger(target, in.Name, &raw)
	if !ok {
		s.log.Debug("unbound input", zap.String("input", in.Name), zap.String("path", in.Path))
		return nil
	}
	return s.loop.Dispatch(ctx, ev)
}

// target resolves the node an input is raised on: the node at Path if
// one is given, else the element under the pointer, else the body.
func (s *Session) target(in Input) (*html.Node, error) {
	if in.Path != "" {
		return s.doc.NodeAt(in.Path)
	}
	if in.Positioned {
		if n := s.doc.At(image.Pt(in.Raw.ClientX, in.Raw.ClientY)); n != nil {
			return n, nil
		}
	}
	return s.doc.Body(), nil
}

// HTML returns a snapshot of the body's children.
func (s *Session) HTML() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.String()
}

// Tree returns the last rendered tree in the text format of
// proto.SerializeTree.
func (s *Session) Tree() string { return proto.SerializeTree(s.loop.Tree()) }

// Document returns the live document. Callers must not use it while
// the session handles input.
func (s *Session) Document() *htmldom.Document { return s.doc }

// State returns the application state.
func (s *Session) State() any { return s.loop.State() }

// Run handles inputs serially until ctx is done or inputs is closed.
// After each batch of queued inputs, frame is called with a snapshot.
// Input errors are logged and do not stop the session; a frame error
// does.
func Run(ctx context.Context, s *Session, inputs <-chan Input, frame func(html string) error) error {
	if err := frame(s.HTML()); err != nil {
		return fmt.Errorf("ui: frame: %w", err)
	}
	for {
		select {
		case in, ok := <-inputs:
			if !ok {
				return nil
			}
			// Consume all queued inputs before sending a frame.
		consumeAllInputs:
			for {
				if err := s.Handle(ctx, in); err != nil {
					if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
						return err
					}
					s.log.Warn("input failed", zap.String("input", in.Name), zap.Error(err))
				}
				select {
				case in, ok = <-inputs:
					if !ok {
						break consumeAllInputs
					}
				default:
					break consumeAllInputs
				}
			}
			if err := frame(s.HTML()); err != nil {
				return fmt.Errorf("ui: frame: %w", err)
			}
			if !ok {
				return nil
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
