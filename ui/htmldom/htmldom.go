// Package htmldom is a dom.Document over golang.org/x/net/html.
//
// It keeps a live HTML tree in memory, applies the attribute protocol of
// proto.Props to it, tracks which events each node raises and measures
// nodes with the layout engine. Hosts feed platform input back through
// Trigger, which resolves the bound event the way a browser bubbles a
// DOM event, and read the tree back with Render.
//
// A Document is not safe for concurrent use.
package htmldom

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/elizafairlady/go-lensui/ui/dom"
	"github.com/elizafairlady/go-lensui/ui/layout"
	"github.com/elizafairlady/go-lensui/ui/proto"
)

const skeleton = "<!DOCTYPE html><html><head></head><body></body></html>"

// Events raised by the protocol directives.
const (
	EventScroll    = "scroll"
	EventDragStart = "dragstart"
	EventDragEnd   = "dragend"
	EventDrop      = "drop"
	EventMouseDown = "mousedown"
	EventInput     = "input"
	EventChange    = "change"
)

// Document is a live HTML document.
type Document struct {
	root     *html.Node
	body     *html.Node
	viewport image.Rectangle
	conf     *layout.Config
	boxes    *layout.Result // nil when the tree changed since the last layout

	bindings  map[*html.Node]map[string]proto.Event
	scrollTop map[*html.Node]int
	canvases  map[*html.Node]*image.RGBA
	pending   []func()
}

var (
	_ dom.Document = (*Document)(nil)
	_ dom.Framer   = (*Document)(nil)
)

// New returns an empty document laid out in a viewport of the given
// size. A nil conf uses layout.DefaultConfig.
func New(width, height int, conf *layout.Config) *Document {
	if conf == nil {
		conf = layout.DefaultConfig()
	}
	root, err := html.Parse(strings.NewReader(skeleton))
	if err != nil {
		panic(fmt.Sprintf("htmldom: parse skeleton: %v", err))
	}
	d := &Document{
		root:      root,
		viewport:  image.Rect(0, 0, width, height),
		conf:      conf,
		bindings:  make(map[*html.Node]map[string]proto.Event),
		scrollTop: make(map[*html.Node]int),
		canvases:  make(map[*html.Node]*image.RGBA),
	}
	d.body = findElement(root, atom.Body)
	return d
}

// Body returns the body element, the usual reconcile target.
func (d *Document) Body() *html.Node { return d.body }

// Resize changes the viewport.
func (d *Document) Resize(width, height int) {
	d.viewport = image.Rect(0, 0, width, height)
	d.dirty()
}

// Viewport returns the viewport size.
func (d *Document) Viewport() image.Point { return d.viewport.Size() }

func (d *Document) dirty() { d.boxes = nil }

func (d *Document) layout() *layout.Result {
	if d.boxes == nil {
		d.boxes = layout.Compute(d.root, d.viewport, d.conf)
	}
	return d.boxes
}

// --- tree primitives ---

func (d *Document) CreateElement(ns, tag string) dom.Node {
	n := &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
	if ns == dom.NamespaceSVG {
		n.Namespace = "svg"
		n.DataAtom = 0
	}
	return n
}

func (d *Document) CreateText(text string) dom.Node {
	return &html.Node{Type: html.TextNode, Data: text}
}

func (d *Document) ChildCount(parent dom.Node) int {
	n := 0
	for c := parent.(*html.Node).FirstChild; c != nil; c = c.NextSibling {
		n++
	}
	return n
}

func (d *Document) ChildAt(parent dom.Node, i int) dom.Node {
	return childAt(parent.(*html.Node), i)
}

func childAt(p *html.Node, i int) *html.Node {
	c := p.FirstChild
	for ; c != nil && i > 0; i-- {
		c = c.NextSibling
	}
	return c
}

func (d *Document) AppendChild(parent, child dom.Node) {
	parent.(*html.Node).AppendChild(child.(*html.Node))
	d.dirty()
}

func (d *Document) ReplaceChild(parent, child dom.Node, i int) {
	p := parent.(*html.Node)
	old := childAt(p, i)
	p.InsertBefore(child.(*html.Node), old)
	p.RemoveChild(old)
	d.forget(old)
	d.dirty()
}

func (d *Document) RemoveLastChild(parent dom.Node) {
	p := parent.(*html.Node)
	old := p.LastChild
	p.RemoveChild(old)
	d.forget(old)
	d.dirty()
}

// forget drops the side tables of a detached subtree.
func (d *Document) forget(n *html.Node) {
	delete(d.bindings, n)
	delete(d.scrollTop, n)
	delete(d.canvases, n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		d.forget(c)
	}
}

// --- attribute protocol ---

func (d *Document) ApplyProps(node dom.Node, props *proto.Props) {
	n := node.(*html.Node)
	for _, key := range props.Keys() {
		val, _ := props.Get(key)
		switch key {
		case proto.KeyCanvas:
			d.canvases[n] = paintCanvas(n)

		case proto.KeyScrollTop:
			top := val.(int)
			d.later(func() { d.scrollTop[n] = top })

		case proto.KeyStyle:
			setAttr(n, "style", proto.StyleText(props.Style))

		case proto.KeyValue:
			setAttr(n, "value", *props.Value)

		case proto.KeyWindowHandle:
			id := props.WindowHandle.WindowID
			d.bind(n, EventMouseDown, proto.Event{
				Reason: proto.ReasonWindowHandle,
				Data:   map[string]any{"windowId": id},
			})
			d.later(func() { d.center(id) })

		case proto.KeyScroll:
			d.bind(n, EventScroll, proto.Event{Reason: proto.ReasonScroll, Lens: props.Scroll.Lens})

		case proto.KeyDrag:
			setAttr(n, "draggable", "true")
			d.bind(n, EventDragStart, proto.Event{Reason: proto.ReasonDragStart, Data: props.Drag})
			d.bind(n, EventDragEnd, proto.Event{Reason: proto.ReasonDragEnd})

		case proto.KeyDrop:
			d.bind(n, EventDrop, proto.Event{Reason: proto.ReasonDrop, Data: props.Drop})

		default:
			if name, ok := proto.IsOnKey(key); ok {
				if ev, ok := val.(proto.Event); ok {
					removeAttr(n, key)
					d.bind(n, name, ev)
					continue
				}
				d.unbind(n, name)
			}
			setAttr(n, key, fmt.Sprint(val))
		}
	}
	d.dirty()
}

func (d *Document) RemoveProp(node dom.Node, key string) {
	n := node.(*html.Node)
	switch key {
	case proto.KeyCanvas:
		delete(d.canvases, n)
	case proto.KeyScrollTop:
	case proto.KeyWindowHandle:
		d.unbind(n, EventMouseDown)
	case proto.KeyScroll:
		d.unbind(n, EventScroll)
	case proto.KeyDrag:
		removeAttr(n, "draggable")
		d.unbind(n, EventDragStart)
		d.unbind(n, EventDragEnd)
	case proto.KeyDrop:
		d.unbind(n, EventDrop)
	default:
		if name, ok := proto.IsOnKey(key); ok {
			if _, bound := d.bindings[n][name]; bound {
				d.unbind(n, name)
				return
			}
		}
		removeAttr(n, key)
	}
	d.dirty()
}

func (d *Document) SetAttribute(node dom.Node, name, value string) {
	setAttr(node.(*html.Node), name, value)
	d.dirty()
}

func (d *Document) SetStyle(node dom.Node, name, value string) {
	n := node.(*html.Node)
	style := proto.ParseStyle(layout.Attr(n, "style"))
	style[name] = value
	setAttr(n, "style", proto.StyleText(style))
	d.dirty()
}

func (d *Document) bind(n *html.Node, name string, ev proto.Event) {
	m := d.bindings[n]
	if m == nil {
		m = make(map[string]proto.Event)
		d.bindings[n] = m
	}
	m[name] = ev
}

func (d *Document) unbind(n *html.Node, name string) {
	delete(d.bindings[n], name)
	if len(d.bindings[n]) == 0 {
		delete(d.bindings, n)
	}
}

func (d *Document) later(f func()) {
	d.pending = append(d.pending, f)
}

// Frame runs the work deferred by ApplyProps until the tree is attached:
// scroll offsets and the initial centering of windows.
func (d *Document) Frame() {
	pending := d.pending
	d.pending = nil
	for _, f := range pending {
		f()
	}
}

// center puts the window element id in the middle of the body.
func (d *Document) center(id string) {
	w, ok := d.Lookup(id)
	if !ok {
		return
	}
	bw, _ := d.Property(d.body, "offsetWidth").(int)
	bh, _ := d.Property(d.body, "offsetHeight").(int)
	ww, _ := d.Property(w, "offsetWidth").(int)
	wh, _ := d.Property(w, "offsetHeight").(int)
	d.SetStyle(w, "left", px((bw-ww)/2))
	d.SetStyle(w, "top", px((bh-wh)/2))
}

func px(v int) string { return strconv.Itoa(v) + "px" }

// paintCanvas draws the canvas marker: a red square inset by 10px.
func paintCanvas(n *html.Node) *image.RGBA {
	w, err := strconv.Atoi(layout.Attr(n, "width"))
	if err != nil || w <= 0 {
		w = 300
	}
	h, err := strconv.Atoi(layout.Attr(n, "height"))
	if err != nil || h <= 0 {
		h = 150
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	red := image.NewUniform(color.RGBA{R: 0xff, A: 0xff})
	draw.Draw(img, image.Rect(10, 10, 90, 90), red, image.Point{}, draw.Src)
	return img
}

// canvasImage returns the pixels painted on a canvas element.
func (d *Document) canvasImage(n *html.Node) (*image.RGBA, bool) {
	img, ok := d.canvases[n]
	return img, ok
}

// --- measurement ---

// Property samples a live node. Geometry comes from the layout engine;
// scrollTop and value are node state.
func (d *Document) Property(node dom.Node, name string) any {
	n := node.(*html.Node)
	switch name {
	case "scrollTop":
		return d.scrollTop[n]
	case "value":
		return layout.Attr(n, "value")
	case "tagName":
		return strings.ToUpper(n.Data)
	}
	b, ok := d.layout().Box(n)
	if !ok {
		return nil
	}
	switch name {
	case "offsetWidth", "clientWidth":
		return b.Rect.Dx()
	case "offsetHeight", "clientHeight":
		return b.Rect.Dy()
	case "offsetLeft":
		return b.Rect.Min.X
	case "offsetTop":
		return b.Rect.Min.Y
	case "scrollHeight":
		return max(b.ContentH, b.Rect.Dy())
	}
	return nil
}

func (d *Document) Lookup(id string) (dom.Node, bool) {
	if n := findID(d.root, id); n != nil {
		return n, true
	}
	return nil, false
}

func findID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode && layout.Attr(n, "id") == id {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if f := findID(c, id); f != nil {
			return f
		}
	}
	return nil
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if f := findElement(c, a); f != nil {
			return f
		}
	}
	return nil
}

// --- input ---

// Trigger raises platform event name on target. The event bubbles from
// target towards the root until a node bound to name is found; the
// bound event is returned carrying raw, whose Target is set to target.
//
// Input and change events store raw.Value as the node's value first,
// scroll events store raw.ScrollTop as the node's offset.
func (d *Document) Trigger(target *html.Node, name string, raw *proto.RawEvent) (proto.Event, bool) {
	if raw == nil {
		raw = &proto.RawEvent{}
	}
	raw.Target = target
	switch name {
	case EventInput, EventChange:
		setAttr(target, "value", raw.Value)
		d.dirty()
	case EventScroll:
		d.scrollTop[target] = raw.ScrollTop
	}
	for n := target; n != nil; n = n.Parent {
		if ev, ok := d.bindings[n][name]; ok {
			return ev.With(raw), true
		}
	}
	return proto.Event{}, false
}

// At returns the deepest element at pt, or nil.
func (d *Document) At(pt image.Point) *html.Node {
	hit := layout.HitTest(d.layout().Root, pt, func(b *layout.Box) bool {
		return b.Node.Type == html.ElementNode
	})
	if hit == nil {
		return nil
	}
	return hit.Node
}

// NodeAt resolves a dot-separated path of child positions below the
// body, such as "0.2.1". The empty path is the body.
func (d *Document) NodeAt(path string) (*html.Node, error) {
	n := d.body
	if path == "" {
		return n, nil
	}
	for _, seg := range strings.Split(path, ".") {
		i, err := strconv.Atoi(seg)
		if err != nil {
			return nil, fmt.Errorf("htmldom: bad path %q: %w", path, err)
		}
		c := childAt(n, i)
		if i < 0 || c == nil {
			return nil, fmt.Errorf("htmldom: path %q: no child %d", path, i)
		}
		n = c
	}
	return n, nil
}

// boundEvents reports the events bound on n.
func (d *Document) boundEvents(n *html.Node) map[string]proto.Event {
	return d.bindings[n]
}

// --- output ---

// Render writes the document as HTML.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

// RenderBody writes the children of the body as HTML.
func (d *Document) RenderBody(w io.Writer) error {
	for c := d.body.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(w, c); err != nil {
			return err
		}
	}
	return nil
}

// String returns the body's children as HTML.
func (d *Document) String() string {
	var b strings.Builder
	if err := d.RenderBody(&b); err != nil {
		return fmt.Sprintf("htmldom: %v", err)
	}
	return b.String()
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, key string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}
