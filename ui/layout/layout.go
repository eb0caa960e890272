// Package layout implements the box layout engine used to measure live
// HTML trees.
//
// The engine performs two passes over a tree of *html.Node:
//  1. Measure: computes intrinsic/minimum sizes bottom-up.
//  2. Layout: assigns rectangles top-down with flex distribution.
//
// It understands the subset of CSS the engine's components use: block
// stacking with inline runs broken into lines, display:flex rows and
// columns, px and % widths and heights, padding, flex weights,
// absolute/fixed positioning with left/top, overflow containers that
// shrink to the space available, and display:none. Replaced elements
// (svg, canvas, img, input) take their size from attributes.
package layout

import (
	"image"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/elizafairlady/go-lensui/ui/proto"
)

// Kinds of boxes.
const (
	KindBlock    = "block"    // children stack vertically
	KindRow      = "row"      // display:flex, children side by side
	KindColumn   = "column"   // display:flex; flex-direction:column
	KindInline   = "inline"   // inline element, children side by side
	KindLine     = "line"     // anonymous run of inline boxes in a block
	KindText     = "text"     // text node
	KindReplaced = "replaced" // svg, canvas, img, input
)

// Box is a laid out node. Anonymous line boxes have a nil Node.
type Box struct {
	Node     *html.Node
	Kind     string
	Style    map[string]string
	Parent   *Box
	Children []*Box
	// Layout results
	Rect     image.Rectangle // assigned rectangle, page coordinates
	MinW     int             // minimum width
	MinH     int             // minimum height
	ContentH int             // height of the content, for scrollHeight
	Flex     int             // flex weight (0=fixed, >0=flex)
}

// FontMeasure is called to measure text dimensions.
type FontMeasure func(text string) (w, h int)

// Config holds layout configuration.
type Config struct {
	Measure    FontMeasure
	FontHeight int // default line height
	CharWidth  int // advance of one character when Measure is nil
}

// DefaultConfig returns a monospace configuration.
func DefaultConfig() *Config {
	return &Config{FontHeight: 15, CharWidth: 8}
}

// Result is a laid out tree.
type Result struct {
	Root  *Box
	boxes map[*html.Node]*Box
}

// Compute builds, measures and lays out root within viewport.
func Compute(root *html.Node, viewport image.Rectangle, conf *Config) *Result {
	r := &Result{boxes: make(map[*html.Node]*Box)}
	r.Root = Build(root, conf)
	if r.Root == nil {
		return r
	}
	Layout(r.Root, viewport, conf)
	for _, b := range Flatten(r.Root) {
		if b.Node != nil {
			r.boxes[b.Node] = b
		}
	}
	return r
}

// Box returns the box of n. Nodes that are not rendered (display:none,
// svg descendants, comments) have none.
func (r *Result) Box(n *html.Node) (*Box, bool) {
	b, ok := r.boxes[n]
	return b, ok
}

// Build creates a measured Box tree for root.
func Build(root *html.Node, conf *Config) *Box {
	b := buildNode(root, nil)
	if b == nil {
		return nil
	}
	Measure(b, conf)
	return b
}

var inlineTags = map[string]bool{
	"a": true, "b": true, "button": true, "code": true, "em": true,
	"i": true, "label": true, "small": true, "span": true, "strong": true,
}

var replacedSize = map[string]image.Point{
	"svg":    {300, 150},
	"canvas": {300, 150},
	"img":    {0, 0},
	"input":  {150, 0},
}

var skippedTags = map[string]bool{
	"head": true, "script": true, "style": true, "title": true, "meta": true,
}

func buildNode(n *html.Node, parent *Box) *Box {
	switch n.Type {
	case html.DocumentNode:
		// The document box stands in for the viewport.
		b := &Box{Node: n, Kind: KindBlock, Parent: parent}
		buildChildren(b)
		return b
	case html.TextNode:
		if strings.TrimSpace(n.Data) == "" {
			return nil
		}
		return &Box{Node: n, Kind: KindText, Parent: parent}
	case html.ElementNode:
	default:
		return nil
	}
	if skippedTags[n.Data] {
		return nil
	}
	style := proto.ParseStyle(Attr(n, "style"))
	if style["display"] == "none" {
		return nil
	}
	b := &Box{Node: n, Style: style, Parent: parent}
	_, replaced := replacedSize[n.Data]
	switch {
	case style["display"] == "flex" && style["flex-direction"] == "column":
		b.Kind = KindColumn
	case style["display"] == "flex":
		b.Kind = KindRow
	case replaced:
		b.Kind = KindReplaced
		return b
	case style["display"] == "block":
		b.Kind = KindBlock
	case inlineTags[n.Data] || style["display"] == "inline" || style["display"] == "inline-block":
		b.Kind = KindInline
	default:
		b.Kind = KindBlock
	}
	buildChildren(b)
	return b
}

// buildChildren builds the children of b. Inside a block, consecutive
// inline children are wrapped into anonymous line boxes.
func buildChildren(b *Box) {
	var line *Box
	for c := b.Node.FirstChild; c != nil; c = c.NextSibling {
		cb := buildNode(c, b)
		if cb == nil {
			continue
		}
		if b.Kind != KindBlock || !cb.isInline() || cb.isOutOfFlow() {
			line = nil
			b.Children = append(b.Children, cb)
			continue
		}
		if line == nil {
			line = &Box{Kind: KindLine, Parent: b}
			b.Children = append(b.Children, line)
		}
		cb.Parent = line
		line.Children = append(line.Children, cb)
	}
}

func (b *Box) isInline() bool {
	switch b.Kind {
	case KindInline, KindText, KindReplaced:
		return true
	}
	return false
}

func (b *Box) isOutOfFlow() bool {
	switch b.Style["position"] {
	case "absolute", "fixed":
		return true
	}
	return false
}

// --- Measure pass ---

// Measure computes minimum sizes bottom-up.
func Measure(b *Box, conf *Config) {
	if b == nil {
		return
	}
	for _, child := range b.Children {
		Measure(child, conf)
	}

	pad := b.pad()
	fixedW, hasW := b.fixed("width")
	fixedH, hasH := b.fixed("height")

	var w, h int
	switch b.Kind {
	case KindBlock, KindColumn:
		for _, c := range b.Children {
			if c.isOutOfFlow() {
				continue
			}
			w = max(w, c.MinW)
			h += c.MinH
		}

	case KindRow, KindInline, KindLine:
		for _, c := range b.Children {
			if c.isOutOfFlow() {
				continue
			}
			w += c.MinW
			h = max(h, c.MinH)
		}

	case KindText:
		w, h = measureText(conf, b.Node.Data)

	case KindReplaced:
		sz := replacedSize[b.Node.Data]
		w, h = sz.X, sz.Y
		if b.Node.Data == "input" {
			h = conf.FontHeight + 4
		}
		if v, ok := parseLength(Attr(b.Node, "width")); ok {
			w = v
		}
		if v, ok := parseLength(Attr(b.Node, "height")); ok {
			h = v
		}
	}

	if b.Node != nil && b.Node.Type == html.ElementNode && b.Node.Data == "button" {
		w += 8 // extra for button decoration
		h += 4
	}

	w += pad * 2
	h += pad * 2
	b.ContentH = h

	if b.scrolls() && !hasH {
		// Overflow containers shrink to what their parent gives them.
		h = 0
		if b.Flex == 0 {
			b.Flex = 1
		}
	}
	if hasW {
		w = fixedW
	}
	if hasH {
		h = fixedH
	}
	if grow, err := strconv.Atoi(firstNonEmpty(b.Style["flex-grow"], b.Style["flex"])); err == nil && grow > 0 {
		b.Flex = grow
	}
	b.MinW = w
	b.MinH = h
}

func measureText(conf *Config, text string) (int, int) {
	text = strings.Join(strings.Fields(text), " ")
	if conf.Measure != nil {
		return conf.Measure(text)
	}
	// Fallback: monospace estimate
	w := len([]rune(text)) * conf.CharWidth
	if w < 1 {
		w = 1
	}
	return w, conf.FontHeight
}

// --- Layout pass ---

// Layout assigns rectangles to the tree, starting from the given bounds.
func Layout(b *Box, bounds image.Rectangle, conf *Config) {
	if b == nil {
		return
	}
	b.Rect = bounds

	pad := b.pad()
	inner := image.Rect(
		bounds.Min.X+pad, bounds.Min.Y+pad,
		bounds.Max.X-pad, bounds.Max.Y-pad,
	)

	var flow []*Box
	for _, c := range b.Children {
		if c.isOutOfFlow() {
			layoutPositioned(c, inner, conf)
		} else {
			flow = append(flow, c)
		}
	}

	switch b.Kind {
	case KindBlock, KindColumn:
		layoutBox(b, flow, inner, true, conf)
	case KindRow, KindInline, KindLine:
		layoutBox(b, flow, inner, false, conf)
	}
}

// layoutPositioned places an absolute or fixed box at its left/top
// offset. Fixed boxes are offset from the page origin, absolute ones
// from their parent's content box.
func layoutPositioned(c *Box, inner image.Rectangle, conf *Config) {
	origin := inner.Min
	if c.Style["position"] == "fixed" {
		origin = image.Point{}
	}
	left, _ := parseLength(c.Style["left"])
	top, _ := parseLength(c.Style["top"])
	at := origin.Add(image.Pt(left, top))
	Layout(c, image.Rectangle{Min: at, Max: at.Add(image.Pt(c.MinW, max(c.MinH, c.ContentH)))}, conf)
}

// layoutBox distributes space among children along an axis.
// If vertical=true, distributes along Y; otherwise along X.
func layoutBox(parent *Box, children []*Box, bounds image.Rectangle, vertical bool, conf *Config) {
	if len(children) == 0 {
		return
	}

	totalAvail := bounds.Dy()
	if !vertical {
		totalAvail = bounds.Dx()
	}

	// Calculate fixed size and total flex weight
	sizes := make([]int, len(children))
	fixedSize := 0
	totalFlex := 0
	for i, c := range children {
		if vertical && c.fillsViewport() {
			sizes[i] = totalAvail
			fixedSize += sizes[i]
			continue
		}
		if pct, ok := c.percent(vertical); ok {
			sizes[i] = totalAvail * pct / 100
			fixedSize += sizes[i]
			continue
		}
		if c.Flex > 0 {
			totalFlex += c.Flex
		}
		if vertical {
			sizes[i] = c.MinH
		} else {
			sizes[i] = c.MinW
		}
		fixedSize += sizes[i]
	}

	flexSpace := totalAvail - fixedSize
	if flexSpace < 0 {
		flexSpace = 0
	}

	pos := bounds.Min.Y
	if !vertical {
		pos = bounds.Min.X
	}

	shrinkWrap := vertical && (parent.Kind == KindColumn &&
		(parent.Style["align-items"] == "start" || parent.Style["align-items"] == "flex-start"))

	for i, c := range children {
		size := sizes[i]
		if _, pct := c.percent(vertical); !pct && c.Flex > 0 && totalFlex > 0 {
			size += flexSpace * c.Flex / totalFlex
		}

		var r image.Rectangle
		if vertical {
			r = image.Rect(bounds.Min.X, pos, bounds.Max.X, pos+size)
			if w, ok := c.fixed("width"); ok {
				r.Max.X = r.Min.X + w
			} else if pct, ok := c.percent(false); ok {
				r.Max.X = r.Min.X + bounds.Dx()*pct/100
			} else if shrinkWrap {
				r.Max.X = r.Min.X + min(c.MinW, bounds.Dx())
			}
		} else {
			r = image.Rect(pos, bounds.Min.Y, pos+size, bounds.Max.Y)
			if h, ok := c.fixed("height"); ok {
				r.Max.Y = r.Min.Y + h
			} else if parent.Kind != KindRow {
				r.Max.Y = r.Min.Y + c.MinH
			}
		}

		Layout(c, r, conf)
		pos += size
	}
}

// --- Helpers ---

// Attr returns the attribute key of n, or "".
func Attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// parseLength parses "12", "12px" or "12.5px". Percentages are not
// lengths.
func parseLength(s string) (int, bool) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "px")
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return int(f), true
}

func (b *Box) fixed(prop string) (int, bool) {
	return parseLength(b.Style[prop])
}

func (b *Box) percent(vertical bool) (int, bool) {
	prop := "width"
	if vertical {
		prop = "height"
	}
	s, ok := strings.CutSuffix(b.Style[prop], "%")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	return n, err == nil
}

// fillsViewport reports whether b is the html or body element, which
// take the whole viewport height.
func (b *Box) fillsViewport() bool {
	if b.Node == nil || b.Node.Type != html.ElementNode {
		return false
	}
	return b.Node.Data == "html" || b.Node.Data == "body"
}

func (b *Box) pad() int {
	p, _ := parseLength(b.Style["padding"])
	return p
}

func (b *Box) scrolls() bool {
	for _, prop := range []string{"overflow", "overflow-y"} {
		switch b.Style[prop] {
		case "scroll", "auto", "hidden":
			return true
		}
	}
	return false
}

func firstNonEmpty(ss ...string) string {
	for _, s := range ss {
		if s != "" {
			return s
		}
	}
	return ""
}

// Flatten returns all boxes in the tree in depth-first order.
func Flatten(b *Box) []*Box {
	if b == nil {
		return nil
	}
	result := []*Box{b}
	for _, c := range b.Children {
		result = append(result, Flatten(c)...)
	}
	return result
}

// HitTest finds the deepest box at point pt that accept reports true
// for. A nil accept accepts every box with a node.
func HitTest(b *Box, pt image.Point, accept func(*Box) bool) *Box {
	if b == nil {
		return nil
	}
	// Check children in reverse order (last = topmost). Positioned
	// children may lie outside their parent.
	for i := len(b.Children) - 1; i >= 0; i-- {
		if hit := HitTest(b.Children[i], pt, accept); hit != nil {
			return hit
		}
	}
	if !pt.In(b.Rect) || b.Node == nil {
		return nil
	}
	if accept == nil || accept(b) {
		return b
	}
	return nil
}
