// Package domtest provides an in-memory dom.Document that records the
// structural calls made on it.
package domtest

import (
	"fmt"
	"strings"

	"github.com/elizafairlady/go-lensui/ui/dom"
	"github.com/elizafairlady/go-lensui/ui/proto"
)

// Node is a live node of a Document.
type Node struct {
	NS       string
	Tag      string // empty for text nodes
	Text     string
	Props    map[string]any // applied protocol keys
	Children []*Node

	// Properties are returned by Document.Property; tests set them to
	// simulate layout.
	Properties map[string]any
}

// IsText reports whether n is a text node.
func (n *Node) IsText() bool { return n.Tag == "" }

// String renders n as a compact s-expression, for test failures.
func (n *Node) String() string {
	if n.IsText() {
		return fmt.Sprintf("%q", n.Text)
	}
	var b strings.Builder
	b.WriteString("(" + n.Tag)
	for _, c := range n.Children {
		b.WriteString(" " + c.String())
	}
	b.WriteString(")")
	return b.String()
}

// Calls counts the calls made on a Document.
type Calls struct {
	CreateElement int
	CreateText    int
	Append        int
	Replace       int
	RemoveLast    int
	ApplyProps    int
	RemoveProp    int
}

// Structural returns the number of calls that changed the tree shape
// or created nodes.
func (c Calls) Structural() int {
	return c.CreateElement + c.CreateText + c.Append + c.Replace + c.RemoveLast
}

// Document is a recording dom.Document.
type Document struct {
	Calls Calls
	// Applied records every key passed to ApplyProps, in order.
	Applied []string
	// Removed records every key passed to RemoveProp, in order.
	Removed []string

	Root *Node
}

var _ dom.Document = (*Document)(nil)

// New returns a document with an empty "body" root.
func New() *Document {
	return &Document{Root: &Node{Tag: "body"}}
}

// Reset clears the recorded calls.
func (d *Document) Reset() {
	d.Calls = Calls{}
	d.Applied = nil
	d.Removed = nil
}

func (d *Document) CreateElement(ns, tag string) dom.Node {
	d.Calls.CreateElement++
	return &Node{NS: ns, Tag: tag}
}

func (d *Document) CreateText(text string) dom.Node {
	d.Calls.CreateText++
	return &Node{Text: text}
}

func (d *Document) ChildCount(parent dom.Node) int {
	return len(parent.(*Node).Children)
}

func (d *Document) ChildAt(parent dom.Node, i int) dom.Node {
	return parent.(*Node).Children[i]
}

func (d *Document) AppendChild(parent, child dom.Node) {
	d.Calls.Append++
	p := parent.(*Node)
	p.Children = append(p.Children, child.(*Node))
}

func (d *Document) ReplaceChild(parent, child dom.Node, i int) {
	d.Calls.Replace++
	parent.(*Node).Children[i] = child.(*Node)
}

func (d *Document) RemoveLastChild(parent dom.Node) {
	d.Calls.RemoveLast++
	p := parent.(*Node)
	p.Children = p.Children[:len(p.Children)-1]
}

func (d *Document) ApplyProps(node dom.Node, props *proto.Props) {
	d.Calls.ApplyProps++
	n := node.(*Node)
	if n.Props == nil {
		n.Props = make(map[string]any)
	}
	for _, k := range props.Keys() {
		v, _ := props.Get(k)
		n.Props[k] = v
		d.Applied = append(d.Applied, k)
	}
}

func (d *Document) RemoveProp(node dom.Node, key string) {
	d.Calls.RemoveProp++
	delete(node.(*Node).Props, key)
	d.Removed = append(d.Removed, key)
}

func (d *Document) Property(node dom.Node, name string) any {
	return node.(*Node).Properties[name]
}

func (d *Document) Lookup(id string) (dom.Node, bool) {
	if n := find(d.Root, id); n != nil {
		return n, true
	}
	return nil, false
}

func find(n *Node, id string) *Node {
	if v, ok := n.Props["id"]; ok && v == id {
		return n
	}
	for _, c := range n.Children {
		if f := find(c, id); f != nil {
			return f
		}
	}
	return nil
}

func (d *Document) SetAttribute(node dom.Node, name, value string) {
	n := node.(*Node)
	if n.Props == nil {
		n.Props = make(map[string]any)
	}
	n.Props[name] = value
}

func (d *Document) SetStyle(node dom.Node, name, value string) {
	n := node.(*Node)
	style, _ := n.Props[proto.KeyStyle].(map[string]string)
	next := make(map[string]string, len(style)+1)
	for k, v := range style {
		next[k] = v
	}
	next[name] = value
	if n.Props == nil {
		n.Props = make(map[string]any)
	}
	n.Props[proto.KeyStyle] = next
}
