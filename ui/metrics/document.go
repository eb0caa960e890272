package metrics

import (
	"github.com/elizafairlady/go-lensui/ui/dom"
	"github.com/elizafairlady/go-lensui/ui/proto"
)

// Live tree operations counted by Document.
const (
	OpCreateElement = "create_element"
	OpCreateText    = "create_text"
	OpAppend        = "append"
	OpReplace       = "replace"
	OpRemove        = "remove"
	OpApplyProps    = "apply_props"
	OpRemoveProp    = "remove_prop"
	OpSetAttribute  = "set_attribute"
	OpSetStyle      = "set_style"
)

// Document counts the mutations made through a dom.Document.
type Document struct {
	dom.Document
	c *Collector
}

// WrapDocument returns doc counting its mutations into c.
func WrapDocument(doc dom.Document, c *Collector) *Document {
	return &Document{Document: doc, c: c}
}

func (d *Document) CreateElement(ns, tag string) dom.Node {
	d.c.RecordDOMOp(OpCreateElement)
	return d.Document.CreateElement(ns, tag)
}

func (d *Document) CreateText(text string) dom.Node {
	d.c.RecordDOMOp(OpCreateText)
	return d.Document.CreateText(text)
}

func (d *Document) AppendChild(parent, child dom.Node) {
	d.c.RecordDOMOp(OpAppend)
	d.Document.AppendChild(parent, child)
}

func (d *Document) ReplaceChild(parent, child dom.Node, i int) {
	d.c.RecordDOMOp(OpReplace)
	d.Document.ReplaceChild(parent, child, i)
}

func (d *Document) RemoveLastChild(parent dom.Node) {
	d.c.RecordDOMOp(OpRemove)
	d.Document.RemoveLastChild(parent)
}

func (d *Document) ApplyProps(node dom.Node, props *proto.Props) {
	d.c.RecordDOMOp(OpApplyProps)
	d.Document.ApplyProps(node, props)
}

func (d *Document) RemoveProp(node dom.Node, key string) {
	d.c.RecordDOMOp(OpRemoveProp)
	d.Document.RemoveProp(node, key)
}

func (d *Document) SetAttribute(node dom.Node, name, value string) {
	d.c.RecordDOMOp(OpSetAttribute)
	d.Document.SetAttribute(node, name, value)
}

func (d *Document) SetStyle(node dom.Node, name, value string) {
	d.c.RecordDOMOp(OpSetStyle)
	d.Document.SetStyle(node, name, value)
}

// Frame forwards to the wrapped document if it defers work.
func (d *Document) Frame() {
	if f, ok := d.Document.(dom.Framer); ok {
		f.Frame()
	}
}
