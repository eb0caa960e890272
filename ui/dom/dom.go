// Package dom defines the boundary between the reconciler and the
// presentation attachment layer that owns the live node tree.
//
// The reconciler never builds presentation nodes itself. It calls the
// Document primitives, which address children by position, apply the
// attribute protocol of proto.Props and sample named properties of live
// nodes for measurement.
package dom

import "github.com/elizafairlady/go-lensui/ui/proto"

// Node is a live presentation node. Its concrete type belongs to the
// Document that created it.
type Node = any

// Namespaces understood by CreateElement.
const (
	NamespaceHTML = ""
	NamespaceSVG  = "http://www.w3.org/2000/svg"
)

// Document is the attachment layer.
type Document interface {
	// CreateElement creates a detached element in namespace ns.
	CreateElement(ns, tag string) Node
	// CreateText creates a detached text node.
	CreateText(text string) Node

	ChildCount(parent Node) int
	ChildAt(parent Node, i int) Node
	AppendChild(parent, child Node)
	// ReplaceChild puts child at position i, discarding the old child.
	ReplaceChild(parent, child Node, i int)
	RemoveLastChild(parent Node)

	// ApplyProps applies every key set in props to node.
	ApplyProps(node Node, props *proto.Props)
	// RemoveProp removes the attribute, binding or directive named key.
	RemoveProp(node Node, key string)

	// SetAttribute sets one presentation attribute outside of a
	// reconcile, e.g. the fill of a drop target.
	SetAttribute(node Node, name, value string)
	// SetStyle sets one style property, keeping the others.
	SetStyle(node Node, name, value string)

	// Property samples a named property of a live node, such as
	// "offsetWidth". Unknown properties read as nil.
	Property(node Node, name string) any
	// Lookup finds a live element by its id attribute.
	Lookup(id string) (Node, bool)
}

// Framer is implemented by documents that defer work until the tree is
// patched, such as applying scroll offsets or centering windows. Frame
// runs the deferred work.
type Framer interface {
	Frame()
}

// NamespaceFor returns the namespace a tag's element is created in,
// given the namespace of its parent. An svg element switches its
// subtree to the SVG namespace.
func NamespaceFor(parentNS, tag string) string {
	if tag == "svg" {
		return NamespaceSVG
	}
	return parentNS
}
