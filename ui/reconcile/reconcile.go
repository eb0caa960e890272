// Package reconcile patches a live presentation tree so it matches a
// freshly rendered proto.Tree.
//
// Matching is positional: the i-th rendered node is compared with the
// i-th node of the previous render and the i-th live child. Equal tags
// update in place, anything else is replaced. There is no keyed
// reordering and no move detection.
package reconcile

import (
	"github.com/elizafairlady/go-lensui/ui/dom"
	"github.com/elizafairlady/go-lensui/ui/proto"
	"github.com/elizafairlady/go-lensui/ui/value"
)

// Reconcile patches the children of target from prev to tree and
// returns the live nodes that carry measurement requests, in document
// order.
//
// The children of target must be the result of reconciling prev (or be
// empty when prev is empty). Afterwards target has exactly len(tree)
// children whose tags match tree position by position.
func Reconcile(doc dom.Document, target dom.Node, tree, prev proto.Tree) []proto.MeasureTarget {
	p := &patcher{doc: doc}
	p.children(target, dom.NamespaceHTML, tree, prev)
	return p.measures
}

type patcher struct {
	doc      dom.Document
	measures []proto.MeasureTarget
}

func (p *patcher) children(target dom.Node, ns string, tree, prev proto.Tree) {
	for i, node := range tree {
		var old proto.Node
		if i < len(prev) {
			old = prev[i]
		}
		switch n := node.(type) {
		case *proto.Element:
			if o, ok := old.(*proto.Element); ok && o.Tag == n.Tag && i < p.doc.ChildCount(target) {
				p.update(p.doc.ChildAt(target, i), ns, n, o)
			} else {
				p.replace(target, i, ns, n)
			}
		case proto.Text:
			if o, ok := old.(proto.Text); ok && o == n && i < p.doc.ChildCount(target) {
				continue
			}
			p.put(target, i, p.doc.CreateText(string(n)))
		}
	}
	for p.doc.ChildCount(target) > len(tree) {
		p.doc.RemoveLastChild(target)
	}
}

// put places child at position i of parent, appending when the
// position does not exist yet.
func (p *patcher) put(parent dom.Node, i int, child dom.Node) {
	if i >= p.doc.ChildCount(parent) {
		p.doc.AppendChild(parent, child)
	} else {
		p.doc.ReplaceChild(parent, child, i)
	}
}

func (p *patcher) replace(target dom.Node, i int, parentNS string, n *proto.Element) {
	ns := dom.NamespaceFor(parentNS, n.Tag)
	live := p.doc.CreateElement(ns, n.Tag)
	if len(n.Props.Keys()) > 0 {
		p.doc.ApplyProps(live, &n.Props)
	}
	p.measure(live, n)
	p.put(target, i, live)
	p.children(live, ns, n.Children, nil)
}

func (p *patcher) update(live dom.Node, parentNS string, n, old *proto.Element) {
	p.measure(live, n)

	for _, k := range old.Props.Keys() {
		if _, ok := n.Props.Get(k); !ok {
			p.doc.RemoveProp(live, k)
		}
	}
	var changed []string
	for _, k := range n.Props.Keys() {
		v, _ := n.Props.Get(k)
		if ov, ok := old.Props.Get(k); !ok || !value.Equal(v, ov) {
			changed = append(changed, k)
		}
	}
	if len(changed) > 0 {
		p.doc.ApplyProps(live, n.Props.Pick(changed...))
	}

	p.children(live, dom.NamespaceFor(parentNS, n.Tag), n.Children, old.Children)
}

func (p *patcher) measure(live dom.Node, n *proto.Element) {
	if n.Props.Measure == nil {
		return
	}
	p.measures = append(p.measures, proto.MeasureTarget{Measure: *n.Props.Measure, Node: live})
}
