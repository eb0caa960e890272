package proto

import (
	"fmt"
	"strconv"
	"strings"
)

// Node is a node of a normalized element tree: Text or *Element.
type Node interface {
	isNode()
}

// Text is a text node.
type Text string

// Element is an element node with a primitive tag. All components and
// wrappers have been resolved away.
type Element struct {
	Tag      string
	Props    Props
	Children Tree
}

func (Text) isNode()     {}
func (*Element) isNode() {}

// Tree is an ordered sequence of sibling nodes. The renderer's output
// and the reconciler's previous-tree oracle are both Trees.
type Tree []Node

// TagOf returns the tag of an element node, or "" for text and nil.
func TagOf(n Node) string {
	if el, ok := n.(*Element); ok {
		return el.Tag
	}
	return ""
}

// --- Tree serialization ---

// SerializeTree encodes a tree to the text protocol format. Directive
// and measure lines are written for inspection; ParseTree restores
// measures but skips directives.
func SerializeTree(t Tree) string {
	var b strings.Builder
	serializeTree(&b, "", t)
	return b.String()
}

func serializeTree(b *strings.Builder, prefix string, t Tree) {
	for i, n := range t {
		path := prefix + strconv.Itoa(i)
		switch n := n.(type) {
		case Text:
			fmt.Fprintf(b, "text %s %s\n", path, EscapeValue(string(n)))
		case *Element:
			fmt.Fprintf(b, "elem %s %s\n", path, n.Tag)
			serializeProps(b, path, &n.Props)
			serializeTree(b, path+".", n.Children)
		}
	}
}

func serializeProps(b *strings.Builder, path string, p *Props) {
	line := func(kind string, kvs []string) {
		if len(kvs) == 0 {
			return
		}
		fmt.Fprintf(b, "%s %s %s\n", kind, path, strings.Join(kvs, " "))
	}
	var kvs []string
	for _, k := range sortedKeys(p.Attrs) {
		if !p.shadowed(k) {
			kvs = append(kvs, FormatKV(k, fmt.Sprint(p.Attrs[k])))
		}
	}
	line("attr", kvs)

	kvs = nil
	for _, k := range sortedKeys(p.Style) {
		kvs = append(kvs, FormatKV(k, p.Style[k]))
	}
	line("style", kvs)

	kvs = nil
	for _, name := range sortedKeys(p.On) {
		kvs = append(kvs, FormatKV(name, p.On[name].Reason))
	}
	line("on", kvs)

	if p.Value != nil {
		fmt.Fprintf(b, "value %s %s\n", path, EscapeValue(*p.Value))
	}

	kvs = nil
	if p.Scroll != nil {
		kvs = append(kvs, FormatKV(KeyScroll, FormatLens(p.Scroll.Lens)))
	}
	if p.ScrollTop != nil {
		kvs = append(kvs, FormatKV(KeyScrollTop, strconv.Itoa(*p.ScrollTop)))
	}
	if p.Drag != nil {
		kvs = append(kvs, FormatKV(KeyDrag, fmt.Sprint(p.Drag)))
	}
	if p.Drop != nil {
		kvs = append(kvs, FormatKV(KeyDrop, fmt.Sprint(p.Drop)))
	}
	if p.WindowHandle != nil {
		kvs = append(kvs, FormatKV(KeyWindowHandle, p.WindowHandle.WindowID))
	}
	if p.Canvas != nil {
		kvs = append(kvs, FormatKV(KeyCanvas, "1"))
	}
	line("dir", kvs)

	if m := p.Measure; m != nil {
		fmt.Fprintf(b, "measure %s %s %s\n", path,
			FormatKV("id", m.ID), FormatKV("props", strings.Join(m.Properties, ",")))
	}
}

// ParseTree decodes a tree from the text protocol format. Attribute
// values come back as strings.
func ParseTree(text string) (Tree, error) {
	var root Tree
	elems := make(map[string]*Element)

	// attach places n at path, which must be the next free position of
	// its parent.
	attach := func(path string, n Node) error {
		parentPath, idx := "", path
		if dot := strings.LastIndexByte(path, '.'); dot >= 0 {
			parentPath, idx = path[:dot], path[dot+1:]
		}
		i, err := strconv.Atoi(idx)
		if err != nil {
			return fmt.Errorf("proto: bad path %q", path)
		}
		siblings := &root
		if parentPath != "" {
			parent := elems[parentPath]
			if parent == nil {
				return fmt.Errorf("proto: %q has no parent element", path)
			}
			siblings = &parent.Children
		}
		if i != len(*siblings) {
			return fmt.Errorf("proto: %q out of order", path)
		}
		*siblings = append(*siblings, n)
		return nil
	}
	lookup := func(path string) (*Element, error) {
		el := elems[path]
		if el == nil {
			return nil, fmt.Errorf("proto: no element at %q", path)
		}
		return el, nil
	}

	for _, line := range strings.Split(text, "\n") {
		tokens := Tokenize(strings.TrimSpace(line))
		if len(tokens) == 0 {
			continue
		}
		if len(tokens) < 3 {
			return nil, fmt.Errorf("proto: short line %q", line)
		}
		switch tokens[0] {
		case "elem":
			el := &Element{Tag: tokens[2]}
			if err := attach(tokens[1], el); err != nil {
				return nil, err
			}
			elems[tokens[1]] = el
		case "text":
			if err := attach(tokens[1], Text(UnescapeValue(tokens[2]))); err != nil {
				return nil, err
			}
		case "attr", "style", "on":
			el, err := lookup(tokens[1])
			if err != nil {
				return nil, err
			}
			for _, tok := range tokens[2:] {
				k, v, ok := ParseKV(tok)
				if !ok {
					return nil, fmt.Errorf("proto: bad field %q", tok)
				}
				switch tokens[0] {
				case "attr":
					if el.Props.Attrs == nil {
						el.Props.Attrs = make(map[string]any)
					}
					el.Props.Attrs[k] = v
				case "style":
					if el.Props.Style == nil {
						el.Props.Style = make(map[string]string)
					}
					el.Props.Style[k] = v
				case "on":
					if el.Props.On == nil {
						el.Props.On = make(map[string]Event)
					}
					el.Props.On[k] = Event{Reason: v}
				}
			}
		case "value":
			el, err := lookup(tokens[1])
			if err != nil {
				return nil, err
			}
			v := UnescapeValue(tokens[2])
			el.Props.Value = &v
		case "measure":
			el, err := lookup(tokens[1])
			if err != nil {
				return nil, err
			}
			m := &Measure{}
			for _, tok := range tokens[2:] {
				k, v, _ := ParseKV(tok)
				switch k {
				case "id":
					m.ID = v
				case "props":
					if v != "" {
						m.Properties = strings.Split(v, ",")
					}
				}
			}
			el.Props.Measure = m
		default:
			// dir and unknown lines: skip for forward compatibility
		}
	}
	return root, nil
}
