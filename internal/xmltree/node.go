// Package xmltree is an ordered, lossless XML tree.
//
// Every node parsed from a source keeps the exact bytes it was read from, so a document that is parsed and written
// back without changes reproduces its input byte for byte. Changing an attribute re-encodes only that element's start
// tag; unchanged attributes keep their original spelling.
package xmltree

import (
	"strings"
)

// Kind discriminates the node variants.
type Kind int

const (
	DocumentNode Kind = iota
	ElementNode
	TextNode
	CommentNode
	ProcInstNode
	DirectiveNode
)

func (k Kind) String() string {
	switch k {
	case DocumentNode:
		return "document"
	case ElementNode:
		return "element"
	case TextNode:
		return "text"
	case CommentNode:
		return "comment"
	case ProcInstNode:
		return "procinst"
	case DirectiveNode:
		return "directive"
	default:
		return "unknown"
	}
}

// Attr is a single attribute. raw holds the source spelling (name="value") until the attribute is changed.
type Attr struct {
	Name  string
	Value string
	raw   string
}

// Node is one entry of the tree.
type Node struct {
	kind     Kind
	name     string
	attrs    []Attr
	text     string
	parent   *Node
	children []*Node

	// selfClosing records the source form (<a/>); new elements start self-closing.
	selfClosing bool
	rawStart    []byte
	rawEnd      []byte
	raw         []byte
}

// NewElement creates a detached element with the given attributes in order.
func NewElement(name string, attrs ...Attr) *Node {
	n := &Node{kind: ElementNode, name: name, selfClosing: true}
	for _, a := range attrs {
		n.attrs = append(n.attrs, Attr{Name: a.Name, Value: a.Value})
	}
	return n
}

// NewText creates a detached text node.
func NewText(s string) *Node {
	return &Node{kind: TextNode, text: s}
}

func (n *Node) Kind() Kind      { return n.kind }
func (n *Node) Name() string    { return n.name }
func (n *Node) Parent() *Node   { return n.parent }
func (n *Node) IsElement() bool { return n.kind == ElementNode }

// Text returns the decoded content of a text, comment, procinst or directive node.
func (n *Node) Text() string { return n.text }

// IsWhitespace reports whether n is a text node holding only XML whitespace.
func (n *Node) IsWhitespace() bool {
	return n.kind == TextNode && strings.TrimLeft(n.text, " \t\r\n") == ""
}

// Attrs returns a copy of the attributes in document order.
func (n *Node) Attrs() []Attr {
	return append([]Attr(nil), n.attrs...)
}

// Attr returns the value of the named attribute.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// AttrValue returns the named attribute or "".
func (n *Node) AttrValue(name string) string {
	v, _ := n.Attr(name)
	return v
}

// SetAttr sets an attribute, appending it when absent. It reports whether anything changed.
func (n *Node) SetAttr(name, value string) bool {
	for i := range n.attrs {
		if n.attrs[i].Name != name {
			continue
		}
		if n.attrs[i].Value == value {
			return false
		}
		n.attrs[i].Value = value
		n.attrs[i].raw = ""
		n.rawStart = nil
		return true
	}
	n.attrs = append(n.attrs, Attr{Name: name, Value: value})
	n.rawStart = nil
	return true
}

// RemoveAttr deletes the named attribute and reports whether it existed.
func (n *Node) RemoveAttr(name string) bool {
	for i := range n.attrs {
		if n.attrs[i].Name == name {
			n.attrs = append(n.attrs[:i], n.attrs[i+1:]...)
			n.rawStart = nil
			return true
		}
	}
	return false
}

// Children returns the child list. Callers must not modify it.
func (n *Node) Children() []*Node { return n.children }

// Elements returns the child elements named name, or all child elements when name is "".
func (n *Node) Elements(name string) []*Node {
	var out []*Node
	for _, c := range n.children {
		if c.kind == ElementNode && (name == "" || c.name == name) {
			out = append(out, c)
		}
	}
	return out
}

// Element returns the first child element named name.
func (n *Node) Element(name string) *Node {
	for _, c := range n.children {
		if c.kind == ElementNode && c.name == name {
			return c
		}
	}
	return nil
}

// Walk visits n and its descendants depth first, in document order. Returning false from fn skips a subtree.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.children {
		c.Walk(fn)
	}
}

// AppendChild attaches c as the last child of n.
func (n *Node) AppendChild(c *Node) {
	c.detach()
	c.parent = n
	n.children = append(n.children, c)
}

// InsertChild attaches c at index i.
func (n *Node) InsertChild(i int, c *Node) {
	c.detach()
	c.parent = n
	if i < 0 {
		i = 0
	}
	if i > len(n.children) {
		i = len(n.children)
	}
	n.children = append(n.children, nil)
	copy(n.children[i+1:], n.children[i:])
	n.children[i] = c
}

// RemoveChild detaches c together with the whitespace that indents it.
func (n *Node) RemoveChild(c *Node) bool {
	i := n.indexOf(c)
	if i < 0 {
		return false
	}
	start := i
	if i > 0 && n.children[i-1].IsWhitespace() {
		start = i - 1
	}
	for _, r := range n.children[start : i+1] {
		r.parent = nil
	}
	n.children = append(n.children[:start], n.children[i+1:]...)
	return true
}

// AppendIndented appends c on its own line, one unit deeper than n, keeping the closing tag of n aligned.
func (n *Node) AppendIndented(c *Node, unit string) {
	own := n.indent(unit)
	lead := NewText("\n" + own + unit)

	last := len(n.children) - 1
	if last >= 0 && n.children[last].IsWhitespace() {
		n.InsertChild(last, lead)
		n.InsertChild(last+1, c)
		return
	}
	n.AppendChild(lead)
	n.AppendChild(c)
	n.AppendChild(NewText("\n" + own))
}

// indent returns the whitespace that precedes n on its line.
func (n *Node) indent(unit string) string {
	if p := n.parent; p != nil {
		if i := p.indexOf(n); i > 0 {
			prev := p.children[i-1]
			if prev.IsWhitespace() {
				if j := strings.LastIndexByte(prev.text, '\n'); j >= 0 {
					return prev.text[j+1:]
				}
			}
		}
	}
	return strings.Repeat(unit, n.depth())
}

// depth counts element ancestors.
func (n *Node) depth() int {
	d := 0
	for p := n.parent; p != nil && p.kind == ElementNode; p = p.parent {
		d++
	}
	return d
}

func (n *Node) indexOf(c *Node) int {
	for i, x := range n.children {
		if x == c {
			return i
		}
	}
	return -1
}

func (n *Node) detach() {
	if n.parent == nil {
		return
	}
	if i := n.parent.indexOf(n); i >= 0 {
		n.parent.children = append(n.parent.children[:i], n.parent.children[i+1:]...)
	}
	n.parent = nil
}
