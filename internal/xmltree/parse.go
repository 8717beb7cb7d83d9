package xmltree

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"github.com/desertthunder/digger/internal/shared"
)

var bom = []byte("\xef\xbb\xbf")

// Document is a parsed XML file.
type Document struct {
	bom  bool
	node *Node
}

// Parse reads src into a [Document]. Mismatched or unclosed tags, non-UTF-8 encodings and documents without exactly
// one root element fail with [shared.ErrMalformedDocument].
func Parse(src []byte) (*Document, error) {
	doc := &Document{node: &Node{kind: DocumentNode}}
	if bytes.HasPrefix(src, bom) {
		doc.bom = true
		src = src[len(bom):]
	}

	dec := xml.NewDecoder(bytes.NewReader(src))
	dec.Strict = true

	stack := []*Node{doc.node}
	var prev int64
	roots := 0

	for {
		tok, err := dec.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrMalformedDocument, err)
		}

		off := dec.InputOffset()
		raw := src[prev:off]
		prev = off
		top := stack[len(stack)-1]

		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{
				kind:        ElementNode,
				name:        qualified(t.Name),
				rawStart:    raw,
				selfClosing: bytes.HasSuffix(raw, []byte("/>")),
			}
			n.attrs = make([]Attr, len(t.Attr))
			spellings := scanAttrs(raw)
			for i, a := range t.Attr {
				n.attrs[i] = Attr{Name: qualified(a.Name), Value: a.Value}
				if len(spellings) == len(t.Attr) {
					n.attrs[i].raw = spellings[i]
				}
			}
			if top == doc.node {
				roots++
			}
			top.AppendChild(n)
			stack = append(stack, n)
		case xml.EndElement:
			if top == doc.node || top.name != qualified(t.Name) {
				line, _ := dec.InputPos()
				return nil, fmt.Errorf("%w: line %d: unexpected </%s>", shared.ErrMalformedDocument, line, qualified(t.Name))
			}
			if !top.selfClosing {
				top.rawEnd = raw
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			top.AppendChild(&Node{kind: TextNode, text: string(t), raw: raw})
		case xml.Comment:
			top.AppendChild(&Node{kind: CommentNode, text: string(t), raw: raw})
		case xml.ProcInst:
			top.AppendChild(&Node{kind: ProcInstNode, name: t.Target, text: string(t.Inst), raw: raw})
		case xml.Directive:
			top.AppendChild(&Node{kind: DirectiveNode, text: string(t), raw: raw})
		}
	}

	if len(stack) > 1 {
		return nil, fmt.Errorf("%w: unclosed <%s>", shared.ErrMalformedDocument, stack[len(stack)-1].name)
	}
	if roots != 1 {
		return nil, fmt.Errorf("%w: expected one root element, found %d", shared.ErrMalformedDocument, roots)
	}
	if prev != int64(len(src)) {
		doc.node.AppendChild(&Node{kind: TextNode, text: string(src[prev:]), raw: src[prev:]})
	}
	return doc, nil
}

// Root returns the document element.
func (d *Document) Root() *Node {
	for _, c := range d.node.children {
		if c.kind == ElementNode {
			return c
		}
	}
	return nil
}

// Nodes returns the top-level nodes: prolog, root element and trailing content.
func (d *Document) Nodes() []*Node { return d.node.children }

func qualified(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

// scanAttrs splits the attribute section of a raw start tag into name="value" spellings, in order.
// It returns nil when the tag does not scan cleanly.
func scanAttrs(tag []byte) []string {
	i := 1
	for i < len(tag) && !isSpace(tag[i]) && tag[i] != '/' && tag[i] != '>' {
		i++
	}

	var out []string
	for {
		for i < len(tag) && isSpace(tag[i]) {
			i++
		}
		if i >= len(tag) || tag[i] == '/' || tag[i] == '>' {
			return out
		}

		start := i
		for i < len(tag) && tag[i] != '=' && !isSpace(tag[i]) {
			i++
		}
		for i < len(tag) && isSpace(tag[i]) {
			i++
		}
		if i >= len(tag) || tag[i] != '=' {
			return nil
		}
		i++
		for i < len(tag) && isSpace(tag[i]) {
			i++
		}
		if i >= len(tag) || (tag[i] != '"' && tag[i] != '\'') {
			return nil
		}
		q := tag[i]
		end := bytes.IndexByte(tag[i+1:], q)
		if end < 0 {
			return nil
		}
		i += end + 2
		out = append(out, string(tag[start:i]))
	}
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
