package xmltree

import (
	"bytes"
	"io"
	"strings"
)

var (
	attrEscaper = strings.NewReplacer(
		"&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;", "'", "&apos;",
		"\n", "&#10;", "\r", "&#13;", "\t", "&#9;",
	)
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
)

// Bytes serializes the document.
func (d *Document) Bytes() []byte {
	var b bytes.Buffer
	if d.bom {
		b.Write(bom)
	}
	for _, c := range d.node.children {
		c.write(&b)
	}
	return b.Bytes()
}

// WriteTo writes the serialized document to w.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(d.Bytes())
	return int64(n), err
}

// String serializes a single node and its subtree.
func (n *Node) String() string {
	var b bytes.Buffer
	n.write(&b)
	return b.String()
}

func (n *Node) write(b *bytes.Buffer) {
	switch n.kind {
	case DocumentNode:
		for _, c := range n.children {
			c.write(b)
		}
	case ElementNode:
		n.writeElement(b)
	case TextNode:
		if n.raw != nil {
			b.Write(n.raw)
		} else {
			b.WriteString(textEscaper.Replace(n.text))
		}
	default:
		b.Write(n.raw)
	}
}

func (n *Node) writeElement(b *bytes.Buffer) {
	empty := n.selfClosing && len(n.children) == 0

	if n.rawStart != nil && n.selfClosing == empty {
		b.Write(n.rawStart)
	} else {
		b.WriteByte('<')
		b.WriteString(n.name)
		for _, a := range n.attrs {
			b.WriteByte(' ')
			if a.raw != "" {
				b.WriteString(a.raw)
				continue
			}
			b.WriteString(a.Name)
			b.WriteString(`="`)
			b.WriteString(attrEscaper.Replace(a.Value))
			b.WriteByte('"')
		}
		if empty {
			b.WriteString("/>")
		} else {
			b.WriteByte('>')
		}
	}
	if empty {
		return
	}

	for _, c := range n.children {
		c.write(b)
	}

	if n.rawEnd != nil {
		b.Write(n.rawEnd)
	} else {
		b.WriteString("</")
		b.WriteString(n.name)
		b.WriteByte('>')
	}
}
