package xmltree

import (
	"errors"
	"strings"
	"testing"

	"github.com/desertthunder/digger/internal/shared"
)

const sample = `<?xml version="1.0" encoding="UTF-8"?>
<!-- exported -->
<!DOCTYPE lib>
<lib  version='2'>
  <item id="1" name="Caf&#233; &amp; Bar" />
  <item id='2'>text &lt;here&gt; <![CDATA[<raw>]]></item>
  <?render fast?>
  <x:meta xmlns:x="urn:x" x:flag="yes"></x:meta>
</lib>
`

func TestParseRoundTrip(t *testing.T) {
	doc, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if got := string(doc.Bytes()); got != sample {
		t.Errorf("round trip mismatch:\n got: %q\nwant: %q", got, sample)
	}
}

func TestParseBOM(t *testing.T) {
	src := "\xef\xbb\xbf<a b=\"1\"/>"
	doc, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := string(doc.Bytes()); got != src {
		t.Errorf("Bytes() = %q, want %q", got, src)
	}
}

func TestParseTree(t *testing.T) {
	doc, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	root := doc.Root()
	if root.Name() != "lib" {
		t.Fatalf("Root().Name() = %q", root.Name())
	}
	if root.AttrValue("version") != "2" {
		t.Errorf("version = %q", root.AttrValue("version"))
	}

	items := root.Elements("item")
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}
	if got := items[0].AttrValue("name"); got != "Café & Bar" {
		t.Errorf("decoded attr = %q", got)
	}
	if got := items[1].Children()[0].Text(); got != "text <here> " {
		t.Errorf("decoded text = %q", got)
	}
	if meta := root.Element("x:meta"); meta == nil || meta.AttrValue("x:flag") != "yes" {
		t.Errorf("prefixed element not found or attr missing")
	}

	kinds := map[Kind]int{}
	doc.Root().Walk(func(n *Node) bool {
		kinds[n.Kind()]++
		return true
	})
	if kinds[ProcInstNode] != 1 {
		t.Errorf("expected one nested procinst, got %d", kinds[ProcInstNode])
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"mismatched", "<a><b></a></b>"},
		{"unclosed", "<a><b></b>"},
		{"stray end", "<a></a></b>"},
		{"empty", ""},
		{"two roots", "<a/><b/>"},
		{"encoding", `<?xml version="1.0" encoding="ISO-8859-1"?><a/>`},
		{"bad syntax", "<a b=></a>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, shared.ErrMalformedDocument) {
				t.Errorf("error %v should wrap ErrMalformedDocument", err)
			}
		})
	}
}

func TestSetAttrRebuildsOnlyThatTag(t *testing.T) {
	src := `<lib>
  <item id='1'  name="A &amp; B"/>
  <item id="2" name="C"/>
</lib>`
	doc, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	items := doc.Root().Elements("item")
	if items[0].SetAttr("id", "1") {
		t.Error("SetAttr with the same value should report no change")
	}
	if !items[0].SetAttr("genre", "House & Garage") {
		t.Error("SetAttr should report a change")
	}

	want := `<lib>
  <item id='1' name="A &amp; B" genre="House &amp; Garage"/>
  <item id="2" name="C"/>
</lib>`
	if got := string(doc.Bytes()); got != want {
		t.Errorf("Bytes() =\n%s\nwant\n%s", got, want)
	}
}

func TestAttrEscaping(t *testing.T) {
	n := NewElement("t", Attr{Name: "v", Value: "a\"b'c<d>\n"})
	if got := n.String(); got != `<t v="a&quot;b&apos;c&lt;d&gt;&#10;"/>` {
		t.Errorf("String() = %s", got)
	}
}

func TestSelfClosingGrowsChildren(t *testing.T) {
	doc, err := Parse([]byte("<root>\n  <list name=\"x\"/>\n</root>"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	list := doc.Root().Element("list")
	list.AppendIndented(NewElement("entry", Attr{Name: "k", Value: "1"}), "  ")

	want := "<root>\n  <list name=\"x\">\n    <entry k=\"1\"/>\n  </list>\n</root>"
	if got := string(doc.Bytes()); got != want {
		t.Errorf("Bytes() =\n%s\nwant\n%s", got, want)
	}
}

func TestAppendIndentedAndRemove(t *testing.T) {
	src := "<root>\n  <group>\n    <a/>\n  </group>\n</root>"
	doc, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	group := doc.Root().Element("group")
	b := NewElement("b")
	group.AppendIndented(b, "  ")
	b.AppendIndented(NewElement("c"), "  ")

	want := "<root>\n  <group>\n    <a/>\n    <b>\n      <c/>\n    </b>\n  </group>\n</root>"
	if got := string(doc.Bytes()); got != want {
		t.Fatalf("after append:\n%s\nwant\n%s", got, want)
	}

	if !group.RemoveChild(b) {
		t.Fatal("RemoveChild() = false")
	}
	if got := string(doc.Bytes()); got != src {
		t.Errorf("after remove:\n%s\nwant\n%s", got, src)
	}
	if b.Parent() != nil {
		t.Error("removed node should be detached")
	}
}

func TestRemoveAttr(t *testing.T) {
	n := NewElement("t", Attr{Name: "a", Value: "1"}, Attr{Name: "b", Value: "2"})
	if !n.RemoveAttr("a") || n.RemoveAttr("a") {
		t.Error("RemoveAttr should succeed once")
	}
	if got := n.String(); !strings.Contains(got, `b="2"`) || strings.Contains(got, `a="1"`) {
		t.Errorf("String() = %s", got)
	}
}

func TestScanAttrs(t *testing.T) {
	got := scanAttrs([]byte(`<t a="1" b = '2'  c="x>y"/>`))
	want := []string{`a="1"`, `b = '2'`, `c="x>y"`}
	if len(got) != len(want) {
		t.Fatalf("scanAttrs() = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("scanAttrs()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
