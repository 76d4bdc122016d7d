package xmltree

import (
	"errors"
	"strings"
	"testing"
)

const sample = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" xmlns:mc="urn:mc" mc:Ignorable="w14"><w:body><w:p><w:r><w:rPr><w:b/></w:rPr><w:t xml:space="preserve">Fish &amp; chips </w:t></w:r><!-- note --><w:r><w:t>"quoted"</w:t></w:r></w:p></w:body></w:document>`

func TestParse_RoundTrip(t *testing.T) {
	doc, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	out, err := Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	got := string(out)
	for _, want := range []string{
		"<?xml version=\"1.0\" encoding=\"UTF-8\" standalone=\"yes\"?>\n<w:document",
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" xmlns:mc="urn:mc" mc:Ignorable="w14">`,
		`<w:rPr><w:b/></w:rPr>`,
		`<w:t xml:space="preserve">Fish &amp; chips </w:t>`,
		`<!-- note -->`,
		`<w:t>"quoted"</w:t>`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q\ngot: %s", want, got)
		}
	}

	// A second pass must be stable.
	again, err := Parse(out)
	if err != nil {
		t.Fatalf("re-Parse failed: %v", err)
	}
	out2, _ := Marshal(again)
	if string(out2) != got {
		t.Errorf("round trip not stable:\nfirst:  %s\nsecond: %s", got, out2)
	}
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"mismatched end", `<a><b></a></b>`},
		{"unclosed", `<a><b></b>`},
		{"truncated tag", `<w:comments xmlns:w="x"><w:comment`},
		{"empty", ``},
		{"text only", `hello`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("expected ErrMalformed, got %v", err)
			}
		})
	}
}

func TestParse_Charset(t *testing.T) {
	input := []byte("<?xml version=\"1.0\" encoding=\"windows-1252\"?><a>caf\xe9</a>")
	doc, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got := doc.Root().Text(); got != "café" {
		t.Errorf("Text() = %q, want %q", got, "café")
	}

	out, _ := Marshal(doc)
	if !strings.Contains(string(out), `encoding="UTF-8"`) {
		t.Errorf("declaration not rewritten to UTF-8: %s", out)
	}
}

func TestInsertAndDetach(t *testing.T) {
	doc, err := Parse([]byte(`<p><r>a</r><r>b</r></p>`))
	if err != nil {
		t.Fatal(err)
	}
	p := doc.Root()
	runs := p.ChildElements()
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}

	clone := runs[0].Copy()
	clone.SetText("x")
	InsertAfter(runs[0], clone)

	ins := NewElement("ins", Attr{Name: "id", Value: "1"})
	InsertBefore(runs[1], ins)
	ins.AddChild(runs[1])

	want := `<p><r>a</r><r>x</r><ins id="1"><r>b</r></ins></p>`
	if got := String(p); got != want {
		t.Errorf("got %s, want %s", got, want)
	}

	if runs[1].Parent() != ins {
		t.Error("moved element should have new parent")
	}
	if clone.Index() != 1 {
		t.Errorf("clone index = %d, want 1", clone.Index())
	}

	// Moving an earlier sibling after a later one.
	InsertAfter(ins, runs[0])
	if got := String(p); got != `<p><r>x</r><ins id="1"><r>b</r></ins><r>a</r></p>` {
		t.Errorf("after move: %s", got)
	}

	Detach(clone)
	Detach(clone)
	if clone.Parent() != nil || len(p.ChildElements()) != 2 {
		t.Error("Detach did not remove the element")
	}
}

func TestExactNames(t *testing.T) {
	e := NewElement("w:t", Attr{Name: "xml:space", Value: "preserve"}, Attr{Name: "id", Value: "1"})
	e.CreateAttr("xml:space", "default")
	if v, ok := Value(e, "xml:space"); !ok || v != "default" {
		t.Errorf("Value = %q, %v", v, ok)
	}
	if _, ok := Value(e, "w:id"); ok {
		t.Error("w:id must not match an unprefixed id")
	}
	if len(e.Attr) != 2 || e.Attr[0].FullKey() != "xml:space" {
		t.Errorf("attribute order not kept: %v", e.Attr)
	}
	if !Is(e, "w:t") || Is(e, "t") || Is(nil, "w:t") {
		t.Error("Is must compare the qualified name exactly")
	}

	Rename(e, "w:delText")
	if e.Space != "w" || e.Tag != "delText" {
		t.Errorf("Rename gave %q:%q", e.Space, e.Tag)
	}
}

func TestWrite_Escaping(t *testing.T) {
	e := NewElement("a", Attr{Name: "v", Value: "x\"<&\n"})
	e.SetText("1 < 2 & 3 > 2, it's \"so\"")
	want := `<a v="x&quot;&lt;&amp;&#xA;">1 &lt; 2 &amp; 3 &gt; 2, it's "so"</a>`
	if got := String(e); got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestNewDocument(t *testing.T) {
	doc := NewDocument(NewElement("Types", Attr{Name: "xmlns", Value: "urn:ct"}))
	out, err := Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	want := "<?xml version=\"1.0\" encoding=\"UTF-8\" standalone=\"yes\"?>\n<Types xmlns=\"urn:ct\"/>"
	if string(out) != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestFindAll(t *testing.T) {
	doc, _ := Parse([]byte(`<d><p><r/><x><r/></x></p><r/><y:r/></d>`))
	if got := len(FindAll(doc.Root(), "r")); got != 3 {
		t.Errorf("FindAll found %d, want 3", got)
	}
	if Child(doc.Root(), "p") == nil || Child(doc.Root(), "x") != nil {
		t.Error("Child must only match direct children")
	}
	if last := LastElement(doc.Root()); !Is(last, "y:r") {
		t.Errorf("LastElement = %v", last)
	}
}
