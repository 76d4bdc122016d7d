package docx

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/tsawler/redline/internal/xmltree"
	"github.com/tsawler/redline/model"
)

func runTexts(runs []*Run) []string {
	out := make([]string, len(runs))
	for i, r := range runs {
		out[i] = r.Text()
	}
	return out
}

func TestDocument_Paragraphs(t *testing.T) {
	content := `<w:p><w:r><w:t>One</w:t></w:r></w:p>
<w:tbl><w:tr><w:tc><w:p><w:r><w:t>Cell</w:t></w:r></w:p></w:tc></w:tr></w:tbl>
<w:sdt><w:sdtContent><w:p><w:r><w:t>Control</w:t></w:r></w:p></w:sdtContent></w:sdt>
<w:p><w:hyperlink><w:r><w:t>Link</w:t></w:r></w:hyperlink></w:p>
<w:sectPr/>`
	doc := openTestDocument(t, content)

	var got []string
	for _, p := range doc.Paragraphs() {
		got = append(got, p.Text(SkipRevisions))
	}
	want := []string{"One", "Cell", "Control", "Link"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("paragraph texts mismatch (-want +got):\n%s", diff)
	}
	if got := doc.Text(SkipRevisions); got != "OneCellControlLink" {
		t.Errorf("flattened text = %q", got)
	}
}

func TestParagraph_RunsByMode(t *testing.T) {
	content := `<w:p>
  <w:r><w:t xml:space="preserve">Keep </w:t></w:r>
  <w:ins w:id="1" w:author="A" w:date="2024-01-01T00:00:00Z"><w:r><w:t>added </w:t></w:r></w:ins>
  <w:del w:id="2" w:author="A" w:date="2024-01-01T00:00:00Z"><w:r><w:delText>gone </w:delText></w:r></w:del>
  <w:r><w:t>end</w:t></w:r>
</w:p>`
	doc := openTestDocument(t, content)
	p := doc.Paragraphs()[0]

	tests := []struct {
		mode RevisionMode
		want []string
	}{
		{SkipRevisions, []string{"Keep ", "end"}},
		{WithInsertions, []string{"Keep ", "added ", "end"}},
		{AllRuns, []string{"Keep ", "added ", "gone ", "end"}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, runTexts(p.Runs(tt.mode))); diff != "" {
			t.Errorf("mode %d mismatch (-want +got):\n%s", tt.mode, diff)
		}
	}

	runs := p.Runs(AllRuns)
	statuses := []model.RevisionStatus{model.Plain, model.Inserted, model.Deleted, model.Plain}
	for i, r := range runs {
		if r.Status() != statuses[i] {
			t.Errorf("run %d status = %v, want %v", i, r.Status(), statuses[i])
		}
	}
}

func TestRun_TextAtoms(t *testing.T) {
	content := `<w:p><w:r><w:t>a</w:t><w:tab/><w:t>b</w:t><w:br/><w:noBreakHyphen/><w:drawing/><w:t>c</w:t></w:r></w:p>`
	doc := openTestDocument(t, content)
	r := doc.Paragraphs()[0].Runs(SkipRevisions)[0]
	if got := r.Text(); got != "a\tb\n-c" {
		t.Errorf("Text() = %q", got)
	}
	if r.Len() != 7 {
		t.Errorf("Len() = %d, want 7", r.Len())
	}
}

func TestRun_Style(t *testing.T) {
	content := `<w:p><w:r><w:rPr><w:b/><w:i w:val="0"/><w:u w:val="single"/><w:strike w:val="true"/><w:sz w:val="24"/></w:rPr><w:t>x</w:t></w:r></w:p>`
	doc := openTestDocument(t, content)
	got := doc.Paragraphs()[0].Runs(SkipRevisions)[0].Style()
	want := model.Style{Bold: true, Underline: true, Strike: true, Size: 12}
	if got != want {
		t.Errorf("Style() = %+v, want %+v", got, want)
	}
}

func TestRun_Split(t *testing.T) {
	content := `<w:p><w:r><w:rPr><w:b/></w:rPr><w:t>Hello world</w:t></w:r></w:p>`
	doc := openTestDocument(t, content)
	p := doc.Paragraphs()[0]
	r := p.Runs(SkipRevisions)[0]

	right, err := r.Split(5)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if r.Text() != "Hello" || right.Text() != " world" {
		t.Errorf("split texts = %q, %q", r.Text(), right.Text())
	}
	if !r.Style().Bold || !right.Style().Bold {
		t.Error("both halves should keep the bold style")
	}
	if r.Len()+right.Len() != 11 {
		t.Errorf("combined length = %d, want 11", r.Len()+right.Len())
	}
	if diff := cmp.Diff([]string{"Hello", " world"}, runTexts(p.Runs(SkipRevisions))); diff != "" {
		t.Errorf("paragraph runs mismatch (-want +got):\n%s", diff)
	}
	if v, _ := xmltree.Value(xmltree.Child(right.Node(), "w:t"), "xml:space"); v != "preserve" {
		t.Error("split text should preserve spaces")
	}
}

func TestRun_SplitAtoms(t *testing.T) {
	tests := []struct {
		name        string
		run         string
		at          int
		left, right string
		leftKids    int // element children excluding rPr
	}{
		{"at tab boundary", `<w:r><w:t>ab</w:t><w:tab/><w:t>cd</w:t></w:r>`, 2, "ab", "\tcd", 1},
		{"after tab", `<w:r><w:t>ab</w:t><w:tab/><w:t>cd</w:t></w:r>`, 3, "ab\t", "cd", 2},
		{"inside second text", `<w:r><w:t>ab</w:t><w:tab/><w:t>cd</w:t></w:r>`, 4, "ab\tc", "d", 3},
		{"zero-length atom at boundary goes right", `<w:r><w:t>ab</w:t><w:fldChar/><w:t>cd</w:t></w:r>`, 2, "ab", "cd", 1},
		{"split at start", `<w:r><w:t>abc</w:t></w:r>`, 0, "", "abc", 0},
		{"split at end", `<w:r><w:t>abc</w:t></w:r>`, 3, "abc", "", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := openTestDocument(t, `<w:p>`+tt.run+`</w:p>`)
			r := doc.Paragraphs()[0].Runs(SkipRevisions)[0]
			right, err := r.Split(tt.at)
			if err != nil {
				t.Fatalf("Split failed: %v", err)
			}
			if r.Text() != tt.left || right.Text() != tt.right {
				t.Errorf("got %q | %q, want %q | %q", r.Text(), right.Text(), tt.left, tt.right)
			}
			if n := len(r.Node().ChildElements()); n != tt.leftKids {
				t.Errorf("left run has %d children, want %d", n, tt.leftKids)
			}
		})
	}
}

func TestRun_SplitOutOfRange(t *testing.T) {
	doc := openTestDocument(t, `<w:p><w:r><w:t>héllo</w:t></w:r></w:p>`)
	r := doc.Paragraphs()[0].Runs(SkipRevisions)[0]

	for _, i := range []int{-1, 7, 2} { // 2 is inside "é"
		if _, err := r.Split(i); !errors.Is(err, ErrSplitOutOfRange) {
			t.Errorf("Split(%d): expected ErrSplitOutOfRange, got %v", i, err)
		}
	}
	if r.Text() != "héllo" {
		t.Error("failed split must not modify the run")
	}
}

func TestBuildRun(t *testing.T) {
	doc := openTestDocument(t, `<w:p/>`)
	node := doc.BuildRun(model.TextRun{Text: "a\tb\nc", Style: model.Style{Bold: true, Underline: true, Size: 10.5}})

	out := xmltree.String(node)
	want := `<w:r><w:rPr><w:b/><w:sz w:val="21"/><w:szCs w:val="21"/><w:u w:val="single"/></w:rPr>` +
		`<w:t xml:space="preserve">a</w:t><w:tab/><w:t xml:space="preserve">b</w:t><w:br/><w:t xml:space="preserve">c</w:t></w:r>`
	if out != want {
		t.Errorf("BuildRun =\n%s\nwant\n%s", out, want)
	}

	plain := doc.BuildRun(model.TextRun{Text: "x"})
	if xmltree.Child(plain, "w:rPr") != nil {
		t.Error("unstyled run should have no rPr")
	}
}

func TestMarkDeleted(t *testing.T) {
	doc := openTestDocument(t, `<w:p><w:r><w:t>a</w:t><w:instrText>PAGE</w:instrText></w:r></w:p>`)
	r := doc.Paragraphs()[0].Runs(SkipRevisions)[0].Node().Copy()
	doc.MarkDeleted(r)

	if xmltree.Child(r, "w:t") != nil || xmltree.Child(r, "w:delText") == nil || xmltree.Child(r, "w:delInstrText") == nil {
		t.Errorf("unexpected deleted run: %s", xmltree.String(r))
	}
}

func TestDocument_CustomPrefix(t *testing.T) {
	xml := `<?xml version="1.0" encoding="UTF-8"?>
<x:document xmlns:x="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><x:body><x:p><x:r><x:t>Hi</x:t></x:r></x:p></x:body></x:document>`
	doc := openTestParts(t, map[string]string{DocumentPart: xml})

	if doc.Name("p") != "x:p" {
		t.Errorf("Name(p) = %q", doc.Name("p"))
	}
	if doc.Text(SkipRevisions) != "Hi" {
		t.Errorf("Text() = %q", doc.Text(SkipRevisions))
	}
}

func TestDocument_DefaultNamespace(t *testing.T) {
	xml := `<?xml version="1.0" encoding="UTF-8"?>
<document xmlns="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><body><p><pPr><pStyle val="Title"/></pPr><r><t>Hi</t></r></p></body></document>`
	doc := openTestParts(t, map[string]string{DocumentPart: xml})

	if doc.Name("p") != "p" || doc.AttrName("id") != "w:id" {
		t.Errorf("Name/AttrName = %q/%q", doc.Name("p"), doc.AttrName("id"))
	}
	if doc.Text(SkipRevisions) != "Hi" {
		t.Errorf("Text() = %q", doc.Text(SkipRevisions))
	}
	if got := doc.Paragraphs()[0].StyleID(); got != "Title" {
		t.Errorf("StyleID() = %q", got)
	}

	// Attributes need a bound prefix to be in the WordprocessingML namespace.
	start, _, _ := doc.CommentMarkers(1)
	if got := xmltree.String(start); got != `<commentRangeStart w:id="1"/>` {
		t.Errorf("marker = %s", got)
	}
	out := xmltree.String(doc.BuildRun(model.TextRun{Text: "x", Style: model.Style{Underline: true}}))
	if !strings.Contains(out, `<u w:val="single"/>`) {
		t.Errorf("run = %s", out)
	}
	root, _ := doc.Package().XML(DocumentPart)
	if v, _ := xmltree.Value(root.Root(), "xmlns:w"); v != nsW {
		t.Errorf("xmlns:w = %q, want %q", v, nsW)
	}
}

func TestDocument_DefaultNamespaceConflict(t *testing.T) {
	xml := `<document xmlns="http://schemas.openxmlformats.org/wordprocessingml/2006/main" xmlns:w="urn:other"><body/></document>`
	pkg, err := OpenBytes(buildDOCX(t, map[string]string{DocumentPart: xml}))
	if err != nil {
		t.Fatalf("OpenBytes failed: %v", err)
	}
	if _, err := pkg.Document(); !errors.Is(err, ErrNamespace) {
		t.Errorf("expected ErrNamespace, got %v", err)
	}
}

func TestDocument_MissingBody(t *testing.T) {
	xml := `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"/>`
	pkg, err := OpenBytes(buildDOCX(t, map[string]string{DocumentPart: xml}))
	if err != nil {
		t.Fatalf("OpenBytes failed: %v", err)
	}
	if _, err := pkg.Document(); err == nil || !strings.Contains(err.Error(), "body") {
		t.Errorf("expected missing body error, got %v", err)
	}
}

func TestDocument_MaxAnnotationID(t *testing.T) {
	content := `<w:p><w:bookmarkStart w:id="3" w:name="x"/><w:ins w:id="12"><w:r><w:t>a</w:t></w:r></w:ins><w:del w:id="7"/></w:p>`
	doc := openTestDocument(t, content)
	if got := doc.MaxAnnotationID(); got != 12 {
		t.Errorf("MaxAnnotationID() = %d, want 12", got)
	}
}

func TestDocument_MaxAnnotationIDOtherParts(t *testing.T) {
	const ns = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`
	header := `<w:hdr ` + ns + `><w:p><w:ins w:id="40" w:author="A"><w:r><w:t>h</w:t></w:r></w:ins></w:p></w:hdr>`
	footnotes := `<w:footnotes ` + ns + `><w:footnote w:id="1"><w:p><w:del w:id="55"/></w:p></w:footnote></w:footnotes>`
	doc := openTestParts(t, map[string]string{
		DocumentPart:         documentXML(`<w:p><w:ins w:id="12"/></w:p>`),
		"word/header1.xml":   header,
		"word/footnotes.xml": footnotes,
	})

	if got := doc.MaxAnnotationID(); got != 55 {
		t.Errorf("MaxAnnotationID() = %d, want 55", got)
	}
	// Reading ids must not turn the parts into rewritten trees.
	raw, _ := doc.Package().Part("word/header1.xml")
	if string(raw) != header {
		t.Errorf("header rewritten: %s", raw)
	}
}

func TestDocument_AppendParagraph(t *testing.T) {
	doc := openTestDocument(t, `<w:p><w:r><w:t>first</w:t></w:r></w:p><w:sectPr/>`)
	p := doc.AppendParagraph(model.TextRun{Text: "second"})

	if p.Node().Parent() != doc.Body() {
		t.Fatal("paragraph not attached to body")
	}
	if last := xmltree.LastElement(doc.Body()); last.FullTag() != "w:sectPr" {
		t.Errorf("sectPr must stay last, got %s", last.FullTag())
	}
	if got := doc.Text(SkipRevisions); got != "firstsecond" {
		t.Errorf("Text() = %q", got)
	}
}

func TestParagraph_ListInfo(t *testing.T) {
	content := `<w:p><w:pPr><w:pStyle w:val="ListParagraph"/><w:numPr><w:ilvl w:val="2"/><w:numId w:val="4"/></w:numPr></w:pPr><w:r><w:t>item</w:t></w:r></w:p>
<w:p><w:pPr><w:numPr><w:ilvl w:val="0"/><w:numId w:val="0"/></w:numPr></w:pPr></w:p>
<w:p/>`
	doc := openTestDocument(t, content)
	paras := doc.Paragraphs()

	if !paras[0].IsListItem() || paras[0].ListLevel() != 2 {
		t.Errorf("first paragraph: IsListItem=%v level=%d", paras[0].IsListItem(), paras[0].ListLevel())
	}
	if paras[0].StyleID() != "ListParagraph" {
		t.Errorf("StyleID() = %q", paras[0].StyleID())
	}
	if paras[1].IsListItem() {
		t.Error("numId 0 removes numbering")
	}
	if paras[2].IsListItem() || paras[2].StyleID() != "" {
		t.Error("plain paragraph is not a list item")
	}
}
