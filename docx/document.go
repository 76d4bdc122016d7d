package docx

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/tsawler/redline/internal/xmltree"
	"github.com/tsawler/redline/model"
)

// XML namespaces used in DOCX files
const (
	nsW    = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsR    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsRels = "http://schemas.openxmlformats.org/package/2006/relationships"
	nsCT   = "http://schemas.openxmlformats.org/package/2006/content-types"
)

// Content and relationship types for parts this package creates.
const (
	ContentTypeDOCX     = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	contentTypeMain     = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"
	contentTypeComments = "application/vnd.openxmlformats-officedocument.wordprocessingml.comments+xml"
	relTypeOfficeDoc    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	relTypeComments     = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/comments"
)

// RevisionMode controls which runs a traversal visits.
type RevisionMode int

const (
	// SkipRevisions visits only runs outside tracked changes. Text already
	// inside w:ins or w:del is invisible to anchors.
	SkipRevisions RevisionMode = iota
	// WithInsertions also visits runs inside w:ins (and w:moveTo), giving
	// the text as it reads with all insertions accepted.
	WithInsertions
	// AllRuns visits every run including deleted ones.
	AllRuns
)

// ErrNamespace is returned when a part's namespace declarations leave no
// way to write WordprocessingML attributes.
var ErrNamespace = errors.New("unsupported namespace declarations")

// annotationPart matches the parts besides word/document.xml whose w:id
// values share the document's annotation id space.
var annotationPart = regexp.MustCompile(`^word/(header[0-9]*|footer[0-9]*|footnotes|endnotes|comments)\.xml$`)

// Document is a view over word/document.xml. It borrows the package's
// tree; all mutations go straight into the package.
type Document struct {
	pkg        *Package
	tree       *etree.Document
	body       *etree.Element
	prefix     string
	attrPrefix string
	comments   *commentsPart
	lists      *NumberingResolver
	styles     *StyleResolver
}

func newDocument(pkg *Package, tree *etree.Document) (*Document, error) {
	root := tree.Root()
	if root == nil || root.Tag != "document" {
		return nil, fmt.Errorf("word/document.xml: missing w:document root")
	}
	prefix, attrPrefix, err := bindWordPrefix(root)
	if err != nil {
		return nil, fmt.Errorf("word/document.xml: %w", err)
	}
	d := &Document{
		pkg:        pkg,
		tree:       tree,
		prefix:     prefix,
		attrPrefix: attrPrefix,
	}
	d.body = xmltree.Child(root, d.Name("body"))
	if d.body == nil {
		return nil, fmt.Errorf("word/document.xml: missing w:body")
	}
	return d, nil
}

// boundPrefix returns the prefix declared for ns on el, or "".
func boundPrefix(el *etree.Element, ns string) string {
	for _, a := range el.Attr {
		if a.Space == "xmlns" && a.Value == ns {
			return a.Key
		}
	}
	return ""
}

// bindWordPrefix returns the prefixes of WordprocessingML element and
// attribute names under root, which must be in that namespace. Unprefixed
// attributes have no namespace, so when root uses the default namespace a
// prefix is found or xmlns:w is declared on root for attributes.
func bindWordPrefix(root *etree.Element) (elem, attr string, err error) {
	if root.Space != "" {
		return root.Space, root.Space, nil
	}
	if p := boundPrefix(root, nsW); p != "" {
		return "", p, nil
	}
	if v, ok := xmltree.Value(root, "xmlns:w"); ok {
		return "", "", fmt.Errorf("%w: default namespace is WordprocessingML but w is bound to %q", ErrNamespace, v)
	}
	root.CreateAttr("xmlns:w", nsW)
	return "", "w", nil
}

// attrPrefix returns the prefix WordprocessingML attributes use under
// root without declaring anything.
func attrPrefix(root *etree.Element) string {
	if root.Space != "" {
		return root.Space
	}
	return boundPrefix(root, nsW)
}

// Name qualifies a WordprocessingML element name with the document's
// prefix.
func (d *Document) Name(local string) string {
	return qualify(d.prefix, local)
}

// AttrName qualifies a WordprocessingML attribute name. It always carries
// a prefix, even in documents that use the default namespace.
func (d *Document) AttrName(local string) string {
	return qualify(d.attrPrefix, local)
}

// value returns a WordprocessingML attribute of e. Unprefixed attributes
// are accepted in documents that use the default namespace.
func (d *Document) value(e *etree.Element, local string) (string, bool) {
	if v, ok := xmltree.Value(e, d.AttrName(local)); ok {
		return v, true
	}
	if d.prefix == "" {
		return xmltree.Value(e, local)
	}
	return "", false
}

// Package returns the package the document belongs to.
func (d *Document) Package() *Package {
	return d.pkg
}

// Body returns the w:body element.
func (d *Document) Body() *etree.Element {
	return d.body
}

// Paragraphs returns all paragraphs in document order, including those in
// table cells and content controls.
func (d *Document) Paragraphs() []*Paragraph {
	var out []*Paragraph
	d.collectParagraphs(d.body, &out)
	return out
}

func (d *Document) collectParagraphs(n *etree.Element, out *[]*Paragraph) {
	for _, c := range n.ChildElements() {
		switch c.FullTag() {
		case d.Name("p"):
			*out = append(*out, &Paragraph{doc: d, node: c})
		case d.Name("tbl"), d.Name("tr"), d.Name("tc"),
			d.Name("sdt"), d.Name("sdtContent"), d.Name("customXml"):
			d.collectParagraphs(c, out)
		}
	}
}

// Runs returns every run of the document in order.
func (d *Document) Runs(mode RevisionMode) []*Run {
	var out []*Run
	for _, p := range d.Paragraphs() {
		out = append(out, p.Runs(mode)...)
	}
	return out
}

// Text returns the flattened text of the document: all run texts
// concatenated with no separator between paragraphs.
func (d *Document) Text(mode RevisionMode) string {
	var b strings.Builder
	for _, r := range d.Runs(mode) {
		b.WriteString(r.Text())
	}
	return b.String()
}

// MaxAnnotationID returns the highest numeric w:id used in the document
// (revisions, bookmarks, comment markers), including headers, footers,
// footnotes, endnotes and comments.
func (d *Document) MaxAnnotationID() int {
	maxID := maxWordID(d.body, d.attrPrefix)
	if d.prefix == "" {
		maxID = max(maxID, maxWordID(d.body, ""))
	}
	for _, name := range d.pkg.Names() {
		if !annotationPart.MatchString(name) {
			continue
		}
		tree, err := d.pkg.readXML(name)
		if err != nil {
			// An unreadable part holds no ids Word could collide with.
			continue
		}
		root := tree.Root()
		maxID = max(maxID, maxWordID(root, attrPrefix(root)))
	}
	return maxID
}

func maxWordID(root *etree.Element, prefix string) int {
	maxID := 0
	xmltree.Walk(root, func(n *etree.Element) {
		for _, a := range n.Attr {
			if a.Key != "id" || a.Space != prefix {
				continue
			}
			if id, err := strconv.Atoi(a.Value); err == nil && id > maxID {
				maxID = id
			}
		}
	})
	return maxID
}

// AppendParagraph adds a new paragraph at the end of the body (before the
// final section properties) holding the given runs.
func (d *Document) AppendParagraph(runs ...model.TextRun) *Paragraph {
	p := xmltree.NewElement(d.Name("p"))
	for _, r := range runs {
		p.AddChild(d.BuildRun(r))
	}
	if last := xmltree.LastElement(d.body); xmltree.Is(last, d.Name("sectPr")) {
		xmltree.InsertBefore(last, p)
	} else {
		d.body.AddChild(p)
	}
	return &Paragraph{doc: d, node: p}
}

// Paragraph is a view over a w:p element.
type Paragraph struct {
	doc  *Document
	node *etree.Element
}

// NewParagraph wraps an existing w:p element of d.
func (d *Document) NewParagraph(node *etree.Element) *Paragraph {
	return &Paragraph{doc: d, node: node}
}

// Node returns the underlying w:p element.
func (p *Paragraph) Node() *etree.Element {
	return p.node
}

// Runs returns the runs of the paragraph visible under mode. Runs nested in
// hyperlinks, smart tags and content controls are included.
func (p *Paragraph) Runs(mode RevisionMode) []*Run {
	var out []*Run
	p.doc.collectRuns(p.node, mode, model.Plain, &out)
	return out
}

func (d *Document) collectRuns(n *etree.Element, mode RevisionMode, status model.RevisionStatus, out *[]*Run) {
	for _, c := range n.ChildElements() {
		switch c.FullTag() {
		case d.Name("r"):
			*out = append(*out, &Run{doc: d, node: c, status: status})
		case d.Name("ins"), d.Name("moveTo"):
			if mode >= WithInsertions {
				d.collectRuns(c, mode, model.Inserted, out)
			}
		case d.Name("del"), d.Name("moveFrom"):
			if mode == AllRuns {
				d.collectRuns(c, mode, model.Deleted, out)
			}
		case d.Name("hyperlink"), d.Name("smartTag"), d.Name("customXml"),
			d.Name("sdt"), d.Name("sdtContent"), d.Name("fldSimple"):
			d.collectRuns(c, mode, status, out)
		}
	}
}

// Text returns the concatenated text of the paragraph's runs under mode.
func (p *Paragraph) Text(mode RevisionMode) string {
	var b strings.Builder
	for _, r := range p.Runs(mode) {
		b.WriteString(r.Text())
	}
	return b.String()
}

// properties returns w:pPr or nil.
func (p *Paragraph) properties() *etree.Element {
	return xmltree.Child(p.node, p.doc.Name("pPr"))
}

// StyleID returns the paragraph style id (w:pStyle), if any.
func (p *Paragraph) StyleID() string {
	ppr := p.properties()
	if ppr == nil {
		return ""
	}
	if ps := xmltree.Child(ppr, p.doc.Name("pStyle")); ps != nil {
		v, _ := p.doc.value(ps, "val")
		return v
	}
	return ""
}

// numbering returns the numId and ilvl of the paragraph's w:numPr.
func (p *Paragraph) numbering() (numID string, level int, ok bool) {
	ppr := p.properties()
	if ppr == nil {
		return "", 0, false
	}
	numPr := xmltree.Child(ppr, p.doc.Name("numPr"))
	if numPr == nil {
		return "", 0, false
	}
	if n := xmltree.Child(numPr, p.doc.Name("numId")); n != nil {
		numID, _ = p.doc.value(n, "val")
	}
	if l := xmltree.Child(numPr, p.doc.Name("ilvl")); l != nil {
		v, _ := p.doc.value(l, "val")
		level, _ = strconv.Atoi(v)
	}
	return numID, level, true
}

// IsListItem reports whether the paragraph carries numbering properties.
func (p *Paragraph) IsListItem() bool {
	numID, _, ok := p.numbering()
	return ok && numID != "0"
}

// ListLevel returns the list indentation level (0-based).
func (p *Paragraph) ListLevel() int {
	_, level, _ := p.numbering()
	return level
}
