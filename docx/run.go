package docx

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/beevik/etree"
	"github.com/tsawler/redline/internal/xmltree"
	"github.com/tsawler/redline/model"
)

// ErrSplitOutOfRange is returned when a run is split outside its text or in
// the middle of a UTF-8 sequence.
var ErrSplitOutOfRange = errors.New("split index out of range")

// Run is a view over a w:r element.
type Run struct {
	doc    *Document
	node   *etree.Element
	status model.RevisionStatus
}

// Node returns the underlying w:r element.
func (r *Run) Node() *etree.Element {
	return r.node
}

// Status reports whether the run is plain, inserted or deleted.
func (r *Run) Status() model.RevisionStatus {
	return r.status
}

// Text returns the run's text. Tabs and breaks are reported as "\t" and
// "\n"; drawings and field characters contribute nothing.
func (r *Run) Text() string {
	var b strings.Builder
	for _, c := range r.node.ChildElements() {
		b.WriteString(r.doc.atomText(c))
	}
	return b.String()
}

// Len returns the length of the run's text in bytes.
func (r *Run) Len() int {
	return len(r.Text())
}

// atomText returns the text contributed by a single child of w:r.
func (d *Document) atomText(c *etree.Element) string {
	switch c.FullTag() {
	case d.Name("t"), d.Name("delText"):
		return c.Text()
	case d.Name("tab"), d.Name("ptab"):
		return "\t"
	case d.Name("br"), d.Name("cr"):
		return "\n"
	case d.Name("noBreakHyphen"):
		return "-"
	}
	return ""
}

// Style returns the run's direct character formatting.
func (r *Run) Style() model.Style {
	return r.doc.directStyle(xmltree.Child(r.node, r.doc.Name("rPr")))
}

// StyleID returns the character style id (w:rStyle), if any.
func (r *Run) StyleID() string {
	rpr := xmltree.Child(r.node, r.doc.Name("rPr"))
	if rpr == nil {
		return ""
	}
	if rs := xmltree.Child(rpr, r.doc.Name("rStyle")); rs != nil {
		v, _ := r.doc.value(rs, "val")
		return v
	}
	return ""
}

func (d *Document) directStyle(rpr *etree.Element) model.Style {
	var s model.Style
	if rpr == nil {
		return s
	}
	onOff := func(local string) bool {
		el := xmltree.Child(rpr, d.Name(local))
		if el == nil {
			return false
		}
		v, _ := d.value(el, "val")
		return v != "0" && v != "false" && v != "off"
	}
	s.Bold = onOff("b")
	s.Italic = onOff("i")
	s.Strike = onOff("strike") || onOff("dstrike")
	if u := xmltree.Child(rpr, d.Name("u")); u != nil {
		v, _ := d.value(u, "val")
		s.Underline = v != "none"
	}
	if sz := xmltree.Child(rpr, d.Name("sz")); sz != nil {
		v, _ := d.value(sz, "val")
		s.Size = parseHalfPoints(v)
	}
	return s
}

// Split divides the run at byte index i of its text. The receiver keeps
// [0,i) and a new sibling run holding [i,len) is inserted immediately after
// it. Both runs keep the full run properties and any non-text content stays
// on the side of the split where it appeared.
func (r *Run) Split(i int) (*Run, error) {
	text := r.Text()
	if i < 0 || i > len(text) {
		return nil, fmt.Errorf("%w: index %d in run of length %d", ErrSplitOutOfRange, i, len(text))
	}
	if i < len(text) && !utf8.RuneStart(text[i]) {
		return nil, fmt.Errorf("%w: index %d is inside a UTF-8 sequence", ErrSplitOutOfRange, i)
	}
	if r.node.Parent() == nil {
		return nil, fmt.Errorf("%w: run is detached", ErrSplitOutOfRange)
	}

	right := r.node.Copy()
	rpr := r.doc.Name("rPr")

	var dropLeft, dropRight []*etree.Element
	off := 0
	kids, rightKids := r.node.ChildElements(), right.ChildElements()
	for k, c := range kids {
		rc := rightKids[k]
		if c.FullTag() == rpr {
			continue
		}
		s := r.doc.atomText(c)
		n := len(s)
		switch {
		case off+n <= i && (n > 0 || off < i):
			dropRight = append(dropRight, rc)
		case off >= i:
			dropLeft = append(dropLeft, c)
		default:
			setPreservedText(c, s[:i-off])
			setPreservedText(rc, s[i-off:])
		}
		off += n
	}

	for _, c := range dropLeft {
		xmltree.Detach(c)
	}
	for _, c := range dropRight {
		xmltree.Detach(c)
	}

	xmltree.InsertAfter(r.node, right)
	return &Run{doc: r.doc, node: right, status: r.status}, nil
}

func setPreservedText(t *etree.Element, s string) {
	t.SetText(s)
	t.CreateAttr("xml:space", "preserve")
}

// BuildRun creates a detached w:r element for a styled text run. Tabs and
// newlines in the text become w:tab and w:br elements.
func (d *Document) BuildRun(tr model.TextRun) *etree.Element {
	r := xmltree.NewElement(d.Name("r"))
	if rpr := d.buildRunProps(tr.Style); rpr != nil {
		r.AddChild(rpr)
	}

	var buf strings.Builder
	flush := func() {
		if buf.Len() == 0 {
			return
		}
		t := xmltree.NewElement(d.Name("t"))
		setPreservedText(t, buf.String())
		r.AddChild(t)
		buf.Reset()
	}
	for _, ch := range tr.Text {
		switch ch {
		case '\t':
			flush()
			r.AddChild(xmltree.NewElement(d.Name("tab")))
		case '\n':
			flush()
			r.AddChild(xmltree.NewElement(d.Name("br")))
		default:
			buf.WriteRune(ch)
		}
	}
	flush()
	return r
}

func (d *Document) buildRunProps(s model.Style) *etree.Element {
	if s.IsZero() {
		return nil
	}
	val := d.AttrName("val")
	rpr := xmltree.NewElement(d.Name("rPr"))
	// Element order follows the CT_RPr sequence.
	if s.Bold {
		rpr.AddChild(xmltree.NewElement(d.Name("b")))
	}
	if s.Italic {
		rpr.AddChild(xmltree.NewElement(d.Name("i")))
	}
	if s.Strike {
		rpr.AddChild(xmltree.NewElement(d.Name("strike")))
	}
	if s.Size > 0 {
		hp := strconv.Itoa(s.HalfPoints())
		rpr.AddChild(xmltree.NewElement(d.Name("sz"), xmltree.Attr{Name: val, Value: hp}))
		rpr.AddChild(xmltree.NewElement(d.Name("szCs"), xmltree.Attr{Name: val, Value: hp}))
	}
	if s.Underline {
		rpr.AddChild(xmltree.NewElement(d.Name("u"), xmltree.Attr{Name: val, Value: "single"}))
	}
	return rpr
}

// MarkDeleted rewrites a detached run copy so that its text is deleted
// text (w:t becomes w:delText, w:instrText becomes w:delInstrText).
func (d *Document) MarkDeleted(r *etree.Element) {
	t, instr := d.Name("t"), d.Name("instrText")
	xmltree.Walk(r, func(n *etree.Element) {
		switch n.FullTag() {
		case t:
			xmltree.Rename(n, d.Name("delText"))
		case instr:
			xmltree.Rename(n, d.Name("delInstrText"))
		}
	})
}
