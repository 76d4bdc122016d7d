package docx

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/tsawler/redline/internal/xmltree"
)

// DateFormat is the timestamp layout of w:date attributes. Dates are
// always written in UTC.
const DateFormat = "2006-01-02T15:04:05Z"

// Comment is a reviewer comment stored in word/comments.xml.
type Comment struct {
	ID     int
	Author string
	Date   time.Time
	Text   string
}

type commentsPart struct {
	root       *etree.Element
	prefix     string
	attrPrefix string
	nextID     int
}

func (c *commentsPart) name(local string) string {
	return qualify(c.prefix, local)
}

func (c *commentsPart) attr(local string) string {
	return qualify(c.attrPrefix, local)
}

func (c *commentsPart) value(el *etree.Element, local string) string {
	v, ok := xmltree.Value(el, c.attr(local))
	if !ok && c.prefix == "" {
		v, _ = xmltree.Value(el, local)
	}
	return v
}

// PrepareComments loads word/comments.xml, creating it with its content
// type and relationship when missing, so that AddComment cannot fail. Edits
// that carry a comment call it before changing the body.
func (d *Document) PrepareComments() error {
	_, err := d.commentsPart(true)
	return err
}

// commentsPart returns word/comments.xml, creating it (with its content
// type and relationship) when create is set and it does not exist.
func (d *Document) commentsPart(create bool) (*commentsPart, error) {
	if d.comments != nil {
		return d.comments, nil
	}

	if !d.pkg.Has(CommentsPart) {
		if !create {
			return nil, nil
		}
		// Parse everything that will change first so a bad part leaves the
		// package as it was.
		if _, err := d.pkg.XML(ContentTypesPart); err != nil {
			return nil, err
		}
		if rels := relsPart(DocumentPart); d.pkg.Has(rels) {
			if _, err := d.pkg.XML(rels); err != nil {
				return nil, err
			}
		}
		if err := d.pkg.ensureOverride(CommentsPart, contentTypeComments); err != nil {
			return nil, err
		}
		if _, err := d.pkg.ensureRelationship(DocumentPart, relTypeComments, "comments.xml"); err != nil {
			return nil, err
		}
		root := xmltree.NewElement("w:comments", xmltree.Attr{Name: "xmlns:w", Value: nsW})
		d.pkg.SetXML(CommentsPart, xmltree.NewDocument(root))
	}

	tree, err := d.pkg.XML(CommentsPart)
	if err != nil {
		return nil, err
	}
	root := tree.Root()
	if root.Tag != "comments" {
		return nil, fmt.Errorf("%s: missing w:comments root", CommentsPart)
	}
	prefix, attrPrefix, err := bindWordPrefix(root)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", CommentsPart, err)
	}
	c := &commentsPart{root: root, prefix: prefix, attrPrefix: attrPrefix}

	maxID := -1
	for _, el := range root.ChildElements() {
		if el.Tag != "comment" {
			continue
		}
		if id, err := strconv.Atoi(c.value(el, "id")); err == nil && id > maxID {
			maxID = id
		}
	}
	// Markers may reference ids whose comment was removed.
	markers := map[string]bool{
		d.Name("commentRangeStart"): true,
		d.Name("commentRangeEnd"):   true,
		d.Name("commentReference"):  true,
	}
	xmltree.Walk(d.body, func(n *etree.Element) {
		if !markers[n.FullTag()] {
			return
		}
		v, _ := d.value(n, "id")
		if id, err := strconv.Atoi(v); err == nil && id > maxID {
			maxID = id
		}
	})
	c.nextID = maxID + 1

	d.comments = c
	return c, nil
}

// AddComment appends a comment to word/comments.xml and returns its id.
// Each line of text becomes its own paragraph.
func (d *Document) AddComment(author, text string, date time.Time) (int, error) {
	c, err := d.commentsPart(true)
	if err != nil {
		return 0, err
	}

	id := c.nextID
	c.nextID++

	el := xmltree.NewElement(c.name("comment"),
		xmltree.Attr{Name: c.attr("id"), Value: strconv.Itoa(id)},
		xmltree.Attr{Name: c.attr("author"), Value: author},
		xmltree.Attr{Name: c.attr("date"), Value: date.UTC().Format(DateFormat)},
		xmltree.Attr{Name: c.attr("initials"), Value: initials(author)},
	)
	for i, line := range strings.Split(text, "\n") {
		p := xmltree.NewElement(c.name("p"))
		if i == 0 {
			ref := xmltree.NewElement(c.name("r"))
			ref.AddChild(xmltree.NewElement(c.name("annotationRef")))
			p.AddChild(ref)
		}
		if line != "" {
			r := xmltree.NewElement(c.name("r"))
			t := xmltree.NewElement(c.name("t"))
			setPreservedText(t, line)
			r.AddChild(t)
			p.AddChild(r)
		}
		el.AddChild(p)
	}
	c.root.AddChild(el)
	return id, nil
}

// Comments returns the comments stored in the package.
func (d *Document) Comments() ([]Comment, error) {
	c, err := d.commentsPart(false)
	if err != nil || c == nil {
		return nil, err
	}

	var out []Comment
	for _, el := range c.root.ChildElements() {
		if el.Tag != "comment" {
			continue
		}
		id, _ := strconv.Atoi(c.value(el, "id"))
		date, _ := time.Parse(DateFormat, c.value(el, "date"))
		var lines []string
		for _, p := range el.ChildElements() {
			if p.Tag != "p" {
				continue
			}
			var b strings.Builder
			for _, t := range xmltree.FindAll(p, c.name("t")) {
				b.WriteString(t.Text())
			}
			lines = append(lines, b.String())
		}
		out = append(out, Comment{
			ID:     id,
			Author: c.value(el, "author"),
			Date:   date,
			Text:   strings.Join(lines, "\n"),
		})
	}
	return out, nil
}

// CommentMarkers builds the three body elements that anchor comment id:
// w:commentRangeStart, w:commentRangeEnd and a run holding
// w:commentReference. The reference run belongs right after the range end.
func (d *Document) CommentMarkers(id int) (start, end, ref *etree.Element) {
	idAttr := xmltree.Attr{Name: d.AttrName("id"), Value: strconv.Itoa(id)}
	start = xmltree.NewElement(d.Name("commentRangeStart"), idAttr)
	end = xmltree.NewElement(d.Name("commentRangeEnd"), idAttr)
	ref = xmltree.NewElement(d.Name("r"))
	ref.AddChild(xmltree.NewElement(d.Name("commentReference"), idAttr))
	return start, end, ref
}

func initials(author string) string {
	var b strings.Builder
	for _, f := range strings.Fields(author) {
		for _, r := range f {
			b.WriteRune(r)
			break
		}
	}
	return strings.ToUpper(b.String())
}
