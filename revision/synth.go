package revision

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/beevik/etree"
	"github.com/tsawler/redline/anchor"
	"github.com/tsawler/redline/docx"
	"github.com/tsawler/redline/edit"
	"github.com/tsawler/redline/internal/xmltree"
	"github.com/tsawler/redline/model"
)

// errNoContent is returned when an insertion would produce an empty
// envelope.
var errNoContent = errors.New("insertion has no text")

// plan is a resolved edit. Building a plan never touches the document;
// mutate performs the whole change.
type plan interface {
	mutate(s *Session, res *Result) error
}

func (s *Session) plan(spec edit.Spec) (plan, error) {
	idx := buildIndex(s.doc, s.mode)
	var (
		p   plan
		err error
	)
	switch v := spec.(type) {
	case *edit.Replace:
		p, err = planReplace(idx, v)
	case *edit.InsertText:
		p, err = planInsertText(idx, v)
	case *edit.InsertParagraph:
		p, err = planInsertParagraph(idx, v)
	default:
		return nil, edit.NewError(edit.AnchorMalformed, spec.Anchor(), fmt.Sprintf("unsupported edit type %T", spec), nil)
	}
	if err != nil {
		return nil, err
	}
	// Comments are written after the body changes, so their part must be
	// usable before anything is touched.
	if spec.Review() != nil {
		if err := s.doc.PrepareComments(); err != nil {
			return nil, fmt.Errorf("preparing comments: %w", err)
		}
	}
	return p, nil
}

// replacePlan deletes [start, end) where start is relative to the first
// run and end to the last.
type replacePlan struct {
	runs       []span
	start, end int
	insert     []model.TextRun
	comment    *edit.Comment
}

func planReplace(idx *textIndex, r *edit.Replace) (plan, error) {
	sp, err := anchor.ResolveSpan(idx.texts, r.Surrounding, r.Find)
	if err != nil {
		return nil, err
	}
	first, err := idx.containing(sp.Start)
	if err != nil {
		return nil, err
	}
	last, err := idx.ending(sp.End)
	if err != nil {
		return nil, err
	}
	return &replacePlan{
		runs:    idx.runs[first : last+1],
		start:   sp.Start - idx.runs[first].start,
		end:     sp.End - idx.runs[last].start,
		insert:  r.Runs,
		comment: r.Comment,
	}, nil
}

func (p *replacePlan) mutate(s *Session, res *Result) error {
	victims := make([]*docx.Run, len(p.runs))
	for i, sp := range p.runs {
		victims[i] = sp.run
	}

	// Split the end first so that a single run holding the whole span
	// keeps a valid start offset.
	last := p.runs[len(p.runs)-1]
	if p.end < last.end-last.start {
		if _, err := victims[len(victims)-1].Split(p.end); err != nil {
			return err
		}
	}
	if p.start > 0 {
		right, err := victims[0].Split(p.start)
		if err != nil {
			return err
		}
		victims[0] = right
	}

	dels := s.deleteRuns(victims, s.author, res)
	first, end := dels[0], dels[len(dels)-1]
	if ins := s.insertion(p.insert, s.author, res); ins != nil {
		xmltree.InsertAfter(end, ins)
		first = ins
		end = ins
	}
	return s.attachComment(p.comment, s.author, first, end, res)
}

// deleteRuns moves victims into w:del envelopes, one per run of
// consecutive victims sharing a parent, placed where the first of them
// was. It returns the envelopes in document order.
func (s *Session) deleteRuns(victims []*docx.Run, author string, res *Result) []*etree.Element {
	var dels []*etree.Element
	for i := 0; i < len(victims); {
		parent := victims[i].Node().Parent()
		j := i
		for j < len(victims) && victims[j].Node().Parent() == parent {
			j++
		}

		del := s.envelope("del", author, res)
		xmltree.InsertBefore(victims[i].Node(), del)
		for _, r := range victims[i:j] {
			n := r.Node()
			s.doc.MarkDeleted(n)
			del.AddChild(n)
		}
		dels = append(dels, del)
		i = j
	}
	return dels
}

// envelope creates an empty w:ins or w:del with the next change id.
func (s *Session) envelope(local, author string, res *Result) *etree.Element {
	id := s.allocID()
	res.ChangeIDs = append(res.ChangeIDs, id)
	return xmltree.NewElement(s.doc.Name(local),
		xmltree.Attr{Name: s.doc.AttrName("id"), Value: strconv.Itoa(id)},
		xmltree.Attr{Name: s.doc.AttrName("author"), Value: author},
		xmltree.Attr{Name: s.doc.AttrName("date"), Value: s.now().UTC().Format(docx.DateFormat)},
	)
}

// insertion builds a w:ins holding runs, or returns nil when there is no
// text to insert.
func (s *Session) insertion(runs []model.TextRun, author string, res *Result) *etree.Element {
	if model.JoinText(runs) == "" {
		return nil
	}
	ins := s.envelope("ins", author, res)
	for _, r := range runs {
		if r.Text == "" {
			continue
		}
		ins.AddChild(s.doc.BuildRun(r))
	}
	return ins
}

// attachComment records c and brackets [first, last] with its range
// markers. The reference run follows the range end.
func (s *Session) attachComment(c *edit.Comment, author string, first, last *etree.Element, res *Result) error {
	if c == nil {
		return nil
	}
	if c.Author != "" {
		author = c.Author
	}
	id, err := s.doc.AddComment(author, c.Text, s.now())
	if err != nil {
		return fmt.Errorf("adding comment: %w", err)
	}
	start, end, ref := s.doc.CommentMarkers(id)
	xmltree.InsertBefore(first, start)
	xmltree.InsertAfter(last, end)
	xmltree.InsertAfter(end, ref)
	res.CommentID = id
	return nil
}

// insertTextPlan inserts next to run. at is the split offset inside run.
type insertTextPlan struct {
	run     *docx.Run
	at      int
	before  bool
	insert  []model.TextRun
	comment *edit.Comment
}

func planInsertText(idx *textIndex, it *edit.InsertText) (plan, error) {
	off, err := anchor.ResolveInsert(idx.text, it.Adjacent, it.Pos)
	if err != nil {
		return nil, err
	}
	p := &insertTextPlan{before: it.Pos == anchor.Before, insert: it.Runs, comment: it.Comment}

	// Before attaches to the run starting at the anchor, after to the run
	// ending there, so the insertion stays in the anchor's paragraph.
	var i int
	if p.before {
		i, err = idx.containing(off)
	} else {
		i, err = idx.ending(off)
	}
	if err != nil {
		return nil, err
	}
	p.run = idx.runs[i].run
	p.at = off - idx.runs[i].start
	return p, nil
}

func (p *insertTextPlan) mutate(s *Session, res *Result) error {
	ins := s.insertion(p.insert, s.author, res)
	if ins == nil {
		return errNoContent
	}

	if p.before {
		target := p.run
		if p.at > 0 {
			right, err := p.run.Split(p.at)
			if err != nil {
				return err
			}
			target = right
		}
		xmltree.InsertBefore(target.Node(), ins)
	} else {
		if p.at < p.run.Len() {
			if _, err := p.run.Split(p.at); err != nil {
				return err
			}
		}
		xmltree.InsertAfter(p.run.Node(), ins)
	}
	return s.attachComment(p.comment, s.author, ins, ins, res)
}

type insertParagraphPlan struct {
	target *docx.Paragraph
	before bool
	spec   *edit.InsertParagraph
}

func planInsertParagraph(idx *textIndex, ip *edit.InsertParagraph) (plan, error) {
	i, err := anchor.ResolveParagraph(idx.texts, ip.Adjacent, ip.Pos)
	if err != nil {
		return nil, err
	}
	return &insertParagraphPlan{target: idx.paragraphs[i], before: ip.Pos == anchor.Before, spec: ip}, nil
}

func (p *insertParagraphPlan) mutate(s *Session, res *Result) error {
	d := s.doc
	ppr, err := s.paragraphProps(p.spec.ListItem, p.spec.ListLevel)
	if err != nil {
		return err
	}

	// The new paragraph mark is itself an insertion.
	rpr := xmltree.Child(ppr, d.Name("rPr"))
	if rpr == nil {
		rpr = xmltree.NewElement(d.Name("rPr"))
		ppr.AddChild(rpr)
	}
	rpr.InsertChildAt(0, s.envelope("ins", s.author, res))

	para := xmltree.NewElement(d.Name("p"))
	para.AddChild(ppr)
	ins := s.insertion(p.spec.Runs, s.author, res)
	if ins != nil {
		para.AddChild(ins)
	}

	if p.before {
		xmltree.InsertBefore(p.target.Node(), para)
	} else {
		xmltree.InsertAfter(p.target.Node(), para)
	}

	if p.spec.Comment == nil {
		return nil
	}
	if ins != nil {
		return s.attachComment(p.spec.Comment, s.author, ins, ins, res)
	}
	// Empty paragraph: anchor the comment at the paragraph mark.
	marker := xmltree.NewElement(d.Name("r"))
	para.AddChild(marker)
	if err := s.attachComment(p.spec.Comment, s.author, marker, marker, res); err != nil {
		return err
	}
	xmltree.Detach(marker)
	return nil
}

// paragraphProps returns the w:pPr for a new paragraph. List items copy
// the properties of the first list paragraph at the same level, or get a
// fresh w:numPr when there is none.
func (s *Session) paragraphProps(listItem bool, level int) (*etree.Element, error) {
	d := s.doc
	ppr := xmltree.NewElement(d.Name("pPr"))
	if !listItem {
		return ppr, nil
	}

	for _, p := range d.Paragraphs() {
		if !p.IsListItem() || p.ListLevel() != level {
			continue
		}
		src := xmltree.Child(p.Node(), d.Name("pPr"))
		if src == nil {
			continue
		}
		c := src.Copy()
		// A copied section break or property change would alter more
		// than the new paragraph.
		for _, local := range []string{"rPr", "sectPr", "pPrChange"} {
			if el := xmltree.Child(c, d.Name(local)); el != nil {
				xmltree.Detach(el)
			}
		}
		return c, nil
	}

	nr, err := d.Numbering()
	if err != nil {
		return nil, fmt.Errorf("reading numbering: %w", err)
	}
	val := d.AttrName("val")
	numPr := xmltree.NewElement(d.Name("numPr"))
	numPr.AddChild(xmltree.NewElement(d.Name("ilvl"), xmltree.Attr{Name: val, Value: strconv.Itoa(level)}))
	numPr.AddChild(xmltree.NewElement(d.Name("numId"), xmltree.Attr{Name: val, Value: nr.NumIDForLevel(level)}))
	ppr.AddChild(numPr)
	return ppr, nil
}
