package revision

import (
	"fmt"

	"github.com/beevik/etree"
	"github.com/tsawler/redline/docx"
	"github.com/tsawler/redline/edit"
	"github.com/tsawler/redline/model"
)

// Section types of DocData.
const (
	SectionNormal = "normal"
	SectionEdit   = "edit"
)

// DocData describes a document as paragraphs of sections. It is the
// format produced by chunked export with edits spliced in.
type DocData struct {
	Paragraphs [][]Section `json:"paragraphs"`
}

// Section is a piece of a paragraph. Normal sections contribute plain
// runs; edit sections contribute a deletion of OldRuns followed by an
// insertion of Runs.
type Section struct {
	Type    string        `json:"type"`
	Author  string        `json:"author,omitempty"`
	Runs    []RunData     `json:"runs,omitempty"`
	OldRuns []RunData     `json:"old_runs,omitempty"`
	Comment *edit.Comment `json:"comment,omitempty"`
}

// RunData is a styled run in wire form.
type RunData struct {
	Text   string   `json:"text"`
	Styles []string `json:"styles,omitempty"`
}

// Compose builds a new document from data. Edit sections become tracked
// changes attributed to the section author, or to the session author
// configured by opts.
func Compose(data *DocData, opts ...Option) (*docx.Package, error) {
	pkg := docx.New()
	doc, err := pkg.Document()
	if err != nil {
		return nil, err
	}
	s := NewSession(doc, opts...)

	for pi, para := range data.Paragraphs {
		p := doc.AppendParagraph()
		for si, sec := range para {
			if err := s.composeSection(p, sec); err != nil {
				return nil, fmt.Errorf("paragraph %d section %d: %w", pi, si, err)
			}
		}
	}
	return pkg, nil
}

func (s *Session) composeSection(p *docx.Paragraph, sec Section) error {
	runs, err := parseRuns(sec.Runs)
	if err != nil {
		return err
	}

	switch sec.Type {
	case SectionNormal, "":
		for _, r := range runs {
			p.Node().AddChild(s.doc.BuildRun(r))
		}
		return nil
	case SectionEdit:
	default:
		return fmt.Errorf("unknown section type %q", sec.Type)
	}

	old, err := parseRuns(sec.OldRuns)
	if err != nil {
		return err
	}
	author := sec.Author
	if author == "" {
		author = s.author
	}

	var res Result
	del := s.deletion(old, author, &res)
	ins := s.insertion(runs, author, &res)
	if del != nil {
		p.Node().AddChild(del)
	}
	if ins != nil {
		p.Node().AddChild(ins)
	}

	target := ins
	if target == nil {
		target = del
	}
	if target == nil || sec.Comment == nil || sec.Comment.Text == "" {
		return nil
	}
	return s.attachComment(sec.Comment, author, target, target, &res)
}

// deletion builds a w:del holding runs as deleted text, or nil when there
// is nothing to delete.
func (s *Session) deletion(runs []model.TextRun, author string, res *Result) *etree.Element {
	if model.JoinText(runs) == "" {
		return nil
	}
	del := s.envelope("del", author, res)
	for _, r := range runs {
		if r.Text == "" {
			continue
		}
		n := s.doc.BuildRun(r)
		s.doc.MarkDeleted(n)
		del.AddChild(n)
	}
	return del
}

func parseRuns(in []RunData) ([]model.TextRun, error) {
	out := make([]model.TextRun, 0, len(in))
	for i, r := range in {
		st, err := model.ParseStyles(r.Styles)
		if err != nil {
			return nil, fmt.Errorf("run %d: %w", i, err)
		}
		out = append(out, model.TextRun{Text: r.Text, Style: st})
	}
	return out, nil
}
