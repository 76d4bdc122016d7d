// Package edit defines the edits that can be applied to a document, their
// JSON wire form and the errors reported when an edit fails.
package edit

import (
	"strings"

	"github.com/tsawler/redline/anchor"
	"github.com/tsawler/redline/model"
)

// Type is the wire tag of an edit.
type Type string

const (
	TypeReplace         Type = "replace"
	TypeInsertText      Type = "insert_text"
	TypeInsertParagraph Type = "insert_paragraph"
)

// MaxListLevel is the deepest list level Word supports (0-based).
const MaxListLevel = 8

// Comment is a reviewer comment attached to the revision an edit produces.
// An empty Author means the batch author.
type Comment struct {
	Author string `json:"author,omitempty" validate:"max=255"`
	Text   string `json:"text" validate:"required"`
}

// Spec is one edit. It is implemented by *Replace, *InsertText and
// *InsertParagraph.
type Spec interface {
	Type() Type
	// Anchor returns the text the edit searches for.
	Anchor() string
	// Review returns the comment to attach, or nil.
	Review() *Comment
	// Validate checks the edit's own invariants without looking at any
	// document.
	Validate() error
}

// Replace deletes Find inside the first occurrence of Surrounding and
// inserts Runs in its place. An empty Runs is a pure removal.
type Replace struct {
	Surrounding string
	Find        string
	Runs        []model.TextRun
	Comment     *Comment
}

func (r *Replace) Type() Type       { return TypeReplace }
func (r *Replace) Anchor() string   { return r.Surrounding }
func (r *Replace) Review() *Comment { return r.Comment }

// Validate reports AnchorMalformed when Find is empty or not part of
// Surrounding.
func (r *Replace) Validate() error {
	if r.Surrounding == "" {
		return malformed(r.Surrounding, "surrounding_text is empty")
	}
	if r.Find == "" {
		return malformed(r.Surrounding, "find is empty")
	}
	if !strings.Contains(r.Surrounding, r.Find) {
		return malformed(r.Surrounding, `value of "surrounding_text" does not contain value of "find" (%q)`, r.Find)
	}
	return validateComment(r.Surrounding, r.Comment)
}

// InsertText inserts Runs inline before or after the first occurrence of
// Adjacent.
type InsertText struct {
	Adjacent string
	Pos      anchor.Position
	Runs     []model.TextRun
	Comment  *Comment
}

func (i *InsertText) Type() Type       { return TypeInsertText }
func (i *InsertText) Anchor() string   { return i.Adjacent }
func (i *InsertText) Review() *Comment { return i.Comment }

func (i *InsertText) Validate() error {
	if i.Adjacent == "" {
		return malformed("", "adjacent_text is empty")
	}
	if model.JoinText(i.Runs) == "" {
		return malformed(i.Adjacent, "insert has no text")
	}
	return validateComment(i.Adjacent, i.Comment)
}

// InsertParagraph inserts a new paragraph holding Runs before the paragraph
// that starts with Adjacent, or after the paragraph that ends with it.
type InsertParagraph struct {
	Adjacent  string
	Pos       anchor.Position
	Runs      []model.TextRun
	ListItem  bool
	ListLevel int
	Comment   *Comment
}

func (p *InsertParagraph) Type() Type       { return TypeInsertParagraph }
func (p *InsertParagraph) Anchor() string   { return p.Adjacent }
func (p *InsertParagraph) Review() *Comment { return p.Comment }

func (p *InsertParagraph) Validate() error {
	if p.Adjacent == "" {
		return malformed("", "adjacent_text is empty")
	}
	if p.ListLevel < 0 || p.ListLevel > MaxListLevel {
		return malformed(p.Adjacent, "list_level %d is outside 0..%d", p.ListLevel, MaxListLevel)
	}
	return validateComment(p.Adjacent, p.Comment)
}

func validateComment(anchorText string, c *Comment) error {
	if c == nil {
		return nil
	}
	if err := validate.Struct(c); err != nil {
		return NewError(AnchorMalformed, anchorText, "invalid comment: "+describe(err), err)
	}
	return nil
}
