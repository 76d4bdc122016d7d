package revision

import (
	"fmt"
	"strings"

	"github.com/tsawler/redline/docx"
)

// span is a run together with its position in the flattened text.
type span struct {
	run        *docx.Run
	para       int
	start, end int
}

// textIndex is a snapshot of the runs visible under a traversal mode,
// taken immediately before an edit is resolved.
type textIndex struct {
	paragraphs []*docx.Paragraph
	texts      []string // flattened text per paragraph
	runs       []span
	text       string
}

func buildIndex(doc *docx.Document, mode docx.RevisionMode) *textIndex {
	idx := &textIndex{paragraphs: doc.Paragraphs()}
	var all strings.Builder
	off := 0
	for pi, p := range idx.paragraphs {
		var pb strings.Builder
		for _, r := range p.Runs(mode) {
			t := r.Text()
			idx.runs = append(idx.runs, span{run: r, para: pi, start: off, end: off + len(t)})
			off += len(t)
			pb.WriteString(t)
		}
		idx.texts = append(idx.texts, pb.String())
		all.WriteString(pb.String())
	}
	idx.text = all.String()
	return idx
}

// containing returns the index of the first non-empty run with
// start <= off < end.
func (x *textIndex) containing(off int) (int, error) {
	for i, s := range x.runs {
		if s.start <= off && off < s.end {
			return i, nil
		}
	}
	return 0, fmt.Errorf("offset %d is outside the document text (length %d)", off, len(x.text))
}

// ending returns the index of the first non-empty run with
// start < off <= end.
func (x *textIndex) ending(off int) (int, error) {
	for i, s := range x.runs {
		if s.start < off && off <= s.end {
			return i, nil
		}
	}
	return 0, fmt.Errorf("offset %d is outside the document text (length %d)", off, len(x.text))
}
