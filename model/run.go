package model

// RevisionStatus describes whether a run sits inside a tracked change.
type RevisionStatus int

const (
	// Plain runs are not part of any tracked change.
	Plain RevisionStatus = iota
	// Inserted runs are wrapped in a w:ins envelope.
	Inserted
	// Deleted runs are wrapped in a w:del envelope.
	Deleted
)

// String returns the string representation of the status.
func (s RevisionStatus) String() string {
	switch s {
	case Inserted:
		return "inserted"
	case Deleted:
		return "deleted"
	default:
		return "plain"
	}
}

// TextRun is a piece of text with uniform formatting.
type TextRun struct {
	Text  string
	Style Style
}

// JoinText concatenates the text of runs.
func JoinText(runs []TextRun) string {
	n := 0
	for _, r := range runs {
		n += len(r.Text)
	}
	b := make([]byte, 0, n)
	for _, r := range runs {
		b = append(b, r.Text...)
	}
	return string(b)
}
