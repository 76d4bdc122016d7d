package edit

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies why an edit failed.
type Kind int

const (
	// AnchorMalformed means the edit contradicts itself before any search,
	// e.g. find is not part of surrounding_text. Retrying needs a corrected
	// edit.
	AnchorMalformed Kind = iota + 1
	// AnchorNotFound means the anchor text does not occur in the current
	// document. A relaxed or corrected anchor may succeed.
	AnchorNotFound
	// StructuralInvariant means an internal consistency check failed while
	// mutating the document.
	StructuralInvariant
)

// Sentinels matched by errors.Is against any *Error of the same kind.
var (
	ErrAnchorMalformed     = errors.New("anchor malformed")
	ErrAnchorNotFound      = errors.New("anchor not found")
	ErrStructuralInvariant = errors.New("structural invariant violation")
)

// Consequence is reported with every failed edit.
const Consequence = "No edits were applied."

// String returns the wire name of the kind.
func (k Kind) String() string {
	switch k {
	case AnchorMalformed:
		return "AnchorMalformed"
	case AnchorNotFound:
		return "AnchorNotFound"
	case StructuralInvariant:
		return "StructuralInvariantViolation"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func (k Kind) sentinel() error {
	switch k {
	case AnchorMalformed:
		return ErrAnchorMalformed
	case AnchorNotFound:
		return ErrAnchorNotFound
	}
	return ErrStructuralInvariant
}

// Error describes a failed edit: which anchor was searched for, what went
// wrong and how to fix it.
type Error struct {
	Kind    Kind
	Anchor  string
	Problem string
	Tip     string
	Err     error
}

// NewError creates an Error with the default tip for kind.
func NewError(kind Kind, anchor, problem string, cause error) *Error {
	return &Error{Kind: kind, Anchor: anchor, Problem: problem, Tip: defaultTip(kind), Err: cause}
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Anchor != "" {
		fmt.Fprintf(&b, ": anchor %q", e.Anchor)
	}
	if e.Problem != "" {
		b.WriteString(": ")
		b.WriteString(e.Problem)
	}
	b.WriteString(". ")
	b.WriteString(Consequence)
	return b.String()
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind.sentinel()}
	}
	return []error{e.Kind.sentinel(), e.Err}
}

// KindOf returns the Kind of err, or StructuralInvariant for errors that
// did not come from this package.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return StructuralInvariant
}

func defaultTip(k Kind) string {
	switch k {
	case AnchorMalformed:
		return `Ensure "surrounding_text" contains the value of "find" and that every required field is set for the edit type.`
	case AnchorNotFound:
		return "Make sure the anchor text matches the document exactly (spaces, punctuation, spelling, capitalisation) and try again."
	}
	return "Report the edit and the document; this is a bug in the editor."
}

func malformed(anchor, format string, args ...any) *Error {
	return NewError(AnchorMalformed, anchor, fmt.Sprintf(format, args...), nil)
}
