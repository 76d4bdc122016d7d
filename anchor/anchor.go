// Package anchor maps textual anchors onto offsets in a document's
// flattened run text.
//
// The resolvers work on plain strings: the caller passes the text of each
// run (or paragraph) in document order and gets back byte offsets into the
// concatenation of those texts. Matching is exact, case-sensitive and
// whitespace-literal, and the first occurrence in document order always
// wins. Relaxed matching lives in [Relax] and is never applied implicitly.
package anchor

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformed is returned when an anchor is inconsistent before any
	// search happens, e.g. find is not part of surrounding text.
	ErrMalformed = errors.New("malformed anchor")
	// ErrNotFound is returned when the anchor does not occur in the text.
	ErrNotFound = errors.New("anchor not found")
)

// Position says on which side of the anchor text an insertion goes.
type Position int

const (
	Before Position = iota
	After
)

// String returns "before" or "after".
func (p Position) String() string {
	if p == After {
		return "after"
	}
	return "before"
}

// ParsePosition parses "before" or "after".
func ParsePosition(s string) (Position, error) {
	switch s {
	case "before":
		return Before, nil
	case "after":
		return After, nil
	}
	return 0, fmt.Errorf("%w: insert position %q is not \"before\" or \"after\"", ErrMalformed, s)
}

// Span is a half-open byte range [Start, End) in flattened text.
type Span struct {
	Start, End int
}

// Len returns the length of the span in bytes.
func (s Span) Len() int {
	return s.End - s.Start
}

// ResolveSpan locates find inside the first occurrence of surrounding.
// paragraphs holds the text of each paragraph in order. Text is accumulated
// paragraph by paragraph and the search stops at the first paragraph where
// surrounding is complete, so ties go to the earliest completion.
func ResolveSpan(paragraphs []string, surrounding, find string) (Span, error) {
	if find == "" {
		return Span{}, fmt.Errorf("%w: find text is empty", ErrMalformed)
	}
	rel := strings.Index(surrounding, find)
	if rel < 0 {
		return Span{}, fmt.Errorf("%w: surrounding text does not contain find text", ErrMalformed)
	}

	var buf strings.Builder
	for _, p := range paragraphs {
		buf.WriteString(p)
		if i := strings.Index(buf.String(), surrounding); i >= 0 {
			start := i + rel
			return Span{Start: start, End: start + len(find)}, nil
		}
	}
	return Span{}, fmt.Errorf("%w: no section of the document matched the surrounding text exactly", ErrNotFound)
}

// ResolveInsert returns the offset of an inline insertion next to the first
// occurrence of adjacent in text: its start for Before, its end for After.
func ResolveInsert(text, adjacent string, pos Position) (int, error) {
	if adjacent == "" {
		return 0, fmt.Errorf("%w: adjacent text is empty", ErrMalformed)
	}
	i := strings.Index(text, adjacent)
	if i < 0 {
		return 0, fmt.Errorf("%w: no section of the document matched the adjacent text exactly", ErrNotFound)
	}
	if pos == After {
		return i + len(adjacent), nil
	}
	return i, nil
}

// ResolveParagraph returns the index of the paragraph a new paragraph is
// inserted next to. For Before it is the first non-empty paragraph from
// which the remaining text starts with adjacent; for After it is the first
// paragraph at whose end the text read so far ends with adjacent.
func ResolveParagraph(paragraphs []string, adjacent string, pos Position) (int, error) {
	if adjacent == "" {
		return 0, fmt.Errorf("%w: adjacent text is empty", ErrMalformed)
	}
	flat := strings.Join(paragraphs, "")

	off := 0
	for i, p := range paragraphs {
		start, end := off, off+len(p)
		off = end
		if p == "" {
			continue
		}
		switch pos {
		case Before:
			if strings.HasPrefix(flat[start:], adjacent) {
				return i, nil
			}
		case After:
			if strings.HasSuffix(flat[:end], adjacent) {
				return i, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: no paragraph %s the adjacent text", ErrNotFound, map[Position]string{Before: "starts with", After: "ends with"}[pos])
}
