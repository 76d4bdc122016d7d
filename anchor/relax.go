package anchor

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Level is how far Relax may loosen an anchor.
type Level int

const (
	// Exact matches the anchor as given.
	Exact Level = iota
	// Folded applies NFKC, straightens quotes and dashes and collapses
	// whitespace on both sides before matching.
	Folded
	// Loose additionally ignores case and punctuation at the ends of the
	// anchor.
	Loose
	// Partial keeps only the leading two thirds of the anchor's words (at
	// least three).
	Partial
)

// String names the level.
func (l Level) String() string {
	switch l {
	case Exact:
		return "exact"
	case Folded:
		return "folded"
	case Loose:
		return "loose"
	case Partial:
		return "partial"
	}
	return "unknown"
}

// Relax looks for anchor in text, trying each level from Exact up to upTo
// in turn. On success it returns the text exactly as it appears in the
// document, which can be used as an exact anchor.
func Relax(text, anchor string, upTo Level) (string, bool) {
	for l := Exact; l <= upTo; l++ {
		if s, ok := relaxAt(text, anchor, l); ok {
			return s, true
		}
	}
	return "", false
}

func relaxAt(text, anchor string, l Level) (string, bool) {
	if anchor == "" {
		return "", false
	}
	if l == Exact {
		if strings.Contains(text, anchor) {
			return anchor, true
		}
		return "", false
	}

	lower := l >= Loose
	needle := strings.TrimSpace(fold(anchor, lower).s)
	if l >= Loose {
		needle = strings.TrimFunc(needle, isTailPunct)
	}
	if l == Partial {
		words := strings.Fields(needle)
		k := max(3, (2*len(words)+2)/3)
		if k >= len(words) {
			return "", false
		}
		needle = strings.Join(words[:k], " ")
	}
	if needle == "" {
		return "", false
	}

	hay := fold(text, lower)
	i := strings.Index(hay.s, needle)
	if i < 0 {
		return "", false
	}
	return text[hay.start[i]:hay.end[i+len(needle)-1]], true
}

// folded is text after normalisation, with the source byte range of every
// folded byte.
type folded struct {
	s          string
	start, end []int
}

func fold(text string, lower bool) folded {
	var f folded
	var b strings.Builder
	prevSpace := false
	for i, r := range text {
		j := i + len(string(r))
		var out string
		switch {
		case unicode.IsSpace(r):
			if prevSpace {
				continue
			}
			prevSpace = true
			out = " "
		default:
			prevSpace = false
			out = foldRune(r, lower)
		}
		for k := 0; k < len(out); k++ {
			f.start = append(f.start, i)
			f.end = append(f.end, j)
		}
		b.WriteString(out)
	}
	f.s = b.String()
	return f
}

var quoteReplacer = strings.NewReplacer(
	"‘", "'", "’", "'", "‚", "'", "‛", "'", "′", "'",
	"“", `"`, "”", `"`, "„", `"`, "‟", `"`, "″", `"`,
	"–", "-", "—", "-", "−", "-",
	" ", " ",
)

func foldRune(r rune, lower bool) string {
	s := quoteReplacer.Replace(norm.NFKC.String(string(r)))
	if lower {
		s = strings.ToLower(s)
	}
	return s
}

func isTailPunct(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSpace(r)
}
