package revision

import (
	"github.com/tsawler/redline/anchor"
	"github.com/tsawler/redline/edit"
)

// Relaxed returns a copy of spec whose anchors are replaced by the
// document text they loosely match at level. The copy is an ordinary
// exact edit; ok is false when no loosened match exists.
//
// Text that marks an exact position is never shortened: find and
// after-anchors are matched at most at anchor.Loose, since Partial would
// move the end of the match.
func Relaxed(spec edit.Spec, text string, level anchor.Level) (edit.Spec, bool) {
	bounded := level
	if bounded > anchor.Loose {
		bounded = anchor.Loose
	}

	switch v := spec.(type) {
	case *edit.Replace:
		sur, ok := anchor.Relax(text, v.Surrounding, level)
		if !ok {
			return nil, false
		}
		find, ok := anchor.Relax(sur, v.Find, bounded)
		if !ok {
			return nil, false
		}
		c := *v
		c.Surrounding, c.Find = sur, find
		return &c, true

	case *edit.InsertText:
		adj, ok := anchor.Relax(text, v.Adjacent, positional(v.Pos, level, bounded))
		if !ok {
			return nil, false
		}
		c := *v
		c.Adjacent = adj
		return &c, true

	case *edit.InsertParagraph:
		adj, ok := anchor.Relax(text, v.Adjacent, positional(v.Pos, level, bounded))
		if !ok {
			return nil, false
		}
		c := *v
		c.Adjacent = adj
		return &c, true
	}
	return nil, false
}

func positional(pos anchor.Position, level, bounded anchor.Level) anchor.Level {
	if pos == anchor.After {
		return bounded
	}
	return level
}
