package docx

import (
	"regexp"
	"strings"
)

var multiSpace = regexp.MustCompile(` {2,}`)

// NormalizeSpaces collapses runs of two or more spaces into one, both
// inside run text and across run boundaries within a paragraph. Tabs,
// breaks, styling and paragraph structure are left alone. Text inside
// tracked changes is not touched. It returns the number of text elements
// that changed.
func (d *Document) NormalizeSpaces() int {
	changed := 0
	t := d.Name("t")
	for _, p := range d.Paragraphs() {
		prevSpace := false
		for _, r := range p.Runs(SkipRevisions) {
			for _, c := range r.node.ChildElements() {
				if c.FullTag() != t {
					// Any other atom that produces text breaks the sequence.
					if d.atomText(c) != "" {
						prevSpace = false
					}
					continue
				}
				old := c.Text()
				s := multiSpace.ReplaceAllString(old, " ")
				if prevSpace {
					s = strings.TrimLeft(s, " ")
				}
				if s == "" {
					// Keep prevSpace: an emptied element contributes nothing.
					if old != "" {
						c.SetText("")
						changed++
					}
					continue
				}
				if s != old {
					setPreservedText(c, s)
					changed++
				}
				prevSpace = strings.HasSuffix(s, " ")
			}
		}
	}
	return changed
}
