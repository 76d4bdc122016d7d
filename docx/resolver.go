package docx

import (
	"strconv"

	"github.com/tsawler/redline/internal/xmltree"
	"github.com/tsawler/redline/model"
)

// StyleResolver resolves effective character formatting through the
// basedOn inheritance chain of word/styles.xml.
type StyleResolver struct {
	styles   map[string]*styleDefXML
	defaults model.Style
	resolved map[string]model.Style
}

// NewStyleResolver creates a new style resolver from parsed styles.
func NewStyleResolver(styles *stylesXML) *StyleResolver {
	sr := &StyleResolver{
		styles:   make(map[string]*styleDefXML),
		resolved: make(map[string]model.Style),
	}

	if styles == nil {
		return sr
	}

	for i := range styles.Styles {
		style := &styles.Styles[i]
		sr.styles[style.StyleID] = style
	}

	// Default size is not reported: a run is "size-N" only when something
	// other than the document defaults set it.
	d := styles.DocDefaults.RPrDefault.RPr
	d.FontSize = valXML{}
	applyRunProps(&sr.defaults, d)

	return sr
}

// Styles returns the style resolver for the document, reading
// word/styles.xml on first use.
func (d *Document) Styles() (*StyleResolver, error) {
	if d.styles != nil {
		return d.styles, nil
	}
	var sx *stylesXML
	if d.pkg.Has(StylesPart) {
		sx = &stylesXML{}
		if err := d.pkg.decodePart(StylesPart, sx); err != nil {
			return nil, err
		}
	}
	d.styles = NewStyleResolver(sx)
	return d.styles, nil
}

// Resolve returns the formatting defined by styleID and its ancestors,
// layered on the document defaults. Unknown ids resolve to the defaults.
func (sr *StyleResolver) Resolve(styleID string) model.Style {
	if styleID == "" {
		return sr.defaults
	}
	if s, ok := sr.resolved[styleID]; ok {
		return s
	}

	s := sr.defaults
	for _, sid := range sr.buildInheritanceChain(styleID) {
		applyRunProps(&s, sr.styles[sid].RPr)
	}

	sr.resolved[styleID] = s
	return s
}

// buildInheritanceChain returns style IDs from base to derived.
func (sr *StyleResolver) buildInheritanceChain(styleID string) []string {
	var chain []string
	visited := make(map[string]bool)

	current := styleID
	for current != "" && !visited[current] {
		def, ok := sr.styles[current]
		if !ok {
			break
		}
		visited[current] = true
		chain = append([]string{current}, chain...) // Prepend
		current = def.BasedOn.Val
	}

	return chain
}

// ResolveRun returns the effective style of a run: paragraph style, then
// character style, then direct formatting.
func (sr *StyleResolver) ResolveRun(p *Paragraph, r *Run) model.Style {
	s := sr.Resolve(p.StyleID())
	if id := r.StyleID(); id != "" {
		for _, sid := range sr.buildInheritanceChain(id) {
			applyRunProps(&s, sr.styles[sid].RPr)
		}
	}
	direct := xmltree.Child(r.node, r.doc.Name("rPr"))
	if direct == nil {
		return s
	}
	for _, c := range direct.ChildElements() {
		v, hasVal := r.doc.value(c, "val")
		on := !hasVal || (v != "0" && v != "false" && v != "off")
		switch c.Tag {
		case "b":
			s.Bold = on
		case "i":
			s.Italic = on
		case "strike", "dstrike":
			s.Strike = on
		case "u":
			s.Underline = v != "none"
		case "sz":
			if size := parseHalfPoints(v); size > 0 {
				s.Size = size
			}
		}
	}
	return s
}

func applyRunProps(s *model.Style, rpr runPropsXML) {
	if rpr.Bold.present() {
		s.Bold = rpr.Bold.on()
	}
	if rpr.Italic.present() {
		s.Italic = rpr.Italic.on()
	}
	if rpr.Strike.present() {
		s.Strike = rpr.Strike.on()
	}
	if rpr.Underline.Val != "" {
		s.Underline = rpr.Underline.Val != "none"
	}
	if size := parseHalfPoints(rpr.FontSize.Val); size > 0 {
		s.Size = size
	}
}

// parseHalfPoints parses a size in half-points to points.
// Word uses half-points for font sizes (e.g., "24" = 12pt).
func parseHalfPoints(s string) float64 {
	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return val / 2
}
