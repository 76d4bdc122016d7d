package docx

import (
	"strconv"
	"strings"
)

// ListType represents the type of list.
type ListType int

const (
	ListTypeUnordered ListType = iota // Bullet list
	ListTypeOrdered                   // Numbered list
)

// String returns "bullet" or "ordered".
func (t ListType) String() string {
	if t == ListTypeOrdered {
		return "ordered"
	}
	return "bullet"
}

// ListLevel describes the numbering format of one level of a list.
type ListLevel struct {
	Type    ListType
	Bullet  string // bullet character; empty for ordered lists
	StartAt int
}

// NumberingResolver resolves numbering definitions from numbering.xml.
type NumberingResolver struct {
	abstractNums map[string]*abstractNumXML // abstractNumId -> definition
	numMappings  map[string]string          // numId -> abstractNumId
	numOrder     []string                   // numIds in document order
}

// NewNumberingResolver creates a resolver from parsed numbering.xml.
func NewNumberingResolver(numbering *numberingXML) *NumberingResolver {
	nr := &NumberingResolver{
		abstractNums: make(map[string]*abstractNumXML),
		numMappings:  make(map[string]string),
	}

	if numbering == nil {
		return nr
	}

	for i := range numbering.AbstractNums {
		an := &numbering.AbstractNums[i]
		nr.abstractNums[an.AbstractNumID] = an
	}

	for _, num := range numbering.Nums {
		nr.numMappings[num.NumID] = num.AbstractNumID.Val
		nr.numOrder = append(nr.numOrder, num.NumID)
	}

	return nr
}

// Numbering returns the numbering resolver for the document, reading
// word/numbering.xml on first use.
func (d *Document) Numbering() (*NumberingResolver, error) {
	if d.lists != nil {
		return d.lists, nil
	}
	var nx *numberingXML
	if d.pkg.Has(NumberingPart) {
		nx = &numberingXML{}
		if err := d.pkg.decodePart(NumberingPart, nx); err != nil {
			return nil, err
		}
	}
	d.lists = NewNumberingResolver(nx)
	return d.lists, nil
}

func (nr *NumberingResolver) level(numID string, level int) *lvlXML {
	abstractNum, ok := nr.abstractNums[nr.numMappings[numID]]
	if !ok {
		return nil
	}
	levelStr := strconv.Itoa(level)
	for i := range abstractNum.Levels {
		if abstractNum.Levels[i].ILvl == levelStr {
			return &abstractNum.Levels[i]
		}
	}
	return nil
}

// ResolveLevel returns the format info for a given numId and level.
// Unknown lists resolve to a bullet list starting at 1.
func (nr *NumberingResolver) ResolveLevel(numID string, level int) ListLevel {
	out := ListLevel{Type: ListTypeUnordered, Bullet: getBulletChar("", level), StartAt: 1}

	lvl := nr.level(numID, level)
	if lvl == nil {
		return out
	}

	switch lvl.NumFmt.Val {
	case "bullet", "", "none":
		out.Bullet = getBulletChar(lvl.LvlText.Val, level)
	default:
		// decimal, lowerLetter, upperLetter, lowerRoman, upperRoman, ...
		out.Type = ListTypeOrdered
		out.Bullet = ""
	}

	if s, err := strconv.Atoi(lvl.Start.Val); err == nil {
		out.StartAt = s
	}
	return out
}

// NumIDForLevel returns the first numbering instance whose definition has
// the given level, or "1" when numbering.xml defines none.
func (nr *NumberingResolver) NumIDForLevel(level int) string {
	for _, id := range nr.numOrder {
		if nr.level(id, level) != nil {
			return id
		}
	}
	return "1"
}

// ListInfo returns the list format of a list paragraph. ok is false for
// paragraphs without numbering.
func (nr *NumberingResolver) ListInfo(p *Paragraph) (ListLevel, bool) {
	numID, level, ok := p.numbering()
	if !ok || numID == "" || numID == "0" {
		return ListLevel{}, false
	}
	return nr.ResolveLevel(numID, level), true
}

// getBulletChar returns the appropriate bullet character for the level.
func getBulletChar(lvlText string, level int) string {
	// Common Word bullet characters (standard Unicode)
	bullets := []string{"•", "○", "■", "□", "▪", "▫", "►", "◦"}

	if lvlText != "" && !strings.Contains(lvlText, "%") && isRenderableBullet(lvlText) {
		return lvlText
	}

	if level >= 0 && level < len(bullets) {
		return bullets[level]
	}
	return "•"
}

// isRenderableBullet checks if a bullet character will render properly.
// Word often uses Symbol/Wingdings glyphs from the Private Use Area.
func isRenderableBullet(s string) bool {
	for _, r := range s {
		if r >= 0xE000 && r <= 0xF8FF {
			return false
		}
		if r < 0x20 {
			return false
		}
	}
	return len(s) > 0
}
