package docx

import (
	"encoding/xml"
	"errors"
	"fmt"
)

// word/styles.xml and word/numbering.xml are only read, never rewritten, so
// they are decoded into plain structs rather than kept as trees.

// stylesXML represents the structure of word/styles.xml
type stylesXML struct {
	XMLName     xml.Name       `xml:"styles"`
	DocDefaults docDefaultsXML `xml:"docDefaults"`
	Styles      []styleDefXML  `xml:"style"`
}

// docDefaultsXML represents document default styles.
type docDefaultsXML struct {
	RPrDefault struct {
		RPr runPropsXML `xml:"rPr"`
	} `xml:"rPrDefault"`
}

// styleDefXML represents a style definition.
type styleDefXML struct {
	Type    string            `xml:"type,attr"` // paragraph, character, table, numbering
	StyleID string            `xml:"styleId,attr"`
	Name    valXML            `xml:"name"`
	BasedOn valXML            `xml:"basedOn"`
	PPr     paragraphPropsXML `xml:"pPr"`
	RPr     runPropsXML       `xml:"rPr"`
}

// paragraphPropsXML represents the paragraph properties a style can carry.
type paragraphPropsXML struct {
	NumPr struct {
		ILvl  valXML `xml:"ilvl"`
		NumID valXML `xml:"numId"`
	} `xml:"numPr"`
}

// runPropsXML represents run properties.
type runPropsXML struct {
	Bold      boolXML `xml:"b"`
	Italic    boolXML `xml:"i"`
	Underline valXML  `xml:"u"`
	Strike    boolXML `xml:"strike"`
	FontSize  valXML  `xml:"sz"`
}

// boolXML represents an on/off property; XMLName is set only when present.
type boolXML struct {
	XMLName xml.Name
	Val     string `xml:"val,attr"`
}

func (b boolXML) present() bool { return b.XMLName.Local != "" }

func (b boolXML) on() bool {
	return b.Val != "false" && b.Val != "0" && b.Val != "off"
}

// valXML is any element whose only interesting content is w:val.
type valXML struct {
	Val string `xml:"val,attr"`
}

// numberingXML represents word/numbering.xml
type numberingXML struct {
	XMLName      xml.Name         `xml:"numbering"`
	AbstractNums []abstractNumXML `xml:"abstractNum"`
	Nums         []numXML         `xml:"num"`
}

// abstractNumXML represents an abstract numbering definition.
type abstractNumXML struct {
	AbstractNumID string   `xml:"abstractNumId,attr"`
	Levels        []lvlXML `xml:"lvl"`
}

// lvlXML represents a numbering level.
type lvlXML struct {
	ILvl    string `xml:"ilvl,attr"`
	Start   valXML `xml:"start"`
	NumFmt  valXML `xml:"numFmt"` // decimal, bullet, lowerLetter, ...
	LvlText valXML `xml:"lvlText"`
}

// numXML represents a numbering instance.
type numXML struct {
	NumID         string `xml:"numId,attr"`
	AbstractNumID valXML `xml:"abstractNumId"`
}

// decodePart unmarshals an optional part into v. A missing part leaves v
// untouched and is not an error.
func (p *Package) decodePart(name string, v any) error {
	data, err := p.Part(name)
	if errors.Is(err, ErrPartNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := xml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", name, err)
	}
	return nil
}
