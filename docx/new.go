package docx

import "github.com/tsawler/redline/internal/xmltree"

const blankContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
	`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
	`<Default Extension="xml" ContentType="application/xml"/>` +
	`<Override PartName="/word/document.xml" ContentType="` + contentTypeMain + `"/>` +
	`</Types>`

const blankRootRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="` + nsRels + `">` +
	`<Relationship Id="rId1" Type="` + relTypeOfficeDoc + `" Target="word/document.xml"/>` +
	`</Relationships>`

// New returns an empty single-section document package.
func New() *Package {
	p := &Package{index: make(map[string]*part)}
	p.SetPart(ContentTypesPart, []byte(blankContentTypes))
	p.SetPart("_rels/.rels", []byte(blankRootRels))

	root := xmltree.NewElement("w:document",
		xmltree.Attr{Name: "xmlns:w", Value: nsW},
		xmltree.Attr{Name: "xmlns:r", Value: nsR},
	)
	body := xmltree.NewElement("w:body")
	body.AddChild(xmltree.NewElement("w:sectPr"))
	root.AddChild(body)
	p.SetXML(DocumentPart, xmltree.NewDocument(root))
	return p
}
