package xmltree

import "github.com/beevik/etree"

// NewDocument returns an empty document with the write settings used for
// every part. When root is non-nil the document gets a standalone UTF-8
// declaration on its own line, as Word writes it, followed by root.
func NewDocument(root *etree.Element) *etree.Document {
	doc := etree.NewDocument()
	// Text escapes only &, < and >; attribute values also escape " and
	// whitespace control characters.
	doc.WriteSettings.CanonicalText = true
	doc.WriteSettings.CanonicalAttrVal = true
	if root != nil {
		doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
		doc.CreateText("\n")
		doc.SetRoot(root)
	}
	return doc
}

// Marshal serializes doc.
func Marshal(doc *etree.Document) ([]byte, error) {
	return doc.WriteToBytes()
}

// String serializes a copy of e without an XML declaration.
func String(e *etree.Element) string {
	doc := NewDocument(nil)
	doc.SetRoot(e.Copy())
	s, err := doc.WriteToString()
	if err != nil {
		return ""
	}
	return s
}
