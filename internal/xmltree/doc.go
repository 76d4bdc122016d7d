// Package xmltree reads and writes Office Open XML parts with etree and
// adds the exact-name lookups and sibling moves the docx code needs.
//
// etree keeps qualified names as written ("w:p", "xml:space"), attribute
// order, comments and processing instructions, so a part that is parsed
// and written back differs from the input only in entity escaping. Name
// matching here is exact: "w:t" never matches "t" or "x:t".
//
// Basic usage:
//
//	doc, err := xmltree.Parse(data)
//	if err != nil {
//	    // handle error
//	}
//	for _, p := range xmltree.FindAll(doc.Root(), "w:p") {
//	    // inspect or mutate p
//	}
//	out, err := xmltree.Marshal(doc)
package xmltree
