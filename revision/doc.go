// Package revision applies edits to a DOCX document as tracked changes.
//
// A [Session] owns one document for the duration of a batch. Every edit is
// resolved against the document as it stands after the previous edit, then
// turned into w:del and w:ins envelopes attributed to the session author,
// optionally with a reviewer comment anchored to the produced revision.
//
// Resolution never mutates: an edit whose anchor cannot be resolved leaves
// the document byte-for-byte unchanged.
//
// Basic usage:
//
//	pkg, err := docx.Open("contract.docx")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	doc, err := pkg.Document()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	s := revision.NewSession(doc, revision.WithAuthor("Counsel"))
//	report := s.ApplyBatch(specs)
//	fmt.Println(report.Applied, "applied,", report.Failed, "failed")
package revision
