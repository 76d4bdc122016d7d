// Package redline applies anchored edits to Word documents as tracked
// changes, the way a reviewer would mark them up by hand.
//
// Basic usage:
//
//	ed := redline.Open("contract.docx").Author("Counsel")
//	report, err := ed.Apply(
//	    &edit.Replace{
//	        Surrounding: "within thirty (30) days",
//	        Find:        "thirty (30)",
//	        Runs:        []model.TextRun{{Text: "sixty (60)"}},
//	    },
//	)
//	if err != nil {
//	    // the document could not be opened
//	}
//	for _, f := range report.FailedItems {
//	    log.Println(f.Problem)
//	}
//	err = ed.Save("contract-redlined.docx")
//
// With options:
//
//	report, err := redline.Open("contract.docx").
//	    IncludeInsertions().
//	    RelaxAnchors(2).
//	    StopOnFailure().
//	    ApplyJSON(batch)
//
// For finer control, the docx, edit and revision packages are available.
package redline

import (
	"github.com/tsawler/redline/docx"
)

// Open returns an Editor for the DOCX file at filename. The file is read
// on the first operation that needs it.
//
// Example:
//
//	text, err := redline.Open("contract.docx").Text()
func Open(filename string) *Editor {
	return &Editor{
		filename: filename,
		options:  defaultOptions(),
	}
}

// FromBytes returns an Editor for an in-memory DOCX package.
//
// Example:
//
//	ed := redline.FromBytes(upload).Author("Counsel")
func FromBytes(data []byte) *Editor {
	return &Editor{
		data:    data,
		options: defaultOptions(),
	}
}

// FromPackage returns an Editor for an already opened package. Edits
// modify pkg in place.
func FromPackage(pkg *docx.Package) *Editor {
	return &Editor{
		pkg:     pkg,
		options: defaultOptions(),
	}
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	text := redline.Must(redline.Open("contract.docx").Text())
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
