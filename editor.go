package redline

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/tsawler/redline/docx"
	"github.com/tsawler/redline/edit"
	"github.com/tsawler/redline/format"
	"github.com/tsawler/redline/revision"
)

// Editor provides a fluent interface for applying edits to a DOCX file.
// Configuration methods return a new Editor that shares the loaded
// document, so settings can be varied between batches without reopening
// the file. Terminal operations modify the shared document; an Editor is
// not safe for concurrent use.
type Editor struct {
	// Source
	filename string
	data     []byte

	pkg *docx.Package

	options EditOptions

	// Accumulated error (fail-fast)
	err error
}

func (e *Editor) clone() *Editor {
	if err := e.ensurePackage(); err != nil {
		e.err = err
	}
	return &Editor{
		filename: e.filename,
		data:     e.data,
		pkg:      e.pkg,
		options:  e.options.clone(),
		err:      e.err,
	}
}

// ensurePackage loads the document if not already loaded.
func (e *Editor) ensurePackage() error {
	if e.err != nil {
		return e.err
	}
	if e.pkg != nil {
		return nil
	}

	data := e.data
	if data == nil {
		if e.filename == "" {
			return fmt.Errorf("no filename specified")
		}
		raw, err := os.ReadFile(e.filename)
		if err != nil {
			return fmt.Errorf("failed to open DOCX: %w", err)
		}
		data = raw
	}
	if _, err := format.RequireDOCX(data); err != nil {
		return err
	}
	pkg, err := docx.OpenBytes(data)
	if err != nil {
		return fmt.Errorf("failed to open DOCX: %w", err)
	}
	e.pkg = pkg
	e.data = nil
	return nil
}

func (e *Editor) document() (*docx.Document, error) {
	if err := e.ensurePackage(); err != nil {
		e.err = err
		return nil, err
	}
	return e.pkg.Document()
}

// ============================================================================
// Configuration Methods (return new Editor instance)
// ============================================================================

// Author sets the name recorded on revisions and comments. JSON batches
// carry their own author, which takes precedence.
//
// Example:
//
//	redline.Open("contract.docx").Author("Counsel")
func (e *Editor) Author(name string) *Editor {
	ne := e.clone()
	if name != "" {
		ne.options.author = name
	}
	return ne
}

// IncludeInsertions makes anchors match text inside existing tracked
// insertions, so that edits can build on earlier unaccepted revisions.
func (e *Editor) IncludeInsertions() *Editor {
	ne := e.clone()
	ne.options.mode = docx.WithInsertions
	return ne
}

// Mode sets the traversal mode directly.
func (e *Editor) Mode(mode docx.RevisionMode) *Editor {
	ne := e.clone()
	ne.options.mode = mode
	return ne
}

// StopOnFailure stops a batch at the first failed edit. Later edits are
// reported as skipped.
func (e *Editor) StopOnFailure() *Editor {
	ne := e.clone()
	ne.options.stopOnFailure = true
	return ne
}

// RelaxAnchors retries an edit whose anchor was not found up to n times,
// each time with a looser match that is mapped back to the exact
// document text.
//
// Example:
//
//	redline.Open("contract.docx").RelaxAnchors(2).ApplyJSON(batch)
func (e *Editor) RelaxAnchors(n int) *Editor {
	ne := e.clone()
	if n > 0 {
		ne.options.relaxAttempts = n
	}
	return ne
}

// Clock sets the time source for revision dates.
func (e *Editor) Clock(now func() time.Time) *Editor {
	ne := e.clone()
	ne.options.now = now
	return ne
}

// Logger sets the logger for edit progress.
func (e *Editor) Logger(l *slog.Logger) *Editor {
	ne := e.clone()
	ne.options.logger = l
	return ne
}

// ============================================================================
// Terminal Operations
// ============================================================================

// Apply applies specs in order as tracked changes. The error is non-nil
// only when the document cannot be loaded; per-edit failures are in the
// report.
func (e *Editor) Apply(specs ...edit.Spec) (*revision.Report, error) {
	doc, err := e.document()
	if err != nil {
		return nil, err
	}
	s := revision.NewSession(doc, e.options.session("")...)
	return s.ApplyBatch(specs), nil
}

// ApplyJSON decodes a batch in wire form and applies it. Items that fail
// to decode are reported as failed; an invalid envelope is an error.
//
// Example:
//
//	report, err := ed.ApplyJSON([]byte(`{"author":"Counsel","edits":[...]}`))
func (e *Editor) ApplyJSON(data []byte) (*revision.Report, error) {
	batch, err := edit.DecodeBatch(data)
	if err != nil {
		return nil, err
	}
	return e.ApplyBatch(batch)
}

// ApplyBatch applies an already decoded batch.
func (e *Editor) ApplyBatch(batch *edit.Batch) (*revision.Report, error) {
	doc, err := e.document()
	if err != nil {
		return nil, err
	}
	s := revision.NewSession(doc, e.options.session(batch.Author)...)
	return s.ApplyItems(batch.Items), nil
}

// NormalizeSpaces collapses repeated spaces in the document text and
// returns the number of text elements changed.
func (e *Editor) NormalizeSpaces() (int, error) {
	doc, err := e.document()
	if err != nil {
		return 0, err
	}
	return doc.NormalizeSpaces(), nil
}

// Text returns the flattened document text that anchors are matched
// against under the configured mode.
func (e *Editor) Text() (string, error) {
	doc, err := e.document()
	if err != nil {
		return "", err
	}
	return doc.Text(e.options.mode), nil
}

// Chunks exports size paragraphs starting at cursor.
func (e *Editor) Chunks(cursor, size int) (*docx.ChunkPage, error) {
	doc, err := e.document()
	if err != nil {
		return nil, err
	}
	return doc.Chunks(cursor, size)
}

// Package returns the underlying package.
func (e *Editor) Package() (*docx.Package, error) {
	if err := e.ensurePackage(); err != nil {
		e.err = err
		return nil, err
	}
	return e.pkg, nil
}

// Bytes serializes the document with all applied edits.
func (e *Editor) Bytes() ([]byte, error) {
	pkg, err := e.Package()
	if err != nil {
		return nil, err
	}
	return pkg.Bytes()
}

// Save writes the document with all applied edits to filename.
func (e *Editor) Save(filename string) error {
	pkg, err := e.Package()
	if err != nil {
		return err
	}
	return pkg.Save(filename)
}
