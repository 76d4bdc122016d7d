// Package format identifies document containers so that callers can
// reject anything that is not a Word document before editing it.
package format

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// ErrUnsupported is returned by RequireDOCX for non-DOCX input.
var ErrUnsupported = errors.New("unsupported document format")

// Format represents a document container format.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// PDF indicates a PDF document.
	PDF
	// DOCX indicates a Word document.
	DOCX
	// DOCM indicates a macro-enabled Word document. It edits like DOCX.
	DOCM
	// ODT indicates an OpenDocument text document.
	ODT
	// XLSX indicates an Excel workbook.
	XLSX
	// PPTX indicates a PowerPoint presentation.
	PPTX
)

var names = map[Format]struct{ name, ext, mime string }{
	PDF:  {"PDF", ".pdf", "application/pdf"},
	DOCX: {"DOCX", ".docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
	DOCM: {"DOCM", ".docm", "application/vnd.ms-word.document.macroEnabled.12"},
	ODT:  {"ODT", ".odt", "application/vnd.oasis.opendocument.text"},
	XLSX: {"XLSX", ".xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"},
	PPTX: {"PPTX", ".pptx", "application/vnd.openxmlformats-officedocument.presentationml.presentation"},
}

// String returns the string representation of the format.
func (f Format) String() string {
	if n, ok := names[f]; ok {
		return n.name
	}
	return "Unknown"
}

// Extension returns the usual file extension, including the dot.
func (f Format) Extension() string {
	return names[f].ext
}

// ContentType returns the MIME type, or application/octet-stream.
func (f Format) ContentType() string {
	if n, ok := names[f]; ok {
		return n.mime
	}
	return "application/octet-stream"
}

// IsWord reports whether f is a WordprocessingML package.
func (f Format) IsWord() bool {
	return f == DOCX || f == DOCM
}

// Detect determines the format from the filename extension.
func Detect(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	for f, n := range names {
		if n.ext == ext {
			return f
		}
	}
	return Unknown
}

// main document content types of the OOXML formats
var mainParts = map[string]Format{
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml":   DOCX,
	"application/vnd.ms-word.document.macroEnabled.main+xml":                             DOCM,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml":         XLSX,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml": PPTX,
}

// DetectFromReader inspects the content to determine the format. ZIP
// containers are told apart by their [Content_Types].xml, falling back to
// the top-level folder names.
func DetectFromReader(r io.ReaderAt, size int64) (Format, error) {
	magic := make([]byte, 4)
	n, err := r.ReadAt(magic, 0)
	if err != nil && err != io.EOF {
		return Unknown, err
	}
	magic = magic[:n]

	switch {
	case bytes.HasPrefix(magic, []byte("%PDF")):
		return PDF, nil
	case bytes.HasPrefix(magic, []byte("PK\x03\x04")):
		return detectZIP(r, size)
	}
	return Unknown, nil
}

// DetectBytes is DetectFromReader over a byte slice.
func DetectBytes(data []byte) (Format, error) {
	return DetectFromReader(bytes.NewReader(data), int64(len(data)))
}

// RequireDOCX returns the format of data when it is a Word package (DOCX
// or DOCM) and an error naming the detected format otherwise.
func RequireDOCX(data []byte) (Format, error) {
	f, err := DetectBytes(data)
	if err != nil {
		return Unknown, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	if !f.IsWord() {
		return f, fmt.Errorf("%w: expected DOCX, got %s", ErrUnsupported, f)
	}
	return f, nil
}

func detectZIP(r io.ReaderAt, size int64) (Format, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return Unknown, err
	}

	for _, f := range zr.File {
		switch f.Name {
		case "mimetype":
			if head, err := readHead(f, 256); err == nil &&
				strings.Contains(string(head), names[ODT].mime) {
				return ODT, nil
			}
		case "[Content_Types].xml":
			head, err := readHead(f, 1<<20)
			if err != nil {
				continue
			}
			for ct, format := range mainParts {
				if bytes.Contains(head, []byte(`"`+ct+`"`)) {
					return format, nil
				}
			}
		}
	}

	for _, f := range zr.File {
		switch {
		case strings.HasPrefix(f.Name, "word/"):
			return DOCX, nil
		case strings.HasPrefix(f.Name, "xl/"):
			return XLSX, nil
		case strings.HasPrefix(f.Name, "ppt/"):
			return PPTX, nil
		}
	}
	return Unknown, nil
}

func readHead(f *zip.File, limit int64) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(io.LimitReader(rc, limit))
}
