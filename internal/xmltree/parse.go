package xmltree

import (
	"errors"
	"fmt"
	"io"
	"regexp"

	"github.com/beevik/etree"
	"golang.org/x/text/encoding/htmlindex"
)

// ErrMalformed is returned when the input is not well-formed XML.
var ErrMalformed = errors.New("malformed XML")

var encodingDecl = regexp.MustCompile(`encoding\s*=\s*["'][^"']*["']`)

// Parse reads an XML document. Qualified names are kept as written;
// namespace prefixes are not resolved. A part declared in another encoding
// is decoded and its declaration rewritten to UTF-8, the encoding it is
// written back in.
func Parse(data []byte) (*etree.Document, error) {
	doc := NewDocument(nil)
	doc.ReadSettings.CharsetReader = charsetReader
	doc.ReadSettings.PreserveCData = true
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("%w: no root element", ErrMalformed)
	}
	for _, tok := range doc.Child {
		if pi, ok := tok.(*etree.ProcInst); ok && pi.Target == "xml" {
			pi.Inst = encodingDecl.ReplaceAllString(pi.Inst, `encoding="UTF-8"`)
			break
		}
	}
	return doc, nil
}

// charsetReader decodes parts that declare a non-UTF-8 encoding.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", label, err)
	}
	return enc.NewDecoder().Reader(input), nil
}
