// Package docx provides lossless loading, editing and saving of DOCX
// (Office Open XML) documents.
package docx

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/tsawler/redline/internal/xmltree"
)

// Well-known part names.
const (
	ContentTypesPart = "[Content_Types].xml"
	DocumentPart     = "word/document.xml"
	CommentsPart     = "word/comments.xml"
	NumberingPart    = "word/numbering.xml"
	StylesPart       = "word/styles.xml"
)

// ErrPartNotFound is returned when a package part does not exist.
var ErrPartNotFound = errors.New("part not found")

// Package is an in-memory OOXML package. Parts that have been parsed with
// XML are serialized from their tree when the package is written; all other
// parts are written back untouched.
type Package struct {
	parts []*part
	index map[string]*part
	doc   *Document
}

type part struct {
	header zip.FileHeader
	data   []byte
	tree   *etree.Document
}

// Open opens a DOCX file and reads all of its parts into memory.
func Open(filename string) (*Package, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}
	return OpenBytes(data)
}

// OpenBytes reads a DOCX package from memory.
func OpenBytes(data []byte) (*Package, error) {
	return OpenReader(bytes.NewReader(data), int64(len(data)))
}

// OpenReader reads a DOCX package from r.
func OpenReader(r io.ReaderAt, size int64) (*Package, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("opening ZIP archive: %w", err)
	}

	p := &Package{index: make(map[string]*part)}
	for _, f := range zr.File {
		if strings.HasSuffix(f.Name, "/") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f.Name, err)
		}
		p.add(&part{header: f.FileHeader, data: data})
	}

	// Validate required files exist
	if err := p.validate(); err != nil {
		return nil, err
	}

	return p, nil
}

// validate checks that required DOCX files exist.
func (p *Package) validate() error {
	required := []string{
		ContentTypesPart,
		DocumentPart,
	}

	for _, name := range required {
		if !p.Has(name) {
			return fmt.Errorf("missing required file: %s", name)
		}
	}

	return nil
}

func (p *Package) add(pt *part) {
	p.parts = append(p.parts, pt)
	p.index[pt.header.Name] = pt
}

// Has reports whether the named part exists.
func (p *Package) Has(name string) bool {
	_, ok := p.index[name]
	return ok
}

// Names returns all part names in archive order.
func (p *Package) Names() []string {
	names := make([]string, len(p.parts))
	for i, pt := range p.parts {
		names[i] = pt.header.Name
	}
	return names
}

// Part returns the current bytes of the named part.
func (p *Package) Part(name string) ([]byte, error) {
	pt, ok := p.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPartNotFound, name)
	}
	return pt.bytes()
}

// SetPart replaces (or creates) a part with raw bytes.
func (p *Package) SetPart(name string, data []byte) {
	if pt, ok := p.index[name]; ok {
		pt.data = data
		pt.tree = nil
		return
	}
	p.add(&part{header: newHeader(name), data: data})
}

// XML returns the parsed tree of the named part. The tree is cached and
// any changes made to it are written when the package is saved.
func (p *Package) XML(name string) (*etree.Document, error) {
	pt, ok := p.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPartNotFound, name)
	}
	if pt.tree == nil {
		tree, err := xmltree.Parse(pt.data)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", name, err)
		}
		pt.tree = tree
	}
	return pt.tree, nil
}

// readXML returns the cached tree of the named part, or a fresh parse that
// is not cached so the part is still written back byte for byte.
func (p *Package) readXML(name string) (*etree.Document, error) {
	pt, ok := p.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPartNotFound, name)
	}
	if pt.tree != nil {
		return pt.tree, nil
	}
	return xmltree.Parse(pt.data)
}

// SetXML replaces (or creates) a part with an XML tree.
func (p *Package) SetXML(name string, tree *etree.Document) {
	if pt, ok := p.index[name]; ok {
		pt.tree = tree
		pt.data = nil
		return
	}
	p.add(&part{header: newHeader(name), tree: tree})
}

// Document returns the main document of the package. The same Document is
// returned on every call.
func (p *Package) Document() (*Document, error) {
	if p.doc != nil {
		return p.doc, nil
	}
	tree, err := p.XML(DocumentPart)
	if err != nil {
		return nil, err
	}
	doc, err := newDocument(p, tree)
	if err != nil {
		return nil, err
	}
	p.doc = doc
	return doc, nil
}

// Write serializes the package as a ZIP archive.
func (p *Package) Write(w io.Writer) error {
	zw := zip.NewWriter(w)
	for _, pt := range p.parts {
		data, err := pt.bytes()
		if err != nil {
			return err
		}
		hdr := zip.FileHeader{
			Name:     pt.header.Name,
			Method:   zip.Deflate,
			Modified: pt.header.Modified,
		}
		if pt.header.Method == zip.Store {
			hdr.Method = zip.Store
		}
		fw, err := zw.CreateHeader(&hdr)
		if err != nil {
			return fmt.Errorf("writing %s: %w", hdr.Name, err)
		}
		if _, err := fw.Write(data); err != nil {
			return fmt.Errorf("writing %s: %w", hdr.Name, err)
		}
	}
	return zw.Close()
}

// Bytes returns the serialized package.
func (p *Package) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := p.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save writes the package to filename.
func (p *Package) Save(filename string) error {
	data, err := p.Bytes()
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0o644)
}

func (pt *part) bytes() ([]byte, error) {
	if pt.tree != nil {
		data, err := xmltree.Marshal(pt.tree)
		if err != nil {
			return nil, fmt.Errorf("serializing %s: %w", pt.header.Name, err)
		}
		return data, nil
	}
	return pt.data, nil
}

func newHeader(name string) zip.FileHeader {
	return zip.FileHeader{Name: name, Method: zip.Deflate, Modified: time.Now().UTC()}
}

// ensureOverride registers a content type override for partName in
// [Content_Types].xml unless one exists.
func (p *Package) ensureOverride(partName, contentType string) error {
	tree, err := p.XML(ContentTypesPart)
	if err != nil {
		return err
	}
	types := tree.Root()
	want := "/" + strings.TrimPrefix(partName, "/")
	for _, o := range types.ChildElements() {
		if o.Tag != "Override" {
			continue
		}
		if v, _ := xmltree.Value(o, "PartName"); v == want {
			return nil
		}
	}
	types.AddChild(xmltree.NewElement(qualify(types.Space, "Override"),
		xmltree.Attr{Name: "PartName", Value: want},
		xmltree.Attr{Name: "ContentType", Value: contentType},
	))
	return nil
}

// relsPart returns the relationships part name for source,
// e.g. word/_rels/document.xml.rels for word/document.xml.
func relsPart(source string) string {
	dir, file := path.Split(source)
	return dir + "_rels/" + file + ".rels"
}

// ensureRelationship adds a relationship of relType from source to target
// unless one exists, and returns its id.
func (p *Package) ensureRelationship(source, relType, target string) (string, error) {
	name := relsPart(source)
	if !p.Has(name) {
		root := xmltree.NewElement("Relationships", xmltree.Attr{Name: "xmlns", Value: nsRels})
		p.SetXML(name, xmltree.NewDocument(root))
	}
	tree, err := p.XML(name)
	if err != nil {
		return "", err
	}
	rels := tree.Root()

	maxID := 0
	for _, r := range rels.ChildElements() {
		if r.Tag != "Relationship" {
			continue
		}
		t, _ := xmltree.Value(r, "Type")
		id, _ := xmltree.Value(r, "Id")
		if t == relType {
			return id, nil
		}
		if n, err := strconv.Atoi(strings.TrimPrefix(id, "rId")); err == nil && n > maxID {
			maxID = n
		}
	}

	id := "rId" + strconv.Itoa(maxID+1)
	rels.AddChild(xmltree.NewElement(qualify(rels.Space, "Relationship"),
		xmltree.Attr{Name: "Id", Value: id},
		xmltree.Attr{Name: "Type", Value: relType},
		xmltree.Attr{Name: "Target", Value: target},
	))
	return id, nil
}

func qualify(prefix, local string) string {
	if prefix == "" {
		return local
	}
	return prefix + ":" + local
}
