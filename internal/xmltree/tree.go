package xmltree

import (
	"strings"

	"github.com/beevik/etree"
)

// Attr is a qualified attribute name and its value.
type Attr struct {
	Name  string
	Value string
}

// NewElement creates a detached element with the given qualified name and
// attributes in order.
func NewElement(name string, attrs ...Attr) *etree.Element {
	e := etree.NewElement(name)
	for _, a := range attrs {
		e.CreateAttr(a.Name, a.Value)
	}
	return e
}

// Is reports whether e is non-nil and has exactly the qualified name.
func Is(e *etree.Element, name string) bool {
	return e != nil && e.FullTag() == name
}

// Rename changes the qualified name of e.
func Rename(e *etree.Element, name string) {
	e.Space, e.Tag = split(name)
}

func split(name string) (space, local string) {
	if i := strings.IndexByte(name, ':'); i >= 0 {
		return name[:i], name[i+1:]
	}
	return "", name
}

// Child returns the first child element of e named name, or nil.
func Child(e *etree.Element, name string) *etree.Element {
	for _, c := range e.ChildElements() {
		if c.FullTag() == name {
			return c
		}
	}
	return nil
}

// Value returns the value of the attribute with the exact qualified name.
func Value(e *etree.Element, name string) (string, bool) {
	for _, a := range e.Attr {
		if a.FullKey() == name {
			return a.Value, true
		}
	}
	return "", false
}

// FindAll returns every descendant of e named name in document order.
func FindAll(e *etree.Element, name string) []*etree.Element {
	var out []*etree.Element
	Walk(e, func(n *etree.Element) {
		if n != e && n.FullTag() == name {
			out = append(out, n)
		}
	})
	return out
}

// Walk calls fn for e and every descendant element in document order.
func Walk(e *etree.Element, fn func(*etree.Element)) {
	fn(e)
	for _, c := range e.ChildElements() {
		Walk(c, fn)
	}
}

// LastElement returns the last child element of e, or nil.
func LastElement(e *etree.Element) *etree.Element {
	for i := len(e.Child) - 1; i >= 0; i-- {
		if c, ok := e.Child[i].(*etree.Element); ok {
			return c
		}
	}
	return nil
}

// InsertBefore inserts t as the sibling immediately before ref, moving it
// out of its current parent first. ref must be attached.
func InsertBefore(ref *etree.Element, t etree.Token) {
	ref.Parent().InsertChildAt(ref.Index(), t)
}

// InsertAfter inserts t as the sibling immediately after ref, moving it out
// of its current parent first. ref must be attached.
func InsertAfter(ref *etree.Element, t etree.Token) {
	ref.Parent().InsertChildAt(ref.Index()+1, t)
}

// Detach removes t from its parent. A detached token is left alone.
func Detach(t etree.Token) {
	if p := t.Parent(); p != nil {
		p.RemoveChild(t)
	}
}
