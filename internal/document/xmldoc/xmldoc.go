// Package xmldoc is an XML element tree implementing aspect.Node.
//
// Character data set with SetCharData is written as CDATA sections, so
// markup in a payload is carried verbatim. Text set with SetText is escaped.
package xmldoc

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/cockroachdb/errors"

	"github.com/roach88/facet/internal/aspect"
)

// Attr is one attribute, kept in insertion order.
type Attr struct {
	Name  string
	Value string
}

// Element is one XML element.
type Element struct {
	Name     string
	Attrs    []Attr
	Children []*Element

	text  string
	cdata bool
}

var _ aspect.Node = (*Element)(nil)

// New returns an empty root element.
func New(name string) *Element {
	return &Element{Name: name}
}

// AppendChild adds a child element and returns it.
func (e *Element) AppendChild(name string) aspect.Node {
	c := New(name)
	e.Children = append(e.Children, c)
	return c
}

// Child returns the first child element called name.
func (e *Element) Child(name string) (aspect.Node, bool) {
	for _, c := range e.Children {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// SetText sets escaped text content.
func (e *Element) SetText(s string) {
	e.text, e.cdata = s, false
}

// SetCharData sets content written as CDATA.
func (e *Element) SetCharData(s string) {
	e.text, e.cdata = s, true
}

// Text returns the element's text content.
func (e *Element) Text() string {
	return e.text
}

// SetAttr sets or replaces an attribute.
func (e *Element) SetAttr(name, value string) {
	for i := range e.Attrs {
		if e.Attrs[i].Name == name {
			e.Attrs[i].Value = value
			return
		}
	}
	e.Attrs = append(e.Attrs, Attr{Name: name, Value: value})
}

// Attr returns the named attribute.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Encode writes the element tree to w with an XML declaration.
func (e *Element) Encode(w io.Writer) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(xml.Header)
	if err := e.encode(bw); err != nil {
		return err
	}
	bw.WriteByte('\n')
	return bw.Flush()
}

// String renders the element without an XML declaration.
func (e *Element) String() string {
	var b bytes.Buffer
	bw := bufio.NewWriter(&b)
	_ = e.encode(bw)
	_ = bw.Flush()
	return b.String()
}

func (e *Element) encode(w *bufio.Writer) error {
	if !isName(e.Name) {
		return errors.Newf("invalid element name %q", e.Name)
	}
	w.WriteByte('<')
	w.WriteString(e.Name)
	for _, a := range e.Attrs {
		if !isName(a.Name) {
			return errors.Newf("element %s: invalid attribute name %q", e.Name, a.Name)
		}
		if err := checkChars(a.Value); err != nil {
			return errors.Wrapf(err, "element %s: attribute %s", e.Name, a.Name)
		}
		w.WriteByte(' ')
		w.WriteString(a.Name)
		w.WriteString(`="`)
		if err := xml.EscapeText(w, []byte(a.Value)); err != nil {
			return err
		}
		w.WriteByte('"')
	}
	if e.text == "" && len(e.Children) == 0 {
		w.WriteString("/>")
		return nil
	}
	w.WriteByte('>')
	if err := checkChars(e.text); err != nil {
		return errors.Wrapf(err, "element %s", e.Name)
	}
	if e.cdata {
		writeCDATA(w, e.text)
	} else if err := xml.EscapeText(w, []byte(e.text)); err != nil {
		return err
	}
	for _, c := range e.Children {
		if err := c.encode(w); err != nil {
			return err
		}
	}
	w.WriteString("</")
	w.WriteString(e.Name)
	w.WriteByte('>')
	return nil
}

// writeCDATA writes s as CDATA sections. Parsers normalize a raw carriage
// return inside CDATA, so each one is written as a character reference
// between sections. A "]]>" inside s is split across two sections.
func writeCDATA(w *bufio.Writer, s string) {
	for i, part := range strings.Split(s, "\r") {
		if i > 0 {
			w.WriteString("&#13;")
		}
		writeSections(w, part)
	}
}

func writeSections(w *bufio.Writer, s string) {
	if s == "" {
		return
	}
	const end = "]]>"
	for {
		i := strings.Index(s, end)
		if i < 0 {
			break
		}
		w.WriteString("<![CDATA[")
		w.WriteString(s[:i+2])
		w.WriteString(end)
		s = s[i+2:]
	}
	w.WriteString("<![CDATA[")
	w.WriteString(s)
	w.WriteString(end)
}

// checkChars rejects text that cannot appear in an XML document: invalid
// UTF-8 and characters outside the XML Char production.
func checkChars(s string) error {
	for i, r := range s {
		if r == utf8.RuneError {
			if _, size := utf8.DecodeRuneInString(s[i:]); size == 1 {
				return errors.Newf("invalid UTF-8 at byte %d", i)
			}
		}
		if !isChar(r) {
			return errors.Newf("character %U at byte %d is not allowed in XML", r, i)
		}
	}
	return nil
}

func isChar(r rune) bool {
	return r == 0x09 || r == 0x0A || r == 0x0D ||
		(r >= 0x20 && r <= 0xD7FF) ||
		(r >= 0xE000 && r <= 0xFFFD) ||
		(r >= 0x10000 && r <= 0x10FFFF)
}

func isName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == ':' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r > 0x7f:
		case i > 0 && (r == '-' || r == '.' || (r >= '0' && r <= '9')):
		default:
			return false
		}
	}
	return true
}

// Parse reads one XML document and returns its root element. Namespace
// prefixes are kept as written. Whitespace between child elements is
// dropped; text of leaf elements is kept as is.
func Parse(r io.Reader) (*Element, error) {
	dec := xml.NewDecoder(r)
	var (
		root  *Element
		stack []*Element
		texts []*strings.Builder
	)
	for {
		tok, err := dec.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "parse xml")
		}
		switch t := tok.(type) {
		case xml.StartElement:
			el := New(qualified(t.Name))
			for _, a := range t.Attr {
				el.Attrs = append(el.Attrs, Attr{Name: qualified(a.Name), Value: a.Value})
			}
			if n := len(stack); n > 0 {
				stack[n-1].Children = append(stack[n-1].Children, el)
			} else if root != nil {
				return nil, errors.New("parse xml: multiple root elements")
			} else {
				root = el
			}
			stack = append(stack, el)
			texts = append(texts, &strings.Builder{})
		case xml.CharData:
			if n := len(texts); n > 0 {
				texts[n-1].Write(t)
			}
		case xml.EndElement:
			n := len(stack)
			if n == 0 || stack[n-1].Name != qualified(t.Name) {
				return nil, errors.Newf("parse xml: unexpected </%s>", qualified(t.Name))
			}
			el, text := stack[n-1], texts[n-1].String()
			if len(el.Children) == 0 || strings.TrimSpace(text) != "" {
				el.text = text
			}
			stack, texts = stack[:n-1], texts[:n-1]
		}
	}
	if len(stack) > 0 {
		return nil, errors.Newf("parse xml: unclosed <%s>", stack[len(stack)-1].Name)
	}
	if root == nil {
		return nil, errors.New("parse xml: no root element")
	}
	return root, nil
}

func qualified(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}
