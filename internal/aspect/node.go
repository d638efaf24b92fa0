package aspect

// Node is the output-sink capability a document must provide. A Node is one
// element of a tree: it has named children, attributes, and a text payload.
type Node interface {
	// AppendChild creates a child element and returns it.
	AppendChild(name string) Node
	// Child returns the first child element with the given name.
	Child(name string) (Node, bool)

	// SetText sets the payload as escaped text.
	SetText(s string)
	// SetCharData sets the payload as character data that is carried
	// verbatim. Markup in s must never be interpreted or entity-encoded.
	SetCharData(s string)
	// Text returns the payload, whichever way it was stored.
	Text() string

	SetAttr(name, value string)
	Attr(name string) (string, bool)
}

// Encoding selects how a member's payload is placed in the document.
type Encoding int

const (
	// CharData writes a child element whose payload is unescaped character
	// data.
	CharData Encoding = iota
	// Element writes a child element with escaped text.
	Element
	// Attribute writes an attribute on the parent node.
	Attribute
)

var encodingNames = map[Encoding]string{
	CharData:  "cdata",
	Element:   "element",
	Attribute: "attr",
}

func (e Encoding) String() string {
	if s, ok := encodingNames[e]; ok {
		return s
	}
	return "unknown"
}

// ParseEncoding maps a tag option to an Encoding.
func ParseEncoding(s string) (Encoding, bool) {
	for e, name := range encodingNames {
		if name == s {
			return e, true
		}
	}
	return 0, false
}
