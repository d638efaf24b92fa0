// Package yamldoc implements aspect.Node over gopkg.in/yaml.v3 nodes.
//
// Elements are mapping nodes. Child elements are plain keys and attributes
// are keys prefixed with "@". A present but empty element is a null scalar.
// Character data is written as a literal block when it spans lines.
package yamldoc

import (
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/roach88/facet/internal/aspect"
)

// AttrPrefix marks attribute keys.
const AttrPrefix = "@"

// Node is one element of a YAML document.
type Node struct {
	n *yaml.Node
}

var _ aspect.Node = (*Node)(nil)

// New returns an empty mapping.
func New() *Node {
	return &Node{n: &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}}
}

// Parse reads a YAML document whose top level is a mapping. An empty
// document yields an empty mapping.
func Parse(data []byte) (*Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "parse yaml")
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return New(), nil
	}
	top := doc.Content[0]
	if top.Kind != yaml.MappingNode {
		return nil, errors.Newf("parse yaml: top level is not a mapping (line %d)", top.Line)
	}
	return &Node{n: top}, nil
}

// Marshal renders the node as a YAML document.
func (d *Node) Marshal() ([]byte, error) {
	return yaml.Marshal(d.n)
}

// YAML returns the underlying yaml.v3 node.
func (d *Node) YAML() *yaml.Node {
	return d.n
}

// AppendChild adds name as a null entry. An existing entry of the same name
// is replaced, since mapping keys are unique.
func (d *Node) AppendChild(name string) aspect.Node {
	d.ensureMapping()
	child := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null"}
	d.put(name, child)
	return &Node{n: child}
}

// Child returns the value under key name.
func (d *Node) Child(name string) (aspect.Node, bool) {
	if v := d.get(name); v != nil {
		return &Node{n: v}, true
	}
	return nil, false
}

// SetText stores s as a plain string scalar.
func (d *Node) SetText(s string) {
	d.setScalar(s, 0)
}

// SetCharData stores s as a string scalar, in literal block style when it
// spans lines.
func (d *Node) SetCharData(s string) {
	var style yaml.Style
	switch {
	case s != "" && strings.TrimSpace(s) == "":
		// A block scalar holding only line breaks reads back empty.
		style = yaml.DoubleQuotedStyle
	case strings.Contains(s, "\n"):
		style = yaml.LiteralStyle
	}
	d.setScalar(s, style)
}

// Text returns the scalar value, or "" for nulls and collections.
func (d *Node) Text() string {
	if d.n.Kind != yaml.ScalarNode || d.n.ShortTag() == "!!null" {
		return ""
	}
	return d.n.Value
}

// SetAttr stores value under the @-prefixed key.
func (d *Node) SetAttr(name, value string) {
	d.ensureMapping()
	d.put(AttrPrefix+name, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value})
}

// Attr returns the value under the @-prefixed key.
func (d *Node) Attr(name string) (string, bool) {
	v := d.get(AttrPrefix + name)
	if v == nil || v.Kind != yaml.ScalarNode {
		return "", false
	}
	if v.ShortTag() == "!!null" {
		return "", true
	}
	return v.Value, true
}

func (d *Node) setScalar(s string, style yaml.Style) {
	*d.n = yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s, Style: style}
}

// ensureMapping turns a scalar element into a mapping before it gains
// children or attributes. Its text is dropped.
func (d *Node) ensureMapping() {
	if d.n.Kind != yaml.MappingNode {
		*d.n = yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	}
}

func (d *Node) get(key string) *yaml.Node {
	if d.n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(d.n.Content); i += 2 {
		if d.n.Content[i].Value == key {
			return d.n.Content[i+1]
		}
	}
	return nil
}

func (d *Node) put(key string, value *yaml.Node) {
	for i := 0; i+1 < len(d.n.Content); i += 2 {
		if d.n.Content[i].Value == key {
			d.n.Content[i+1] = value
			return
		}
	}
	d.n.Content = append(d.n.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		value,
	)
}
