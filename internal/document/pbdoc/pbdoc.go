// Package pbdoc implements aspect.Node over protobuf Struct values.
//
// Elements are Struct values. Child elements are fields and attributes are
// fields prefixed with "@". A present but empty element is null and text is
// a string value. Documents render to JSON through protojson.
package pbdoc

import (
	"strconv"

	"github.com/cockroachdb/errors"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/roach88/facet/internal/aspect"
)

// AttrPrefix marks attribute fields.
const AttrPrefix = "@"

// Node is one element of a Struct document.
type Node struct {
	v *structpb.Value
}

var _ aspect.Node = (*Node)(nil)

// New returns an empty Struct document.
func New() *Node {
	return FromStruct(&structpb.Struct{})
}

// FromStruct wraps s. Writes through the node modify s.
func FromStruct(s *structpb.Struct) *Node {
	if s.Fields == nil {
		s.Fields = map[string]*structpb.Value{}
	}
	return &Node{v: structpb.NewStructValue(s)}
}

// UnmarshalJSON parses a JSON object into a document.
func UnmarshalJSON(data []byte) (*Node, error) {
	var s structpb.Struct
	if err := protojson.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrap(err, "parse struct json")
	}
	return FromStruct(&s), nil
}

// Struct returns the underlying Struct, or nil when the node has been
// turned into a scalar.
func (d *Node) Struct() *structpb.Struct {
	return d.v.GetStructValue()
}

// MarshalJSON renders the document as JSON.
func (d *Node) MarshalJSON() ([]byte, error) {
	return protojson.Marshal(d.v)
}

// AppendChild adds a null field called name, replacing any existing one.
func (d *Node) AppendChild(name string) aspect.Node {
	child := structpb.NewNullValue()
	d.fields()[name] = child
	return &Node{v: child}
}

// Child returns the field called name.
func (d *Node) Child(name string) (aspect.Node, bool) {
	s := d.v.GetStructValue()
	if s == nil {
		return nil, false
	}
	v, ok := s.Fields[name]
	if !ok {
		return nil, false
	}
	return &Node{v: v}, true
}

// SetText stores s as a string value.
func (d *Node) SetText(s string) {
	d.v.Kind = &structpb.Value_StringValue{StringValue: s}
}

// SetCharData is SetText: JSON strings carry any text verbatim.
func (d *Node) SetCharData(s string) {
	d.SetText(s)
}

// Text returns string values as is and renders numbers and booleans in
// their shortest form. Null and composite values read as "".
func (d *Node) Text() string {
	return text(d.v)
}

// SetAttr stores value under the @-prefixed field.
func (d *Node) SetAttr(name, value string) {
	d.fields()[AttrPrefix+name] = structpb.NewStringValue(value)
}

// Attr returns the @-prefixed field as text.
func (d *Node) Attr(name string) (string, bool) {
	s := d.v.GetStructValue()
	if s == nil {
		return "", false
	}
	v, ok := s.Fields[AttrPrefix+name]
	if !ok {
		return "", false
	}
	return text(v), true
}

// fields turns the node into a Struct if it is not one yet and returns its
// field map.
func (d *Node) fields() map[string]*structpb.Value {
	s := d.v.GetStructValue()
	if s == nil {
		s = &structpb.Struct{}
		d.v.Kind = &structpb.Value_StructValue{StructValue: s}
	}
	if s.Fields == nil {
		s.Fields = map[string]*structpb.Value{}
	}
	return s.Fields
}

func text(v *structpb.Value) string {
	switch k := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		return k.StringValue
	case *structpb.Value_NumberValue:
		return strconv.FormatFloat(k.NumberValue, 'g', -1, 64)
	case *structpb.Value_BoolValue:
		return strconv.FormatBool(k.BoolValue)
	default:
		return ""
	}
}
