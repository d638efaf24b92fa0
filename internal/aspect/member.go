package aspect

import (
	"io"
	"reflect"

	"github.com/cockroachdb/errors"

	"github.com/roach88/facet/internal/accessor"
	"github.com/roach88/facet/internal/adapter"
)

// Member maps one entity member to one node of a document.
type Member interface {
	Name() string
	Mandatory() bool
	Encoding() Encoding
	Adapter() adapter.Untyped
	Accessor() accessor.Accessor

	// Write adds the member's node to parent. entity must be addressable or
	// a pointer.
	Write(entity reflect.Value, parent Node, p *adapter.Provider)
	// Read assigns the member from parent's node, if present.
	Read(entity reflect.Value, parent Node, p *adapter.Provider) error

	WriteBinary(w io.Writer, entity reflect.Value) error
	ReadBinary(r io.Reader, entity reflect.Value) error
}

// MemberOption customizes a member built by BuildMember.
type MemberOption func(*memberConfig)

type memberConfig struct {
	encoding Encoding
}

// WithEncoding selects how the member's payload is placed. The default is
// CharData.
func WithEncoding(e Encoding) MemberOption {
	return func(c *memberConfig) {
		c.encoding = e
	}
}

// BuildMember assembles one mapping rule. The accessor's type must be the
// adapter's type or a named type with the same underlying kind, such as
// type Status int32 against the int32 adapter.
func BuildMember(a adapter.Untyped, acc accessor.Accessor, name string, mandatory bool, opts ...MemberOption) (Member, error) {
	if a == nil || acc == nil {
		return nil, errors.Newf("member %q: adapter and accessor are required", name)
	}
	if name == "" {
		return nil, errors.Newf("member for %s.%s: empty node name", acc.Owner(), acc.Name())
	}
	if !compatible(acc.Type(), a.Type()) {
		return nil, errors.Wrapf(ErrTypeMismatch, "member %q: %s.%s is %s, adapter handles %s",
			name, acc.Owner(), acc.Name(), acc.Type(), a.Type())
	}

	cfg := memberConfig{encoding: CharData}
	for _, opt := range opts {
		opt(&cfg)
	}

	b := base{
		name:      name,
		mandatory: mandatory,
		adapter:   a,
		accessor:  acc,
		convert:   acc.Type() != a.Type(),
	}
	switch cfg.encoding {
	case CharData:
		return &elementMember{base: b, charData: true}, nil
	case Element:
		return &elementMember{base: b}, nil
	case Attribute:
		return &attrMember{base: b}, nil
	default:
		return nil, errors.Newf("member %q: unknown encoding %d", name, cfg.encoding)
	}
}

func compatible(field, value reflect.Type) bool {
	if field == value {
		return true
	}
	return field.Kind() == value.Kind() &&
		field.ConvertibleTo(value) &&
		value.ConvertibleTo(field)
}

// base carries what every encoding shares: value access, emptiness, and the
// binary codec.
type base struct {
	name      string
	mandatory bool
	adapter   adapter.Untyped
	accessor  accessor.Accessor
	convert   bool
}

func (b *base) Name() string                { return b.name }
func (b *base) Mandatory() bool             { return b.mandatory }
func (b *base) Adapter() adapter.Untyped    { return b.adapter }
func (b *base) Accessor() accessor.Accessor { return b.accessor }

func (b *base) get(entity reflect.Value) any {
	v := b.accessor.Get(entity)
	if b.convert {
		v = v.Convert(b.adapter.Type())
	}
	return v.Interface()
}

func (b *base) set(entity reflect.Value, x any) {
	var v reflect.Value
	if x == nil {
		v = reflect.Zero(b.accessor.Type())
	} else {
		v = reflect.ValueOf(x)
		if b.convert {
			v = v.Convert(b.accessor.Type())
		}
	}
	b.accessor.Set(entity, v)
}

// payload returns the formatted value and whether a node should be written.
func (b *base) payload(entity reflect.Value, p *adapter.Provider) (string, bool) {
	v := b.get(entity)
	if b.adapter.IsEmptyValue(v) {
		return "", b.mandatory
	}
	return b.adapter.FormatValue(v, p), true
}

func (b *base) parse(entity reflect.Value, text string, p *adapter.Provider) error {
	v, err := b.adapter.ParseValue(text, p)
	if err != nil {
		return &ReadError{Member: b.name, Text: text, Err: err}
	}
	b.set(entity, v)
	return nil
}

func (b *base) WriteBinary(w io.Writer, entity reflect.Value) error {
	if err := b.adapter.WriteBinaryValue(w, b.get(entity)); err != nil {
		return errors.Wrapf(err, "write member %q", b.name)
	}
	return nil
}

func (b *base) ReadBinary(r io.Reader, entity reflect.Value) error {
	v, err := b.adapter.ReadBinaryValue(r)
	if err != nil {
		return errors.Wrapf(err, "read member %q", b.name)
	}
	b.set(entity, v)
	return nil
}

// elementMember writes a child element, as character data or escaped text.
type elementMember struct {
	base
	charData bool
}

func (m *elementMember) Encoding() Encoding {
	if m.charData {
		return CharData
	}
	return Element
}

func (m *elementMember) Write(entity reflect.Value, parent Node, p *adapter.Provider) {
	text, ok := m.payload(entity, p)
	if !ok {
		return
	}
	child := parent.AppendChild(m.name)
	if text == "" {
		return
	}
	if m.charData {
		child.SetCharData(text)
	} else {
		child.SetText(text)
	}
}

func (m *elementMember) Read(entity reflect.Value, parent Node, p *adapter.Provider) error {
	child, ok := parent.Child(m.name)
	if !ok {
		return nil
	}
	return m.parse(entity, child.Text(), p)
}

// attrMember writes an attribute on the parent node.
type attrMember struct {
	base
}

func (m *attrMember) Encoding() Encoding { return Attribute }

func (m *attrMember) Write(entity reflect.Value, parent Node, p *adapter.Provider) {
	if text, ok := m.payload(entity, p); ok {
		parent.SetAttr(m.name, text)
	}
}

func (m *attrMember) Read(entity reflect.Value, parent Node, p *adapter.Provider) error {
	text, ok := parent.Attr(m.name)
	if !ok {
		return nil
	}
	return m.parse(entity, text, p)
}
