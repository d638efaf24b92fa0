package adapter

import (
	"io"
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
)

// StringAdapter handles string. Text is the string itself; SQL literals are
// single quoted with embedded quotes doubled; binary is a uvarint byte
// length followed by the UTF-8 bytes.
type StringAdapter struct {
	meta
}

// NewString returns the string adapter.
func NewString() *StringAdapter {
	return &StringAdapter{meta: meta{
		typ:     reflect.TypeFor[string](),
		storage: StorageString,
		sqlType: SQLNVarChar,
	}}
}

// IsEmpty reports whether v is the zero value.
func (a *StringAdapter) IsEmpty(v string) bool { return v == "" }

// Format renders v with the adapter's own layout.
func (a *StringAdapter) Format(v string, p *Provider) string {
	return a.FormatWith(v, a.layout, p)
}

// FormatWith returns v unchanged.
func (a *StringAdapter) FormatWith(v string, _ string, _ *Provider) string { return v }

// Parse returns s unchanged.
func (a *StringAdapter) Parse(s string, _ *Provider) (string, error) { return s, nil }

// MarshalSQL quotes v with doubled single quotes. An empty string in a nullable column is NULL.
func (a *StringAdapter) MarshalSQL(v string, nullable bool) string {
	return string(a.AppendSQL(nil, v, nullable))
}

// AppendSQL appends the literal MarshalSQL would return to dst.
func (a *StringAdapter) AppendSQL(dst []byte, v string, nullable bool) []byte {
	if nullable && a.IsEmpty(v) {
		return append(dst, sqlNull...)
	}
	return appendQuoted(dst, v)
}

// WriteBinary writes a uvarint length followed by the UTF-8 bytes.
func (a *StringAdapter) WriteBinary(w io.Writer, v string) error {
	if err := writeBytes(w, []byte(v)); err != nil {
		return errors.Wrap(err, "write string")
	}
	return nil
}

// ReadBinary reads a value written by WriteBinary.
func (a *StringAdapter) ReadBinary(r io.Reader) (string, error) {
	b, err := readBytes(r)
	if err != nil {
		return "", errors.Wrap(err, "read string")
	}
	return string(b), nil
}

func appendQuoted(dst []byte, s string) []byte {
	dst = append(dst, '\'')
	dst = append(dst, strings.ReplaceAll(s, "'", "''")...)
	return append(dst, '\'')
}
