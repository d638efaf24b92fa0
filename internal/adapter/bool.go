package adapter

import (
	"io"
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
)

// BoolAdapter handles bool. Text is "true"/"false"; parsing also accepts
// yes/no, on/off and 1/0 in any case. SQL renders bits as 1/0.
type BoolAdapter struct {
	meta
}

// NewBool returns the bool adapter.
func NewBool() *BoolAdapter {
	return &BoolAdapter{meta: meta{
		typ:     reflect.TypeFor[bool](),
		storage: StorageBoolean,
		sqlType: SQLBit,
	}}
}

// IsEmpty reports whether v is false.
func (a *BoolAdapter) IsEmpty(v bool) bool { return !v }

// Format renders v with the adapter's own layout.
func (a *BoolAdapter) Format(v bool, p *Provider) string {
	return a.FormatWith(v, a.layout, p)
}

// FormatWith ignores layout and p.
func (a *BoolAdapter) FormatWith(v bool, _ string, _ *Provider) string {
	if v {
		return "true"
	}
	return "false"
}

// Parse accepts true/false, yes/no, on/off and 1/0 in any case.
func (a *BoolAdapter) Parse(s string, _ *Provider) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return false, nil
	case "true", "yes", "on", "1":
		return true, nil
	case "false", "no", "off", "0":
		return false, nil
	}
	return false, conversionError(s, a.typ, ErrMalformed)
}

// MarshalSQL renders v as 1 or 0, or NULL for a nullable false.
func (a *BoolAdapter) MarshalSQL(v bool, nullable bool) string {
	return string(a.AppendSQL(nil, v, nullable))
}

// AppendSQL appends the literal MarshalSQL would return to dst.
func (a *BoolAdapter) AppendSQL(dst []byte, v bool, nullable bool) []byte {
	switch {
	case nullable && a.IsEmpty(v):
		return append(dst, sqlNull...)
	case v:
		return append(dst, '1')
	default:
		return append(dst, '0')
	}
}

// WriteBinary writes the binary encoding of v.
func (a *BoolAdapter) WriteBinary(w io.Writer, v bool) error {
	b := []byte{0}
	if v {
		b[0] = 1
	}
	if _, err := w.Write(b); err != nil {
		return errors.Wrap(err, "write bool")
	}
	return nil
}

// ReadBinary reads a value written by WriteBinary.
func (a *BoolAdapter) ReadBinary(r io.Reader) (bool, error) {
	u, err := readUint(r, 1)
	if err != nil {
		return false, errors.Wrap(err, "read bool")
	}
	return u != 0, nil
}
