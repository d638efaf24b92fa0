package adapter

import (
	"io"
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

// UUIDAdapter handles uuid.UUID. uuid.Nil is the empty value.
type UUIDAdapter struct {
	meta
}

// NewUUID returns the UUID adapter.
func NewUUID() *UUIDAdapter {
	return &UUIDAdapter{meta: meta{
		typ:     reflect.TypeFor[uuid.UUID](),
		storage: StorageGuid,
		sqlType: SQLUniqueIdentifier,
	}}
}

// IsEmpty reports whether v is uuid.Nil.
func (a *UUIDAdapter) IsEmpty(v uuid.UUID) bool { return v == uuid.Nil }

// Format renders v with the adapter's own layout.
func (a *UUIDAdapter) Format(v uuid.UUID, p *Provider) string {
	return a.FormatWith(v, a.layout, p)
}

// FormatWith renders the canonical 36 character form.
func (a *UUIDAdapter) FormatWith(v uuid.UUID, _ string, _ *Provider) string {
	return v.String()
}

// Parse reads text written by FormatWith. Empty text gives the zero value.
func (a *UUIDAdapter) Parse(s string, _ *Provider) (uuid.UUID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, conversionError(s, a.typ, err)
	}
	return id, nil
}

// MarshalSQL renders v as a SQL literal. Empty values of nullable columns are NULL.
func (a *UUIDAdapter) MarshalSQL(v uuid.UUID, nullable bool) string {
	return string(a.AppendSQL(nil, v, nullable))
}

// AppendSQL appends the literal MarshalSQL would return to dst.
func (a *UUIDAdapter) AppendSQL(dst []byte, v uuid.UUID, nullable bool) []byte {
	if nullable && a.IsEmpty(v) {
		return append(dst, sqlNull...)
	}
	return appendQuoted(dst, v.String())
}

// WriteBinary writes the 16 raw bytes.
func (a *UUIDAdapter) WriteBinary(w io.Writer, v uuid.UUID) error {
	if _, err := w.Write(v[:]); err != nil {
		return errors.Wrap(err, "write uuid")
	}
	return nil
}

// ReadBinary reads a value written by WriteBinary.
func (a *UUIDAdapter) ReadBinary(r io.Reader) (uuid.UUID, error) {
	var id uuid.UUID
	if _, err := io.ReadFull(r, id[:]); err != nil {
		return uuid.Nil, errors.Wrap(err, "read uuid")
	}
	return id, nil
}
