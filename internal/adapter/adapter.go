package adapter

import (
	"fmt"
	"io"
	"reflect"
)

// Adapter converts values of type T to and from formatted text, SQL
// literal text and binary.
type Adapter[T any] interface {
	// Type returns the Go type handled by the adapter.
	Type() reflect.Type
	StorageType() StorageType
	SQLType() SQLType
	// Layout returns the adapter's own format string, possibly empty.
	Layout() string

	// IsEmpty reports whether v is the type's empty sentinel. The zero
	// value of T is always empty.
	IsEmpty(v T) bool

	// Format renders v with the adapter's layout.
	Format(v T, p *Provider) string
	// FormatWith renders v with an explicit layout.
	FormatWith(v T, layout string, p *Provider) string
	// Parse inverts Format under the same provider. Empty text yields the
	// zero value; anything unparsable yields a *ConversionError.
	Parse(s string, p *Provider) (T, error)

	// MarshalSQL renders v as a SQL literal, or NULL when nullable and
	// empty. The output never depends on a Provider.
	MarshalSQL(v T, nullable bool) string
	// AppendSQL appends the same literal MarshalSQL returns to dst.
	AppendSQL(dst []byte, v T, nullable bool) []byte

	WriteBinary(w io.Writer, v T) error
	ReadBinary(r io.Reader) (T, error)
}

// Untyped is the type-erased view of an Adapter. Values passed in must be
// of the adapter's Type (nil is read as the zero value).
type Untyped interface {
	Type() reflect.Type
	StorageType() StorageType
	SQLType() SQLType
	Layout() string

	IsEmptyValue(v any) bool
	FormatValue(v any, p *Provider) string
	FormatValueWith(v any, layout string, p *Provider) string
	ParseValue(s string, p *Provider) (any, error)
	MarshalSQLValue(v any, nullable bool) string
	AppendSQLValue(dst []byte, v any, nullable bool) []byte
	WriteBinaryValue(w io.Writer, v any) error
	ReadBinaryValue(r io.Reader) (any, error)
}

// Erase wraps a typed adapter in its Untyped view.
func Erase[T any](a Adapter[T]) Untyped {
	return erased[T]{a: a}
}

// Unwrap returns the typed adapter behind an Untyped view.
func Unwrap[T any](u Untyped) (Adapter[T], bool) {
	e, ok := u.(erased[T])
	if !ok {
		return nil, false
	}
	return e.a, true
}

type erased[T any] struct {
	a Adapter[T]
}

func (e erased[T]) Type() reflect.Type       { return e.a.Type() }
func (e erased[T]) StorageType() StorageType { return e.a.StorageType() }
func (e erased[T]) SQLType() SQLType         { return e.a.SQLType() }
func (e erased[T]) Layout() string           { return e.a.Layout() }

func (e erased[T]) IsEmptyValue(v any) bool {
	return e.a.IsEmpty(e.value(v))
}

func (e erased[T]) FormatValue(v any, p *Provider) string {
	return e.a.Format(e.value(v), p)
}

func (e erased[T]) FormatValueWith(v any, layout string, p *Provider) string {
	return e.a.FormatWith(e.value(v), layout, p)
}

func (e erased[T]) ParseValue(s string, p *Provider) (any, error) {
	v, err := e.a.Parse(s, p)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (e erased[T]) MarshalSQLValue(v any, nullable bool) string {
	return e.a.MarshalSQL(e.value(v), nullable)
}

func (e erased[T]) AppendSQLValue(dst []byte, v any, nullable bool) []byte {
	return e.a.AppendSQL(dst, e.value(v), nullable)
}

func (e erased[T]) WriteBinaryValue(w io.Writer, v any) error {
	return e.a.WriteBinary(w, e.value(v))
}

func (e erased[T]) ReadBinaryValue(r io.Reader) (any, error) {
	v, err := e.a.ReadBinary(r)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (e erased[T]) value(v any) T {
	if v == nil {
		var zero T
		return zero
	}
	t, ok := v.(T)
	if !ok {
		panic(fmt.Sprintf("adapter: %s adapter given %T", e.a.Type(), v))
	}
	return t
}

// meta holds the descriptive attributes shared by every adapter.
type meta struct {
	typ     reflect.Type
	storage StorageType
	sqlType SQLType
	layout  string
}

func (m meta) Type() reflect.Type       { return m.typ }
func (m meta) StorageType() StorageType { return m.storage }
func (m meta) SQLType() SQLType         { return m.sqlType }
func (m meta) Layout() string           { return m.layout }

const sqlNull = "NULL"
