package adapter

import (
	"io"
	"reflect"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/exp/constraints"
)

// IntAdapter handles signed integer types. int is encoded as 64 bits in
// binary regardless of platform.
//
// Layouts: "" or "G" plain digits, "D<n>" zero padded to n digits,
// "N" digits grouped by the provider's group separator.
type IntAdapter[T constraints.Signed] struct {
	meta
	bits int
}

// NewInt returns an adapter for the signed integer type T.
func NewInt[T constraints.Signed](layout string) *IntAdapter[T] {
	typ := reflect.TypeFor[T]()
	a := &IntAdapter[T]{meta: meta{typ: typ, layout: layout}}
	switch typ.Kind() {
	case reflect.Int8:
		a.bits, a.storage, a.sqlType = 8, StorageSByte, SQLSmallInt
	case reflect.Int16:
		a.bits, a.storage, a.sqlType = 16, StorageInt16, SQLSmallInt
	case reflect.Int32:
		a.bits, a.storage, a.sqlType = 32, StorageInt32, SQLInt
	default:
		a.bits, a.storage, a.sqlType = 64, StorageInt64, SQLBigInt
	}
	return a
}

// IsEmpty reports whether v is zero. Both SQL paths use this predicate.
func (a *IntAdapter[T]) IsEmpty(v T) bool { return v == 0 }

func (a *IntAdapter[T]) Format(v T, p *Provider) string {
	return a.FormatWith(v, a.layout, p)
}

// FormatWith renders v with layout under the rules of p.
func (a *IntAdapter[T]) FormatWith(v T, layout string, p *Provider) string {
	return formatIntegerText(strconv.FormatInt(int64(v), 10), layout, p)
}

// Parse reads text written by FormatWith. Empty text gives the zero value.
func (a *IntAdapter[T]) Parse(s string, p *Provider) (T, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(normalizeNumber(s, p), 10, a.bits)
	if err != nil {
		return 0, conversionError(s, a.typ, err)
	}
	return T(n), nil
}

func (a *IntAdapter[T]) MarshalSQL(v T, nullable bool) string {
	return string(a.AppendSQL(nil, v, nullable))
}

func (a *IntAdapter[T]) AppendSQL(dst []byte, v T, nullable bool) []byte {
	if nullable && a.IsEmpty(v) {
		return append(dst, sqlNull...)
	}
	return strconv.AppendInt(dst, int64(v), 10)
}

// WriteBinary writes v little-endian in the type's fixed width.
func (a *IntAdapter[T]) WriteBinary(w io.Writer, v T) error {
	if err := writeUint(w, uint64(int64(v)), a.bits/8); err != nil {
		return errors.Wrapf(err, "write %s", a.typ)
	}
	return nil
}

func (a *IntAdapter[T]) ReadBinary(r io.Reader) (T, error) {
	u, err := readUint(r, a.bits/8)
	if err != nil {
		return 0, errors.Wrapf(err, "read %s", a.typ)
	}
	shift := 64 - a.bits
	return T(int64(u<<shift) >> shift), nil
}

// UintAdapter handles unsigned integer types with the same layouts as
// IntAdapter. uint is encoded as 64 bits in binary.
type UintAdapter[T constraints.Unsigned] struct {
	meta
	bits int
}

// NewUint returns an adapter for the unsigned integer type T.
func NewUint[T constraints.Unsigned](layout string) *UintAdapter[T] {
	typ := reflect.TypeFor[T]()
	a := &UintAdapter[T]{meta: meta{typ: typ, layout: layout}}
	switch typ.Kind() {
	case reflect.Uint8:
		a.bits, a.storage, a.sqlType = 8, StorageByte, SQLTinyInt
	case reflect.Uint16:
		a.bits, a.storage, a.sqlType = 16, StorageUInt16, SQLInt
	case reflect.Uint32:
		a.bits, a.storage, a.sqlType = 32, StorageUInt32, SQLBigInt
	default:
		a.bits, a.storage, a.sqlType = 64, StorageUInt64, SQLDecimal
	}
	return a
}

// IsEmpty reports whether v is the zero value.
func (a *UintAdapter[T]) IsEmpty(v T) bool { return v == 0 }

func (a *UintAdapter[T]) Format(v T, p *Provider) string {
	return a.FormatWith(v, a.layout, p)
}

// FormatWith renders v with layout under the rules of p.
func (a *UintAdapter[T]) FormatWith(v T, layout string, p *Provider) string {
	return formatIntegerText(strconv.FormatUint(uint64(v), 10), layout, p)
}

// Parse reads text written by FormatWith. Empty text gives the zero value.
func (a *UintAdapter[T]) Parse(s string, p *Provider) (T, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(normalizeNumber(s, p), 10, a.bits)
	if err != nil {
		return 0, conversionError(s, a.typ, err)
	}
	return T(n), nil
}

func (a *UintAdapter[T]) MarshalSQL(v T, nullable bool) string {
	return string(a.AppendSQL(nil, v, nullable))
}

func (a *UintAdapter[T]) AppendSQL(dst []byte, v T, nullable bool) []byte {
	if nullable && a.IsEmpty(v) {
		return append(dst, sqlNull...)
	}
	return strconv.AppendUint(dst, uint64(v), 10)
}

// WriteBinary writes v little-endian in the type's fixed width.
func (a *UintAdapter[T]) WriteBinary(w io.Writer, v T) error {
	if err := writeUint(w, uint64(v), a.bits/8); err != nil {
		return errors.Wrapf(err, "write %s", a.typ)
	}
	return nil
}

func (a *UintAdapter[T]) ReadBinary(r io.Reader) (T, error) {
	u, err := readUint(r, a.bits/8)
	if err != nil {
		return 0, errors.Wrapf(err, "read %s", a.typ)
	}
	return T(u), nil
}
