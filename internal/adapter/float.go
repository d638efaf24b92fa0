package adapter

import (
	"io"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/exp/constraints"
)

// FloatAdapter handles float32 and float64.
//
// Layouts: "" or "G" shortest representation that parses back to the same
// value, "F<n>" fixed point with n decimals (default 2), "N<n>" fixed point
// with grouped digits, "E<n>" scientific. Only the shortest form round-trips
// exactly; the others round to their precision.
type FloatAdapter[T constraints.Float] struct {
	meta
	bits int
}

// NewFloat returns an adapter for the floating point type T.
func NewFloat[T constraints.Float](layout string) *FloatAdapter[T] {
	typ := reflect.TypeFor[T]()
	a := &FloatAdapter[T]{meta: meta{typ: typ, layout: layout}}
	if typ.Kind() == reflect.Float32 {
		a.bits, a.storage, a.sqlType = 32, StorageSingle, SQLReal
	} else {
		a.bits, a.storage, a.sqlType = 64, StorageDouble, SQLFloat
	}
	return a
}

// IsEmpty reports whether v is the zero value.
func (a *FloatAdapter[T]) IsEmpty(v T) bool { return v == 0 }

func (a *FloatAdapter[T]) Format(v T, p *Provider) string {
	return a.FormatWith(v, a.layout, p)
}

// FormatWith renders v with layout under the rules of p.
func (a *FloatAdapter[T]) FormatWith(v T, layout string, p *Provider) string {
	nl := parseNumberLayout(layout)
	prec := 2
	if nl.hasPrec {
		prec = nl.precision
	}
	f := float64(v)
	switch nl.verb {
	case 'F':
		return localizeFloatText(strconv.FormatFloat(f, 'f', prec, a.bits), false, p)
	case 'N':
		return localizeFloatText(strconv.FormatFloat(f, 'f', prec, a.bits), true, p)
	case 'E':
		if !nl.hasPrec {
			prec = 6
		}
		return localizeFloatText(strconv.FormatFloat(f, 'e', prec, a.bits), false, p)
	default:
		return localizeFloatText(strconv.FormatFloat(f, 'g', -1, a.bits), false, p)
	}
}

// Parse reads text written by FormatWith. Empty text gives the zero value.
func (a *FloatAdapter[T]) Parse(s string, p *Provider) (T, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(normalizeNumber(s, p), a.bits)
	if err != nil {
		return 0, conversionError(s, a.typ, err)
	}
	return T(f), nil
}

// MarshalSQL renders v as a SQL literal. Empty values of nullable columns are NULL.
func (a *FloatAdapter[T]) MarshalSQL(v T, nullable bool) string {
	return string(a.AppendSQL(nil, v, nullable))
}

func (a *FloatAdapter[T]) AppendSQL(dst []byte, v T, nullable bool) []byte {
	if nullable && a.IsEmpty(v) {
		return append(dst, sqlNull...)
	}
	return strconv.AppendFloat(dst, float64(v), 'g', -1, a.bits)
}

// WriteBinary writes the IEEE 754 bits little-endian.
func (a *FloatAdapter[T]) WriteBinary(w io.Writer, v T) error {
	var u uint64
	if a.bits == 32 {
		u = uint64(math.Float32bits(float32(v)))
	} else {
		u = math.Float64bits(float64(v))
	}
	if err := writeUint(w, u, a.bits/8); err != nil {
		return errors.Wrapf(err, "write %s", a.typ)
	}
	return nil
}

// ReadBinary reads a value written by WriteBinary.
func (a *FloatAdapter[T]) ReadBinary(r io.Reader) (T, error) {
	u, err := readUint(r, a.bits/8)
	if err != nil {
		return 0, errors.Wrapf(err, "read %s", a.typ)
	}
	if a.bits == 32 {
		return T(math.Float32frombits(uint32(u))), nil
	}
	return T(math.Float64frombits(u)), nil
}
