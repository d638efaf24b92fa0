package adapter

import (
	"io"
	"reflect"
	"strings"

	"github.com/cockroachdb/apd/v3"
	"github.com/cockroachdb/errors"
)

// DecimalAdapter handles arbitrary-precision apd.Decimal values. Text keeps
// every stored digit ("1.50" stays "1.50"); layout "N" groups the integer
// part. Binary is the length-prefixed plain text form.
type DecimalAdapter struct {
	meta
}

// NewDecimal returns the decimal adapter.
func NewDecimal(layout string) *DecimalAdapter {
	return &DecimalAdapter{meta: meta{
		typ:     reflect.TypeFor[apd.Decimal](),
		storage: StorageDecimal,
		sqlType: SQLDecimal,
		layout:  layout,
	}}
}

// IsEmpty reports whether v is a finite zero.
func (a *DecimalAdapter) IsEmpty(v apd.Decimal) bool {
	return v.Form == apd.Finite && v.IsZero()
}

// Format renders v with the adapter's own layout.
func (a *DecimalAdapter) Format(v apd.Decimal, p *Provider) string {
	return a.FormatWith(v, a.layout, p)
}

// FormatWith renders v with layout under the rules of p.
func (a *DecimalAdapter) FormatWith(v apd.Decimal, layout string, p *Provider) string {
	grouped := parseNumberLayout(layout).verb == 'N'
	return localizeFloatText(v.Text('f'), grouped, p)
}

// Parse reads text written by FormatWith. Empty text gives the zero value.
func (a *DecimalAdapter) Parse(s string, p *Provider) (apd.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return apd.Decimal{}, nil
	}
	d, _, err := apd.NewFromString(normalizeNumber(s, p))
	if err != nil {
		return apd.Decimal{}, conversionError(s, a.typ, err)
	}
	return *d, nil
}

// MarshalSQL renders every stored digit with a '.' separator.
func (a *DecimalAdapter) MarshalSQL(v apd.Decimal, nullable bool) string {
	return string(a.AppendSQL(nil, v, nullable))
}

// AppendSQL appends the literal MarshalSQL would return to dst.
func (a *DecimalAdapter) AppendSQL(dst []byte, v apd.Decimal, nullable bool) []byte {
	if nullable && a.IsEmpty(v) {
		return append(dst, sqlNull...)
	}
	return append(dst, v.Text('f')...)
}

// WriteBinary writes the decimal text behind a length prefix.
func (a *DecimalAdapter) WriteBinary(w io.Writer, v apd.Decimal) error {
	if err := writeBytes(w, []byte(v.String())); err != nil {
		return errors.Wrap(err, "write decimal")
	}
	return nil
}

// ReadBinary reads a value written by WriteBinary.
func (a *DecimalAdapter) ReadBinary(r io.Reader) (apd.Decimal, error) {
	b, err := readBytes(r)
	if err != nil {
		return apd.Decimal{}, errors.Wrap(err, "read decimal")
	}
	d, _, err := apd.NewFromString(string(b))
	if err != nil {
		return apd.Decimal{}, errors.Wrap(err, "read decimal")
	}
	return *d, nil
}
