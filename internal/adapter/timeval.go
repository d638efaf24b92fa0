package adapter

import (
	"fmt"
	"io"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// sqlTimeLayout is the fixed datetime2 literal layout, always rendered in UTC.
const sqlTimeLayout = "2006-01-02 15:04:05.0000000"

// TimeAdapter handles time.Time. The layout is a Go reference-time layout;
// an empty layout defers to the provider's date layout. Binary uses the
// time package's own versioned encoding behind a length prefix.
type TimeAdapter struct {
	meta
}

// NewTime returns a time adapter with the given layout.
func NewTime(layout string) *TimeAdapter {
	return &TimeAdapter{meta: meta{
		typ:     reflect.TypeFor[time.Time](),
		storage: StorageDateTime,
		sqlType: SQLDateTime2,
		layout:  layout,
	}}
}

// IsEmpty reports whether v is the zero time.
func (a *TimeAdapter) IsEmpty(v time.Time) bool { return v.IsZero() }

// Format renders v with the adapter's own layout.
func (a *TimeAdapter) Format(v time.Time, p *Provider) string {
	return a.FormatWith(v, a.layout, p)
}

// FormatWith renders v in the provider's location. An empty layout uses the provider's date layout.
func (a *TimeAdapter) FormatWith(v time.Time, layout string, p *Provider) string {
	p = resolve(p)
	if layout == "" {
		layout = p.dateLayout
	}
	return v.In(p.loc).Format(layout)
}

// Parse tries the adapter layout, then the provider's layout, then RFC 3339.
func (a *TimeAdapter) Parse(s string, p *Provider) (time.Time, error) {
	p = resolve(p)
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	var firstErr error
	for _, layout := range []string{a.layout, p.dateLayout, time.RFC3339Nano} {
		if layout == "" {
			continue
		}
		t, err := time.ParseInLocation(layout, s, p.loc)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, conversionError(s, a.typ, firstErr)
}

// MarshalSQL renders v in UTC as a quoted datetime2 literal.
func (a *TimeAdapter) MarshalSQL(v time.Time, nullable bool) string {
	return string(a.AppendSQL(nil, v, nullable))
}

// AppendSQL appends the literal MarshalSQL would return to dst.
func (a *TimeAdapter) AppendSQL(dst []byte, v time.Time, nullable bool) []byte {
	if nullable && a.IsEmpty(v) {
		return append(dst, sqlNull...)
	}
	dst = append(dst, '\'')
	dst = v.UTC().AppendFormat(dst, sqlTimeLayout)
	return append(dst, '\'')
}

// WriteBinary writes the binary encoding of v.
func (a *TimeAdapter) WriteBinary(w io.Writer, v time.Time) error {
	b, err := v.MarshalBinary()
	if err != nil {
		return errors.Wrap(err, "write time")
	}
	if err := writeBytes(w, b); err != nil {
		return errors.Wrap(err, "write time")
	}
	return nil
}

// ReadBinary reads a value written by WriteBinary.
func (a *TimeAdapter) ReadBinary(r io.Reader) (time.Time, error) {
	b, err := readBytes(r)
	if err != nil {
		return time.Time{}, errors.Wrap(err, "read time")
	}
	var t time.Time
	if err := t.UnmarshalBinary(b); err != nil {
		return time.Time{}, errors.Wrap(err, "read time")
	}
	return t, nil
}

// DurationAdapter handles time.Duration. Text is written with
// Duration.String; Parse also accepts the clock form [-][d.]hh:mm[:ss[.f]]
// that TIME and interval columns hold. SQL literals use the clock form and
// binary carries the nanosecond count.
type DurationAdapter struct {
	*IntAdapter[time.Duration]
}

// NewDuration returns the duration adapter.
func NewDuration() *DurationAdapter {
	inner := NewInt[time.Duration]("")
	inner.storage = StorageDuration
	inner.sqlType = SQLTime
	return &DurationAdapter{IntAdapter: inner}
}

// Format renders v with Duration.String.
func (a *DurationAdapter) Format(v time.Duration, p *Provider) string {
	return a.FormatWith(v, a.layout, p)
}

// FormatWith ignores layout and p; durations have one text form.
func (a *DurationAdapter) FormatWith(v time.Duration, _ string, _ *Provider) string {
	return v.String()
}

// Parse reads Go duration syntax ("1h30m") or clock text ("01:30:00").
func (a *DurationAdapter) Parse(s string, _ *Provider) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if strings.Contains(s, ":") {
		d, err := parseClock(s)
		if err != nil {
			return 0, conversionError(s, a.typ, err)
		}
		return d, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, conversionError(s, a.typ, err)
	}
	return d, nil
}

// MarshalSQL renders v as a quoted clock literal such as '12:30:00.5'.
func (a *DurationAdapter) MarshalSQL(v time.Duration, nullable bool) string {
	return string(a.AppendSQL(nil, v, nullable))
}

// AppendSQL is the streaming form of MarshalSQL.
func (a *DurationAdapter) AppendSQL(dst []byte, v time.Duration, nullable bool) []byte {
	if nullable && a.IsEmpty(v) {
		return append(dst, sqlNull...)
	}
	return appendQuoted(dst, formatClock(v))
}

// maxClockHours is the largest hour count a time.Duration can hold.
const maxClockHours = int64(math.MaxInt64 / time.Hour)

// parseClock reads [-][d.]h+:mm[:ss[.fffffffff]].
func parseClock(s string) (time.Duration, error) {
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	var days int64
	if dot, colon := strings.IndexByte(s, '.'), strings.IndexByte(s, ':'); dot >= 0 && dot < colon {
		n, err := parseDigits(s[:dot], 0)
		if err != nil {
			return 0, err
		}
		days, s = n, s[dot+1:]
	}

	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, errors.Newf("malformed clock value %q", s)
	}
	var frac string
	if len(parts) == 3 {
		if i := strings.IndexByte(parts[2], '.'); i >= 0 {
			parts[2], frac = parts[2][:i], parts[2][i+1:]
			if frac == "" || len(frac) > 9 {
				return 0, errors.Newf("malformed fraction in %q", s)
			}
		}
	}

	hours, err := parseDigits(parts[0], 0)
	if err != nil {
		return 0, err
	}
	minutes, err := parseDigits(parts[1], 2)
	if err != nil {
		return 0, err
	}
	var seconds, nanos int64
	if len(parts) == 3 {
		if seconds, err = parseDigits(parts[2], 2); err != nil {
			return 0, err
		}
	}
	if frac != "" {
		if nanos, err = parseDigits(frac+strings.Repeat("0", 9-len(frac)), 9); err != nil {
			return 0, err
		}
	}
	if minutes > 59 || seconds > 59 {
		return 0, errors.Newf("minutes and seconds must be below 60 in %q", s)
	}
	if days > maxClockHours/24 || hours > maxClockHours-days*24 {
		return 0, errors.Newf("clock value %q overflows time.Duration", s)
	}

	d := time.Duration(days*24+hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second +
		time.Duration(nanos)
	if d < 0 {
		return 0, errors.Newf("clock value %q overflows time.Duration", s)
	}
	if neg {
		d = -d
	}
	return d, nil
}

// parseDigits parses an unsigned decimal. width > 0 requires exactly that
// many digits.
func parseDigits(s string, width int) (int64, error) {
	if s == "" || (width > 0 && len(s) != width) {
		return 0, errors.Newf("malformed number %q", s)
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, errors.Newf("malformed number %q", s)
		}
	}
	return strconv.ParseInt(s, 10, 64)
}

// formatClock renders v as [-]hh:mm:ss[.fffffffff] with trailing zeros of
// the fraction removed. Hours are not wrapped at 24.
func formatClock(v time.Duration) string {
	u := uint64(v)
	sign := ""
	if v < 0 {
		sign, u = "-", -u
	}
	h := u / uint64(time.Hour)
	u -= h * uint64(time.Hour)
	m := u / uint64(time.Minute)
	u -= m * uint64(time.Minute)
	sec := u / uint64(time.Second)
	ns := u - sec*uint64(time.Second)

	out := fmt.Sprintf("%s%02d:%02d:%02d", sign, h, m, sec)
	if ns > 0 {
		out += "." + strings.TrimRight(fmt.Sprintf("%09d", ns), "0")
	}
	return out
}
