package adapter

import (
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Provider carries the culture rules used when rendering and parsing
// formatted text. A nil *Provider behaves like Invariant.
type Provider struct {
	tag        language.Tag
	decimal    string
	group      string
	dateLayout string
	loc        *time.Location
}

// Invariant is the locale-independent provider: '.' decimal separator,
// ',' group separator, RFC 3339 dates in UTC.
var Invariant = &Provider{
	tag:        language.Und,
	decimal:    ".",
	group:      ",",
	dateLayout: time.RFC3339Nano,
	loc:        time.UTC,
}

// ProviderOption customizes a Provider built by NewProvider.
type ProviderOption func(*Provider)

// WithDateLayout sets the default time layout used by time adapters that
// were built without a layout of their own.
func WithDateLayout(layout string) ProviderOption {
	return func(p *Provider) {
		if layout != "" {
			p.dateLayout = layout
		}
	}
}

// WithLocation sets the location dates are rendered in and parsed against.
func WithLocation(loc *time.Location) ProviderOption {
	return func(p *Provider) {
		if loc != nil {
			p.loc = loc
		}
	}
}

// WithSeparators overrides the detected decimal and group separators.
func WithSeparators(decimal, group string) ProviderOption {
	return func(p *Provider) {
		if decimal != "" && decimal != group {
			p.decimal = decimal
			p.group = group
		}
	}
}

// NewProvider builds a Provider for the given language. Number separators
// are detected once from the language's number formatting rules; languages
// whose rules cannot be detected fall back to the invariant separators.
func NewProvider(tag language.Tag, opts ...ProviderOption) *Provider {
	p := &Provider{
		tag:        tag,
		decimal:    Invariant.decimal,
		group:      Invariant.group,
		dateLayout: Invariant.dateLayout,
		loc:        Invariant.loc,
	}
	if decimal, group, ok := detectSeparators(tag); ok {
		p.decimal = decimal
		p.group = group
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Tag returns the language the provider was built for.
func (p *Provider) Tag() language.Tag { return resolve(p).tag }

// DecimalSeparator returns the decimal separator.
func (p *Provider) DecimalSeparator() string { return resolve(p).decimal }

// GroupSeparator returns the digit group separator. It may be empty for
// languages that do not group digits.
func (p *Provider) GroupSeparator() string { return resolve(p).group }

// DateLayout returns the default time layout.
func (p *Provider) DateLayout() string { return resolve(p).dateLayout }

// Location returns the location dates are rendered in.
func (p *Provider) Location() *time.Location { return resolve(p).loc }

func resolve(p *Provider) *Provider {
	if p == nil {
		return Invariant
	}
	return p
}

// detectSeparators renders a known number through the language's printer and
// reads the separators back out of it.
func detectSeparators(tag language.Tag) (decimal, group string, ok bool) {
	s := message.NewPrinter(tag).Sprintf("%.1f", 1234567.5)
	if !strings.HasPrefix(s, "1") || !strings.HasSuffix(s, "5") {
		return "", "", false
	}
	mid := s[1 : len(s)-1]
	i := strings.Index(mid, "234")
	j := strings.LastIndex(mid, "567")
	if i < 0 || j < i+3 {
		return "", "", false
	}
	group = mid[:i]
	if mid[i+3:j] != group {
		return "", "", false
	}
	decimal = mid[j+3:]
	if decimal == "" || decimal == group || strings.ContainsAny(decimal, "0123456789") {
		return "", "", false
	}
	return decimal, group, true
}

// groupDigits inserts the group separator every three digits of an
// unsigned digit string.
func groupDigits(digits, sep string) string {
	if sep == "" || len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head == 0 {
		head = 3
	}
	b.WriteString(digits[:head])
	for i := head; i < len(digits); i += 3 {
		b.WriteString(sep)
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// ungroupDigits removes group separators from an integer part when they sit
// exactly on three-digit boundaries. Anything else is returned unchanged so
// the subsequent numeric parse rejects it.
func ungroupDigits(s, sep string) string {
	if sep == "" || !strings.Contains(s, sep) {
		return s
	}
	sign := ""
	if s != "" && (s[0] == '-' || s[0] == '+') {
		sign, s = s[:1], s[1:]
	}
	parts := strings.Split(s, sep)
	if len(parts[0]) == 0 || len(parts[0]) > 3 {
		return sign + s
	}
	for _, part := range parts[1:] {
		if len(part) != 3 {
			return sign + s
		}
	}
	return sign + strings.Join(parts, "")
}

// normalizeNumber rewrites provider-formatted numeric text into the form
// understood by strconv.
func normalizeNumber(s string, p *Provider) string {
	p = resolve(p)
	intPart, rest := s, ""
	if i := strings.LastIndex(s, p.decimal); i >= 0 {
		intPart, rest = s[:i], "."+s[i+len(p.decimal):]
	} else if i := strings.IndexAny(s, "eE"); i >= 0 && !isSpecialFloat(s) {
		intPart, rest = s[:i], s[i:]
	}
	return ungroupDigits(intPart, p.group) + rest
}

func isSpecialFloat(s string) bool {
	switch strings.ToLower(strings.TrimLeft(s, "+-")) {
	case "inf", "infinity", "nan":
		return true
	}
	return false
}
