package adapter

import (
	"strconv"
	"strings"
	"unicode"
)

// numberLayout is a parsed numeric format string: a verb letter followed by
// an optional precision, e.g. "N2", "D8", "F".
type numberLayout struct {
	verb      byte
	precision int
	hasPrec   bool
}

func parseNumberLayout(layout string) numberLayout {
	if layout == "" {
		return numberLayout{verb: 'G'}
	}
	nl := numberLayout{verb: byte(unicode.ToUpper(rune(layout[0])))}
	if len(layout) > 1 {
		if n, err := strconv.Atoi(layout[1:]); err == nil && n >= 0 && n <= 99 {
			nl.precision = n
			nl.hasPrec = true
		}
	}
	return nl
}

// formatIntegerText renders the decimal digits of an integer under layout.
// Supported verbs: G/D (plain, D pads to precision), N (grouped).
func formatIntegerText(s, layout string, p *Provider) string {
	p = resolve(p)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	nl := parseNumberLayout(layout)
	switch nl.verb {
	case 'D':
		if nl.hasPrec && len(s) < nl.precision {
			s = strings.Repeat("0", nl.precision-len(s)) + s
		}
	case 'N':
		s = groupDigits(s, p.group)
	}
	return sign + s
}

// localizeFloatText rewrites strconv float output to use the provider's
// separators, grouping the integer part when grouped is set.
func localizeFloatText(s string, grouped bool, p *Provider) string {
	p = resolve(p)
	sign := ""
	if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		sign, s = s[:1], s[1:]
	}
	intPart, rest := s, ""
	if i := strings.IndexAny(s, ".eE"); i >= 0 {
		intPart, rest = s[:i], s[i:]
	}
	if grouped {
		intPart = groupDigits(intPart, p.group)
	}
	if strings.HasPrefix(rest, ".") {
		rest = p.decimal + rest[1:]
	}
	return sign + intPart + rest
}
