package codegen

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var initialisms = map[string]string{
	"api":  "API",
	"html": "HTML",
	"http": "HTTP",
	"id":   "ID",
	"ip":   "IP",
	"json": "JSON",
	"sql":  "SQL",
	"uri":  "URI",
	"url":  "URL",
	"uuid": "UUID",
	"xml":  "XML",
}

// Identifier turns a table or column name into an exported Go identifier.
// Words are split on anything that is not a letter or digit; existing
// capitals inside a word are kept.
func Identifier(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	// Casers are stateful, so each call gets its own.
	title := cases.Title(language.Und, cases.NoLower)

	var b strings.Builder
	for _, w := range words {
		if up, ok := initialisms[strings.ToLower(w)]; ok {
			b.WriteString(up)
			continue
		}
		b.WriteString(title.String(w))
	}
	id := b.String()
	if r, _ := utf8.DecodeRuneInString(id); !unicode.IsUpper(r) {
		id = "X" + id
	}
	return id
}
