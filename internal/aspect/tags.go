package aspect

import (
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/roach88/facet/internal/accessor"
)

// TagName is the struct tag read by For.
const TagName = "aspect"

// fieldTag is a parsed `aspect:"name,mandatory,cdata|element|attr"` tag.
type fieldTag struct {
	name      string
	mandatory bool
	encoding  Encoding
	skip      bool
}

func parseTag(field reflect.StructField) (fieldTag, error) {
	tag := fieldTag{name: field.Name, encoding: CharData}
	raw, ok := field.Tag.Lookup(TagName)
	if !ok {
		return tag, nil
	}
	if raw == "-" {
		tag.skip = true
		return tag, nil
	}
	parts := strings.Split(raw, ",")
	if name := strings.TrimSpace(parts[0]); name != "" {
		tag.name = name
	}
	for _, opt := range parts[1:] {
		opt = strings.TrimSpace(opt)
		if opt == "mandatory" {
			tag.mandatory = true
			continue
		}
		enc, ok := ParseEncoding(opt)
		if !ok {
			return tag, errors.Wrapf(ErrInvalidTag, "field %s: unknown option %q", field.Name, opt)
		}
		tag.encoding = enc
	}
	return tag, nil
}

// For builds the mapping for T from its exported fields. Fields tagged
// `aspect:"-"` are skipped; untagged fields map to an optional character
// data element named after the field. Every field type must have an adapter
// in the registry, otherwise For fails.
func For[T any](opts ...Option) (*Mapping, error) {
	owner := reflect.TypeFor[T]()
	if owner.Kind() != reflect.Struct {
		return nil, errors.Newf("aspect: %s is not a struct type", owner)
	}
	cfg := defaults(owner, owner.Name()).With(opts...)

	var members []Member
	for _, field := range reflect.VisibleFields(owner) {
		if field.Anonymous || !field.IsExported() {
			continue
		}
		tag, err := parseTag(field)
		if err != nil {
			return nil, errors.Wrapf(err, "aspect: %s", owner)
		}
		if tag.skip {
			continue
		}
		a, err := cfg.registry.Lookup(field.Type)
		if err != nil {
			return nil, errors.Wrapf(err, "aspect: %s.%s", owner, field.Name)
		}
		acc, err := accessor.Resolve(owner, field.Name)
		if err != nil {
			return nil, err
		}
		mem, err := BuildMember(a, acc, tag.name, tag.mandatory, WithEncoding(tag.encoding))
		if err != nil {
			return nil, err
		}
		members = append(members, mem)
	}

	m, err := NewMapping(owner, cfg.name, members...)
	if err != nil {
		return nil, err
	}
	m.policy, m.logger, m.registry = cfg.policy, cfg.logger, cfg.registry
	return m, nil
}

// MustFor is For for package-level mapping variables; it panics on error.
func MustFor[T any](opts ...Option) *Mapping {
	m, err := For[T](opts...)
	if err != nil {
		panic(err)
	}
	return m
}
