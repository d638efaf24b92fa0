// Package export reads table rows into runtime entity types and writes them
// as documents.
//
// An Entity is built from gathered table metadata alone: every column is
// resolved to an adapter, a struct type is assembled with reflect.StructOf,
// and an aspect mapping is built over it member by member. No generated code
// is needed to export a table.
package export

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/roach88/facet/internal/accessor"
	"github.com/roach88/facet/internal/adapter"
	"github.com/roach88/facet/internal/aspect"
	"github.com/roach88/facet/internal/codegen"
	"github.com/roach88/facet/internal/registry"
	"github.com/roach88/facet/internal/schema"
)

// Querier is the part of *sql.DB that Rows needs.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Entity is a runtime struct type for one table and its mapping.
type Entity struct {
	Table   schema.Table
	Type    reflect.Type
	Mapping *aspect.Mapping

	columns []schema.ResolvedColumn
}

// Build resolves t's columns through r (nil means registry.Default()) and
// assembles the entity type and mapping. NOT NULL columns become mandatory
// members.
func Build(t schema.Table, r *registry.Registry, opts ...aspect.Option) (*Entity, error) {
	cols, err := schema.Resolve(t, r)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, errors.Newf("table %s has no columns", t.Name)
	}

	fields := make([]reflect.StructField, len(cols))
	used := map[string]bool{}
	for i, c := range cols {
		name := codegen.Identifier(c.Column.Name)
		for n := 2; used[name]; n++ {
			name = codegen.Identifier(c.Column.Name) + strconv.Itoa(n)
		}
		used[name] = true
		fields[i] = reflect.StructField{
			Name: name,
			Type: c.GoType,
			Tag:  reflect.StructTag(fmt.Sprintf("db:%q", c.Column.Name)),
		}
	}
	typ := reflect.StructOf(fields)

	members := make([]aspect.Member, len(cols))
	for i, c := range cols {
		acc, err := accessor.Resolve(typ, fields[i].Name)
		if err != nil {
			return nil, err
		}
		members[i], err = aspect.BuildMember(c.Adapter, acc, c.Column.Name, !c.Column.Nullable)
		if err != nil {
			return nil, errors.Wrapf(err, "table %s", t.Name)
		}
	}
	m, err := aspect.NewMapping(typ, t.Name, members...)
	if err != nil {
		return nil, err
	}
	return &Entity{Table: t, Type: typ, Mapping: m.With(opts...), columns: cols}, nil
}

// New returns a pointer to a zero entity.
func (e *Entity) New() any {
	return reflect.New(e.Type).Interface()
}

// Rows selects every row of the table, ordered by primary key (or rowid
// when there is none), and returns them as entity pointers.
func (e *Entity) Rows(ctx context.Context, q Querier) ([]any, error) {
	names := make([]string, len(e.columns))
	for i, c := range e.columns {
		names[i] = quoteIdent(c.Column.Name)
	}
	var keys []string
	for _, c := range e.columns {
		if c.Column.PrimaryKey {
			keys = append(keys, quoteIdent(c.Column.Name))
		}
	}
	if len(keys) == 0 {
		keys = []string{"rowid"}
	}
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s",
		strings.Join(names, ", "), quoteIdent(e.Table.Name), strings.Join(keys, ", "))
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrapf(err, "query %s", e.Table.Name)
	}
	defer rows.Close()

	var out []any
	raw := make([]any, len(e.columns))
	dest := make([]any, len(e.columns))
	for i := range raw {
		dest[i] = &raw[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, errors.Wrapf(err, "scan %s", e.Table.Name)
		}
		ptr := reflect.New(e.Type)
		for i := range raw {
			if err := e.assign(ptr.Elem().Field(i), i, raw[i]); err != nil {
				return nil, err
			}
		}
		out = append(out, ptr.Interface())
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "query %s", e.Table.Name)
	}
	return out, nil
}

// assign stores a scanned driver value in field. Values the driver already
// returns in a matching numeric form are converted directly; everything
// else goes through the column adapter's invariant text parser.
func (e *Entity) assign(field reflect.Value, i int, raw any) error {
	if raw == nil {
		return nil
	}
	rv := reflect.ValueOf(raw)
	if rv.Type().AssignableTo(field.Type()) {
		field.Set(rv)
		return nil
	}
	c := e.columns[i]
	text := driverText(raw)
	if isNumeric(rv.Kind()) && isNumeric(field.Kind()) {
		if err := fits(rv, field.Type()); err != nil {
			return &aspect.ReadError{Member: c.Column.Name, Text: text, Err: err}
		}
		field.Set(rv.Convert(field.Type()))
		return nil
	}

	v, err := c.Adapter.ParseValue(text, adapter.Invariant)
	if err != nil {
		return &aspect.ReadError{Member: c.Column.Name, Text: text, Err: err}
	}
	field.Set(reflect.ValueOf(v).Convert(field.Type()))
	return nil
}

func driverText(raw any) string {
	switch v := raw.(type) {
	case []byte:
		return string(v)
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(v)
	}
}

// errNarrowing marks driver values that do not fit the column's Go type.
var errNarrowing = errors.New("value out of range")

// fits reports whether v converts to t without losing its value.
func fits(v reflect.Value, t reflect.Type) error {
	z := reflect.New(t).Elem()
	switch {
	case isFloat(v.Kind()):
		f := v.Float()
		if isFloat(t.Kind()) {
			if z.OverflowFloat(f) {
				return errors.Wrapf(errNarrowing, "%v overflows %s", f, t)
			}
			return nil
		}
		if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
			return errors.Wrapf(errNarrowing, "%v is not an integer", f)
		}
		if isSigned(t.Kind()) {
			if f < math.MinInt64 || f >= math.MaxInt64 || z.OverflowInt(int64(f)) {
				return errors.Wrapf(errNarrowing, "%v overflows %s", f, t)
			}
			return nil
		}
		if f < 0 || f >= math.MaxUint64 || z.OverflowUint(uint64(f)) {
			return errors.Wrapf(errNarrowing, "%v overflows %s", f, t)
		}
		return nil
	case isSigned(v.Kind()):
		n := v.Int()
		switch {
		case isSigned(t.Kind()):
			if z.OverflowInt(n) {
				return errors.Wrapf(errNarrowing, "%d overflows %s", n, t)
			}
		case isFloat(t.Kind()):
			if n > 1<<53 || n < -(1<<53) {
				return errors.Wrapf(errNarrowing, "%d is not exact as %s", n, t)
			}
		default:
			if n < 0 || z.OverflowUint(uint64(n)) {
				return errors.Wrapf(errNarrowing, "%d overflows %s", n, t)
			}
		}
		return nil
	default:
		n := v.Uint()
		switch {
		case isSigned(t.Kind()):
			if n > math.MaxInt64 || z.OverflowInt(int64(n)) {
				return errors.Wrapf(errNarrowing, "%d overflows %s", n, t)
			}
		case isFloat(t.Kind()):
			if n > 1<<53 {
				return errors.Wrapf(errNarrowing, "%d is not exact as %s", n, t)
			}
		default:
			if z.OverflowUint(n) {
				return errors.Wrapf(errNarrowing, "%d overflows %s", n, t)
			}
		}
		return nil
	}
}

func isSigned(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
