package schema

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/roach88/facet/internal/registry"
)

// ErrTableNotFound is returned when a requested table does not exist.
var ErrTableNotFound = errors.New("table not found")

// Column describes one column as the database declares it.
type Column struct {
	Name       string `json:"name" yaml:"name"`
	SQLType    string `json:"sql_type" yaml:"sql_type"`
	Nullable   bool   `json:"nullable" yaml:"nullable"`
	PrimaryKey bool   `json:"primary_key,omitempty" yaml:"primary_key,omitempty"`
}

// Table is a table and its columns in declared order.
type Table struct {
	Name    string   `json:"name" yaml:"name"`
	Columns []Column `json:"columns" yaml:"columns"`
}

// Gatherer reads table metadata from a database.
type Gatherer interface {
	// Tables lists user table names.
	Tables(ctx context.Context) ([]string, error)
	// Columns lists the columns of one table.
	Columns(ctx context.Context, table string) ([]Column, error)
	// Gather returns the named tables with their columns, or every table
	// when no names are given.
	Gather(ctx context.Context, names ...string) ([]Table, error)
}

// ResolvedColumn is a column together with its adapter resolution.
type ResolvedColumn struct {
	Column
	registry.Resolution
}

// Resolve maps every column of t to an adapter through r. A nil registry
// means registry.Default(). The first unsupported column type fails the
// whole table.
func Resolve(t Table, r *registry.Registry) ([]ResolvedColumn, error) {
	if r == nil {
		r = registry.Default()
	}
	out := make([]ResolvedColumn, 0, len(t.Columns))
	for _, c := range t.Columns {
		res, err := r.ResolveAdapter(c.SQLType, c.Nullable)
		if err != nil {
			return nil, errors.Wrapf(err, "table %s, column %s", t.Name, c.Name)
		}
		out = append(out, ResolvedColumn{Column: c, Resolution: res})
	}
	return out, nil
}
