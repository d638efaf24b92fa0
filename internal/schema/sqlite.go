package schema

import (
	"context"
	"database/sql"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteGatherer reads metadata from a SQLite database.
type SQLiteGatherer struct {
	db    *sql.DB
	owned bool
}

var _ Gatherer = (*SQLiteGatherer)(nil)

// Open opens the SQLite database at path for gathering. The file must
// exist; Open never creates one.
func Open(path string) (*SQLiteGatherer, error) {
	db, err := sql.Open("sqlite3", fileURI(path, "ro"))
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	// Verify connection works
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to apply pragmas")
	}

	return &SQLiteGatherer{db: db, owned: true}, nil
}

// fileURI builds a SQLite URI filename for path. Each path segment is
// percent-encoded so '?', '#' and '%' in names stay part of the path.
func fileURI(path, mode string) string {
	segments := strings.Split(filepath.ToSlash(path), "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return "file:" + strings.Join(segments, "/") + "?mode=" + mode
}

// New wraps an already open database. Close does not close db.
func New(db *sql.DB) *SQLiteGatherer {
	return &SQLiteGatherer{db: db}
}

// DB returns the underlying database for row queries.
func (g *SQLiteGatherer) DB() *sql.DB {
	return g.db
}

// Close closes the database if Open created it.
func (g *SQLiteGatherer) Close() error {
	if g.db == nil || !g.owned {
		return nil
	}
	return g.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA query_only = ON",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return errors.Wrapf(err, "failed to execute %q", pragma)
		}
	}

	return nil
}

// Tables lists user tables in binary name order. SQLite's internal
// tables are excluded.
func (g *SQLiteGatherer) Tables(ctx context.Context) ([]string, error) {
	rows, err := g.db.QueryContext(ctx, `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite\_%' ESCAPE '\'
		ORDER BY name COLLATE BINARY
	`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list tables")
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.Wrap(err, "failed to scan table name")
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to list tables")
	}
	return names, nil
}

// Columns reads PRAGMA table_info for table. Primary key columns are
// reported as not nullable even when SQLite does not flag them NOT NULL.
func (g *SQLiteGatherer) Columns(ctx context.Context, table string) ([]Column, error) {
	rows, err := g.db.QueryContext(ctx, `
		SELECT name, type, "notnull", pk FROM pragma_table_info(?)
		ORDER BY cid
	`, table)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read columns of %s", table)
	}
	defer rows.Close()

	var cols []Column
	for rows.Next() {
		var (
			c       Column
			notNull int
			pk      int
		)
		if err := rows.Scan(&c.Name, &c.SQLType, &notNull, &pk); err != nil {
			return nil, errors.Wrapf(err, "failed to scan column of %s", table)
		}
		c.PrimaryKey = pk > 0
		c.Nullable = notNull == 0 && !c.PrimaryKey
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to read columns of %s", table)
	}
	if len(cols) == 0 {
		return nil, errors.Wrapf(ErrTableNotFound, "%s", table)
	}
	return cols, nil
}

// Gather returns the named tables with their columns, or every table when
// names is empty.
func (g *SQLiteGatherer) Gather(ctx context.Context, names ...string) ([]Table, error) {
	if len(names) == 0 {
		var err error
		if names, err = g.Tables(ctx); err != nil {
			return nil, err
		}
	}
	tables := make([]Table, 0, len(names))
	for _, name := range names {
		cols, err := g.Columns(ctx, name)
		if err != nil {
			return nil, err
		}
		tables = append(tables, Table{Name: name, Columns: cols})
	}
	return tables, nil
}
