package export

import (
	"bytes"
	"context"
	"database/sql"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/facet/internal/aspect"
	"github.com/roach88/facet/internal/document/pbdoc"
	"github.com/roach88/facet/internal/document/xmldoc"
	"github.com/roach88/facet/internal/document/yamldoc"
	"github.com/roach88/facet/internal/registry"
	"github.com/roach88/facet/internal/schema"
)

const fixture = `
CREATE TABLE customers (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	balance DECIMAL(10,2),
	active BIT,
	joined DATETIME,
	ref UNIQUEIDENTIFIER,
	notes TEXT
);
INSERT INTO customers VALUES
	(2, 'Bob', NULL, 0, NULL, NULL, NULL),
	(1, 'Ada', 12.5, 1, '2024-01-02 03:04:05', '6ba7b810-9dad-11d1-80b4-00c04fd430c8', 'Hello <b>World</b>');
`

func setup(t *testing.T) (*Entity, *sql.DB) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "export.db")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	_, err = db.Exec(fixture)
	require.NoError(t, err)

	tables, err := schema.New(db).Gather(context.Background(), "customers")
	require.NoError(t, err)
	e, err := Build(tables[0], nil)
	require.NoError(t, err)
	return e, db
}

func field(ent any, name string) any {
	return reflect.ValueOf(ent).Elem().FieldByName(name).Interface()
}

func TestBuild(t *testing.T) {
	e, _ := setup(t)

	var names []string
	for i := 0; i < e.Type.NumField(); i++ {
		names = append(names, e.Type.Field(i).Name)
	}
	assert.Equal(t, []string{"ID", "Name", "Balance", "Active", "Joined", "Ref", "Notes"}, names)
	assert.Equal(t, `"id"`, strings.TrimPrefix(string(e.Type.Field(0).Tag), "db:"))

	members := e.Mapping.Members()
	require.Len(t, members, 7)
	assert.True(t, members[0].Mandatory())
	assert.True(t, members[1].Mandatory())
	assert.False(t, members[2].Mandatory())
	assert.Equal(t, "customers", e.Mapping.Name())
}

func TestBuild_Errors(t *testing.T) {
	_, err := Build(schema.Table{Name: "b", Columns: []schema.Column{{Name: "x", SQLType: "BLOB"}}}, nil)
	assert.ErrorIs(t, err, registry.ErrUnsupportedType)

	_, err = Build(schema.Table{Name: "empty"}, nil)
	assert.Error(t, err)
}

func TestRows(t *testing.T) {
	e, db := setup(t)

	rows, err := e.Rows(context.Background(), db)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	ada, bob := rows[0], rows[1]
	assert.Equal(t, int64(1), field(ada, "ID"))
	assert.Equal(t, "Ada", field(ada, "Name"))
	bal := field(ada, "Balance").(apd.Decimal)
	assert.Equal(t, "12.5", bal.String())
	assert.Equal(t, true, field(ada, "Active"))
	assert.True(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC).Equal(field(ada, "Joined").(time.Time)))
	assert.Equal(t, uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"), field(ada, "Ref"))

	assert.Equal(t, int64(2), field(bob, "ID"))
	assert.Equal(t, false, field(bob, "Active"))
	assert.Equal(t, "", field(bob, "Notes"))
}

func TestWrite_XMLRoundTrip(t *testing.T) {
	e, db := setup(t)
	rows, err := e.Rows(context.Background(), db)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, e.Write(&buf, XML, rows, nil))
	assert.Contains(t, buf.String(), "<notes><![CDATA[Hello <b>World</b>]]></notes>")

	root, err := xmldoc.Parse(&buf)
	require.NoError(t, err)
	assert.Equal(t, "Customers", root.Name)
	require.Len(t, root.Children, 2)

	for i, child := range root.Children {
		got := e.New()
		require.NoError(t, e.Mapping.Read(got, child, nil))
		assert.Equal(t, field(rows[i], "Name"), field(got, "Name"))
		assert.Equal(t, field(rows[i], "Notes"), field(got, "Notes"))
		assert.Equal(t, field(rows[i], "Ref"), field(got, "Ref"))
	}
}

func TestWrite_YAML(t *testing.T) {
	e, db := setup(t)
	rows, err := e.Rows(context.Background(), db)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, e.Write(&buf, YAML, rows, nil))

	docs := strings.Split(buf.String(), "---\n")
	require.Len(t, docs, 2)
	doc, err := yamldoc.Parse([]byte(docs[1]))
	require.NoError(t, err)

	got := e.New()
	require.NoError(t, e.Mapping.Read(got, doc, nil))
	assert.Equal(t, int64(2), field(got, "ID"))
	assert.Equal(t, "Bob", field(got, "Name"))
}

func TestWrite_JSONLines(t *testing.T) {
	e, db := setup(t)
	rows, err := e.Rows(context.Background(), db)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, e.Write(&buf, JSON, rows, nil))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	doc, err := pbdoc.UnmarshalJSON([]byte(lines[0]))
	require.NoError(t, err)

	got := e.New()
	require.NoError(t, e.Mapping.Read(got, doc, nil))
	assert.Equal(t, "Ada", field(got, "Name"))
	bal := field(got, "Balance").(apd.Decimal)
	assert.Equal(t, "12.5", bal.String())
}

func TestWrite_UnknownFormat(t *testing.T) {
	e, _ := setup(t)
	assert.Error(t, e.Write(&bytes.Buffer{}, Format("csv"), nil, nil))
}

func TestParseFormat(t *testing.T) {
	for _, f := range Formats {
		got, err := ParseFormat(string(f))
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}
	_, err := ParseFormat("csv")
	assert.Error(t, err)
}

func TestBuild_ReadPolicyOption(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.db")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()
	_, err = db.Exec("CREATE TABLE t (n INT NOT NULL)")
	require.NoError(t, err)

	tables, err := schema.New(db).Gather(context.Background())
	require.NoError(t, err)
	e, err := Build(tables[0], registry.Default(), aspect.WithReadPolicy(aspect.SkipInvalid))
	require.NoError(t, err)
	assert.Equal(t, aspect.SkipInvalid, e.Mapping.Policy())
}

func entityFor(t *testing.T, ddl, table string) (*Entity, *sql.DB) {
	t.Helper()
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "t.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	_, err = db.Exec(ddl)
	require.NoError(t, err)

	tables, err := schema.New(db).Gather(context.Background(), table)
	require.NoError(t, err)
	e, err := Build(tables[0], nil)
	require.NoError(t, err)
	return e, db
}

func TestRows_RejectsNarrowing(t *testing.T) {
	tests := []struct {
		name   string
		insert string
		member string
	}{
		{"tinyint overflow", "INSERT INTO t VALUES (1, 300, 2, 1.5)", "small"},
		{"negative into unsigned", "INSERT INTO t VALUES (1, -1, 2, 1.5)", "small"},
		{"fraction into int", "INSERT INTO t VALUES (1, 3, 2.75, 1.5)", "qty"},
		{"int overflow", "INSERT INTO t VALUES (1, 3, 3000000000, 1.5)", "qty"},
		{"float32 overflow", "INSERT INTO t VALUES (1, 3, 2, 1e300)", "ratio"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, db := entityFor(t, "CREATE TABLE t (id INTEGER PRIMARY KEY, small TINYINT, qty INT, ratio FLOAT4);"+tt.insert, "t")

			_, err := e.Rows(context.Background(), db)
			var readErr *aspect.ReadError
			require.ErrorAs(t, err, &readErr)
			assert.Equal(t, tt.member, readErr.Member)
		})
	}
}

func TestRows_ConvertsFittingNumbers(t *testing.T) {
	e, db := entityFor(t, `CREATE TABLE t (id INTEGER PRIMARY KEY, small TINYINT, qty INT, ratio FLOAT4);
INSERT INTO t VALUES (1, 255, 4.0, 2), (2, 0, -2147483648, 0.5);`, "t")

	rows, err := e.Rows(context.Background(), db)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, uint8(255), field(rows[0], "Small"))
	assert.Equal(t, int32(4), field(rows[0], "Qty"))
	assert.Equal(t, float32(2), field(rows[0], "Ratio"))
	assert.Equal(t, int32(-2147483648), field(rows[1], "Qty"))
	assert.Equal(t, float32(0.5), field(rows[1], "Ratio"))
}

func TestRows_TimeColumn(t *testing.T) {
	e, db := entityFor(t, `CREATE TABLE shifts (id INTEGER PRIMARY KEY, starts TIME NOT NULL, ends TIME);
INSERT INTO shifts VALUES (1, '12:30:00', '17:45:30.25'), (2, '08:00', NULL);`, "shifts")

	rows, err := e.Rows(context.Background(), db)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 12*time.Hour+30*time.Minute, field(rows[0], "Starts"))
	assert.Equal(t, 17*time.Hour+45*time.Minute+30250*time.Millisecond, field(rows[0], "Ends"))
	assert.Equal(t, 8*time.Hour, field(rows[1], "Starts"))
	assert.Equal(t, time.Duration(0), field(rows[1], "Ends"))

	var buf bytes.Buffer
	require.NoError(t, e.Write(&buf, XML, rows, nil))
	assert.Contains(t, buf.String(), "<starts><![CDATA[12h30m0s]]></starts>")
}
