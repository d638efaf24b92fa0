package cli

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/facet/internal/document/xmldoc"
)

const fixtureDDL = `
CREATE TABLE customers (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	balance DECIMAL(10,2)
);
CREATE TABLE order_lines (
	order_id BIGINT NOT NULL,
	qty SMALLINT
);
INSERT INTO customers VALUES (1, 'Ada', 1234.5), (2, 'Hello <b>World</b>', NULL);
`

// writeFixture creates a database and a settings file pointing at it, and
// returns the settings path.
func writeFixture(t *testing.T, ddl, extra string) string {
	t.Helper()
	dir := t.TempDir()

	db, err := sql.Open("sqlite3", filepath.Join(dir, "app.db"))
	require.NoError(t, err)
	_, err = db.Exec(ddl)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	path := filepath.Join(dir, "facet.yaml")
	body := "database: app.db\npackage: models\noutput_dir: models\n" + extra
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestTables_Text(t *testing.T) {
	settings := writeFixture(t, fixtureDDL, "")

	out, _, err := execute(t, "tables", "--settings", settings)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Found 2 table(s)")
	assert.Contains(t, out, "customers:")
	assert.Contains(t, out, "id INTEGER → int64 [Int64] (pk)")
	assert.Contains(t, out, "balance DECIMAL(10,2) → apd.Decimal [Decimal]")
	assert.Contains(t, out, "order_id BIGINT → int64 [Int64] (not null)")
}

func TestTables_JSON(t *testing.T) {
	settings := writeFixture(t, fixtureDDL, "tables: [order_lines]\n")

	out, _, err := execute(t, "--format", "json", "tables", "-s", settings)
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   []TableInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "order_lines", resp.Data[0].Name)
	assert.Equal(t, ColumnInfo{Name: "qty", SQLType: "SMALLINT", GoType: "int16", Storage: "Int16", Nullable: true}, resp.Data[0].Columns[1])
}

func TestTables_Errors(t *testing.T) {
	t.Run("missing settings", func(t *testing.T) {
		_, _, err := execute(t, "tables", "--settings", filepath.Join(t.TempDir(), "none.yaml"))
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.Contains(t, err.Error(), ErrCodeSettings)
	})

	t.Run("unknown table", func(t *testing.T) {
		settings := writeFixture(t, fixtureDDL, "tables: [nope]\n")
		out, _, err := execute(t, "tables", "-s", settings)
		require.Error(t, err)
		assert.Contains(t, out, "Error ["+ErrCodeNotFound+"]")
	})

	t.Run("unsupported column", func(t *testing.T) {
		settings := writeFixture(t, "CREATE TABLE files (data BLOB);", "")
		out, _, err := execute(t, "tables", "-s", settings)
		require.Error(t, err)
		assert.Contains(t, out, "Error ["+ErrCodeUnsupportedType+"]")
	})

	t.Run("missing database", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "facet.yaml")
		require.NoError(t, os.WriteFile(path, []byte("database: missing.db\n"), 0o644))
		_, _, err := execute(t, "tables", "-s", path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrCodeNotFound)
	})
}

func TestClasses(t *testing.T) {
	settings := writeFixture(t, fixtureDDL, "")

	out, stderr, err := execute(t, "-v", "classes", "--settings", settings)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Generated 2 file(s)")
	assert.Contains(t, stderr, "[customers]: 3 columns found")
	assert.Contains(t, stderr, "Creating OrderLines (using go)")

	src, err := os.ReadFile(filepath.Join(filepath.Dir(settings), "models", "customers.go"))
	require.NoError(t, err)
	assert.Contains(t, string(src), "package models")
	assert.Contains(t, string(src), "type Customers struct")
	assert.Contains(t, string(src), `aspect:"name,mandatory"`)
}

func TestClasses_OutputOverride(t *testing.T) {
	settings := writeFixture(t, fixtureDDL, "")
	dir := filepath.Join(t.TempDir(), "gen")

	out, _, err := execute(t, "--format", "json", "classes", "-s", settings, "-o", dir)
	require.NoError(t, err)

	var resp struct {
		Data ClassesResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, dir, resp.Data.Dir)
	assert.Equal(t, []string{"customers.go", "order_lines.go"}, resp.Data.Files)
	assert.FileExists(t, filepath.Join(dir, "order_lines.go"))
}

func TestExport_XMLToStdout(t *testing.T) {
	settings := writeFixture(t, fixtureDDL, "")

	out, _, err := execute(t, "export", "-s", settings, "--table", "customers")
	require.NoError(t, err)

	root, err := xmldoc.Parse(strings.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "Customers", root.Name)
	require.Len(t, root.Children, 2)

	name, ok := root.Children[1].Child("name")
	require.True(t, ok)
	assert.Equal(t, "Hello <b>World</b>", name.Text())
	_, ok = root.Children[1].Child("balance")
	assert.False(t, ok, "optional empty column is omitted")
}

func TestExport_LocaleToFile(t *testing.T) {
	settings := writeFixture(t, fixtureDDL, "")
	file := filepath.Join(t.TempDir(), "customers.yaml")

	out, _, err := execute(t, "export", "-s", settings, "-t", "customers", "--doc", "yaml", "--locale", "de", "-o", file)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Exported 2 row(s) from customers")

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "1234,5")
}

func TestExport_Errors(t *testing.T) {
	settings := writeFixture(t, fixtureDDL, "")

	tests := []struct {
		name string
		args []string
		code string
	}{
		{"no table", []string{"export", "-s", settings}, ErrCodeGeneric},
		{"bad doc", []string{"export", "-s", settings, "-t", "customers", "--doc", "csv"}, ErrCodeGeneric},
		{"bad locale", []string{"export", "-s", settings, "-t", "customers", "--locale", "!!"}, ErrCodeGeneric},
		{"unknown table", []string{"export", "-s", settings, "-t", "nope"}, ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, err.Error(), tt.code)
		})
	}
}
