package codegen

import (
	"bytes"
	"fmt"
	"go/format"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/template"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"

	"github.com/roach88/facet/internal/registry"
	"github.com/roach88/facet/internal/schema"
)

// File is one generated source file.
type File struct {
	Name   string
	Source []byte
}

// Generator renders tables as Go structs.
type Generator struct {
	// Package is the package clause of generated files.
	Package string
	// Registry resolves column types. Nil means registry.Default().
	Registry *registry.Registry
}

type field struct {
	Name   string
	GoType string
	Tag    string
}

type fileData struct {
	Package string
	Imports string
	Type    string
	Table   string
	Fields  []field
}

var fileTemplate = template.Must(template.New("file").Parse(`// Code generated by facet; DO NOT EDIT.

package {{.Package}}
{{.Imports}}
// {{.Type}} maps table {{printf "%q" .Table}}.
type {{.Type}} struct {
{{- range .Fields}}
	{{.Name}} {{.GoType}} {{.Tag}}
{{- end}}
}

// TableName returns the source table name.
func ({{.Type}}) TableName() string {
	return {{printf "%q" .Table}}
}
`))

// Generate renders one table.
func (g *Generator) Generate(t schema.Table) (File, error) {
	if !token.IsIdentifier(g.Package) || token.IsKeyword(g.Package) {
		return File{}, errors.Newf("invalid package name %q", g.Package)
	}
	if len(t.Columns) == 0 {
		return File{}, errors.Newf("table %s has no columns", t.Name)
	}
	cols, err := schema.Resolve(t, g.Registry)
	if err != nil {
		return File{}, err
	}

	data := fileData{
		Package: g.Package,
		Type:    Identifier(t.Name),
		Table:   t.Name,
	}
	used := map[string]int{}
	var pkgs []string
	for _, c := range cols {
		name := Identifier(c.Name)
		if n := used[name]; n > 0 {
			used[name] = n + 1
			name += strconv.Itoa(n + 1)
		} else {
			used[name] = 1
		}
		data.Fields = append(data.Fields, field{
			Name:   name,
			GoType: c.GoType.String(),
			Tag:    structTag(c),
		})
		if p := c.GoType.PkgPath(); p != "" {
			pkgs = append(pkgs, p)
		}
	}
	data.Imports = importBlock(lo.Uniq(pkgs))

	var buf bytes.Buffer
	if err := fileTemplate.Execute(&buf, data); err != nil {
		return File{}, errors.Wrapf(err, "render %s", t.Name)
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return File{}, errors.Wrapf(err, "format %s", t.Name)
	}
	return File{Name: FileName(t.Name), Source: src}, nil
}

// GenerateAll renders every table, failing on the first error.
func (g *Generator) GenerateAll(tables []schema.Table) ([]File, error) {
	files := make([]File, 0, len(tables))
	for _, t := range tables {
		f, err := g.Generate(t)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

// FileName returns the file name used for a table.
func FileName(table string) string {
	name := lo.SnakeCase(table)
	if name == "" {
		name = "table"
	}
	return name + ".go"
}

// WriteAll writes files into dir, creating it if needed. Two files with the
// same name are an error and nothing is written.
func WriteAll(dir string, files []File) error {
	if dups := lo.FindDuplicatesBy(files, func(f File) string { return f.Name }); len(dups) > 0 {
		return errors.Newf("duplicate output file %s", dups[0].Name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create %s", dir)
	}
	for _, f := range files {
		path := filepath.Join(dir, f.Name)
		if err := os.WriteFile(path, f.Source, 0o644); err != nil {
			return errors.Wrapf(err, "failed to write %s", path)
		}
	}
	return nil
}

func structTag(c schema.ResolvedColumn) string {
	aspect := c.Column.Name
	if !c.Column.Nullable {
		aspect += ",mandatory"
	}
	return "`db:" + strconv.Quote(c.Column.Name) + " aspect:" + strconv.Quote(aspect) + "`"
}

// importBlock renders an import declaration with standard library packages
// first, or nothing when pkgs is empty.
func importBlock(pkgs []string) string {
	if len(pkgs) == 0 {
		return ""
	}
	std, ext := lo.FilterReject(pkgs, func(p string, _ int) bool {
		return !strings.Contains(strings.Split(p, "/")[0], ".")
	})
	sort.Strings(std)
	sort.Strings(ext)

	var b strings.Builder
	b.WriteString("\nimport (\n")
	for _, p := range std {
		fmt.Fprintf(&b, "\t%q\n", p)
	}
	if len(std) > 0 && len(ext) > 0 {
		b.WriteString("\n")
	}
	for _, p := range ext {
		fmt.Fprintf(&b, "\t%q\n", p)
	}
	b.WriteString(")\n")
	return b.String()
}
