package registry

import (
	"reflect"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/roach88/facet/internal/adapter"
)

// Resolution is the outcome of resolving one column type.
type Resolution struct {
	Adapter     adapter.Untyped
	GoType      reflect.Type
	StorageType adapter.StorageType
	SQLType     adapter.SQLType
	Nullable    bool
}

// columnTypes maps normalized column type names from SQL Server, SQLite and
// PostgreSQL to Go types.
var columnTypes = map[string]reflect.Type{
	"bit":               reflect.TypeFor[bool](),
	"bool":              reflect.TypeFor[bool](),
	"boolean":           reflect.TypeFor[bool](),
	"tinyint":           reflect.TypeFor[uint8](),
	"tinyint unsigned":  reflect.TypeFor[uint8](),
	"smallint":          reflect.TypeFor[int16](),
	"int2":              reflect.TypeFor[int16](),
	"smallint unsigned": reflect.TypeFor[uint16](),
	"int":               reflect.TypeFor[int32](),
	"int4":              reflect.TypeFor[int32](),
	"mediumint":         reflect.TypeFor[int32](),
	"int unsigned":      reflect.TypeFor[uint32](),
	"integer":           reflect.TypeFor[int64](),
	"bigint":            reflect.TypeFor[int64](),
	"int8":              reflect.TypeFor[int64](),
	"bigint unsigned":   reflect.TypeFor[uint64](),
	"serial":            reflect.TypeFor[int32](),
	"bigserial":         reflect.TypeFor[int64](),
	"real":              reflect.TypeFor[float32](),
	"float4":            reflect.TypeFor[float32](),
	"float":             reflect.TypeFor[float64](),
	"float8":            reflect.TypeFor[float64](),
	"double":            reflect.TypeFor[float64](),
	"double precision":  reflect.TypeFor[float64](),
	"decimal":           reflect.TypeFor[apd.Decimal](),
	"numeric":           reflect.TypeFor[apd.Decimal](),
	"money":             reflect.TypeFor[apd.Decimal](),
	"smallmoney":        reflect.TypeFor[apd.Decimal](),
	"char":              reflect.TypeFor[string](),
	"nchar":             reflect.TypeFor[string](),
	"varchar":           reflect.TypeFor[string](),
	"nvarchar":          reflect.TypeFor[string](),
	"character":         reflect.TypeFor[string](),
	"character varying": reflect.TypeFor[string](),
	"text":              reflect.TypeFor[string](),
	"ntext":             reflect.TypeFor[string](),
	"clob":              reflect.TypeFor[string](),
	"xml":               reflect.TypeFor[string](),
	"json":              reflect.TypeFor[string](),
	"date":              reflect.TypeFor[time.Time](),
	"datetime":          reflect.TypeFor[time.Time](),
	"datetime2":         reflect.TypeFor[time.Time](),
	"smalldatetime":     reflect.TypeFor[time.Time](),
	"datetimeoffset":    reflect.TypeFor[time.Time](),
	"timestamp":         reflect.TypeFor[time.Time](),
	"timestamptz":       reflect.TypeFor[time.Time](),
	"time":              reflect.TypeFor[time.Duration](),
	"interval":          reflect.TypeFor[time.Duration](),
	"uniqueidentifier":  reflect.TypeFor[uuid.UUID](),
	"uuid":              reflect.TypeFor[uuid.UUID](),
}

// ResolveAdapter maps an external column type name to the adapter used for
// it. Names are matched case-insensitively with size arguments removed
// ("NVARCHAR(50)" is "nvarchar"); names no table knows fall back to SQLite
// type affinity. Anything left is an ErrUnsupportedType configuration error.
func (r *Registry) ResolveAdapter(columnType string, nullable bool) (Resolution, error) {
	name := normalizeColumnType(columnType)
	t, ok := columnTypes[name]
	if !ok {
		t, ok = affinity(name)
	}
	if !ok {
		return Resolution{}, errors.Wrapf(ErrUnsupportedType, "column type %q", columnType)
	}
	a, err := r.Lookup(t)
	if err != nil {
		return Resolution{}, errors.Wrapf(err, "column type %q", columnType)
	}
	return Resolution{
		Adapter:     a,
		GoType:      a.Type(),
		StorageType: a.StorageType(),
		SQLType:     a.SQLType(),
		Nullable:    nullable,
	}, nil
}

// ResolveAdapter resolves a column type against the default registry.
func ResolveAdapter(columnType string, nullable bool) (Resolution, error) {
	return defaultRegistry.ResolveAdapter(columnType, nullable)
}

func normalizeColumnType(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if i := strings.IndexByte(s, '('); i >= 0 {
		rest := ""
		if j := strings.IndexByte(s[i:], ')'); j >= 0 {
			rest = s[i+j+1:]
		}
		s = s[:i] + rest
	}
	return strings.Join(strings.Fields(s), " ")
}

// affinity applies SQLite's column affinity rules to declared types no
// table entry matched.
func affinity(name string) (reflect.Type, bool) {
	switch {
	case name == "":
		return nil, false
	case strings.Contains(name, "int"):
		return reflect.TypeFor[int64](), true
	case strings.Contains(name, "char"), strings.Contains(name, "clob"), strings.Contains(name, "text"):
		return reflect.TypeFor[string](), true
	case strings.Contains(name, "real"), strings.Contains(name, "floa"), strings.Contains(name, "doub"):
		return reflect.TypeFor[float64](), true
	}
	return nil, false
}
