// Package registry resolves Go types and SQL column types to adapters.
//
// A Registry is built once and never mutated, so lookups need no locking.
// A miss is a configuration error marked with ErrUnsupportedType.
package registry

import (
	"reflect"
	"sort"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/roach88/facet/internal/adapter"
)

// ErrUnsupportedType marks lookups for types no adapter handles.
var ErrUnsupportedType = errors.New("unsupported type")

// Registry maps Go types to adapters.
type Registry struct {
	byType map[reflect.Type]adapter.Untyped
}

var defaultRegistry = New()

// Default returns the registry holding the built-in adapters.
func Default() *Registry {
	return defaultRegistry
}

// New builds a registry from the built-in adapters. Extra adapters replace
// built-ins for the same type.
func New(extra ...adapter.Untyped) *Registry {
	r := &Registry{byType: make(map[reflect.Type]adapter.Untyped)}
	for _, a := range builtins() {
		r.byType[a.Type()] = a
	}
	for _, a := range extra {
		r.byType[a.Type()] = a
	}
	return r
}

func builtins() []adapter.Untyped {
	return []adapter.Untyped{
		adapter.Erase[bool](adapter.NewBool()),
		adapter.Erase[int](adapter.NewInt[int]("")),
		adapter.Erase[int8](adapter.NewInt[int8]("")),
		adapter.Erase[int16](adapter.NewInt[int16]("")),
		adapter.Erase[int32](adapter.NewInt[int32]("")),
		adapter.Erase[int64](adapter.NewInt[int64]("")),
		adapter.Erase[uint](adapter.NewUint[uint]("")),
		adapter.Erase[uint8](adapter.NewUint[uint8]("")),
		adapter.Erase[uint16](adapter.NewUint[uint16]("")),
		adapter.Erase[uint32](adapter.NewUint[uint32]("")),
		adapter.Erase[uint64](adapter.NewUint[uint64]("")),
		adapter.Erase[float32](adapter.NewFloat[float32]("")),
		adapter.Erase[float64](adapter.NewFloat[float64]("")),
		adapter.Erase[string](adapter.NewString()),
		adapter.Erase[time.Time](adapter.NewTime("")),
		adapter.Erase[time.Duration](adapter.NewDuration()),
		adapter.Erase[apd.Decimal](adapter.NewDecimal("")),
		adapter.Erase[uuid.UUID](adapter.NewUUID()),
	}
}

// basicTypes maps primitive kinds to the canonical type registered for
// them, so named primitives (type Status int32) resolve to int32's adapter.
var basicTypes = map[reflect.Kind]reflect.Type{
	reflect.Bool:    reflect.TypeFor[bool](),
	reflect.Int:     reflect.TypeFor[int](),
	reflect.Int8:    reflect.TypeFor[int8](),
	reflect.Int16:   reflect.TypeFor[int16](),
	reflect.Int32:   reflect.TypeFor[int32](),
	reflect.Int64:   reflect.TypeFor[int64](),
	reflect.Uint:    reflect.TypeFor[uint](),
	reflect.Uint8:   reflect.TypeFor[uint8](),
	reflect.Uint16:  reflect.TypeFor[uint16](),
	reflect.Uint32:  reflect.TypeFor[uint32](),
	reflect.Uint64:  reflect.TypeFor[uint64](),
	reflect.Float32: reflect.TypeFor[float32](),
	reflect.Float64: reflect.TypeFor[float64](),
	reflect.String:  reflect.TypeFor[string](),
}

// Lookup returns the adapter for t. Exact matches win; otherwise a named
// primitive resolves to the adapter of its kind. The returned adapter's Type
// may therefore differ from t, but t is always convertible to it.
func (r *Registry) Lookup(t reflect.Type) (adapter.Untyped, error) {
	if t == nil {
		return nil, errors.Wrap(ErrUnsupportedType, "nil type")
	}
	if a, ok := r.byType[t]; ok {
		return a, nil
	}
	if base, ok := basicTypes[t.Kind()]; ok {
		if a, ok := r.byType[base]; ok {
			return a, nil
		}
	}
	return nil, errors.Wrapf(ErrUnsupportedType, "no adapter for %s", t)
}

// MustLookup is Lookup for initialization code; it panics on a miss.
func (r *Registry) MustLookup(t reflect.Type) adapter.Untyped {
	a, err := r.Lookup(t)
	if err != nil {
		panic(err)
	}
	return a
}

// Types lists the registered types ordered by name.
func (r *Registry) Types() []reflect.Type {
	types := lo.Keys(r.byType)
	sort.Slice(types, func(i, j int) bool {
		return types[i].String() < types[j].String()
	})
	return types
}

// Lookup resolves t against the default registry.
func Lookup(t reflect.Type) (adapter.Untyped, error) {
	return defaultRegistry.Lookup(t)
}
