package accessor

import (
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrMemberNotFound marks names that do not resolve to a readable and
// writable member.
var ErrMemberNotFound = errors.New("member not found")

// Accessor reads and writes one member of an entity. entity is the struct
// value (addressable) or a pointer to it.
type Accessor interface {
	// Name returns the member name the accessor was resolved from.
	Name() string
	// Owner returns the struct type the accessor was resolved against.
	Owner() reflect.Type
	// Type returns the member's type.
	Type() reflect.Type
	Get(entity reflect.Value) reflect.Value
	Set(entity reflect.Value, v reflect.Value)
}

// Resolve finds the member called name on owner, which must be a struct
// type or a pointer to one.
func Resolve(owner reflect.Type, name string) (Accessor, error) {
	if owner != nil && owner.Kind() == reflect.Pointer {
		owner = owner.Elem()
	}
	if owner == nil || owner.Kind() != reflect.Struct {
		return nil, errors.Wrapf(ErrMemberNotFound, "%q: %v is not a struct type", name, owner)
	}
	segments, err := parsePath(name)
	if err != nil {
		return nil, errors.Wrapf(ErrMemberNotFound, "%s: %v", owner, err)
	}

	if len(segments) == 1 {
		if f, ok := owner.FieldByName(name); ok {
			if !f.IsExported() {
				return nil, errors.Wrapf(ErrMemberNotFound, "%s.%s is unexported", owner, name)
			}
			return &fieldAccessor{name: name, owner: owner, typ: f.Type, index: f.Index}, nil
		}
		return resolveProperty(owner, name)
	}
	return resolvePath(owner, name, segments)
}

// For resolves name against T.
func For[T any](name string) (Accessor, error) {
	return Resolve(reflect.TypeFor[T](), name)
}

// MustResolve is Resolve for package initialization; it panics on failure.
func MustResolve(owner reflect.Type, name string) Accessor {
	a, err := Resolve(owner, name)
	if err != nil {
		panic(err)
	}
	return a
}

func resolvePath(owner reflect.Type, name string, segments []string) (Accessor, error) {
	var index []int
	cur := owner
	var typ reflect.Type
	for i, seg := range segments {
		if cur.Kind() == reflect.Pointer {
			cur = cur.Elem()
		}
		if cur.Kind() != reflect.Struct {
			return nil, errors.Wrapf(ErrMemberNotFound, "%s.%s: %s is not a struct",
				owner, name, strings.Join(segments[:i], "."))
		}
		f, ok := cur.FieldByName(seg)
		if !ok || !f.IsExported() {
			return nil, errors.Wrapf(ErrMemberNotFound, "%s.%s: no exported field %q on %s",
				owner, name, seg, cur)
		}
		index = append(index, f.Index...)
		typ = f.Type
		cur = f.Type
	}
	return &fieldAccessor{name: name, owner: owner, typ: typ, index: index}, nil
}

func resolveProperty(owner reflect.Type, name string) (Accessor, error) {
	ptr := reflect.PointerTo(owner)
	getter, ok := ptr.MethodByName(name)
	if !ok || getter.Type.NumIn() != 1 || getter.Type.NumOut() != 1 {
		return nil, errors.Wrapf(ErrMemberNotFound, "%s has no field or getter %q", owner, name)
	}
	typ := getter.Type.Out(0)
	setter, ok := ptr.MethodByName("Set" + name)
	if !ok || setter.Type.NumIn() != 2 || setter.Type.In(1) != typ || setter.Type.NumOut() != 0 {
		return nil, errors.Wrapf(ErrMemberNotFound, "%s has getter %q but no Set%s(%s)", owner, name, name, typ)
	}
	return &propertyAccessor{
		name:   name,
		owner:  owner,
		typ:    typ,
		getter: getter.Index,
		setter: setter.Index,
	}, nil
}

// parsePath splits a dotted member path and validates each identifier.
func parsePath(path string) ([]string, error) {
	if path == "" {
		return nil, errors.New("empty member name")
	}
	segments := strings.Split(path, ".")
	for _, seg := range segments {
		if !isIdent(seg) {
			return nil, errors.Newf("invalid member name %q", path)
		}
	}
	return segments, nil
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		letter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
		if i == 0 && !letter {
			return false
		}
		if !letter && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

// fieldAccessor walks a flattened field index path. Pointers met on the way
// are dereferenced; nil ones read as zero and are allocated on Set.
type fieldAccessor struct {
	name  string
	owner reflect.Type
	typ   reflect.Type
	index []int
}

func (a *fieldAccessor) Name() string        { return a.name }
func (a *fieldAccessor) Owner() reflect.Type { return a.owner }
func (a *fieldAccessor) Type() reflect.Type  { return a.typ }

func (a *fieldAccessor) Get(entity reflect.Value) reflect.Value {
	v := entity
	for _, i := range a.index {
		if v.Kind() == reflect.Pointer {
			if v.IsNil() {
				return reflect.Zero(a.typ)
			}
			v = v.Elem()
		}
		v = v.Field(i)
	}
	return v
}

func (a *fieldAccessor) Set(entity reflect.Value, x reflect.Value) {
	v := entity
	for _, i := range a.index {
		if v.Kind() == reflect.Pointer {
			if v.IsNil() {
				v.Set(reflect.New(v.Type().Elem()))
			}
			v = v.Elem()
		}
		v = v.Field(i)
	}
	v.Set(x)
}

// propertyAccessor calls a getter/setter pair by method index on *owner.
type propertyAccessor struct {
	name   string
	owner  reflect.Type
	typ    reflect.Type
	getter int
	setter int
}

func (a *propertyAccessor) Name() string        { return a.name }
func (a *propertyAccessor) Owner() reflect.Type { return a.owner }
func (a *propertyAccessor) Type() reflect.Type  { return a.typ }

func (a *propertyAccessor) Get(entity reflect.Value) reflect.Value {
	return receiver(entity).Method(a.getter).Call(nil)[0]
}

func (a *propertyAccessor) Set(entity reflect.Value, x reflect.Value) {
	receiver(entity).Method(a.setter).Call([]reflect.Value{x})
}

// receiver returns a pointer to entity so pointer-receiver methods are
// callable. Non-addressable values are copied, which is only sound for reads.
func receiver(entity reflect.Value) reflect.Value {
	switch {
	case entity.Kind() == reflect.Pointer:
		return entity
	case entity.CanAddr():
		return entity.Addr()
	default:
		p := reflect.New(entity.Type())
		p.Elem().Set(entity)
		return p
	}
}
