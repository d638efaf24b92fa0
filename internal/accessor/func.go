package accessor

import "reflect"

// Func builds an accessor from a typed getter/setter pair. Both functions
// are required; Func panics when either is nil.
func Func[E, V any](name string, get func(*E) V, set func(*E, V)) Accessor {
	if get == nil || set == nil {
		panic("accessor: Func requires both get and set for " + name)
	}
	return &funcAccessor[E, V]{name: name, get: get, set: set}
}

type funcAccessor[E, V any] struct {
	name string
	get  func(*E) V
	set  func(*E, V)
}

func (a *funcAccessor[E, V]) Name() string        { return a.name }
func (a *funcAccessor[E, V]) Owner() reflect.Type { return reflect.TypeFor[E]() }
func (a *funcAccessor[E, V]) Type() reflect.Type  { return reflect.TypeFor[V]() }

func (a *funcAccessor[E, V]) Get(entity reflect.Value) reflect.Value {
	v := a.get(entityPointer[E](entity))
	return reflect.ValueOf(&v).Elem()
}

func (a *funcAccessor[E, V]) Set(entity reflect.Value, x reflect.Value) {
	a.set(entityPointer[E](entity), x.Interface().(V))
}

func entityPointer[E any](entity reflect.Value) *E {
	return receiver(entity).Interface().(*E)
}
