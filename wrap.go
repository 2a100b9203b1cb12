package injector

import "reflect"

// Lifecycle hook methods are ordinary Go methods, and Go has no way to
// attach a per-parameter minimum-state annotation to a method parameter.
// These generic wrapper types carry that annotation in the parameter's
// static type instead: a hook parameter declared as AtStarted[*Database]
// depends on *Database having reached STARTED, while a plain *Database
// parameter defaults to requiring only CREATED ("exists").
type (
	AtCreated[T any]     struct{ Value T }
	AtInitialized[T any] struct{ Value T }
	AtResolved[T any]    struct{ Value T }
	AtStarted[T any]     struct{ Value T }
)

// stateWrapper is implemented by every At* generic type above via a
// non-generic method, so reflection can recover the annotated minState
// without knowing the type parameter ahead of time.
type stateWrapper interface {
	minState() State
}

func (AtCreated[T]) minState() State     { return CREATED }
func (AtInitialized[T]) minState() State { return INITIALIZED }
func (AtResolved[T]) minState() State    { return RESOLVED }
func (AtStarted[T]) minState() State     { return STARTED }

var stateWrapperType = reflect.TypeOf((*stateWrapper)(nil)).Elem()

// unwrapParam inspects a hook parameter or injection field type and
// returns the effective dependency type and minState. Plain types pass
// through unchanged with minState CREATED.
func unwrapParam(t reflect.Type) (dependencyType reflect.Type, min State) {
	if t.Kind() == reflect.Struct && t.Implements(stateWrapperType) {
		if f, ok := t.FieldByName("Value"); ok {
			zero := reflect.New(t).Elem().Interface().(stateWrapper)
			return f.Type, zero.minState()
		}
	}
	return t, CREATED
}

// wrapValue boxes a resolved dependency value into the wrapper type
// expected by a hook parameter, when that parameter used an At* wrapper.
// wrapperType must be the wrapper's reflect.Type as returned alongside the
// original (non-unwrapped) parameter type.
func wrapValue(wrapperType reflect.Type, value reflect.Value) reflect.Value {
	if wrapperType.Kind() != reflect.Struct || !wrapperType.Implements(stateWrapperType) {
		return value
	}
	boxed := reflect.New(wrapperType).Elem()
	boxed.FieldByName("Value").Set(value)
	return boxed
}
