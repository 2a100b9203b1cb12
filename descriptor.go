package injector

import (
	"fmt"
	"reflect"
	"strings"
)

// injectionPoint is a single field on a component that the container
// populates with another component.
type injectionPoint struct {
	FieldIndex  []int
	FieldName   string
	Target      reflect.Type // dependency type, after unwrapping any At* wrapper
	Min         State
	ExplicitKey string       // non-empty when the `inject` tag names a registry key
	WrapperType reflect.Type // non-nil when the field itself used an At* wrapper
}

// configPoint is a field populated from properties/overrides with scalar
// coercion.
type configPoint struct {
	FieldIndex []int
	FieldName  string
	Name       string
	Default    string
	FieldType  reflect.Type
}

// hookParam is one parameter of a lifecycle hook method.
type hookParam struct {
	Target      reflect.Type
	Min         State
	WrapperType reflect.Type // non-nil when the parameter used an At* wrapper
}

// hookDescriptor is a lifecycle hook: a method the container invokes when
// a component transitions to Target.
type hookDescriptor struct {
	Name   string
	Method reflect.Method
	Target State
	Params []hookParam
}

// typeDescriptor is everything the container needs to know about a
// registered type, gathered once by the reflection adapter and reused
// for every instance (there is exactly one instance per type).
type typeDescriptor struct {
	Type       reflect.Type // pointer-to-struct
	Ancestors  []reflect.Type
	Injections []injectionPoint
	Configs    []configPoint
	Hooks      []hookDescriptor
}

// hookMethodNames maps a lifecycle hook's naming-convention method name
// (hookPrefix + State name) to its target state. CREATED has no hook
// slot: it is the implicit state a node starts in once constructed.
var hookMethodNames = map[string]State{
	hookPrefix + "Initialized": INITIALIZED,
	hookPrefix + "Resolved":    RESOLVED,
	hookPrefix + "Started":     STARTED,
	hookPrefix + "Stopped":     STOPPED,
}

// Reflector hides the host language's introspection API behind a narrow
// contract. reflectAdapter is the only implementation. The dependency
// graph, the configuration binder and Container.Inject go through it to
// describe types, construct instances and assign fields; they still use
// "reflect" directly for values and type checks.
type Reflector interface {
	Describe(t reflect.Type, keyCandidates []reflect.Type) (*typeDescriptor, error)
	New(t reflect.Type) (reflect.Value, error)
	SetField(instance reflect.Value, fieldIndex []int, value reflect.Value)
}

type reflectAdapter struct{}

func newReflector() Reflector { return reflectAdapter{} }

// New constructs an instance via a zero-argument constructor: reflect.New
// on the struct element of a pointer-to-struct type. Fails with
// ErrNoDefaultConstructor if t is not pointer-to-struct.
func (reflectAdapter) New(t reflect.Type) (reflect.Value, error) {
	if t.Kind() != reflect.Ptr || t.Elem().Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("%w: %v", ErrNoDefaultConstructor, t)
	}
	return reflect.New(t.Elem()), nil
}

// SetField assigns a field on an instance. Only exported fields are
// settable through reflection without the unsafe package, so injection
// and config points are required to be exported fields rather than
// reaching for unsafe (see DESIGN.md).
func (reflectAdapter) SetField(instance reflect.Value, fieldIndex []int, value reflect.Value) {
	fv := instance.Elem().FieldByIndex(fieldIndex)
	if !fv.CanSet() {
		return
	}
	fv.Set(value)
}

// Describe enumerates ancestors (depth-first, stable order), injection
// points, configuration points, and lifecycle hooks for t.
// keyCandidates is the set of interface types DeclareKey has registered;
// Describe reports which of them t is assignable to, since Go exposes no
// general "list implemented interfaces" operation.
func (reflectAdapter) Describe(t reflect.Type, keyCandidates []reflect.Type) (*typeDescriptor, error) {
	if t.Kind() != reflect.Ptr || t.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %v", ErrBeanTypeNotSupported, t)
	}

	d := &typeDescriptor{Type: t}
	d.Ancestors = append(d.Ancestors, t)
	for _, k := range keyCandidates {
		if k.Kind() == reflect.Interface && t.Implements(k) {
			d.Ancestors = append(d.Ancestors, k)
		}
	}

	walkFields(t.Elem(), nil, d)

	for i := 0; i < t.NumMethod(); i++ {
		m := t.Method(i)
		target, ok := hookMethodNames[m.Name]
		if !ok {
			continue
		}
		hd := hookDescriptor{Name: m.Name, Method: m, Target: target}
		// m.Func signature: func(receiver, params...) error — skip index 0.
		for p := 1; p < m.Type.NumIn(); p++ {
			paramType := m.Type.In(p)
			depType, min := unwrapParam(paramType)
			var wrapperType reflect.Type
			if depType != paramType {
				wrapperType = paramType
			}
			hd.Params = append(hd.Params, hookParam{Target: depType, Min: min, WrapperType: wrapperType})
		}
		d.Hooks = append(d.Hooks, hd)
	}

	return d, nil
}

// walkFields recursively collects injection/config points, including
// through anonymous (embedded) struct fields, depth-first.
func walkFields(structType reflect.Type, prefix []int, d *typeDescriptor) {
	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		idx := append(append([]int{}, prefix...), i)

		if field.Anonymous {
			ft := field.Type
			if ft.Kind() == reflect.Ptr {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				walkFields(ft, idx, d)
			}
		}

		if tagVal, ok := field.Tag.Lookup(tagInject); ok {
			depType, min := unwrapParam(field.Type)
			var wrapperType reflect.Type
			if depType != field.Type {
				wrapperType = field.Type
			}
			if ws, ok := field.Tag.Lookup(tagWithState); ok {
				if s, ok2 := parseStateName(ws); ok2 {
					min = s
				}
			}
			d.Injections = append(d.Injections, injectionPoint{
				FieldIndex:  idx,
				FieldName:   field.Name,
				Target:      depType,
				Min:         min,
				ExplicitKey: strings.ToLower(strings.TrimSpace(tagVal)),
				WrapperType: wrapperType,
			})
			continue
		}

		if cfgVal, ok := field.Tag.Lookup(tagConfig); ok {
			name, def := splitConfigTag(cfgVal)
			d.Configs = append(d.Configs, configPoint{
				FieldIndex: idx,
				FieldName:  field.Name,
				Name:       name,
				Default:    def,
				FieldType:  field.Type,
			})
		}
	}
}

func splitConfigTag(raw string) (name, def string) {
	parts := strings.SplitN(raw, ",", 2)
	name = strings.TrimSpace(parts[0])
	if len(parts) == 2 {
		def = parts[1]
	}
	return name, def
}

func parseStateName(s string) (State, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CREATED":
		return CREATED, true
	case "INITIALIZED":
		return INITIALIZED, true
	case "RESOLVED":
		return RESOLVED, true
	case "STARTED":
		return STARTED, true
	case "STOPPED":
		return STOPPED, true
	default:
		return CREATED, false
	}
}

func indexEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// typeName returns a stable, human-readable identifier for a type: its
// fully-qualified name for named types, or its String() for others (e.g.
// interfaces declared inline in tests).
func typeName(t reflect.Type) string {
	if t.Kind() == reflect.Ptr {
		return "*" + typeName(t.Elem())
	}
	if t.Name() != emptyString {
		if t.PkgPath() != emptyString {
			return t.PkgPath() + "." + t.Name()
		}
		return t.Name()
	}
	return t.String()
}

// registryKeyName derives the registry key for a component type: its
// lowercased typeName. Keys for ancestor interfaces are not derived here;
// they are whatever DeclareKey or DeclareKeyNamed recorded (see keys.go).
func registryKeyName(a reflect.Type) string {
	return strings.ToLower(typeName(a))
}
