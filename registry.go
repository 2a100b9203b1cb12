package injector

import (
	"reflect"
)

// registryEntry is an ordered, non-empty list
// of candidate component types under one key. The head (index 0) is the
// effective default returned by a key-based lookup; the full list is what
// a stream/findAll over that key yields.
type registryEntry struct {
	types []reflect.Type
}

// put appends t, honoring overwrite: true clears the entry first (t
// becomes the sole, head element); false appends to the tail, leaving
// the current head untouched unless the entry was empty.
func (e *registryEntry) put(t reflect.Type, overwrite bool) {
	if overwrite {
		e.types = []reflect.Type{t}
		return
	}
	for _, existing := range e.types {
		if existing == t {
			return // idempotent: already present
		}
	}
	e.types = append(e.types, t)
}

// KeyProvider lets a component declare its own canonical inject-key
// directly, instead of inheriting one only from an ancestor interface
// declared via DeclareKey.
type KeyProvider interface {
	InjectKey() (name string, overwrite bool)
}

// Bundle groups a set of component types for bulk registration.
type Bundle interface {
	ComponentTypes() []reflect.Type
}

// Registry accumulates type registrations and resolves a final
// deduplicated set of distinct component types.
type Registry struct {
	keyDecls []KeyDeclaration
	entries  map[string]*registryEntry
	params   map[string]string

	order []reflect.Type       // first-seen order across all entries
	seen  map[reflect.Type]int // type -> index in order, for O(1) membership
}

func newRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*registryEntry),
		params:  make(map[string]string),
		seen:    make(map[reflect.Type]int),
	}
}

func (r *Registry) declareKey(k KeyDeclaration) {
	r.keyDecls = append(r.keyDecls, k)
}

// keyDeclTypes returns the interface types named by every DeclareKey call
// so far, for Reflector.Describe's ancestor discovery.
func (r *Registry) keyDeclTypes() []reflect.Type {
	out := make([]reflect.Type, len(r.keyDecls))
	for i, k := range r.keyDecls {
		out[i] = k.Key
	}
	return out
}

func (r *Registry) entry(key string) *registryEntry {
	e, ok := r.entries[key]
	if !ok {
		e = &registryEntry{}
		r.entries[key] = e
	}
	return e
}

func (r *Registry) remember(t reflect.Type) {
	if _, ok := r.seen[t]; !ok {
		r.seen[t] = len(r.order)
		r.order = append(r.order, t)
	}
}

func (r *Registry) registerUnder(key string, t reflect.Type, overwrite bool) {
	r.entry(key).put(t, overwrite)
	r.remember(t)
}

// normalizeType promotes a bare struct type to pointer-to-struct, so
// every component is constructed and injected through one consistent
// shape.
func normalizeType(t reflect.Type) (reflect.Type, error) {
	if t == nil {
		return nil, ErrBeanTypeParamIsNil
	}
	switch t.Kind() {
	case reflect.Ptr:
		if t.Elem().Kind() != reflect.Struct {
			return nil, ErrBeanTypeNotSupported
		}
		return t, nil
	case reflect.Struct:
		return reflect.PointerTo(t), nil
	default:
		return nil, ErrBeanTypeNotSupported
	}
}

// Put registers t with auto-derived keys: t's own concrete type always
// wins its own key; for every ancestor interface declared via DeclareKey
// that t implements, t is additionally registered under that ancestor's
// key honoring its overwrite flag; finally, if t itself implements
// KeyProvider, that self-declared key/overwrite is applied last.
func (r *Registry) Put(t reflect.Type) error {
	pt, err := normalizeType(t)
	if err != nil {
		return err
	}

	r.registerUnder(registryKeyName(pt), pt, true)

	for _, decl := range r.keyDecls {
		if pt.Implements(decl.Key) {
			r.registerUnder(decl.Name, pt, decl.Overwrite)
		}
	}

	if pv := reflect.New(pt.Elem()); pv.Type().Implements(reflect.TypeOf((*KeyProvider)(nil)).Elem()) {
		kp := pv.Interface().(KeyProvider)
		name, overwrite := kp.InjectKey()
		r.registerUnder(name, pt, overwrite)
	}

	return nil
}

// PutKey registers t under an explicit key, acting as overwrite=true.
func (r *Registry) PutKey(key string, t reflect.Type) error {
	if key == emptyString {
		return ErrBeanIdParamIsEmpty
	}
	pt, err := normalizeType(t)
	if err != nil {
		return err
	}
	r.registerUnder(key, pt, true)
	return nil
}

// PutBundle invokes bundle's enumeration and registers each type as by
// Put.
func (r *Registry) PutBundle(b Bundle) error {
	for _, t := range b.ComponentTypes() {
		if err := r.Put(t); err != nil {
			return err
		}
	}
	return nil
}

// PutParam records a configuration override that beats the properties
// file.
func (r *Registry) PutParam(key, value string) {
	r.params[key] = value
}

// finalize flattens registry values, preserving first-seen order, into a
// deduplicated ordered set of distinct component types.
func (r *Registry) finalize() []reflect.Type {
	out := make([]reflect.Type, len(r.order))
	copy(out, r.order)
	return out
}

// lookupKey returns the head type for key, and whether the key exists at
// all with a non-empty entry.
func (r *Registry) lookupKey(key string) (reflect.Type, bool) {
	e, ok := r.entries[key]
	if !ok || len(e.types) == 0 {
		return nil, false
	}
	return e.types[0], true
}

// streamKey returns every type registered under key, in entry order.
func (r *Registry) streamKey(key string) []reflect.Type {
	e, ok := r.entries[key]
	if !ok {
		return nil
	}
	out := make([]reflect.Type, len(e.types))
	copy(out, e.types)
	return out
}
