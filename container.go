package injector

import (
	"fmt"
	"reflect"
	"sync"

	"go.uber.org/zap"
)

// Container is the immutable result of a successful Builder.Build: every
// registered component has been constructed, wired, configured and driven
// to STARTED. It is itself injectable into any component or hook
// parameter declared as ContainerRef, without being modeled as a graph
// node (see graph.go).
type Container struct {
	g      *graph
	reg    *Registry
	lookup *lookupService
	eng    *engine
	logger *zap.Logger

	mu      sync.Mutex
	stopped bool
}

var _ ContainerRef = (*Container)(nil)

// Get returns the default instance for t: a key-registered head when t
// was resolved through an explicit key declaration, otherwise the first
// component (creation order) assignable to t.
func (c *Container) Get(t reflect.Type) (any, bool) {
	for _, decl := range c.reg.keyDecls {
		if decl.Key == t {
			if v, ok := c.GetKey(decl.Name); ok {
				return v, true
			}
		}
	}
	n, ok := c.lookup.find(t, emptyString)
	if !ok {
		return nil, false
	}
	return n.instance.Interface(), true
}

// GetKey returns the default instance registered under key.
func (c *Container) GetKey(key string) (any, bool) {
	n, ok := c.lookup.find(nil, key)
	if !ok {
		return nil, false
	}
	return n.instance.Interface(), true
}

// GetAll returns every managed instance assignable to t, in creation
// order.
func (c *Container) GetAll(t reflect.Type) []any {
	nodes := c.lookup.findAll(t, emptyString)
	out := make([]any, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.instance.Interface())
	}
	return out
}

// Injectables returns every managed instance, in creation order.
func (c *Container) Injectables() []any {
	out := make([]any, 0, len(c.g.order))
	for _, n := range c.g.order {
		out = append(out, n.instance.Interface())
	}
	return out
}

// ResolveAs is a typed convenience over Get: it returns an error instead
// of a bool, for callers that prefer Go's error-return idiom.
func ResolveAs[T any](c *Container, key string) (T, error) {
	var zero T
	var v any
	var ok bool
	if key != emptyString {
		v, ok = c.GetKey(key)
	} else {
		var t T
		v, ok = c.Get(reflect.TypeOf(&t).Elem())
	}
	if !ok {
		return zero, fmt.Errorf("no component registered for %T", zero)
	}
	x, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("component for key %q is not assignable to requested type", key)
	}
	return x, nil
}

// Inject populates the exported injection-tagged fields of an externally
// constructed value from the container's already-resolved components.
// external is never itself driven through the lifecycle: it is treated
// as already at RESOLVED for the purpose of satisfying its own injection
// points.
func (c *Container) Inject(external any) error {
	v := reflect.ValueOf(external)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("Inject requires a pointer to struct, got %T", external)
	}

	reflector := newReflector()
	desc, err := reflector.Describe(v.Type(), c.reg.keyDeclTypes())
	if err != nil {
		return err
	}

	for _, ip := range desc.Injections {
		var val reflect.Value
		if ip.Target.Implements(containerIfaceType) {
			val = reflect.ValueOf(any(c))
		} else {
			n, ok := c.lookup.find(ip.Target, ip.ExplicitKey)
			if !ok {
				return &MissingImplementationError{Key: ip.ExplicitKey, Wanted: typeName(ip.Target), Receiver: typeName(v.Type())}
			}
			val = n.instance
		}
		if ip.WrapperType != nil {
			val = wrapValue(ip.WrapperType, val)
		}
		reflector.SetField(v, ip.FieldIndex, val)
	}

	return nil
}

// Stop drives every managed component from its current state to STOPPED,
// in creation order (see lifecycle.go). Stop is idempotent: calling it
// again after a successful stop is a no-op.
func (c *Container) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return nil
	}
	if err := c.eng.stop(c.g); err != nil {
		return err
	}
	c.stopped = true
	return nil
}
