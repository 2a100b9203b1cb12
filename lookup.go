package injector

import "reflect"

// lookupService answers find/findAll queries against a built graph: by
// explicit registry key, or by first-seen assignable-to match, mirroring
// the same resolution strategy used to wire the graph's edges.
type lookupService struct {
	g   *graph
	reg *Registry
}

func newLookupService(g *graph, reg *Registry) *lookupService {
	return &lookupService{g: g, reg: reg}
}

// find returns the single node considered the default for depType: a
// key lookup when key is non-empty, otherwise the first node (creation
// order) assignable to depType.
func (l *lookupService) find(depType reflect.Type, key string) (*node, bool) {
	if key != emptyString {
		t, ok := l.reg.lookupKey(key)
		if !ok {
			return nil, false
		}
		n, ok := l.g.byType[t]
		return n, ok
	}
	for _, n := range l.g.order {
		if n.typ.AssignableTo(depType) {
			return n, true
		}
	}
	return nil, false
}

// findAll returns every node assignable to depType, in creation order.
// When key is non-empty, it instead returns every node registered under
// that key, in registration order.
func (l *lookupService) findAll(depType reflect.Type, key string) []*node {
	if key != emptyString {
		types := l.reg.streamKey(key)
		out := make([]*node, 0, len(types))
		for _, t := range types {
			if n, ok := l.g.byType[t]; ok {
				out = append(out, n)
			}
		}
		return out
	}
	var out []*node
	for _, n := range l.g.order {
		if n.typ.AssignableTo(depType) {
			out = append(out, n)
		}
	}
	return out
}
