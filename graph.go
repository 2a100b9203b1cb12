package injector

import "reflect"

// edge is a directed dependency "A -> B [minState]". target is the node B;
// min is the minimum state B must have reached.
type edge struct {
	target *node
	min    State
}

// hookEdgeGroup bundles one lifecycle hook with the edges derived from
// its parameters: one edge per hook parameter.
type hookEdgeGroup struct {
	hook  hookDescriptor
	edges []edge
}

// node holds the type, the instance, the current state,
// and the executions (hooks) grouped by target state.
type node struct {
	id       string
	typ      reflect.Type
	desc     *typeDescriptor
	instance reflect.Value
	state    State

	fieldEdges []edge // always enforced, regardless of target state
	hooks      []hookEdgeGroup
}

func (n *node) setState(s State) { n.state = s }

// graph is the dependency graph: one node per registered type,
// edges derived from injection fields and lifecycle-hook parameters.
type graph struct {
	order  []*node
	byType map[reflect.Type]*node

	container *Container // assigned by the builder once the graph is wired

	// containerFields are injection fields that declared ContainerRef (or
	// *Container) instead of a component dependency; they are set once
	// container is assigned, since the container does not exist yet while
	// the graph is being built.
	containerFields []containerField
}

type containerField struct {
	node        *node
	fieldIndex  []int
	wrapperType reflect.Type
}

var containerIfaceType = reflect.TypeOf((*ContainerRef)(nil)).Elem()

// ContainerRef is the interface a component's injection point or hook
// parameter may declare to receive the container itself as a dependency,
// without that reference creating an ownership cycle. *Container
// implements it.
type ContainerRef interface {
	Get(reflect.Type) (any, bool)
}

// buildGraph constructs one node per type in creation order, then wires
// edges from injection points and lifecycle hooks. Reflector and
// Registry are needed to resolve, per injection point/hook parameter,
// which node satisfies it.
func buildGraph(reflector Reflector, reg *Registry, types []reflect.Type, keyCandidates []reflect.Type) (*graph, error) {
	g := &graph{byType: make(map[reflect.Type]*node)}

	for _, t := range types {
		desc, err := reflector.Describe(t, keyCandidates)
		if err != nil {
			return nil, err
		}
		inst, err := reflector.New(t)
		if err != nil {
			return nil, err
		}
		n := &node{id: registryKeyName(t), typ: t, desc: desc, instance: inst, state: CREATED}
		g.order = append(g.order, n)
		g.byType[t] = n
	}

	for _, n := range g.order {
		for _, ip := range n.desc.Injections {
			if ip.Target.Implements(containerIfaceType) || ip.Target == reflect.TypeOf((*Container)(nil)) {
				g.containerFields = append(g.containerFields, containerField{node: n, fieldIndex: ip.FieldIndex, wrapperType: ip.WrapperType})
				continue
			}
			target, ok := g.resolve(reg, ip.Target, ip.ExplicitKey)
			if !ok {
				return nil, &MissingImplementationError{Key: ip.ExplicitKey, Wanted: typeName(ip.Target), Receiver: n.id}
			}
			n.fieldEdges = append(n.fieldEdges, edge{target: target, min: ip.Min})

			val := target.instance
			if ip.WrapperType != nil {
				val = wrapValue(ip.WrapperType, val)
			}
			reflector.SetField(n.instance, ip.FieldIndex, val)
		}

		for _, h := range n.desc.Hooks {
			hg := hookEdgeGroup{hook: h}
			for _, p := range h.Params {
				if p.Target.Implements(containerIfaceType) || p.Target == reflect.TypeOf((*Container)(nil)) {
					hg.edges = append(hg.edges, edge{target: nil, min: CREATED}) // nil target == container
					continue
				}
				target, ok := g.resolve(reg, p.Target, emptyString)
				if !ok {
					return nil, &MissingImplementationError{Wanted: typeName(p.Target), Receiver: n.id}
				}
				hg.edges = append(hg.edges, edge{target: target, min: p.Min})
			}
			n.hooks = append(n.hooks, hg)
		}
	}

	return g, nil
}

// wireContainer sets every pending container-typed injection field to c,
// now that the container exists. Call once, after construction.
func (g *graph) wireContainer(reflector Reflector, c *Container) {
	g.container = c
	for _, cf := range g.containerFields {
		val := reflect.ValueOf(any(c))
		if cf.wrapperType != nil {
			val = wrapValue(cf.wrapperType, val)
		}
		reflector.SetField(cf.node.instance, cf.fieldIndex, val)
	}
}

// resolve finds the node satisfying a dependency: by explicit registry
// key when given (registry head lookup), otherwise the first-seen node
// (creation order) whose type is assignable to depType.
func (g *graph) resolve(reg *Registry, depType reflect.Type, explicitKey string) (*node, bool) {
	if explicitKey != emptyString {
		t, ok := reg.lookupKey(explicitKey)
		if !ok {
			return nil, false
		}
		n, ok := g.byType[t]
		return n, ok
	}
	for _, n := range g.order {
		if n.typ.AssignableTo(depType) {
			return n, true
		}
	}
	return nil, false
}

// readiness reports whether a node can advance to s: every
// injection-field edge must be satisfied, and every hook-parameter edge
// whose owning hook targets a state <= s must be satisfied.
func readiness(n *node, s State) bool {
	for _, e := range n.fieldEdges {
		if !e.target.state.atLeast(e.min) {
			return false
		}
	}
	for _, hg := range n.hooks {
		if hg.hook.Target > s {
			continue
		}
		for _, e := range hg.edges {
			if e.target == nil {
				continue // container edge, always ready
			}
			if !e.target.state.atLeast(e.min) {
				return false
			}
		}
	}
	return true
}

// waitingOn lists the ids of dependencies currently blocking n from
// reaching s, for stuck-graph diagnostics.
func waitingOn(n *node, s State) []string {
	var out []string
	for _, e := range n.fieldEdges {
		if !e.target.state.atLeast(e.min) {
			out = append(out, e.target.id)
		}
	}
	for _, hg := range n.hooks {
		if hg.hook.Target > s {
			continue
		}
		for _, e := range hg.edges {
			if e.target != nil && !e.target.state.atLeast(e.min) {
				out = append(out, e.target.id)
			}
		}
	}
	return out
}
