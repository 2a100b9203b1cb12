package injector

import (
	"fmt"
	"reflect"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// engine is the lifecycle engine: it drives every node from
// CREATED to STARTED at build time, and from its current state to
// STOPPED at teardown.
type engine struct {
	logger  *zap.Logger
	buildID string
}

func newEngine(logger *zap.Logger) *engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &engine{logger: logger, buildID: uuid.NewString()}
}

// start drives every node from CREATED toward STARTED. Nodes advance one
// state per pass, independently of each other: a node blocked on a peer
// that itself needs several passes to reach its own required state keeps
// waiting across passes rather than being capped in lockstep with every
// other node at the same target state. This is what lets a dependency
// declared with a minState above the dependent's own current target (a
// peer required to already be STARTED before this node can even reach
// INITIALIZED) eventually resolve, instead of deadlocking against an
// artificial "every node reaches state N before any reaches N+1" barrier.
func (e *engine) start(g *graph) error {
	for {
		progressed := false
		remaining := false
		for _, n := range g.order {
			if n.state >= STARTED {
				continue
			}
			remaining = true
			next, ok := n.state.Next()
			if !ok {
				continue
			}
			if readiness(n, next) {
				if err := e.runHooksFor(n, next, g); err != nil {
					return err
				}
				n.setState(next)
				progressed = true
				e.logger.Debug("state transition",
					zap.String("build", e.buildID),
					zap.String("component", n.id),
					zap.String("state", next.String()))
			}
		}
		if !remaining {
			return nil
		}
		if !progressed {
			return e.stuck(g, STARTED)
		}
	}
}

// stop is symmetric to start, but advances each node straight from its
// current state to STOPPED, in the same forward (creation) order used
// for startup.
func (e *engine) stop(g *graph) error {
	for {
		progressed := false
		remaining := false
		for _, n := range g.order {
			if n.state == STOPPED {
				continue
			}
			remaining = true
			if readiness(n, STOPPED) {
				if err := e.runHooksFor(n, STOPPED, g); err != nil {
					return err
				}
				n.setState(STOPPED)
				progressed = true
				e.logger.Debug("state transition",
					zap.String("build", e.buildID),
					zap.String("component", n.id),
					zap.String("state", STOPPED.String()))
			}
		}
		if !remaining {
			break
		}
		if !progressed {
			return e.stuck(g, STOPPED)
		}
	}
	return nil
}

// runHooksFor invokes every hook on n whose target state equals next,
// sequentially. Hook parameters are resolved at the moment of invocation.
func (e *engine) runHooksFor(n *node, next State, g *graph) (err error) {
	for _, hg := range n.hooks {
		if hg.hook.Target != next {
			continue
		}
		args := make([]reflect.Value, 0, len(hg.edges)+1)
		args = append(args, n.instance)
		for i, ed := range hg.edges {
			param := hg.hook.Params[i]
			var val reflect.Value
			if ed.target == nil {
				val = reflect.ValueOf(g.container)
			} else {
				val = ed.target.instance
			}
			if param.WrapperType != nil {
				val = wrapValue(param.WrapperType, val)
			}
			args = append(args, val)
		}

		e.logger.Debug("hook invocation",
			zap.String("build", e.buildID),
			zap.String("component", n.id),
			zap.String("hook", hg.hook.Name))

		if herr := e.invoke(n, hg.hook, args); herr != nil {
			return herr
		}
	}
	return nil
}

// invoke calls the hook method, converting both returned errors and
// panics into a HookInvocationError: fatal, no unwind of earlier hooks.
func (e *engine) invoke(n *node, hook hookDescriptor, args []reflect.Value) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &HookInvocationError{Component: n.id, Hook: hook.Name, Target: hook.Target, Cause: fmt.Errorf("panic: %v", r)}
		}
	}()

	results := hook.Method.Func.Call(args)
	if len(results) == 0 {
		return nil
	}
	if errVal := results[len(results)-1]; !errVal.IsNil() {
		return &HookInvocationError{Component: n.id, Hook: hook.Name, Target: hook.Target, Cause: errVal.Interface().(error)}
	}
	return nil
}

// stuck builds a StuckGraphError naming every node still below target,
// with a best-effort cycle attribution.
func (e *engine) stuck(g *graph, target State) error {
	var stalled []StalledNode
	stalledSet := make(map[string]bool)
	for _, n := range g.order {
		if n.state < target {
			stalled = append(stalled, StalledNode{ID: n.id, Current: n.state, Waiting: waitingOn(n, target)})
			stalledSet[n.id] = true
		}
	}
	cycle := detectStalledCycle(stalled, stalledSet)
	var cause error
	if len(cycle) > 0 {
		cause = &CyclicReferenceError{Path: cycle}
	}
	return &StuckGraphError{Target: target, Stalled: stalled, Cycle: cycle, Cause: cause}
}

// detectStalledCycle looks for a cycle purely among the stalled nodes'
// waiting-on edges: this is the signature of a cycle involving edges
// whose minState is above CREATED.
func detectStalledCycle(stalled []StalledNode, stalledSet map[string]bool) []string {
	waiting := make(map[string][]string, len(stalled))
	for _, s := range stalled {
		waiting[s.ID] = s.Waiting
	}

	visited := make(map[string]bool)
	var path []string
	var dfs func(id string) []string
	dfs = func(id string) []string {
		for i, p := range path {
			if p == id {
				return append(append([]string{}, path[i:]...), id)
			}
		}
		if visited[id] {
			return nil
		}
		visited[id] = true
		path = append(path, id)
		for _, dep := range waiting[id] {
			if !stalledSet[dep] {
				continue
			}
			if cyc := dfs(dep); cyc != nil {
				return cyc
			}
		}
		path = path[:len(path)-1]
		return nil
	}

	for _, s := range stalled {
		if cyc := dfs(s.ID); cyc != nil {
			return cyc
		}
	}
	return nil
}
