package injector

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for simple, argument-less failures: package-level
// `var Err... = errors.New(...)` values for callers that only need
// errors.Is, with typed structs below for failures that carry structured
// detail.
var (
	ErrBeanIdParamIsEmpty   = errors.New("component key parameter is empty")
	ErrBeanTypeParamIsNil   = errors.New("component type parameter is nil")
	ErrBeanParamIsNil       = errors.New("component instance parameter is nil")
	ErrBeanTypeNotSupported = errors.New("component type is not supported")
	ErrRegistrationClosed   = errors.New("container already built; registration is closed")
	ErrNoDefaultConstructor = errors.New("component type has no usable zero-argument constructor")
)

// MissingImplementationError reports that a required dependency type has
// no assignable instance in the final registry.
type MissingImplementationError struct {
	Key      string
	Wanted   string
	Receiver string
}

func (e *MissingImplementationError) Error() string {
	if e.Receiver != emptyString {
		return fmt.Sprintf("missing implementation: %q requires %s (key %q), none registered", e.Receiver, e.Wanted, e.Key)
	}
	return fmt.Sprintf("missing implementation: no component assignable to %s (key %q)", e.Wanted, e.Key)
}

// ConfigCoercionError reports that a configuration value could not be
// parsed into its field's declared scalar kind.
type ConfigCoercionError struct {
	Component string
	Field     string
	Kind      string
	Value     string
	Cause     error
}

func (e *ConfigCoercionError) Error() string {
	return fmt.Sprintf("configuration coercion failed for %s.%s (kind %s, value %q): %v",
		e.Component, e.Field, e.Kind, e.Value, e.Cause)
}

func (e *ConfigCoercionError) Unwrap() error { return e.Cause }

// StuckGraphError is the terminal failure when the lifecycle engine makes
// no progress on a pass while nodes remain below the target state. It
// carries every stalled node so callers can print or inspect the
// laggards instead of parsing a message.
type StuckGraphError struct {
	Target  State
	Stalled []StalledNode
	// Cycle, when non-empty, is a path of node IDs that the engine
	// attributed the stall to: a dependency cycle crossing a
	// minState boundary above CREATED.
	Cycle []string
	// Cause is a *CyclicReferenceError when Cycle is non-empty, nil
	// otherwise: errors.As callers can match on the more specific type
	// without parsing Cycle themselves.
	Cause error
}

func (e *StuckGraphError) Unwrap() error { return e.Cause }

// StalledNode describes one node that failed to advance on a full pass.
type StalledNode struct {
	ID      string
	Current State
	Waiting []string // ids of dependencies not yet ready
}

func (e *StuckGraphError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "stuck graph: no progress toward %s; stalled nodes:", e.Target)
	for _, s := range e.Stalled {
		fmt.Fprintf(&b, " [%s@%s waiting on %s]", s.ID, s.Current, strings.Join(s.Waiting, ","))
	}
	if len(e.Cycle) > 0 {
		fmt.Fprintf(&b, "; cyclic reference suspected: %s", strings.Join(e.Cycle, pathSep))
	}
	return b.String()
}

// HookInvocationError wraps a panic or error raised from inside a
// lifecycle hook body.
type HookInvocationError struct {
	Component string
	Hook      string
	Target    State
	Cause     error
}

func (e *HookInvocationError) Error() string {
	return fmt.Sprintf("hook %s.%s (target %s) failed: %v", e.Component, e.Hook, e.Target, e.Cause)
}

func (e *HookInvocationError) Unwrap() error { return e.Cause }

// CyclicReferenceError is reported when stuck-graph analysis attributes a
// stall to a dependency cycle crossing a non-CREATED minState boundary.
type CyclicReferenceError struct {
	Path []string
}

func (e *CyclicReferenceError) Error() string {
	return fmt.Sprintf("cyclic reference detected: %s", strings.Join(e.Path, pathSep))
}

// BuildError wraps the failure of a single Build stage; any failure
// during Build aborts the whole build.
type BuildError struct {
	Stage string
	Cause error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("build failed at %s: %v", e.Stage, e.Cause)
}

func (e *BuildError) Unwrap() error { return e.Cause }
