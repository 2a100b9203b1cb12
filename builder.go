package injector

import (
	"reflect"

	"go.uber.org/zap"
)

// OverrideProvider is an optional hook consulted for a configuration
// point's override value before the properties file is read: a dynamic
// source (environment variables, a remote config service, flags) sitting
// above the static file in the precedence order. Scoped to one Builder
// instead of a package-level singleton, so concurrent builds never share
// override state.
type OverrideProvider func(name string) (value string, found bool)

// Builder accumulates registrations and configuration, then Build resolves
// them once into a running Container. A Builder is single-use; Build
// consumes it.
type Builder struct {
	reg              *Registry
	configPath       string
	overrideProvider OverrideProvider
	logger           *zap.Logger
	built            bool
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{reg: newRegistry()}
}

func (b *Builder) declareKey(k KeyDeclaration) { b.reg.declareKey(k) }

// Put registers t with its auto-derived keys (see Registry.Put).
func (b *Builder) Put(t reflect.Type) error { return b.reg.Put(t) }

// PutKey registers t under an explicit key.
func (b *Builder) PutKey(key string, t reflect.Type) error { return b.reg.PutKey(key, t) }

// PutBundle registers every type a Bundle enumerates.
func (b *Builder) PutBundle(bundle Bundle) error { return b.reg.PutBundle(bundle) }

// PutParam records a programmatic configuration override, beating the
// properties file but losing to WithOverrideProvider when both apply to
// the same name.
func (b *Builder) PutParam(key, value string) *Builder {
	b.reg.PutParam(key, value)
	return b
}

// WithConfigFileLocation overrides the default settings.properties path.
func (b *Builder) WithConfigFileLocation(path string) *Builder {
	b.configPath = path
	return b
}

// WithOverrideProvider installs a dynamic override source, consulted
// ahead of PutParam values and the properties file for every
// configuration point.
func (b *Builder) WithOverrideProvider(p OverrideProvider) *Builder {
	b.overrideProvider = p
	return b
}

// WithLogger installs a structured logger for build and lifecycle trace
// records. A no-op logger is used when none is supplied.
func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	b.logger = logger
	return b
}

// Build resolves the registry into a dependency graph, binds
// configuration, and drives every component through its lifecycle hooks
// up to STARTED. Any failure at any stage aborts the whole build and no
// container is returned; lifecycle hooks that already ran are not undone.
func (b *Builder) Build() (*Container, error) {
	if b.built {
		return nil, ErrRegistrationClosed
	}
	b.built = true

	logger := b.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	reflector := newReflector()
	keyCandidates := b.reg.keyDeclTypes()
	types := b.reg.finalize()

	g, err := buildGraph(reflector, b.reg, types, keyCandidates)
	if err != nil {
		return nil, &BuildError{Stage: "graph", Cause: err}
	}

	binder, err := newConfigBinder(b.configPath, b.reg.params, logger)
	if err != nil {
		return nil, &BuildError{Stage: "config", Cause: err}
	}
	if b.overrideProvider != nil {
		binder.provider = b.overrideProvider
	}

	for _, n := range g.order {
		if err := binder.bind(n.instance, reflector, n.id, n.desc.Configs); err != nil {
			return nil, &BuildError{Stage: "config", Cause: err}
		}
	}

	eng := newEngine(logger)
	c := &Container{g: g, reg: b.reg, eng: eng, logger: logger}
	c.lookup = newLookupService(g, b.reg)
	g.wireContainer(reflector, c)

	if err := eng.start(g); err != nil {
		return nil, &BuildError{Stage: "lifecycle", Cause: err}
	}

	return c, nil
}
