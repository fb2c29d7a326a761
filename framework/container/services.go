package container

import (
	"errors"
	"fmt"
)

// ── Entry options ─────────────────────────────────────────────────────────────

// EntryOption configures the registration metadata of a service entry.
type EntryOption func(*base)

// WithAllowOverride sets whether a later Set or Extend may replace the
// entry. Entries allow override unless told otherwise.
func WithAllowOverride(allow bool) EntryOption {
	return func(b *base) { b.allowOverride = allow }
}

// WithOptions sets the default options merged under every call's options.
func WithOptions(opts Options) EntryOption {
	return func(b *base) { b.options = b.options.Merge(opts) }
}

// base holds the metadata shared by the built-in strategies.
type base struct {
	name          string
	allowOverride bool
	options       Options
}

func newBase(name string, opts []EntryOption) base {
	b := base{name: name, allowOverride: true}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

func (b *base) Name() string        { return b.name }
func (b *base) AllowOverride() bool { return b.allowOverride }
func (b *base) Options() Options    { return b.options }

// ── Instance ──────────────────────────────────────────────────────────────────

// Instance serves a prebuilt value. A value of type func() any is called on
// every construction instead.
//
//	// Laravel: $app->instance('config', $config)
//	c.Set(container.NewInstance("config", cfg))
type Instance struct {
	base
	value any
}

func NewInstance(name string, value any, opts ...EntryOption) *Instance {
	return &Instance{base: newBase(name, opts), value: value}
}

func (e *Instance) New(*Invocation) (any, error) {
	if fn, ok := e.value.(func() any); ok {
		return fn(), nil
	}
	return e.value, nil
}

// ── Factory ───────────────────────────────────────────────────────────────────

// FactoryFunc builds an instance from the per-call invocation. The owning
// container is available as inv.Services().
type FactoryFunc func(inv *Invocation) (any, error)

// Factory serves whatever its closure returns.
//
//	c.Set(container.NewFactory("cache", func(inv *container.Invocation) (any, error) {
//	    return cache.NewRedis(inv.Options.String("addr", "localhost:6379")), nil
//	}))
type Factory struct {
	base
	fn FactoryFunc
}

func NewFactory(name string, fn FactoryFunc, opts ...EntryOption) *Factory {
	return &Factory{base: newBase(name, opts), fn: fn}
}

func (e *Factory) New(inv *Invocation) (any, error) {
	if e.fn == nil {
		return nil, fmt.Errorf("%w: factory (%s) has no function", ErrInvalidService, e.name)
	}
	return e.fn(inv)
}

// ── Constructor ───────────────────────────────────────────────────────────────

// Dependency names a service a Constructor needs. Name may be a bare name,
// an alias or a path ("/db/primary").
type Dependency struct {
	Name     string
	Optional bool
}

// ConstructorFunc receives the resolved dependencies in declaration order.
// A missing optional dependency is passed as nil.
type ConstructorFunc func(args []any, inv *Invocation) (any, error)

// Constructor resolves a declared dependency list against the owning
// container and hands the results to its function. A call option under a
// dependency's name is used instead of resolving it.
//
//	c.Set(container.NewConstructor("users",
//	    []container.Dependency{{Name: "db"}, {Name: "cache", Optional: true}},
//	    func(args []any, _ *container.Invocation) (any, error) {
//	        return NewUserRepository(args[0].(*sql.DB)), nil
//	    }))
type Constructor struct {
	base
	deps []Dependency
	fn   ConstructorFunc
}

func NewConstructor(name string, deps []Dependency, fn ConstructorFunc, opts ...EntryOption) *Constructor {
	return &Constructor{base: newBase(name, opts), deps: deps, fn: fn}
}

// Dependencies returns the declared dependency list.
func (e *Constructor) Dependencies() []Dependency { return e.deps }

func (e *Constructor) New(inv *Invocation) (any, error) {
	if e.fn == nil {
		return nil, fmt.Errorf("%w: constructor (%s) has no function", ErrInvalidService, e.name)
	}
	services := inv.Services()
	args := make([]any, len(e.deps))
	for i, dep := range e.deps {
		if v, ok := inv.Take(dep.Name); ok {
			args[i] = v
			continue
		}
		if services == nil {
			return nil, fmt.Errorf("constructor (%s): no container to resolve (%s)", e.name, dep.Name)
		}
		v, err := services.Get(dep.Name)
		if err != nil {
			if dep.Optional && missing(err) {
				continue
			}
			return nil, fmt.Errorf("constructor (%s): resolving dependency (%s): %w", e.name, dep.Name, err)
		}
		args[i] = v
	}
	return e.fn(args, inv)
}

// missing reports a dependency that does not exist, as opposed to one that
// exists but failed to build.
func missing(err error) bool {
	return errors.Is(err, ErrServiceNotFound) && !errors.Is(err, ErrServiceCreate)
}

// ── Plugin loader ─────────────────────────────────────────────────────────────

// PluginLoader is an Aggregate that creates any name its Resolver knows.
//
//	c.Set(container.NewPluginLoader("exporters", plugins))
//	csv, err := c.Get("csv")
type PluginLoader struct {
	base
	resolver Resolver
}

func NewPluginLoader(name string, r Resolver, opts ...EntryOption) *PluginLoader {
	return &PluginLoader{base: newBase(name, opts), resolver: r}
}

func (l *PluginLoader) CanCreate(name string) bool {
	if l.resolver == nil {
		return false
	}
	_, ok, err := l.resolver.Resolve(name)
	return ok && err == nil
}

func (l *PluginLoader) New(inv *Invocation) (any, error) {
	if l.resolver == nil {
		return nil, fmt.Errorf("%w: plugin loader (%s) has no resolver", ErrInvalidService, l.name)
	}
	val, ok, err := l.resolver.Resolve(inv.Name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("plugin loader (%s) can't create (%s)", l.name, inv.Name)
	}
	return entryFor(inv.Name, val).New(inv)
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// entryFor turns a resolved value into an entry registered under name.
func entryFor(name string, val any) Entry {
	switch v := val.(type) {
	case Entry:
		if canonical(v.Name()) == canonical(name) {
			return v
		}
		return &renamed{Entry: v, name: name}
	case FactoryFunc:
		return NewFactory(name, v)
	case func(*Invocation) (any, error):
		return NewFactory(name, v)
	default:
		return NewInstance(name, v)
	}
}

// renamed serves an entry under another name.
type renamed struct {
	Entry
	name string
}

func (r *renamed) Name() string { return r.name }

func (r *renamed) Options() Options {
	if p, ok := r.Entry.(OptionsProvider); ok {
		return p.Options()
	}
	return nil
}
