package container

import (
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// ── Resolvers ─────────────────────────────────────────────────────────────────

// Resolver discovers services that were never registered. Resolve returns
// ok=false when it does not know name. The value may be an Entry, a
// func() any called on every construction, or a prebuilt value.
type Resolver interface {
	Resolve(name string) (val any, ok bool, err error)
}

// MapResolver is an in-memory Resolver keyed by normalized name.
//
//	plugins := container.NewMapResolver().
//	    Provide("csv", func() any { return &CSVExporter{} }).
//	    Provide("json", &JSONExporter{})
type MapResolver struct {
	items map[string]any
}

func NewMapResolver() *MapResolver {
	return &MapResolver{items: map[string]any{}}
}

// Provide stores val under name and returns the resolver for chaining.
func (r *MapResolver) Provide(name string, val any) *MapResolver {
	r.items[canonical(name)] = val
	return r
}

// Names returns the known names in sorted order.
func (r *MapResolver) Names() []string {
	out := make([]string, 0, len(r.items))
	for name := range r.items {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Resolve implements Resolver. A panic is converted into ErrResolverPanic.
func (r *MapResolver) Resolve(name string) (val any, ok bool, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			val = nil
			ok = false
			err = fmt.Errorf("%w: %v", ErrResolverPanic, rec)
		}
	}()

	v, ok := r.items[canonical(name)]
	return v, ok, nil
}

// ── Capped container ──────────────────────────────────────────────────────────

// Capped is a container variant that validates every instance returned for a
// bare name and falls back to a Resolver before reporting a service as not
// found. Only capped containers of the same variant can be nested into it.
//
//	exporters := container.NewCapped("exporters", func(v any) error {
//	    if _, ok := v.(Exporter); !ok {
//	        return fmt.Errorf("%T is not an Exporter", v)
//	    }
//	    return nil
//	}, container.WithResolver(plugins))
type Capped struct {
	*Container
}

// NewCapped creates a capped root container. validate may be nil.
func NewCapped(variant string, validate func(instance any) error, opts ...Option) *Capped {
	policy := &cappedPolicy{variant: variant, check: validate}
	opts = append([]Option{func(c *Container) { c.capped = policy }}, opts...)
	return &Capped{Container: New(opts...)}
}

// Variant returns the variant name given to NewCapped.
func (c *Capped) Variant() string { return c.capped.variant }

// WithResolver installs the fallback resolver of a capped container. It has
// no effect on containers created with New.
func WithResolver(r Resolver) Option {
	return func(c *Container) {
		if c.capped != nil {
			c.capped.resolver = r
		}
	}
}

type cappedPolicy struct {
	variant  string
	check    func(instance any) error
	resolver Resolver
}

// validate runs the variant check. Instances reached through a namespaced
// path were validated by the container that owns them.
func (p *cappedPolicy) validate(requested string, instance any) error {
	if p == nil || p.check == nil || isPath(canonical(requested)) {
		return nil
	}
	if err := p.check(instance); err != nil {
		return fmt.Errorf("container: %s rejected (%s): %w", p.variant, requested, err)
	}
	return nil
}

func (p *cappedPolicy) canResolve(name string) bool {
	if p == nil || p.resolver == nil {
		return false
	}
	_, ok, err := p.resolver.Resolve(name)
	return ok && err == nil
}

// attain asks the resolver for name and registers the result as an ordinary
// service, so later lookups take the normal path.
func (p *cappedPolicy) attain(c *Container, name string) (bool, error) {
	if p.resolver == nil {
		return false, nil
	}
	val, ok, err := p.resolver.Resolve(name)
	if err != nil || !ok {
		return false, err
	}
	if err := c.Set(entryFor(name, val)); err != nil {
		return false, err
	}
	c.logger.Debug("service attained from resolver", zap.String("namespace", c.namespace), zap.String("service", name))
	return true, nil
}
