package container

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"
)

// ── Alias resolution ──────────────────────────────────────────────────────────

// Extended follows the alias chain of name and returns the name it finally
// stands for. It stops at the first target that is a namespaced path
// ("sub/service"); that part of the chain belongs to the target container.
// A name that is not an alias is returned normalized. A path is returned
// normalized and unresolved.
func (c *Container) Extended(name string) (string, error) {
	if isPath(canonical(name)) {
		return c.names.path(name), nil
	}

	current, err := c.names.name(name)
	if err != nil {
		return "", err
	}
	visited := map[string]bool{current: true}
	chain := []string{current}

	for {
		target, ok := c.aliases[current]
		if !ok {
			return current, nil
		}
		if isPath(canonical(target)) {
			return c.names.path(target), nil
		}
		next, err := c.names.name(target)
		if err != nil {
			return "", err
		}
		chain = append(chain, next)
		if visited[next] {
			return "", &AliasCycleError{Chain: chain}
		}
		visited[next] = true
		current = next
	}
}

// Has reports whether name, after alias resolution, can be produced by this
// container.
func (c *Container) Has(name string) bool {
	resolved, err := c.Extended(name)
	if err != nil {
		return false
	}
	if isPath(resolved) {
		target, svc, err := c.target(resolved)
		if err != nil || svc == "" {
			return false
		}
		return target.Has(svc)
	}
	return c.registered(resolved) != nil || c.capped.canResolve(resolved)
}

// ── Get / Fresh ───────────────────────────────────────────────────────────────

// Get returns the instance for name, creating it on first use. Instances are
// cached per resolved name and option shape: identical options yield the
// same instance, different options yield distinct ones.
//
//	db, err := c.Get("db")
//	replica, err := c.Get("db", container.Options{"role": "replica"})
func (c *Container) Get(name string, opts ...Options) (any, error) {
	instance, cached, err := c.get(name, mergeOptions(opts))
	c.observe(name, cached, err)
	return instance, err
}

// Fresh always constructs a new instance of name, bypassing the cache.
func (c *Container) Fresh(name string, opts ...Options) (any, error) {
	instance, err := c.fresh(name, mergeOptions(opts))
	c.observe(name, false, err)
	return instance, err
}

func (c *Container) get(name string, opts Options) (any, bool, error) {
	resolved, err := c.enter(name)
	if err != nil {
		return nil, false, err
	}
	defer c.arena.leave()

	if isPath(resolved) {
		target, svc, err := c.target(resolved)
		if err != nil {
			return nil, false, err
		}
		return target.get(svc, opts)
	}

	key := cacheKey(resolved, opts)
	instance, cached := c.instances[resolved][key]
	if !cached {
		created, err := c.create(name, resolved, opts)
		if err != nil {
			return nil, false, err
		}
		if c.instances[resolved] == nil {
			c.instances[resolved] = make(map[uint64]any)
		}
		c.instances[resolved][key] = created
		instance = c.instances[resolved][key]
	} else if err := c.validateImplementation(name, resolved, instance); err != nil {
		// an alias may carry a contract its target's cached instance never met
		return nil, cached, err
	}

	if err := c.capped.validate(name, instance); err != nil {
		return nil, cached, err
	}
	return instance, cached, nil
}

func (c *Container) fresh(name string, opts Options) (any, error) {
	resolved, err := c.enter(name)
	if err != nil {
		return nil, err
	}
	defer c.arena.leave()

	if isPath(resolved) {
		target, svc, err := c.target(resolved)
		if err != nil {
			return nil, err
		}
		return target.fresh(svc, opts)
	}

	instance, err := c.create(name, resolved, opts)
	if err != nil {
		return nil, err
	}
	if err := c.capped.validate(name, instance); err != nil {
		return nil, err
	}
	return instance, nil
}

// enter records the resolution step for name and returns its resolved form.
// The caller must call c.arena.leave when enter succeeds.
func (c *Container) enter(name string) (string, error) {
	var stepName string
	if isPath(canonical(name)) {
		stepName = c.names.path(name)
	} else {
		cName, err := c.names.name(name)
		if err != nil {
			return "", err
		}
		stepName = cName
	}
	if err := c.arena.enter(step{node: c, name: stepName}); err != nil {
		return "", err
	}
	resolved, err := c.Extended(name)
	if err != nil {
		c.arena.leave()
		return "", err
	}
	return resolved, nil
}

// target splits a namespaced path into the container that owns the service
// and the bare service name.
func (c *Container) target(path string) (*Container, string, error) {
	idx := strings.LastIndex(path, Separator)
	if idx < 0 || idx == len(path)-1 {
		return nil, "", fmt.Errorf("%w: path (%s) names no service", ErrInvalidName, path)
	}
	prefix, svc := path[:idx], path[idx+1:]
	if prefix == "" {
		prefix = Separator
	}
	target, err := c.From(prefix)
	if err != nil {
		return nil, "", err
	}
	return target, svc, nil
}

// ── Construction ──────────────────────────────────────────────────────────────

// create builds a new instance of the local service resolved from requested.
func (c *Container) create(requested, resolved string, opts Options) (any, error) {
	entry, err := c.lookup(resolved)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, &ServiceNotFoundError{Requested: requested, Resolved: resolved, Namespace: c.namespace}
	}

	var defaults Options
	if provider, ok := entry.(OptionsProvider); ok {
		defaults = provider.Options()
	}
	inv := newInvocation(resolved, defaults.Merge(opts))

	instance, err := c.build(entry, inv)
	if err != nil {
		c.logger.Debug("service create failed",
			zap.String("namespace", c.namespace),
			zap.String("service", resolved),
			zap.Error(err))
		return nil, &ServiceCreateError{Name: requested, Err: err}
	}

	if err := c.validateImplementation(requested, resolved, instance); err != nil {
		return nil, err
	}

	c.logger.Debug("service created", zap.String("namespace", c.namespace), zap.String("service", resolved))
	return instance, nil
}

// lookup finds the entry able to create name: its own entry, then the first
// claiming aggregate, then a capped container's resolver. A nil entry with a
// nil error means not found.
func (c *Container) lookup(name string) (Entry, error) {
	if entry := c.registered(name); entry != nil {
		return entry, nil
	}
	if c.capped == nil {
		return nil, nil
	}
	attained, err := c.capped.attain(c, name)
	if err != nil || !attained {
		return nil, err
	}
	return c.registered(name), nil
}

func (c *Container) registered(name string) Entry {
	if entry, ok := c.services[name]; ok {
		return entry
	}
	for _, agg := range c.aggregates {
		if agg.CanCreate(name) {
			return agg
		}
	}
	return nil
}

func (c *Container) build(entry Entry, inv *Invocation) (any, error) {
	if err := c.initialize(inv); err != nil {
		return nil, err
	}

	instance, err := entry.New(inv)
	if err != nil {
		return nil, err
	}
	if isNil(instance) {
		return nil, ErrNilInstance
	}

	if err := c.initialize(instance); err != nil {
		return nil, err
	}

	if configurable, ok := instance.(OptionsConfigurable); ok {
		if leftover := inv.Leftover(); len(leftover) > 0 {
			if err := configurable.WithOptions(leftover); err != nil {
				return nil, err
			}
		}
	}
	return instance, nil
}

// validateImplementation enforces the contract of the requested name and of
// the local name it resolved to.
func (c *Container) validateImplementation(requested, resolved string, instance any) error {
	names := []string{resolved}
	if cName, err := c.names.name(requested); err == nil && cName != resolved {
		names = append(names, cName)
	}
	for _, name := range names {
		ct, ok := c.implementations[name]
		if !ok || ct.Satisfied(instance) {
			continue
		}
		return &ContractViolationError{Name: requested, Contract: ct, Got: fmt.Sprintf("%T", instance)}
	}
	return nil
}

func (c *Container) observe(name string, cached bool, err error) {
	if c.observer == nil {
		return
	}
	if err != nil {
		c.observer.Failed(c.namespace, name, err)
		return
	}
	c.observer.Resolved(c.namespace, name, cached)
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func cacheKey(name string, opts Options) uint64 {
	return xxhash.Sum64String(name + "\x00" + serialize(opts))
}

func mergeOptions(opts []Options) Options {
	switch len(opts) {
	case 0:
		return nil
	case 1:
		return opts[0]
	}
	return Options(nil).Merge(opts...)
}

func isPath(name string) bool { return strings.Contains(name, Separator) }

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
