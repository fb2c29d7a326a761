package container

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Observer is notified of the outcome of every top-level Get and Fresh.
type Observer interface {
	Resolved(namespace, name string, cached bool)
	Failed(namespace, name string, err error)
}

// ── Container ─────────────────────────────────────────────────────────────────

// Container is the IoC registry.
//
// It supports:
//   - Set / Extend (aliases, including aliases into nested containers)
//   - Get (cached per name and option shape) / Fresh (never cached)
//   - Nest / From (a tree of namespaced containers, "/" is the root)
//   - SetImplementation (contracts checked on every constructed instance)
//   - Initializer (priority-ordered hooks, inherited from every ancestor)
//
// A Container is not safe for concurrent use.
type Container struct {
	id        uuid.UUID
	arena     *arena
	namespace string
	names     *normalizer

	// normalized name → entry
	services map[string]Entry

	// entries that create services for names they claim
	aggregates []Aggregate

	// normalized alias → raw target (bare name or namespaced path)
	aliases map[string]string

	// normalized name → contract
	implementations map[string]Contract

	// resolved name → option hash → instance
	instances map[string]map[uint64]any

	// normalized namespace → nested container
	children map[string]*Container

	initializer *InitializerAggregate
	capped      *cappedPolicy

	logger   *zap.Logger
	observer Observer
}

// New creates an empty root container.
func New(opts ...Option) *Container {
	c := &Container{
		id:              uuid.New(),
		names:           newNormalizer(),
		services:        make(map[string]Entry),
		aliases:         make(map[string]string),
		implementations: make(map[string]Contract),
		instances:       make(map[string]map[uint64]any),
		children:        make(map[string]*Container),
		logger:          zap.NewNop(),
	}
	c.arena = newArena(c)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Namespace returns the normalized namespace; empty for an unnamed root.
func (c *Container) Namespace() string { return c.namespace }

// Logger returns the container's logger.
func (c *Container) Logger() *zap.Logger { return c.logger }

// Observer returns the installed observer, or nil.
func (c *Container) Observer() Observer { return c.observer }

// ── Registration ──────────────────────────────────────────────────────────────

// SetImplementation declares the contract every instance created for name
// must satisfy. It must be called before a service is registered under the
// name or its local alias target; names only claimed by an aggregate or a
// capped resolver can still receive one.
func (c *Container) SetImplementation(name string, contract Contract) error {
	if contract.IsZero() {
		return fmt.Errorf("%w: for (%s)", ErrInvalidContract, name)
	}
	cName, err := c.names.name(name)
	if err != nil {
		return err
	}
	local := cName
	if resolved, err := c.Extended(name); err == nil && !isPath(resolved) {
		local = resolved
	}
	if _, ok := c.services[local]; ok {
		return fmt.Errorf("%w: service (%s) is implemented; interface must be defined before service registration",
			ErrAlreadyRegistered, name)
	}
	c.implementations[cName] = contract
	return nil
}

// HasImplementation returns the contract declared for name. Aliases are
// resolved first, so an alias reports its target's contract.
func (c *Container) HasImplementation(name string) (Contract, bool) {
	cName, err := c.names.name(name)
	if err != nil {
		return Contract{}, false
	}
	if resolved, err := c.Extended(name); err == nil && !isPath(resolved) {
		if ct, ok := c.implementations[resolved]; ok {
			return ct, true
		}
	}
	ct, ok := c.implementations[cName]
	return ct, ok
}

// Set registers entry under its normalized name.
//
//	c.Set(container.NewFactory("mailer", func(inv *container.Invocation) (any, error) {
//	    return mail.New(inv.Options.String("dsn", "")), nil
//	}))
func (c *Container) Set(entry Entry) error {
	if entry == nil {
		return fmt.Errorf("%w: nil entry", ErrInvalidService)
	}

	if r, ok := entry.(Registrar); ok {
		if err := r.OnRegister(c); err != nil {
			return fmt.Errorf("container: registering (%s): %w", entry.Name(), err)
		}
	}

	if agg, ok := entry.(Aggregate); ok {
		c.aggregates = append(c.aggregates, agg)
		c.logger.Debug("aggregate registered", zap.String("namespace", c.namespace), zap.String("service", entry.Name()))
		return nil
	}

	cName, err := c.names.name(entry.Name())
	if err != nil {
		return err
	}
	if err := c.checkOverride(entry.Name(), cName); err != nil {
		return err
	}

	// A name registered as a service stops being an alias.
	delete(c.aliases, cName)
	c.services[cName] = entry
	delete(c.instances, cName)

	c.logger.Debug("service registered",
		zap.String("namespace", c.namespace),
		zap.String("service", cName),
		zap.Bool("allow_override", entry.AllowOverride()))
	return nil
}

// Extend declares newName as an alias of target. The target may be a local
// service or alias, or a path into a nested container ("sub/sub2/service").
// Targets are not validated here, so aliases may be declared before what
// they point to exists.
func (c *Container) Extend(newName, target string) error {
	cName, err := c.names.name(newName)
	if err != nil {
		return err
	}
	if canonical(target) == "" {
		return fmt.Errorf("%w: alias (%s) has an empty target", ErrInvalidName, newName)
	}
	if canonical(target) == cName {
		return &AliasCycleError{Chain: []string{cName, cName}}
	}

	if err := c.checkOverride(newName, cName); err != nil {
		return err
	}

	c.aliases[cName] = target
	c.logger.Debug("alias registered",
		zap.String("namespace", c.namespace),
		zap.String("alias", cName),
		zap.String("target", target))
	return nil
}

// checkOverride fails when cName is bound, directly or through its local
// alias target, to an entry that does not allow override.
func (c *Container) checkOverride(raw, cName string) error {
	if existing, ok := c.services[cName]; ok && !existing.AllowOverride() {
		return fmt.Errorf("%w: a service by the name (%s) already exists and can't be overridden",
			ErrOverrideNotAllowed, raw)
	}
	if _, ok := c.aliases[cName]; !ok {
		return nil
	}
	resolved, err := c.Extended(raw)
	if err != nil || isPath(resolved) {
		return nil
	}
	if existing, ok := c.services[resolved]; ok && !existing.AllowOverride() {
		return fmt.Errorf("%w: the name (%s) extends (%s) which can't be overridden",
			ErrOverrideNotAllowed, raw, resolved)
	}
	return nil
}

// ── Initializers ──────────────────────────────────────────────────────────────

// Initializer returns the container's hook aggregate, creating it on first
// use with a default hook that injects this container into ServicesAware
// values.
func (c *Container) Initializer() *InitializerAggregate {
	if c.initializer == nil {
		c.initializer = NewInitializerAggregate()
		c.initializer.AddCallable(func(instance any) error {
			if aware, ok := instance.(ServicesAware); ok {
				aware.SetServices(c)
			}
			return nil
		}, servicesAwarePriority)
	}
	return c.initializer
}

// initialize runs every ancestor's chain, root first, then this container's.
func (c *Container) initialize(target any) error {
	for _, node := range c.lineage() {
		if err := node.Initializer().Initialize(target); err != nil {
			return err
		}
	}
	return nil
}
