package builder

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/km-arc/go-ioc/framework/container"
)

// Build validates def and replays it onto c in a fixed order: namespace,
// implementations, initializers, nested, extends, services. Contracts are
// therefore in place before any service of this definition is registered,
// and aliases may point into nested containers built in the same pass.
//
// A nested definition whose namespace already exists under c is built into
// that child; otherwise a new child inheriting c's logger and observer is
// created and nested.
func Build(c *container.Container, def *Definition, cat *Catalog) error {
	if err := Validate(def); err != nil {
		return err
	}
	if cat == nil {
		cat = NewCatalog()
	}
	return build(c, def, cat)
}

func build(c *container.Container, def *Definition, cat *Catalog) error {
	if def.Namespace != "" && c.Parent() == nil && c.Namespace() == "" {
		container.WithNamespace(def.Namespace)(c)
	}

	for _, name := range sortedKeys(def.Implementations) {
		ct, err := cat.contract(def.Implementations[name])
		if err != nil {
			return err
		}
		if err := c.SetImplementation(name, ct); err != nil {
			return err
		}
	}

	for _, ref := range def.Initializers {
		init, err := cat.initializer(ref.Initializer)
		if err != nil {
			return err
		}
		if ref.Priority == "" {
			c.Initializer().AddInitializer(init)
			continue
		}
		priority, err := strconv.Atoi(ref.Priority)
		if err != nil {
			return fmt.Errorf("builder: initializer (%s): %w", ref.Initializer, err)
		}
		c.Initializer().AddInitializerAt(init, priority)
	}

	for _, ns := range sortedKeys(def.Nested) {
		child, err := nested(c, ns)
		if err != nil {
			return err
		}
		if sub := def.Nested[ns]; sub != nil {
			if err := build(child, sub, cat); err != nil {
				return fmt.Errorf("builder: nested (%s): %w", ns, err)
			}
		}
	}

	for _, alias := range sortedKeys(def.Extends) {
		if err := c.Extend(alias, def.Extends[alias]); err != nil {
			return err
		}
	}

	for _, svc := range def.Services {
		entry, err := cat.entry(svc)
		if err != nil {
			return err
		}
		if err := c.Set(entry); err != nil {
			return err
		}
	}

	c.Logger().Debug("definition built",
		zap.String("path", c.Path()),
		zap.Int("services", len(def.Services)),
		zap.Int("nested", len(def.Nested)))
	return nil
}

func nested(c *container.Container, ns string) (*container.Container, error) {
	if child, err := c.From(ns); err == nil {
		return child, nil
	}
	child := container.New(
		container.WithLogger(c.Logger()),
		container.WithObserver(c.Observer()))
	if err := c.Nest(child, ns); err != nil {
		return nil, err
	}
	return child, nil
}
