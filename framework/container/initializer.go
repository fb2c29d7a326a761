package container

import (
	"fmt"
	"sort"
)

// DefaultPriority is used for hooks added without an explicit priority.
const DefaultPriority = 10

// servicesAwarePriority runs the container injection hook ahead of any
// ordinary hook.
const servicesAwarePriority = 10000

// Initializer is a hook run against every value a container constructs:
// first against the per-call Invocation, then against the created instance.
type Initializer interface {
	Initialize(instance any) error
}

// Prioritized lets an Initializer declare its own priority.
type Prioritized interface {
	Priority() int
}

// InitializerFunc adapts a plain function to Initializer.
//
//	c.Initializer().AddCallable(func(instance any) error {
//	    if l, ok := instance.(LoggerAware); ok {
//	        l.SetLogger(logger)
//	    }
//	    return nil
//	}, 20)
type InitializerFunc func(instance any) error

func (f InitializerFunc) Initialize(instance any) error { return f(instance) }

type hook struct {
	initializer Initializer
	priority    int
	seq         int
}

// InitializerAggregate is an ordered set of hooks. Higher priorities run
// first; hooks with equal priority run in insertion order.
type InitializerAggregate struct {
	hooks []hook
	seq   int
}

// NewInitializerAggregate returns an empty aggregate.
func NewInitializerAggregate() *InitializerAggregate {
	return &InitializerAggregate{}
}

// AddCallable adds fn with the given priority.
func (a *InitializerAggregate) AddCallable(fn InitializerFunc, priority int) *InitializerAggregate {
	if fn == nil {
		panic("container: nil initializer callable")
	}
	return a.add(fn, priority)
}

// AddInitializer adds init with its declared priority (see Prioritized),
// falling back to DefaultPriority.
func (a *InitializerAggregate) AddInitializer(init Initializer) *InitializerAggregate {
	priority := DefaultPriority
	if p, ok := init.(Prioritized); ok {
		priority = p.Priority()
	}
	return a.AddInitializerAt(init, priority)
}

// AddInitializerAt adds init with an explicit priority, ignoring the one it
// declares.
func (a *InitializerAggregate) AddInitializerAt(init Initializer, priority int) *InitializerAggregate {
	if init == nil {
		panic("container: nil initializer")
	}
	return a.add(init, priority)
}

func (a *InitializerAggregate) add(init Initializer, priority int) *InitializerAggregate {
	a.seq++
	a.hooks = append(a.hooks, hook{initializer: init, priority: priority, seq: a.seq})
	return a
}

// Len reports the number of hooks.
func (a *InitializerAggregate) Len() int { return len(a.hooks) }

// Initialize runs every hook against instance. The first failing hook stops
// the chain and its error is returned.
func (a *InitializerAggregate) Initialize(instance any) error {
	for _, h := range a.snapshot() {
		if err := h.initializer.Initialize(instance); err != nil {
			return fmt.Errorf("initializer (priority %d): %w", h.priority, err)
		}
	}
	return nil
}

// Priority makes an aggregate usable as a nested Initializer.
func (a *InitializerAggregate) Priority() int { return 0 }

// snapshot returns the hooks in execution order. Hooks added while the
// chain runs are not visited by that run.
func (a *InitializerAggregate) snapshot() []hook {
	hooks := make([]hook, len(a.hooks))
	copy(hooks, a.hooks)
	sort.SliceStable(hooks, func(i, j int) bool {
		if hooks[i].priority != hooks[j].priority {
			return hooks[i].priority > hooks[j].priority
		}
		return hooks[i].seq < hooks[j].seq
	})
	return hooks
}
