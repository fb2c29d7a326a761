package container

// ── Construction contract ─────────────────────────────────────────────────────

// Entry is the registration unit stored by a container. The registered value
// is a template: each Fresh call builds a new Invocation carrying the merged
// options, so call options never leak between calls.
type Entry interface {
	// Name is the raw (not yet normalized) service name.
	Name() string

	// AllowOverride reports whether another entry may replace this one.
	AllowOverride() bool

	// New builds the runtime instance.
	New(inv *Invocation) (any, error)
}

// OptionsProvider is implemented by entries that carry default options.
// Call options are merged on top of them.
type OptionsProvider interface {
	Options() Options
}

// Aggregate is an entry that can create services for names it claims
// rather than for its own name only. Aggregates are consulted, in
// registration order, when a name has no entry of its own.
type Aggregate interface {
	Entry
	CanCreate(name string) bool
}

// ── Capabilities ──────────────────────────────────────────────────────────────

// Registrar is implemented by entries that need the container before they
// are registered. OnRegister runs inside Set, ahead of any other effect.
type Registrar interface {
	OnRegister(c *Container) error
}

// ServicesAware values receive the owning container from the default
// initializer hook of every container.
type ServicesAware interface {
	SetServices(c *Container)
}

// OptionsConfigurable instances receive the options their entry did not
// consume while constructing them.
type OptionsConfigurable interface {
	WithOptions(opts Options) error
}

// ── Invocation ────────────────────────────────────────────────────────────────

// Invocation is the per-call state of one construction. Initializers see it
// before the entry's New runs, so hooks may inspect or adjust options.
type Invocation struct {
	// Name is the normalized name being created. For aggregates this is the
	// requested name, not the aggregate's own.
	Name    string
	Options Options

	services *Container
	consumed map[string]bool
}

func newInvocation(name string, opts Options) *Invocation {
	return &Invocation{Name: name, Options: opts, consumed: make(map[string]bool)}
}

// SetServices implements ServicesAware.
func (inv *Invocation) SetServices(c *Container) { inv.services = c }

// Services returns the container that owns this construction.
func (inv *Invocation) Services() *Container { return inv.services }

// Take returns the option under key and marks it consumed.
func (inv *Invocation) Take(key string) (any, bool) {
	v, ok := inv.Options[key]
	if ok {
		inv.consumed[key] = true
	}
	return v, ok
}

// Leftover returns the options not consumed by Take.
func (inv *Invocation) Leftover() Options {
	out := make(Options, len(inv.Options))
	for k, v := range inv.Options {
		if !inv.consumed[k] {
			out[k] = v
		}
	}
	return out
}
