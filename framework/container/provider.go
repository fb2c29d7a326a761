package container

import (
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// ── ServiceProvider interface ─────────────────────────────────────────────────

// ServiceProvider mirrors Laravel's Illuminate\Support\ServiceProvider.
//
// Every provider must implement at minimum Register().
// Boot() is called after ALL providers have been registered, making it safe
// to resolve other services inside Boot().
//
//	// Laravel:
//	// class AppServiceProvider extends ServiceProvider {
//	//     public function register(): void { $this->app->singleton(...); }
//	//     public function boot(): void     { /* use resolved services */ }
//	// }
//
//	type AppServiceProvider struct{ container.BaseProvider }
//
//	func (p *AppServiceProvider) Register(app *container.Container) error {
//	    return app.Set(container.NewConstructor("mailer",
//	        []container.Dependency{{Name: "config"}},
//	        func(args []any, _ *container.Invocation) (any, error) {
//	            return mail.New(args[0].(*config.Config)), nil
//	        }))
//	}
//
//	func (p *AppServiceProvider) Boot(app *container.Container) error {
//	    logger, err := container.Get[*zap.Logger](app, "logger")
//	    if err != nil {
//	        return err
//	    }
//	    logger.Info("application booted")
//	    return nil
//	}
type ServiceProvider interface {
	// Register sets services into the container.
	// Do NOT resolve other services here; use Boot() for that.
	Register(app *Container) error

	// Boot is called after all providers are registered.
	Boot(app *Container) error

	// Provides returns the service names this provider registers.
	// Used for deferred (lazy) provider loading.
	//
	//	// Laravel: public function provides(): array { return [Cache::class]; }
	Provides() []string

	// IsDeferred returns true if this provider should be loaded lazily,
	// only when one of its Provides() names is first resolved.
	//
	//	// Laravel: protected $defer = true;
	IsDeferred() bool
}

// ── BaseProvider ──────────────────────────────────────────────────────────────

// BaseProvider is an embeddable struct that provides no-op implementations
// of Boot(), Provides(), and IsDeferred().
//
//	type MyProvider struct{ container.BaseProvider }
//	func (p *MyProvider) Register(app *container.Container) error { ... }
type BaseProvider struct{}

func (p *BaseProvider) Boot(_ *Container) error { return nil }
func (p *BaseProvider) Provides() []string      { return nil }
func (p *BaseProvider) IsDeferred() bool        { return false }

// ── ProviderRegistry ──────────────────────────────────────────────────────────

// ProviderRegistry manages registration and booting of ServiceProviders,
// including deferred (lazy) providers.
//
// It mirrors the behaviour of Laravel's Application::registerConfiguredProviders
// and Application::bootProviders.
type ProviderRegistry struct {
	app        *Container
	eager      []ServiceProvider
	deferred   map[string]ServiceProvider // service name → provider
	loaded     map[ServiceProvider]bool
	booted     bool
	registered map[ServiceProvider]bool
}

// NewProviderRegistry creates a registry bound to app.
func NewProviderRegistry(app *Container) *ProviderRegistry {
	return &ProviderRegistry{
		app:        app,
		deferred:   make(map[string]ServiceProvider),
		loaded:     make(map[ServiceProvider]bool),
		registered: make(map[ServiceProvider]bool),
	}
}

// Register adds a provider and calls its Register() method (unless deferred).
//
//	// Laravel: $app->register(new AppServiceProvider($app))
func (r *ProviderRegistry) Register(provider ServiceProvider) error {
	if r.registered[provider] {
		return nil
	}
	r.registered[provider] = true

	if provider.IsDeferred() {
		return r.deferProvider(provider)
	}

	if err := provider.Register(r.app); err != nil {
		return fmt.Errorf("provider %T: register: %w", provider, err)
	}
	r.loaded[provider] = true
	r.eager = append(r.eager, provider)

	// If already booted, boot this provider immediately
	if r.booted {
		if err := provider.Boot(r.app); err != nil {
			return fmt.Errorf("provider %T: boot: %w", provider, err)
		}
	}
	return nil
}

// deferProvider sets an overridable placeholder for each provided name. The
// first construction of any of them registers the provider, whose entries
// replace the placeholders.
func (r *ProviderRegistry) deferProvider(provider ServiceProvider) error {
	for _, name := range provider.Provides() {
		r.deferred[name] = provider
		if err := r.app.Set(&deferredEntry{name: name, provider: provider, registry: r}); err != nil {
			return fmt.Errorf("provider %T: deferring (%s): %w", provider, name, err)
		}
	}
	return nil
}

// load registers and, when the registry is booted, boots a deferred provider.
func (r *ProviderRegistry) load(provider ServiceProvider) error {
	if r.loaded[provider] {
		return nil
	}
	r.loaded[provider] = true
	for _, name := range provider.Provides() {
		delete(r.deferred, name)
	}

	r.app.Logger().Debug("loading deferred provider", zap.String("provider", fmt.Sprintf("%T", provider)))
	if err := provider.Register(r.app); err != nil {
		return fmt.Errorf("provider %T: register: %w", provider, err)
	}
	if r.booted {
		if err := provider.Boot(r.app); err != nil {
			return fmt.Errorf("provider %T: boot: %w", provider, err)
		}
	}
	return nil
}

// Boot calls Boot() on all eager providers.
// Must be called after ALL providers have been registered.
//
//	// Laravel: $app->boot()
func (r *ProviderRegistry) Boot() error {
	if r.booted {
		return nil
	}
	r.booted = true
	for _, provider := range r.eager {
		if err := provider.Boot(r.app); err != nil {
			return fmt.Errorf("provider %T: boot: %w", provider, err)
		}
	}
	return nil
}

// Booted returns true if Boot() has been called.
func (r *ProviderRegistry) Booted() bool { return r.booted }

// Providers returns all registered eager providers.
func (r *ProviderRegistry) Providers() []ServiceProvider { return r.eager }

// Deferred returns the service names whose provider has not been loaded yet.
func (r *ProviderRegistry) Deferred() []string {
	out := make([]string, 0, len(r.deferred))
	for name := range r.deferred {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// ── Deferred placeholder ──────────────────────────────────────────────────────

type deferredEntry struct {
	name     string
	provider ServiceProvider
	registry *ProviderRegistry
}

func (e *deferredEntry) Name() string        { return e.name }
func (e *deferredEntry) AllowOverride() bool { return true }

// New loads the provider, then builds the entry it registered under the same
// name with this invocation.
func (e *deferredEntry) New(inv *Invocation) (any, error) {
	if err := e.registry.load(e.provider); err != nil {
		return nil, err
	}
	entry := e.registry.app.registered(inv.Name)
	if entry == nil {
		return nil, fmt.Errorf("provider %T did not register (%s)", e.provider, e.name)
	}
	if entry == Entry(e) {
		return nil, fmt.Errorf("provider %T left (%s) deferred after registering", e.provider, e.name)
	}
	if p, ok := entry.(OptionsProvider); ok {
		inv.Options = p.Options().Merge(inv.Options)
	}
	return entry.New(inv)
}
