// Package container provides a Laravel-style IoC (Inversion of Control)
// container and Service Provider system for Go.
//
// # Overview
//
// A container maps case- and space-insensitive names to entries that build
// services lazily. It resolves aliases (including aliases into nested
// containers), protects entries from being overridden, checks implementation
// contracts and runs priority-ordered initializers on everything it builds.
//
// Containers are not safe for concurrent use. Build the tree at startup, then
// resolve.
//
// # Container Lifecycle
//
//  1. Create: c := container.New(container.WithLogger(logger))
//  2. Register providers: registry.Register(&MyProvider{})
//  3. Boot: registry.Boot()        // safe to resolve everything after this
//  4. Serve requests
//
// # Entries
//
//	// Pre-built value
//	// Laravel: $app->instance(Config::class, $config)
//	c.Set(container.NewInstance("config", cfg))
//
//	// Closure
//	// Laravel: $app->bind(Cache::class, fn($app) => new RedisCache)
//	c.Set(container.NewFactory("cache", func(inv *container.Invocation) (any, error) {
//	    return cache.NewRedis(inv.Options.String("addr", "localhost:6379")), nil
//	}))
//
//	// Declared dependencies
//	c.Set(container.NewConstructor("users",
//	    []container.Dependency{{Name: "db"}},
//	    func(args []any, _ *container.Invocation) (any, error) {
//	        return NewUserRepository(args[0].(*sql.DB)), nil
//	    },
//	    container.WithAllowOverride(false)))
//
//	// Alias
//	// Laravel: $app->alias('cache', 'cacheManager')
//	c.Extend("cacheManager", "cache")
//
// # Resolving
//
//	// Cached per name and option shape
//	raw, err := c.Get("cache")
//	replica, err := c.Get("db", container.Options{"role": "replica"})
//
//	// Never cached
//	tmp, err := c.Fresh("cache")
//
//	// Generic
//	cache, err := container.Get[*RedisCache](c, "cache")
//
// # Nesting
//
//	fs := container.New()
//	fs.Set(container.NewInstance("local", localDisk))
//	c.Nest(fs, "filesystem")
//
//	c.Extend("disk", "filesystem/local") // resolved lazily
//	disk, err := c.Get("disk")
//	root, err := fs.From("/")
//
// # Contracts
//
//	c.SetImplementation("logger", container.InterfaceOf[Logger]())
//	c.Set(container.NewInstance("logger", &fileLogger{})) // checked on first Get
//
// # Initializers
//
//	c.Initializer().AddCallable(func(v any) error {
//	    if l, ok := v.(interface{ SetLogger(*zap.Logger) }); ok {
//	        l.SetLogger(logger)
//	    }
//	    return nil
//	}, 100)
//
// # Service Providers
//
//	type AppServiceProvider struct{ container.BaseProvider }
//
//	func (p *AppServiceProvider) Register(app *container.Container) error {
//	    return app.Set(container.NewFactory("mailer", newMailer))
//	}
//
//	registry := container.NewProviderRegistry(c)
//	registry.Register(&AppServiceProvider{})
//	registry.Boot()
//
// # Deferred Providers
//
//	type HeavyProvider struct{ container.BaseProvider }
//
//	func (p *HeavyProvider) IsDeferred() bool   { return true }
//	func (p *HeavyProvider) Provides() []string { return []string{"heavy"} }
//	func (p *HeavyProvider) Register(app *container.Container) error {
//	    // only called on first app.Get("heavy")
//	    return app.Set(container.NewFactory("heavy", heavySetup))
//	}
package container
