// Package providers holds the framework's core service providers.
package providers

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/km-arc/go-ioc/framework/config"
	"github.com/km-arc/go-ioc/framework/container"
	"github.com/km-arc/go-ioc/framework/container/builder"
	"github.com/km-arc/go-ioc/framework/log"
	"github.com/km-arc/go-ioc/framework/routing"
)

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider sets the application configuration as "config".
// A nil Config is loaded from EnvFiles on first use.
//
// Services:
//   - "config"        → *config.Config
//   - "configuration" → alias of "config"
//
// Laravel equivalent:
//
//	// Illuminate\Foundation\Bootstrap\LoadConfiguration
//	$app->singleton('config', fn() => new Repository($items));
type ConfigServiceProvider struct {
	container.BaseProvider
	Config   *config.Config
	EnvFiles []string
}

func (p *ConfigServiceProvider) Register(app *container.Container) error {
	entry := container.Entry(container.NewInstance("config", p.Config))
	if p.Config == nil {
		envFiles := p.EnvFiles
		entry = container.NewFactory("config", func(*container.Invocation) (any, error) {
			return config.Load(envFiles...), nil
		})
	}
	if err := app.Set(entry); err != nil {
		return err
	}
	return app.Extend("configuration", "config")
}

// ── LogServiceProvider ────────────────────────────────────────────────────────

// LogServiceProvider sets the application logger as "logger". A nil Logger
// is built from the "config" service's log section.
//
// Laravel equivalent:
//
//	// Illuminate\Log\LogServiceProvider
//	$app->singleton('log', fn($app) => new LogManager($app));
type LogServiceProvider struct {
	container.BaseProvider
	Logger *zap.Logger
}

func (p *LogServiceProvider) Register(app *container.Container) error {
	if p.Logger != nil {
		return app.Set(container.NewInstance("logger", p.Logger))
	}
	return app.Set(container.NewConstructor("logger",
		[]container.Dependency{{Name: "config"}},
		func(args []any, _ *container.Invocation) (any, error) {
			return log.New(args[0].(*config.Config).Log)
		}))
}

// ── RoutingServiceProvider ────────────────────────────────────────────────────

// RoutingServiceProvider sets the HTTP router as "router". Requests are
// logged when a "logger" service exists.
//
// Laravel equivalent:
//
//	// Illuminate\Routing\RoutingServiceProvider
//	$app->singleton('router', fn($app) => new Router($app['events'], $app));
type RoutingServiceProvider struct {
	container.BaseProvider
}

func (p *RoutingServiceProvider) Register(app *container.Container) error {
	return app.Set(container.NewConstructor("router",
		[]container.Dependency{{Name: "logger", Optional: true}},
		func(args []any, _ *container.Invocation) (any, error) {
			logger, _ := args[0].(*zap.Logger)
			return routing.New(logger), nil
		}))
}

// ── MetricsServiceProvider ────────────────────────────────────────────────────

// MetricsServiceProvider is deferred: the registry is only set, and the
// runtime collectors attached, when "metrics" is first resolved.
type MetricsServiceProvider struct {
	container.BaseProvider
	Registry *prometheus.Registry
}

func (p *MetricsServiceProvider) Register(app *container.Container) error {
	reg := p.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	if err := reg.Register(collectors.NewGoCollector()); err != nil {
		var dup prometheus.AlreadyRegisteredError
		if !errors.As(err, &dup) {
			return err
		}
	}
	return app.Set(container.NewInstance("metrics", reg))
}

func (p *MetricsServiceProvider) Provides() []string { return []string{"metrics"} }
func (p *MetricsServiceProvider) IsDeferred() bool   { return true }

// ── DefinitionServiceProvider ─────────────────────────────────────────────────

// DefinitionServiceProvider builds the YAML definition named by
// IOC_DEFINITION into the application container at boot. Kinds, contracts
// and initializers referenced by the file come from Catalog.
type DefinitionServiceProvider struct {
	container.BaseProvider
	Catalog *builder.Catalog
}

func (p *DefinitionServiceProvider) Register(_ *container.Container) error { return nil }

func (p *DefinitionServiceProvider) Boot(app *container.Container) error {
	cfg, err := container.Get[*config.Config](app, "config")
	if err != nil {
		return err
	}
	if cfg.IoC.Definition == "" {
		return nil
	}

	def, err := builder.LoadFile(cfg.IoC.Definition)
	if err != nil {
		return err
	}
	if err := builder.Build(app, def, p.Catalog); err != nil {
		return err
	}
	app.Logger().Info("container definition loaded", zap.String("file", cfg.IoC.Definition))
	return nil
}
