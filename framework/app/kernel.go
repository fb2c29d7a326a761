// Package app wires the root container, the core providers and the HTTP
// surface into one Application.
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/km-arc/go-ioc/framework/config"
	"github.com/km-arc/go-ioc/framework/container"
	"github.com/km-arc/go-ioc/framework/container/builder"
	"github.com/km-arc/go-ioc/framework/inspector"
	"github.com/km-arc/go-ioc/framework/log"
	"github.com/km-arc/go-ioc/framework/metrics"
	"github.com/km-arc/go-ioc/framework/providers"
	"github.com/km-arc/go-ioc/framework/routing"
)

// Application is the top-level application container.
// It embeds the root Container and the ProviderRegistry so user code can
// call app.Set(), app.Extend(), app.Register() directly, exactly like $app
// in Laravel's bootstrap/app.php.
type Application struct {
	*container.Container
	Providers *container.ProviderRegistry

	// Catalog resolves the kinds, contracts and initializers named in the
	// IOC_DEFINITION file. Add to it before Boot.
	Catalog *builder.Catalog

	cfg     *config.Config
	mounted bool
}

// New loads configuration from envFiles (".env" by default), builds the
// logger and creates the application.
func New(envFiles ...string) (*Application, error) {
	cfg := config.Load(envFiles...)
	logger, err := log.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	return NewWithConfig(cfg, logger)
}

// NewWithConfig creates the application from an explicit configuration.
func NewWithConfig(cfg *config.Config, logger *zap.Logger) (*Application, error) {
	opts := []container.Option{container.WithLogger(logger)}

	var registry *prometheus.Registry
	if cfg.IoC.Metrics {
		registry = prometheus.NewRegistry()
		opts = append(opts, container.WithObserver(metrics.NewObserver(registry)))
	}

	c := container.New(opts...)
	a := &Application{
		Container: c,
		Providers: container.NewProviderRegistry(c),
		Catalog:   builder.NewCatalog(),
		cfg:       cfg,
	}

	// Framework core providers, in Laravel's order.
	core := []container.ServiceProvider{
		&providers.ConfigServiceProvider{Config: cfg},
		&providers.LogServiceProvider{Logger: logger},
		&providers.RoutingServiceProvider{},
		&providers.DefinitionServiceProvider{Catalog: a.Catalog},
	}
	if registry != nil {
		core = append(core, &providers.MetricsServiceProvider{Registry: registry})
	}
	for _, p := range core {
		if err := a.Register(p); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Register adds a ServiceProvider to the application.
func (a *Application) Register(provider container.ServiceProvider) error {
	return a.Providers.Register(provider)
}

// Boot runs the Boot() phase on all providers, then mounts the inspector
// and metrics endpoints when enabled.
func (a *Application) Boot() error {
	if err := a.Providers.Boot(); err != nil {
		return err
	}
	if a.mounted {
		return nil
	}
	a.mounted = true

	router := a.Router()
	if a.cfg.IoC.Inspector {
		inspector.Mount(router, a.cfg.IoC.InspectorPrefix, a.Container)
	}
	if a.cfg.IoC.Metrics {
		registry, err := container.Get[*prometheus.Registry](a.Container, "metrics")
		if err != nil {
			return err
		}
		router.Handle("/metrics", metrics.Handler(registry))
	}
	return nil
}

// Config resolves *config.Config from the container.
func (a *Application) Config() *config.Config {
	return container.MustGet[*config.Config](a.Container, "config")
}

// Logger resolves *zap.Logger from the container.
func (a *Application) Logger() *zap.Logger {
	return container.MustGet[*zap.Logger](a.Container, "logger")
}

// Router resolves *routing.Router from the container.
func (a *Application) Router() *routing.Router {
	return container.MustGet[*routing.Router](a.Container, "router")
}

// Run boots the application (if needed) and serves HTTP until ctx is done.
func (a *Application) Run(ctx context.Context) error {
	if err := a.Boot(); err != nil {
		return err
	}

	cfg := a.Config()
	logger := a.Logger()
	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("server started",
			zap.String("app", cfg.App.Name),
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.App.Env))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// Environment returns APP_ENV value.
func (a *Application) Environment() string { return a.Config().App.Env }
func (a *Application) IsLocal() bool       { return a.Environment() == "local" }
func (a *Application) IsProduction() bool  { return a.Environment() == "production" }
func (a *Application) IsTesting() bool     { return a.Environment() == "testing" }
func (a *Application) IsDebug() bool       { return a.Config().App.Debug }
func (a *Application) Version() string     { return "0.2.0" }
