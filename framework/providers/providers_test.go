package providers_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/km-arc/go-ioc/framework/config"
	"github.com/km-arc/go-ioc/framework/container"
	"github.com/km-arc/go-ioc/framework/container/builder"
	"github.com/km-arc/go-ioc/framework/providers"
	"github.com/km-arc/go-ioc/framework/routing"
)

func boot(t *testing.T, cfg *config.Config, extra ...container.ServiceProvider) (*container.Container, *container.ProviderRegistry) {
	t.Helper()
	c := container.New()
	registry := container.NewProviderRegistry(c)
	list := append([]container.ServiceProvider{
		&providers.ConfigServiceProvider{Config: cfg},
		&providers.LogServiceProvider{},
		&providers.RoutingServiceProvider{},
	}, extra...)
	for _, p := range list {
		require.NoError(t, registry.Register(p))
	}
	require.NoError(t, registry.Boot())
	return c, registry
}

func TestConfigServiceProvider(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Name: "Test"}}
	c, _ := boot(t, cfg)

	got, err := container.Get[*config.Config](c, "config")
	require.NoError(t, err)
	assert.Same(t, cfg, got)

	alias, err := c.Get("configuration")
	require.NoError(t, err)
	assert.Same(t, cfg, alias)
}

func TestConfigServiceProvider_LoadsLazily(t *testing.T) {
	t.Setenv("APP_NAME", "Lazy")
	c := container.New()
	require.NoError(t, (&providers.ConfigServiceProvider{EnvFiles: []string{"testdata/missing.env"}}).Register(c))

	cfg, err := container.Get[*config.Config](c, "config")
	require.NoError(t, err)
	assert.Equal(t, "Lazy", cfg.App.Name)
}

func TestLogServiceProvider(t *testing.T) {
	c, _ := boot(t, &config.Config{Log: config.LogConfig{Level: "warn", Format: "json"}})

	logger, err := container.Get[*zap.Logger](c, "logger")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zap.InfoLevel))
	assert.True(t, logger.Core().Enabled(zap.WarnLevel))
}

func TestLogServiceProvider_BadLevel(t *testing.T) {
	c, _ := boot(t, &config.Config{Log: config.LogConfig{Level: "shout"}})

	_, err := c.Get("logger")
	assert.ErrorIs(t, err, container.ErrServiceCreate)

	_, err = c.Get("router")
	assert.ErrorIs(t, err, container.ErrServiceCreate, "a broken optional logger is not skipped")
}

func TestLogServiceProvider_GivenLogger(t *testing.T) {
	logger := zap.NewNop()
	c := container.New()
	require.NoError(t, (&providers.LogServiceProvider{Logger: logger}).Register(c))

	got, err := c.Get("logger")
	require.NoError(t, err)
	assert.Same(t, logger, got)
}

func TestRoutingServiceProvider_WithoutLogger(t *testing.T) {
	c := container.New()
	require.NoError(t, (&providers.RoutingServiceProvider{}).Register(c))

	r, err := container.Get[*routing.Router](c, "router")
	require.NoError(t, err)
	assert.NotNil(t, r)
}

func TestMetricsServiceProvider_Deferred(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, registry := boot(t, &config.Config{}, &providers.MetricsServiceProvider{Registry: reg})

	assert.Equal(t, []string{"metrics"}, registry.Deferred())

	got, err := c.Get("metrics")
	require.NoError(t, err)
	assert.Same(t, reg, got)
	assert.Empty(t, registry.Deferred())

	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, mfs, "runtime collectors are attached on load")
}

func TestDefinitionServiceProvider(t *testing.T) {
	cfg := &config.Config{IoC: config.IoCConfig{Definition: "testdata/container.yaml"}}
	c, _ := boot(t, cfg, &providers.DefinitionServiceProvider{Catalog: builder.NewCatalog()})

	got, err := c.Get("greeting")
	require.NoError(t, err)
	assert.Equal(t, "hello", got)

	from, err := c.Get("mail/from")
	require.NoError(t, err)
	assert.Equal(t, "noreply@example.com", from)

	settings, err := c.Get("settings")
	require.NoError(t, err)
	assert.Same(t, cfg, settings)
}

func TestDefinitionServiceProvider_NoDefinition(t *testing.T) {
	c, _ := boot(t, &config.Config{}, &providers.DefinitionServiceProvider{})
	assert.Empty(t, c.Children())
}

func TestDefinitionServiceProvider_MissingFile(t *testing.T) {
	c := container.New()
	registry := container.NewProviderRegistry(c)
	require.NoError(t, registry.Register(&providers.ConfigServiceProvider{
		Config: &config.Config{IoC: config.IoCConfig{Definition: "testdata/nope.yaml"}},
	}))
	require.NoError(t, registry.Register(&providers.DefinitionServiceProvider{}))

	assert.Error(t, registry.Boot())
}
