package container_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-ioc/framework/container"
)

type exporter interface{ Export() string }

type csvExporter struct{}

func (csvExporter) Export() string { return "csv" }

type jsonExporter struct{ pretty bool }

func (jsonExporter) Export() string { return "json" }

func onlyExporters(v any) error {
	if _, ok := v.(exporter); !ok {
		return fmt.Errorf("%T is not an exporter", v)
	}
	return nil
}

func exporters(opts ...container.Option) *container.Capped {
	plugins := container.NewMapResolver().
		Provide("CSV", func() any { return csvExporter{} }).
		Provide("json", jsonExporter{pretty: true}).
		Provide("bogus", 42)
	return container.NewCapped("exporters", onlyExporters, append([]container.Option{container.WithResolver(plugins)}, opts...)...)
}

func TestCapped_ResolverRegistersLazily(t *testing.T) {
	c := exporters()
	assert.Empty(t, c.Services())
	assert.True(t, c.Has("csv"))
	assert.Empty(t, c.Services(), "Has must not register")

	got, err := container.Get[exporter](c.Container, "csv")
	require.NoError(t, err)
	assert.Equal(t, "csv", got.Export())
	assert.Equal(t, []string{"csv"}, c.Services())

	again, err := c.Get("csv")
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestCapped_ValidatesEveryInstance(t *testing.T) {
	c := exporters()

	_, err := c.Get("bogus")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "int is not an exporter")

	mustSet(t, c.Container, container.NewInstance("direct", "nope"))
	_, err = c.Fresh("direct")
	assert.Error(t, err)
}

func TestCapped_UnknownNameNotFound(t *testing.T) {
	c := exporters()
	_, err := c.Get("xml")
	assert.ErrorIs(t, err, container.ErrServiceNotFound)
	assert.False(t, c.Has("xml"))
}

func TestCapped_NestOnlySameVariant(t *testing.T) {
	c := exporters()

	assert.ErrorIs(t, c.Nest(container.New(), "plain"), container.ErrVariantMismatch)
	assert.ErrorIs(t, c.Nest(container.NewCapped("importers", nil).Container, "other"), container.ErrVariantMismatch)

	child := exporters()
	require.NoError(t, c.Nest(child.Container, "more"))
	assert.Equal(t, "exporters", child.Variant())
	assert.Equal(t, "exporters", c.Describe().Nested[0].Variant)
}

func TestCapped_PathLookupsValidatedByOwner(t *testing.T) {
	root := container.New()
	c := exporters()
	require.NoError(t, root.Nest(c.Container, "exporters"))

	got, err := root.Get("exporters/json")
	require.NoError(t, err)
	assert.Equal(t, jsonExporter{pretty: true}, got)
}

func TestWithResolver_IgnoredOnPlainContainer(t *testing.T) {
	c := container.New(container.WithResolver(container.NewMapResolver().Provide("x", 1)))
	assert.False(t, c.Has("x"))
}

// ── MapResolver ───────────────────────────────────────────────────────────────

func TestMapResolver(t *testing.T) {
	r := container.NewMapResolver().Provide(" Pdf ", "pdf")

	v, ok, err := r.Resolve("PDF")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "pdf", v)

	_, ok, err = r.Resolve("doc")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []string{"pdf"}, r.Names())
}

func TestPluginLoader_AggregateCreatesClaimedNames(t *testing.T) {
	c := container.New()
	plugins := container.NewMapResolver().
		Provide("csv", func() any { return &csvExporter{} }).
		Provide("json", container.NewFactory("anything", func(inv *container.Invocation) (any, error) {
			return jsonExporter{pretty: inv.Options["pretty"] == true}, nil
		}))
	mustSet(t, c, container.NewPluginLoader("exporters", plugins))

	assert.True(t, c.Has("csv"))
	assert.False(t, c.Has("xml"))
	assert.Empty(t, c.Services(), "aggregates are not named services")
	assert.Equal(t, []string{"exporters"}, c.Describe().Aggregates)

	first, err := c.Get("csv")
	require.NoError(t, err)
	second, err := c.Get("csv")
	require.NoError(t, err)
	assert.Same(t, first, second)

	j, err := c.Get("json", container.Options{"pretty": true})
	require.NoError(t, err)
	assert.Equal(t, jsonExporter{pretty: true}, j)
}

type failingResolver struct{}

func (failingResolver) Resolve(string) (any, bool, error) {
	return nil, false, container.ErrResolverPanic
}

func TestPluginLoader_ResolverErrorIsNotAClaim(t *testing.T) {
	c := container.New()
	mustSet(t, c, container.NewPluginLoader("broken", failingResolver{}))

	assert.False(t, c.Has("anything"))
	_, err := c.Get("anything")
	assert.ErrorIs(t, err, container.ErrServiceNotFound)
}
