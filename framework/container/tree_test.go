package container_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-ioc/framework/container"
)

// tree builds root → a → b.
func tree(t *testing.T) (root, a, b *container.Container) {
	t.Helper()
	root = container.New()
	a = container.New()
	b = container.New()
	require.NoError(t, a.Nest(b, "b"))
	require.NoError(t, root.Nest(a, "a"))
	return root, a, b
}

// ── Nest ──────────────────────────────────────────────────────────────────────

func TestNest_SetsParentAndNamespace(t *testing.T) {
	root, a, b := tree(t)

	assert.Nil(t, root.Parent())
	assert.Same(t, root, a.Parent())
	assert.Same(t, a, b.Parent())
	assert.Same(t, root, b.Root())

	assert.Equal(t, "a", a.Namespace())
	assert.Equal(t, "/", root.Path())
	assert.Equal(t, "/a/b", b.Path())
	assert.Equal(t, []string{"a"}, root.Children())
}

func TestNest_UsesChildNamespaceWhenEmpty(t *testing.T) {
	root := container.New()
	child := container.New(container.WithNamespace("Mail"))

	require.NoError(t, root.Nest(child, ""))
	got, err := root.From("mail")
	require.NoError(t, err)
	assert.Same(t, child, got)
}

func TestNest_Errors(t *testing.T) {
	root := container.New()
	require.NoError(t, root.Nest(container.New(), "db"))

	assert.ErrorIs(t, root.Nest(container.New(), ""), container.ErrEmptyNamespace)
	assert.ErrorIs(t, root.Nest(container.New(), "  "), container.ErrEmptyNamespace)
	assert.ErrorIs(t, root.Nest(container.New(), "DB"), container.ErrDuplicateNamespace)
	assert.ErrorIs(t, root.Nest(container.New(), "x/y"), container.ErrInvalidName)
	assert.ErrorIs(t, root.Nest(nil, "nil"), container.ErrInvalidService)
}

func TestNest_RejectsAlreadyNestedAndAncestors(t *testing.T) {
	root, a, b := tree(t)

	assert.ErrorIs(t, container.New().Nest(a, "again"), container.ErrAlreadyNested)
	assert.ErrorIs(t, b.Nest(root, "loop"), container.ErrAlreadyNested)
	assert.ErrorIs(t, root.Nest(root, "self"), container.ErrAlreadyNested)
}

func TestNest_ChildKeepsItsServices(t *testing.T) {
	root := container.New()
	child := container.New()
	mustSet(t, child, container.NewInstance("svc", "child"))
	require.NoError(t, child.Extend("alias", "svc"))

	require.NoError(t, root.Nest(child, "child"))

	got, err := child.Get("alias")
	require.NoError(t, err)
	assert.Equal(t, "child", got)
	assert.False(t, root.Has("svc"))
}

// ── From ──────────────────────────────────────────────────────────────────────

func TestFrom_Navigation(t *testing.T) {
	root, a, b := tree(t)

	viaPath, err := root.From("a/b")
	require.NoError(t, err)
	viaA, err := root.From("a")
	require.NoError(t, err)
	viaSteps, err := viaA.From("b")
	require.NoError(t, err)
	assert.Same(t, viaSteps, viaPath)
	assert.Same(t, b, viaPath)

	self, err := b.From("")
	require.NoError(t, err)
	assert.Same(t, b, self)

	up, err := b.From("/")
	require.NoError(t, err)
	assert.Same(t, root, up)

	sibling, err := b.From("/a")
	require.NoError(t, err)
	assert.Same(t, a, sibling)

	// case and space insensitive, backslashes map to separators
	odd, err := root.From(` A \ B `)
	require.NoError(t, err)
	assert.Same(t, b, odd)
}

func TestFrom_OnlyLeadingSeparatorAscends(t *testing.T) {
	_, a, _ := tree(t)

	_, err := a.From("a/b")
	assert.ErrorIs(t, err, container.ErrNamespaceNotFound, "a has no child named a")

	got, err := a.From("/a/b")
	require.NoError(t, err)
	assert.Equal(t, "/a/b", got.Path())
}

func TestFrom_Missing(t *testing.T) {
	root, _, _ := tree(t)

	_, err := root.From("a/missing")
	assert.ErrorIs(t, err, container.ErrNamespaceNotFound)
}

// ── Cross-container resolution ────────────────────────────────────────────────

func TestExtend_CrossContainerAlias(t *testing.T) {
	root := container.New()
	sub := container.New()
	f, built := counting("svc")
	mustSet(t, sub, f)
	require.NoError(t, root.Nest(sub, "sub"))

	require.NoError(t, root.Extend("alias", "sub/svc"))

	viaAlias, err := root.Get("alias")
	require.NoError(t, err)
	from, err := root.From("sub")
	require.NoError(t, err)
	direct, err := from.Get("svc")
	require.NoError(t, err)

	assert.Same(t, direct, viaAlias)
	assert.Equal(t, 1, *built)
	assert.True(t, root.Has("alias"))

	resolved, err := root.Extended("alias")
	require.NoError(t, err)
	assert.Equal(t, "sub/svc", resolved)
}

func TestExtend_CrossContainerForwardDeclaration(t *testing.T) {
	root := container.New()
	require.NoError(t, root.Extend("mailer", "mail/smtp"))
	assert.False(t, root.Has("mailer"))

	_, err := root.Get("mailer")
	assert.ErrorIs(t, err, container.ErrNamespaceNotFound)

	mail := container.New()
	mustSet(t, mail, container.NewInstance("smtp", "smtp"))
	require.NoError(t, root.Nest(mail, "mail"))

	got, err := root.Get("mailer")
	require.NoError(t, err)
	assert.Equal(t, "smtp", got)
}

func TestExtend_AliasToRootFromNested(t *testing.T) {
	root, _, b := tree(t)
	mustSet(t, root, container.NewInstance("config", "cfg"))
	require.NoError(t, b.Extend("config", "/config"))

	got, err := b.Get("config")
	require.NoError(t, err)
	assert.Equal(t, "cfg", got)
}

func TestExtend_ChainHopsContainers(t *testing.T) {
	root, a, b := tree(t)
	mustSet(t, b, container.NewInstance("leaf", "leaf"))
	require.NoError(t, b.Extend("inner", "leaf"))
	require.NoError(t, a.Extend("middle", "b/inner"))
	require.NoError(t, root.Extend("outer", "a/middle"))

	got, err := root.Get("outer")
	require.NoError(t, err)
	assert.Equal(t, "leaf", got)
}

func TestGet_PathName(t *testing.T) {
	root, _, b := tree(t)
	mustSet(t, b, container.NewInstance("leaf", "leaf"))

	got, err := root.Get("a/b/leaf")
	require.NoError(t, err)
	assert.Equal(t, "leaf", got)
	assert.True(t, root.Has("A/B/Leaf"))

	fresh, err := b.Fresh("/a/b/leaf")
	require.NoError(t, err)
	assert.Equal(t, "leaf", fresh)
}

func TestGet_PathNamingNoService(t *testing.T) {
	root := container.New()
	sub := container.New()
	mustSet(t, sub, container.NewInstance("svc", "svc"))
	require.NoError(t, root.Nest(sub, "sub"))
	require.NoError(t, root.Extend("dangling", "sub/"))
	require.NoError(t, root.Extend("top", "/"))

	for _, name := range []string{"/", "sub/", "/sub/", "sub//", " Sub \\ ", "dangling", "top"} {
		t.Run(name, func(t *testing.T) {
			var err error
			require.NotPanics(t, func() { _, err = root.Get(name) })
			assert.ErrorIs(t, err, container.ErrInvalidName)

			require.NotPanics(t, func() { _, err = root.Fresh(name) })
			assert.ErrorIs(t, err, container.ErrInvalidName)

			assert.False(t, root.Has(name))
		})
	}

	got, err := root.Get("/sub/svc")
	require.NoError(t, err)
	assert.Equal(t, "svc", got)
}

func TestExtend_CrossContainerCycle(t *testing.T) {
	root := container.New()
	sub := container.New()
	require.NoError(t, root.Nest(sub, "sub"))
	require.NoError(t, root.Extend("a", "sub/b"))
	require.NoError(t, sub.Extend("b", "/a"))

	_, err := root.Get("a")
	require.ErrorIs(t, err, container.ErrAliasCycle)

	var cycle *container.AliasCycleError
	require.ErrorAs(t, err, &cycle)
	assert.Equal(t, []string{"/a", "/sub/b", "/a"}, cycle.Chain)
}

func TestSetImplementation_NotInheritedThroughPaths(t *testing.T) {
	root := container.New()
	sub := container.New()
	require.NoError(t, root.Nest(sub, "sub"))
	require.NoError(t, sub.SetImplementation("svc", container.InterfaceOf[greeter]()))
	mustSet(t, sub, container.NewInstance("svc", "plain"))
	require.NoError(t, root.Extend("alias", "sub/svc"))

	_, err := root.Get("alias")
	assert.ErrorIs(t, err, container.ErrContractViolation, "the owning container checks its contract")
}

// ── Describe ──────────────────────────────────────────────────────────────────

func TestDescribe(t *testing.T) {
	root, _, b := tree(t)
	mustSet(t, root, container.NewInstance("cfg", 1))
	require.NoError(t, root.Extend("config", "cfg"))
	require.NoError(t, b.SetImplementation("g", container.InterfaceOf[greeter]()))

	d := root.Describe()
	assert.Equal(t, "/", d.Path)
	assert.Equal(t, []string{"cfg"}, d.Services)
	assert.Equal(t, map[string]string{"config": "cfg"}, d.Aliases)
	require.Len(t, d.Nested, 1)
	require.Len(t, d.Nested[0].Nested, 1)

	leaf := d.Nested[0].Nested[0]
	assert.Equal(t, "b", leaf.Namespace)
	assert.Equal(t, "/a/b", leaf.Path)
	assert.Equal(t, map[string]string{"g": "container_test.greeter"}, leaf.Implementations)
}
