package container

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// arena holds every container of one nesting tree. Parent links are
// handle lookups, never pointers held by the child.
type arena struct {
	nodes   map[uuid.UUID]*Container
	parents map[uuid.UUID]uuid.UUID

	// resolution steps in flight, used to detect cycles across containers
	trail []step
}

type step struct {
	node *Container
	name string
}

func (s step) String() string {
	path := s.node.Path()
	if path == Separator {
		return Separator + s.name
	}
	return path + Separator + s.name
}

func newArena(root *Container) *arena {
	return &arena{
		nodes:   map[uuid.UUID]*Container{root.id: root},
		parents: make(map[uuid.UUID]uuid.UUID),
	}
}

// absorb moves every node of other into a.
func (a *arena) absorb(other *arena) {
	for id, node := range other.nodes {
		a.nodes[id] = node
		node.arena = a
	}
	for child, parent := range other.parents {
		a.parents[child] = parent
	}
}

// enter pushes a resolution step, failing if the same step is already in
// flight.
func (a *arena) enter(s step) error {
	for i, seen := range a.trail {
		if seen.node == s.node && seen.name == s.name {
			chain := make([]string, 0, len(a.trail)-i+1)
			for _, t := range a.trail[i:] {
				chain = append(chain, t.String())
			}
			chain = append(chain, s.String())
			return &AliasCycleError{Chain: chain}
		}
	}
	a.trail = append(a.trail, s)
	return nil
}

func (a *arena) leave() {
	a.trail = a.trail[:len(a.trail)-1]
}

// ── Nesting ───────────────────────────────────────────────────────────────────

// Nest moves child under this container. An empty namespace falls back to
// the child's own. The child keeps its services, aliases and children.
//
//	fs := container.New()
//	root.Nest(fs, "filesystem")
//	root.Extend("folder", "filesystem/folder")
func (c *Container) Nest(child *Container, namespace string) error {
	if child == nil {
		return fmt.Errorf("%w: nil container", ErrInvalidService)
	}
	if namespace == "" {
		namespace = child.namespace
	}
	if canonical(namespace) == "" {
		return ErrEmptyNamespace
	}
	cNamespace, err := c.names.name(namespace)
	if err != nil {
		return err
	}
	if _, exists := c.children[cNamespace]; exists {
		return fmt.Errorf("%w: namespace (%s) exists on container (%s)", ErrDuplicateNamespace, namespace, c.Path())
	}
	if child.Parent() != nil || child.arena == c.arena {
		return fmt.Errorf("%w: (%s)", ErrAlreadyNested, namespace)
	}
	if c.capped != nil && (child.capped == nil || child.capped.variant != c.capped.variant) {
		return fmt.Errorf("%w: only containers of variant (%s) can be nested into (%s)",
			ErrVariantMismatch, c.capped.variant, c.Path())
	}

	c.arena.absorb(child.arena)
	c.arena.parents[child.id] = c.id
	child.namespace = cNamespace
	c.children[cNamespace] = child

	c.logger.Debug("container nested", zap.String("namespace", c.namespace), zap.String("child", cNamespace))
	return nil
}

// Parent returns the container this one is nested into, or nil for a root.
func (c *Container) Parent() *Container {
	id, ok := c.arena.parents[c.id]
	if !ok {
		return nil
	}
	return c.arena.nodes[id]
}

// Root returns the top of the nesting tree.
func (c *Container) Root() *Container {
	node := c
	for parent := node.Parent(); parent != nil; parent = node.Parent() {
		node = parent
	}
	return node
}

// lineage returns the ancestors of c, root first, followed by c.
func (c *Container) lineage() []*Container {
	var nodes []*Container
	for node := c; node != nil; node = node.Parent() {
		nodes = append(nodes, node)
	}
	for i, j := 0, len(nodes)-1; i < j; i, j = i+1, j-1 {
		nodes[i], nodes[j] = nodes[j], nodes[i]
	}
	return nodes
}

// Path returns the absolute namespace path, "/" for the root.
func (c *Container) Path() string {
	lineage := c.lineage()
	if len(lineage) == 1 {
		return Separator
	}
	parts := make([]string, 0, len(lineage)-1)
	for _, node := range lineage[1:] {
		parts = append(parts, node.namespace)
	}
	return Separator + strings.Join(parts, Separator)
}

// From returns a nested container.
//
//	c.From("")            // c itself
//	c.From("db")          // immediate child "db"
//	c.From("db/replicas") // descend db, then replicas
//	c.From("/")           // root of the tree
//	c.From("/cache")      // child "cache" of the root
func (c *Container) From(path string) (*Container, error) {
	if path == "" {
		return c, nil
	}
	cPath := c.names.path(path)

	node := c
	if strings.HasPrefix(cPath, Separator) {
		node = c.Root()
	}
	for _, segment := range strings.Split(cPath, Separator) {
		if segment == "" {
			continue
		}
		child, ok := node.children[segment]
		if !ok {
			return nil, fmt.Errorf("%w: namespace (%s) not found on (%s)", ErrNamespaceNotFound, path, node.Path())
		}
		node = child
	}
	return node, nil
}

// Children returns the nested namespaces in sorted order.
func (c *Container) Children() []string {
	out := make([]string, 0, len(c.children))
	for ns := range c.children {
		out = append(out, ns)
	}
	sort.Strings(out)
	return out
}

// ── Description ───────────────────────────────────────────────────────────────

// Description is a read-only snapshot of a container subtree, used by the
// inspector and the CLI.
type Description struct {
	Namespace       string            `json:"namespace"`
	Path            string            `json:"path"`
	Services        []string          `json:"services"`
	Aliases         map[string]string `json:"aliases"`
	Implementations map[string]string `json:"implementations"`
	Aggregates      []string          `json:"aggregates,omitempty"`
	Variant         string            `json:"variant,omitempty"`
	Nested          []Description     `json:"nested,omitempty"`
}

// Describe snapshots c and its subtree.
func (c *Container) Describe() Description {
	d := Description{
		Namespace:       c.namespace,
		Path:            c.Path(),
		Services:        c.Services(),
		Aliases:         make(map[string]string, len(c.aliases)),
		Implementations: make(map[string]string, len(c.implementations)),
	}
	for alias, target := range c.aliases {
		d.Aliases[alias] = target
	}
	for name, ct := range c.implementations {
		d.Implementations[name] = ct.String()
	}
	for _, agg := range c.aggregates {
		d.Aggregates = append(d.Aggregates, agg.Name())
	}
	if c.capped != nil {
		d.Variant = c.capped.variant
	}
	for _, ns := range c.Children() {
		d.Nested = append(d.Nested, c.children[ns].Describe())
	}
	return d
}

// Services returns the registered service names in sorted order.
func (c *Container) Services() []string {
	out := make([]string, 0, len(c.services))
	for name := range c.services {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Aliases returns a copy of the alias map.
func (c *Container) Aliases() map[string]string {
	out := make(map[string]string, len(c.aliases))
	for k, v := range c.aliases {
		out[k] = v
	}
	return out
}
