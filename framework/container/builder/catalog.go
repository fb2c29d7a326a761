package builder

import (
	"fmt"
	"sort"
	"strings"

	"github.com/km-arc/go-ioc/framework/container"
)

// KindFunc turns a service definition into a container entry.
type KindFunc func(def ServiceDef) (container.Entry, error)

// Catalog maps the string keys used in definitions to Go values.
type Catalog struct {
	kinds        map[string]KindFunc
	contracts    map[string]container.Contract
	initializers map[string]container.Initializer
	resolvers    map[string]container.Resolver
}

// NewCatalog returns a catalog holding the built-in kinds:
//
//	value   - options["value"] registered as an instance
//	plugins - a plugin loader over the resolver named by options["resolver"]
func NewCatalog() *Catalog {
	cat := &Catalog{
		kinds:        make(map[string]KindFunc),
		contracts:    make(map[string]container.Contract),
		initializers: make(map[string]container.Initializer),
		resolvers:    make(map[string]container.Resolver),
	}
	cat.Kind("value", valueKind)
	cat.Kind("plugins", cat.pluginsKind)
	return cat
}

// Kind registers fn under key, replacing any previous kind.
func (cat *Catalog) Kind(key string, fn KindFunc) *Catalog {
	cat.kinds[catalogKey(key)] = fn
	return cat
}

// Contract registers a contract usable in "implementations".
func (cat *Catalog) Contract(key string, ct container.Contract) *Catalog {
	cat.contracts[catalogKey(key)] = ct
	return cat
}

// Initializer registers an initializer usable in "initializers".
func (cat *Catalog) Initializer(key string, init container.Initializer) *Catalog {
	cat.initializers[catalogKey(key)] = init
	return cat
}

// Resolver registers a resolver usable by the plugins kind.
func (cat *Catalog) Resolver(key string, r container.Resolver) *Catalog {
	cat.resolvers[catalogKey(key)] = r
	return cat
}

// Kinds returns the registered kind keys in sorted order.
func (cat *Catalog) Kinds() []string {
	out := make([]string, 0, len(cat.kinds))
	for k := range cat.kinds {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (cat *Catalog) entry(def ServiceDef) (container.Entry, error) {
	fn, ok := cat.kinds[catalogKey(def.Kind)]
	if !ok {
		return nil, fmt.Errorf("builder: service (%s) has unknown kind (%s)", def.Name, def.Kind)
	}
	return fn(def)
}

func (cat *Catalog) contract(key string) (container.Contract, error) {
	ct, ok := cat.contracts[catalogKey(key)]
	if !ok {
		return container.Contract{}, fmt.Errorf("builder: unknown contract (%s)", key)
	}
	return ct, nil
}

func (cat *Catalog) initializer(key string) (container.Initializer, error) {
	init, ok := cat.initializers[catalogKey(key)]
	if !ok {
		return nil, fmt.Errorf("builder: unknown initializer (%s)", key)
	}
	return init, nil
}

// ── Built-in kinds ────────────────────────────────────────────────────────────

func valueKind(def ServiceDef) (container.Entry, error) {
	value, ok := def.Options["value"]
	if !ok {
		return nil, fmt.Errorf("builder: service (%s) of kind value needs options.value", def.Name)
	}
	return container.NewInstance(def.Name, value, def.EntryOptions("value")...), nil
}

func (cat *Catalog) pluginsKind(def ServiceDef) (container.Entry, error) {
	key, _ := def.Options["resolver"].(string)
	r, ok := cat.resolvers[catalogKey(key)]
	if !ok {
		return nil, fmt.Errorf("builder: service (%s) references unknown resolver (%s)", def.Name, key)
	}
	return container.NewPluginLoader(def.Name, r, def.EntryOptions("resolver")...), nil
}

func catalogKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
