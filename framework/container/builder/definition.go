// Package builder replays declarative container definitions, typically loaded
// from YAML, onto a container tree.
//
//	def, err := builder.LoadFile("config/container.yaml")
//	if err != nil { ... }
//	err = builder.Build(app, def, builder.NewCatalog())
package builder

import (
	"errors"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/km-arc/go-ioc/framework/container"
)

// Definition describes one container and, through Nested, its subtree.
type Definition struct {
	Namespace       string                 `yaml:"namespace,omitempty" json:"namespace,omitempty"`
	Implementations map[string]string      `yaml:"implementations,omitempty" json:"implementations,omitempty"`
	Initializers    []InitializerDef       `yaml:"initializers,omitempty" json:"initializers,omitempty"`
	Nested          map[string]*Definition `yaml:"nested,omitempty" json:"nested,omitempty"`
	Extends         map[string]string      `yaml:"extends,omitempty" json:"extends,omitempty"`
	Services        []ServiceDef           `yaml:"services,omitempty" json:"services,omitempty"`
}

// InitializerDef references a catalog initializer. An empty Priority uses
// the initializer's own.
type InitializerDef struct {
	Initializer string `yaml:"initializer" json:"initializer"`
	Priority    string `yaml:"priority,omitempty" json:"priority,omitempty"`
}

// ServiceDef describes one service entry.
type ServiceDef struct {
	Name          string         `yaml:"name" json:"name"`
	Kind          string         `yaml:"kind" json:"kind"`
	AllowOverride *bool          `yaml:"allow_override,omitempty" json:"allow_override,omitempty"`
	Options       map[string]any `yaml:"options,omitempty" json:"options,omitempty"`
	Deps          []string       `yaml:"deps,omitempty" json:"deps,omitempty"`
}

// Dependencies converts Deps to constructor dependencies. A leading "?"
// marks a dependency optional.
func (s ServiceDef) Dependencies() []container.Dependency {
	deps := make([]container.Dependency, 0, len(s.Deps))
	for _, d := range s.Deps {
		name, optional := strings.CutPrefix(strings.TrimSpace(d), "?")
		deps = append(deps, container.Dependency{Name: name, Optional: optional})
	}
	return deps
}

// EntryOptions returns the registration options carried by s, leaving out
// the keys listed in skip.
func (s ServiceDef) EntryOptions(skip ...string) []container.EntryOption {
	var opts []container.EntryOption
	if s.AllowOverride != nil {
		opts = append(opts, container.WithAllowOverride(*s.AllowOverride))
	}
	defaults := make(container.Options, len(s.Options))
	for k, v := range s.Options {
		defaults[k] = v
	}
	for _, k := range skip {
		delete(defaults, k)
	}
	if len(defaults) > 0 {
		opts = append(opts, container.WithOptions(defaults))
	}
	return opts
}

// ── Loading ───────────────────────────────────────────────────────────────────

// Load parses a YAML (or JSON) definition.
func Load(r io.Reader) (*Definition, error) {
	var def Definition
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&def); err != nil {
		if errors.Is(err, io.EOF) {
			return &def, nil
		}
		return nil, err
	}
	return &def, nil
}

// LoadFile parses the definition stored at path.
func LoadFile(path string) (*Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}
