package builder

import "github.com/km-arc/go-ioc/framework/container"

// Sketch builds def into a fresh container with a stand-in instance for
// every service, so the tree and alias structure can be examined without
// the application's catalog. Contracts and initializers are dropped; def is
// modified in place.
func Sketch(def *Definition) (*container.Container, error) {
	cat := NewCatalog()
	placeholders(def, cat)

	c := container.New()
	if err := Build(c, def, cat); err != nil {
		return nil, err
	}
	return c, nil
}

func placeholders(def *Definition, cat *Catalog) {
	def.Implementations = nil
	def.Initializers = nil
	for _, svc := range def.Services {
		kind := svc.Kind
		cat.Kind(kind, func(s ServiceDef) (container.Entry, error) {
			return container.NewInstance(s.Name, "<"+kind+">"), nil
		})
	}
	for _, sub := range def.Nested {
		if sub != nil {
			placeholders(sub, cat)
		}
	}
}
