package container

import (
	"fmt"
	"sort"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

// Options is the bag of invoke options passed to Get/Fresh and merged into a
// service's default options.
type Options map[string]any

// Merge returns a new bag holding o overlaid by others, left to right.
func (o Options) Merge(others ...Options) Options {
	out := make(Options, len(o))
	for k, v := range o {
		out[k] = v
	}
	for _, other := range others {
		for k, v := range other {
			out[k] = v
		}
	}
	return out
}

// Keys returns the option keys in sorted order.
func (o Options) Keys() []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String returns the value under key, or fallback.
func (o Options) String(key, fallback string) string {
	if v, ok := o[key].(string); ok {
		return v
	}
	return fallback
}

// canonicalJSON serializes with sorted map keys so equal option shapes
// always produce equal cache keys.
var canonicalJSON = jsoniter.Config{
	SortMapKeys:            true,
	EscapeHTML:             false,
	ValidateJsonRawMessage: true,
}.Froze()

// serialize flattens opts into a stable string. Values the encoder cannot
// handle (funcs, channels) fall back to fmt's representation, which also
// prints map keys sorted.
func serialize(opts Options) string {
	if len(opts) == 0 {
		return ""
	}
	b, err := canonicalJSON.Marshal(opts)
	if err != nil {
		return fmt.Sprintf("%#v", map[string]any(opts))
	}
	return string(b)
}

// Option configures a Container.
type Option func(*Container)

// WithNamespace sets the namespace of a container that will be nested later.
func WithNamespace(namespace string) Option {
	return func(c *Container) {
		c.namespace = c.names.path(namespace)
	}
}

// WithLogger sets the logger used for registration and resolution events.
func WithLogger(l *zap.Logger) Option {
	return func(c *Container) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithObserver installs an Observer notified on every Get/Fresh outcome.
func WithObserver(o Observer) Option {
	return func(c *Container) {
		c.observer = o
	}
}
