package ingest

import (
	"sort"
)

// Factory produces a fresh Record for one discriminator, pre-loaded with
// that kind's option defaults.
type Factory func() Record

// Registry maps external processor discriminators to record factories.
//
// A Registry is immutable once built: Copy derives a modified registry and
// leaves the receiver untouched, so the shared [Default] registry is safe
// to extend from any number of callers.
type Registry struct {
	name      string
	factories map[string]Factory
}

// NewRegistry builds a registry from a discriminator to factory map. The
// map is copied; later mutation of the argument does not affect the
// registry.
func NewRegistry(name string, factories map[string]Factory) *Registry {
	m := make(map[string]Factory, len(factories))
	for k, v := range factories {
		m[k] = v
	}
	return &Registry{name: name, factories: m}
}

// Name returns the registry's display name.
func (r *Registry) Name() string { return r.name }

// Lookup returns the factory registered for a discriminator.
func (r *Registry) Lookup(discriminator string) (Factory, bool) {
	f, ok := r.factories[discriminator]
	return f, ok
}

// Types returns the registered discriminators in sorted order.
func (r *Registry) Types() []string {
	types := make([]string, 0, len(r.factories))
	for k := range r.factories {
		types = append(types, k)
	}
	sort.Strings(types)
	return types
}

// Copy returns a new registry equal to the receiver except for the given
// factories added or overridden and the given discriminators removed.
// Removals are applied before additions, so a discriminator present in
// both ends up with the new factory.
func (r *Registry) Copy(with map[string]Factory, without ...string) *Registry {
	m := make(map[string]Factory, len(r.factories)+len(with))
	for k, v := range r.factories {
		m[k] = v
	}
	for _, k := range without {
		delete(m, k)
	}
	for k, v := range with {
		m[k] = v
	}
	return &Registry{name: r.name, factories: m}
}

var defaultRegistry = NewRegistry("default", map[string]Factory{
	"append":    func() Record { return &AppendRecord{AllowDuplicates: true} },
	"convert":   func() Record { return &ConvertRecord{} },
	"drop":      func() Record { return &DropRecord{} },
	"fail":      func() Record { return &FailRecord{} },
	"json":      func() Record { return &JSONRecord{} },
	"lowercase": func() Record { return &LowercaseRecord{} },
	"remove":    func() Record { return &RemoveRecord{} },
	"rename":    func() Record { return &RenameRecord{} },
	"set":       func() Record { return &SetRecord{Override: true} },
	"uppercase": func() Record { return &UppercaseRecord{} },
})

// Default returns the shared registry of built-in processor kinds. Derive
// from it with Copy rather than registering into it.
func Default() *Registry {
	return defaultRegistry
}
