// Package entry resolves namespace names to the modules that implement them.
//
// Entries are registered unresolved, with a [Loader], and resolved at most
// once: the first [Registry.Resolve] replaces the loader with its module.
package entry

import (
	"slices"
	"strings"

	"github.com/ardnew/prun/pipeline"
	"github.com/ardnew/prun/pkg"
)

// Loader produces the module of a namespace.
type Loader func() (*pipeline.Module, error)

// entry holds either an unresolved loader or a resolved module.
type entry struct {
	load   Loader
	module *pipeline.Module
}

// Registry maps namespace names to entries.
// It performs no locking.
type Registry struct {
	entries map[string]*entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: map[string]*entry{}}
}

// Default is the registry used by the package-level functions.
//
//nolint:gochecknoglobals
var Default = NewRegistry()

// Register adds an unresolved entry, replacing any entry of the same name.
func (r *Registry) Register(name string, load Loader) {
	r.entries[name] = &entry{load: load}
}

// RegisterModule adds an already resolved entry.
func (r *Registry) RegisterModule(name string, m *pipeline.Module) {
	r.entries[name] = &entry{module: m}
}

// Resolve returns the module of the namespace name, invoking its loader on
// first use. Later calls return the identical module.
func (r *Registry) Resolve(name string) (*pipeline.Module, error) {
	e, ok := r.entries[name]
	if !ok {
		return nil, &NoSuchNamespaceError{Name: name, Valid: r.Names()}
	}

	if e.module != nil {
		return e.module, nil
	}

	m, err := e.load()
	if err == nil && m == nil {
		err = pkg.MakeErrorf("loader returned no module")
	}

	if err != nil {
		return nil, pkg.ErrLoadNamespace.Wrapf("%s", name).Wrap(err)
	}

	e.module, e.load = m, nil

	return m, nil
}

// Names returns the registered namespace names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.entries[name]

	return ok
}

// Register adds an unresolved entry to [Default].
func Register(name string, load Loader) { Default.Register(name, load) }

// RegisterModule adds a resolved entry to [Default].
func RegisterModule(name string, m *pipeline.Module) {
	Default.RegisterModule(name, m)
}

// NoSuchNamespaceError reports an unregistered namespace name.
type NoSuchNamespaceError struct {
	Name  string
	Valid []string
}

func (e *NoSuchNamespaceError) Error() string {
	return "no such namespace: '" + e.Name + "' (choose from " +
		strings.Join(e.Valid, ", ") + ")"
}
