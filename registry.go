package rtinfo

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

// NotDefined is reported for an attribute a binding does not provide.
const NotDefined = "Not Defined"

// unknownVersion is reported when a linked module is missing from build info,
// which happens for binaries built without module support.
const unknownVersion = "unknown"

// BindingSpec describes an importable library compiled into the binary.
type BindingSpec struct {
	// Import is the identifier the report requires, usually a package path.
	Import string
	// Module is the module path used for the version lookup.
	// Defaults to Import.
	Module string
	// Load exercises the library once. A non-nil error marks the import as
	// linked but not loadable.
	Load func() error
	// Attrs are named values read from the library after a successful load.
	Attrs map[string]func() (string, error)
}

// Binding is a successfully required import.
type Binding struct {
	spec BindingSpec
	// Version is the linked module version.
	Version string
}

// Import returns the import identifier of the binding.
func (b *Binding) Import() string {
	return b.spec.Import
}

// Attr returns the named attribute, [NotDefined] when the binding has no
// such attribute, or an "error: ..." string when reading it failed.
func (b *Binding) Attr(name string) string {
	fn, ok := b.spec.Attrs[name]
	if !ok || fn == nil {
		return NotDefined
	}
	v, err := fn()
	if err != nil {
		return "error: " + err.Error()
	}
	return v
}

// Registry resolves import identifiers to bindings.
type Registry struct {
	mu       sync.RWMutex
	resolver Resolver
	specs    map[string]BindingSpec
}

// NewRegistry returns an empty registry resolving versions with r.
// A nil resolver reports every version as unknown.
func NewRegistry(r Resolver) *Registry {
	if r == nil {
		r = StaticResolver{}
	}
	return &Registry{resolver: r, specs: map[string]BindingSpec{}}
}

// Register adds a binding. It panics on an empty or duplicate import,
// both being programming errors in init-time registration.
func (r *Registry) Register(spec BindingSpec) {
	if spec.Import == "" {
		panic("rtinfo: register binding with empty import")
	}
	if spec.Module == "" {
		spec.Module = spec.Import
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.specs[spec.Import]; dup {
		panic(fmt.Sprintf("rtinfo: binding %q registered twice", spec.Import))
	}
	r.specs[spec.Import] = spec
}

// Require resolves imp. The returned error is always a [*LoadError];
// it wraps [ErrNotLinked] when no binding exists for imp.
func (r *Registry) Require(imp string) (*Binding, error) {
	r.mu.RLock()
	spec, ok := r.specs[imp]
	r.mu.RUnlock()
	if !ok {
		return nil, &LoadError{Import: imp, Err: ErrNotLinked}
	}

	if spec.Load != nil {
		if err := spec.Load(); err != nil {
			return nil, &LoadError{Import: imp, Err: err}
		}
	}

	version, ok := r.resolver.ModuleVersion(spec.Module)
	if !ok || version == "" {
		version = unknownVersion
	}
	return &Binding{spec: spec, Version: version}, nil
}

// Imports returns the registered import identifiers, sorted.
func (r *Registry) Imports() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.specs))
	for imp := range r.specs {
		out = append(out, imp)
	}
	slices.Sort(out)
	return out
}

var defaultRegistry = NewRegistry(BuildInfoResolver())

// Register adds a binding to the default registry.
func Register(spec BindingSpec) {
	defaultRegistry.Register(spec)
}

// DefaultRegistry returns the registry populated by the bindings linked
// into this binary.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// notLinked reports whether err means the import has no binding at all.
func notLinked(err error) bool {
	return errors.Is(err, ErrNotLinked)
}
