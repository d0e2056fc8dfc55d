package archive

import (
	"slices"
	"strings"
	"sync"

	aerrors "github.com/matzehuels/busarchive/pkg/errors"
)

// Factory returns a zero instance of one concrete variant, ready to have
// its fields decoded into it.
type Factory func() Unmarshaler

type variantKey struct {
	capability string
	variant    string
}

// Registry maps a polymorphic capability and a variant discriminator to the
// factory that instantiates that variant. Writers and readers must agree on
// the registry contents.
//
// Registrations are expected to happen during program initialization,
// typically from an init function; lookups after that are read-only.
type Registry struct {
	mu        sync.RWMutex
	factories map[variantKey]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[variantKey]Factory)}
}

// DefaultRegistry is the process-wide registry used when no
// [WithRegistry] option is given.
var DefaultRegistry = NewRegistry()

// Register associates variant with factory under capability.
// It panics if either tag is empty, factory is nil, or the pair is already
// registered, mirroring database/sql.Register.
func (r *Registry) Register(capability, variant string, factory Factory) {
	if capability == "" || variant == "" || strings.ContainsAny(capability+variant, " \t\r\n") {
		panic("archive: Register with empty or multi-token capability or variant")
	}
	if factory == nil {
		panic("archive: Register factory is nil for " + capability + "/" + variant)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key := variantKey{capability, variant}
	if _, dup := r.factories[key]; dup {
		panic("archive: Register called twice for " + capability + "/" + variant)
	}
	r.factories[key] = factory
}

// Has reports whether a factory is registered for the pair.
func (r *Registry) Has(capability, variant string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[variantKey{capability, variant}]
	return ok
}

// Construct returns a fresh instance of the registered variant.
// It fails with UNKNOWN_VARIANT when nothing was registered for the pair.
func (r *Registry) Construct(capability, variant string) (Unmarshaler, error) {
	r.mu.RLock()
	f, ok := r.factories[variantKey{capability, variant}]
	r.mu.RUnlock()
	if !ok {
		return nil, aerrors.New(aerrors.ErrCodeUnknownVariant, "no %s variant registered as %q", capability, variant)
	}
	obj := f()
	if obj == nil {
		return nil, aerrors.New(aerrors.ErrCodeInternal, "factory for %s/%s returned nil", capability, variant)
	}
	return obj, nil
}

// Variants returns the sorted discriminators registered under capability.
func (r *Registry) Variants(capability string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []string
	for k := range r.factories {
		if k.capability == capability {
			out = append(out, k.variant)
		}
	}
	slices.Sort(out)
	return out
}

// Register adds a variant to [DefaultRegistry].
func Register(capability, variant string, factory Factory) {
	DefaultRegistry.Register(capability, variant, factory)
}

// checkVariant validates a discriminator on the write path so an archive
// is never produced that its reader could not decode.
func (r *Registry) checkVariant(capability string, v Variant) error {
	name := v.ArchiveVariant()
	if strings.ContainsAny(name, " \t\r\n") {
		return aerrors.New(aerrors.ErrCodeInternal, "%T: variant %q is not a single token", v, name)
	}
	if !r.Has(capability, name) {
		return aerrors.New(aerrors.ErrCodeUnknownVariant, "%T: %s variant %q is not registered", v, capability, name)
	}
	return nil
}
