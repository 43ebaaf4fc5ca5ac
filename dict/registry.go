package dict

import (
	"fmt"
	"maps"
	"slices"

	"github.com/arloliu/savcodec/errs"
	"github.com/arloliu/savcodec/geometry"
)

// Registry maps the short name of a very long string variable to its total
// logical byte length. Only lengths above 255 are registered; every other
// string head already declares its full length.
//
// A Registry is built once before any case is processed. It is not safe for
// concurrent mutation.
type Registry struct {
	lengths map[string]int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{lengths: make(map[string]int)}
}

// RegistryFromMap builds a registry from a name to length map, validating every entry.
func RegistryFromMap(lengths map[string]int) (*Registry, error) {
	r := NewRegistry()
	for name, length := range lengths {
		if err := r.Set(name, length); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Set registers the logical length of a very long string variable.
func (r *Registry) Set(name string, length int) error {
	if name == "" {
		return fmt.Errorf("%w: empty variable name", errs.ErrInvalidRegistry)
	}
	if length <= geometry.MaxSegmentWidth {
		return fmt.Errorf("%w: %q has length %d, very long strings exceed %d bytes",
			errs.ErrInvalidRegistry, name, length, geometry.MaxSegmentWidth)
	}

	r.lengths[name] = length

	return nil
}

// Lookup returns the registered length of name.
func (r *Registry) Lookup(name string) (int, bool) {
	if r == nil {
		return 0, false
	}
	length, ok := r.lengths[name]

	return length, ok
}

// Len returns the number of registered variables.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}

	return len(r.lengths)
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}

	return slices.Sorted(maps.Keys(r.lengths))
}
