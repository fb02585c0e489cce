// Package registry maps resource kinds to the descriptors that know how to
// label, draw and group them.
//
// A [Descriptor] covers the identify / describe / render-node capabilities.
// Kinds that own other kinds additionally implement [Grouper]. Adding a
// resource kind is a registration, never a new branch in a dispatch switch.
//
// Looking up an unregistered kind is not an error here: callers treat a miss
// as "unsupported, skip with a warning".
package registry

import (
	"errors"
	"fmt"
	"strings"

	"github.com/matzehuels/drawtf/pkg/component"
	"github.com/matzehuels/drawtf/pkg/dot"
)

var (
	// ErrDuplicateKind is returned by [Registry.Register] when a descriptor
	// with the same identifier is already registered.
	ErrDuplicateKind = errors.New("duplicate kind")

	// ErrEmptyKind is returned by [Registry.Register] for a descriptor whose
	// identifier is empty.
	ErrEmptyKind = errors.New("kind must not be empty")
)

// NodeDrawer is the part of the rendering engine a descriptor needs: it
// allocates a node and returns the handle later used for edges.
type NodeDrawer interface {
	Node(label string, attrs dot.Attrs) dot.Handle
}

// Descriptor is the per-kind behaviour bundle.
type Descriptor interface {
	// Identifier returns the stable kind string used as dispatch key.
	Identifier() string

	// Describe builds a supplemental label fragment from the component's
	// attributes. It returns "" when there is nothing to add and never fails
	// on missing optional attributes.
	Describe(c *component.Component) string

	// Node asks d to draw c, merging the descriptor's default attributes
	// with overrides, and returns the drawn node's handle.
	Node(d NodeDrawer, c *component.Component, overrides dot.Attrs) dot.Handle
}

// Grouper is implemented by descriptors whose kind owns other components.
type Grouper interface {
	Descriptor

	// Group returns, in pool order, the members of pool that owner claims.
	// Implementations must not return owner itself.
	Group(owner *component.Component, pool []*component.Component) []*component.Component
}

// Registry is an ordered set of descriptors keyed by identifier.
//
// The zero value is not usable - use [New]. A Registry is not safe for
// concurrent registration; lookups after setup are read-only.
type Registry struct {
	order []string
	kinds map[string]Descriptor
}

// New creates a registry holding the given descriptors. It panics if two
// descriptors share an identifier, since that is a programming error in the
// descriptor set.
func New(descriptors ...Descriptor) *Registry {
	r := &Registry{kinds: make(map[string]Descriptor, len(descriptors))}
	for _, d := range descriptors {
		if err := r.Register(d); err != nil {
			panic(err)
		}
	}
	return r
}

// Register adds d. It returns ErrEmptyKind or ErrDuplicateKind when the
// identifier is empty or already taken; the registry is left unchanged.
func (r *Registry) Register(d Descriptor) error {
	kind := d.Identifier()
	if kind == "" {
		return ErrEmptyKind
	}
	if _, exists := r.kinds[kind]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateKind, kind)
	}
	r.kinds[kind] = d
	r.order = append(r.order, kind)
	return nil
}

// Lookup returns the descriptor registered for kind.
func (r *Registry) Lookup(kind string) (Descriptor, bool) {
	d, ok := r.kinds[kind]
	return d, ok
}

// Grouper returns the descriptor for kind if it can claim children.
func (r *Registry) Grouper(kind string) (Grouper, bool) {
	g, ok := r.kinds[kind].(Grouper)
	return g, ok
}

// Supports reports whether kind is registered.
func (r *Registry) Supports(kind string) bool {
	_, ok := r.kinds[kind]
	return ok
}

// Kinds returns the registered identifiers in registration order.
func (r *Registry) Kinds() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered kinds.
func (r *Registry) Len() int { return len(r.order) }

// Label joins a display name and a metadata fragment the way every
// descriptor presents them: the name on the first line, metadata below.
func Label(name, metadata string) string {
	metadata = strings.TrimSpace(metadata)
	if metadata == "" {
		return name
	}
	return name + "\n" + metadata
}

// Draw merges overrides over defaults and asks d for a node. A "label"
// override replaces label.
func Draw(d NodeDrawer, label string, defaults, overrides dot.Attrs) dot.Handle {
	attrs := defaults.Merge(overrides)
	if l, ok := attrs["label"]; ok {
		label = l
		delete(attrs, "label")
	}
	return d.Node(label, attrs)
}
