// Package registry provides the tag-keyed prototype tables used to build
// every extensible simulator object (headers, payloads, packets, nodes,
// links and events).
//
// A Registry only stores prototypes; what a prototype is (a constructor
// func, a packet layout, ...) is decided by the owning package.
package registry

import (
	"errors"
	"fmt"

	"golang.org/x/exp/slices"
)

// ErrUnknownType is returned when a tag was never registered.
var ErrUnknownType = errors.New("unknown type")

// Registry maps a string tag to a prototype of type P.
type Registry[P any] struct {
	kind   string
	protos map[string]P
}

// New creates an empty registry. kind names the hierarchy ("header",
// "node", ...) and only appears in error messages.
func New[P any](kind string) *Registry[P] {
	return &Registry[P]{
		kind:   kind,
		protos: make(map[string]P),
	}
}

// Kind returns the hierarchy name given to New.
func (r *Registry[P]) Kind() string {
	return r.kind
}

// Register associates tag with proto. Registering an existing tag replaces
// the previous prototype.
func (r *Registry[P]) Register(tag string, proto P) {
	r.protos[tag] = proto
}

// Lookup returns the prototype registered for tag.
func (r *Registry[P]) Lookup(tag string) (P, error) {
	proto, ok := r.protos[tag]
	if !ok {
		var zero P
		return zero, fmt.Errorf("no such %s type %q: %w", r.kind, tag, ErrUnknownType)
	}
	return proto, nil
}

// Has reports whether tag is registered.
func (r *Registry[P]) Has(tag string) bool {
	_, ok := r.protos[tag]
	return ok
}

// Tags returns the registered tags in ascending order.
func (r *Registry[P]) Tags() []string {
	tags := make([]string, 0, len(r.protos))
	for tag := range r.protos {
		tags = append(tags, tag)
	}
	slices.Sort(tags)
	return tags
}

// Len returns the number of registered tags.
func (r *Registry[P]) Len() int {
	return len(r.protos)
}
