package initialization

import (
	"fmt"
	"reflect"
	"sort"
)

// Discoverer resolves the initialization actions for some kind of context. Implementations
// support specific context kinds and must fail with an error matching
// ErrUnsupportedContextKind for any other kind, rather than guessing.
type Discoverer interface {
	GetInitializationActions(context interface{}) ([]Action, error)
}

// ActionDiscoverer is the Discoverer for *InvocationContext. It reads markers from a Registry
// and never modifies the context or the markers, so it is safe for concurrent use.
type ActionDiscoverer struct {
	registry *Registry
}

// NewActionDiscoverer creates an ActionDiscoverer. If registry is nil, the default registry
// is used.
func NewActionDiscoverer(registry *Registry) *ActionDiscoverer {
	if registry == nil {
		registry = defaultRegistry
	}
	return &ActionDiscoverer{registry: registry}
}

// GetInitializationActions returns the actions for an *InvocationContext in execution order:
// priority descending, then type-level markers before method-level markers, then declaration
// order.
func (d *ActionDiscoverer) GetInitializationActions(context interface{}) ([]Action, error) {
	ic, ok := context.(*InvocationContext)
	if !ok || ic == nil {
		return nil, &UnsupportedContextKindError{Kind: contextKind(context)}
	}

	markers := d.registry.TypeMarkers(reflect.TypeOf(ic.instance))
	markers = append(markers, d.registry.MethodMarkers(ic.method)...)

	sort.SliceStable(markers, func(i, j int) bool {
		return markers[i].Priority > markers[j].Priority
	})

	actions := make([]Action, 0, len(markers))
	for _, m := range markers {
		actions = append(actions, newAction(m, ic))
	}
	return actions, nil
}

func contextKind(context interface{}) string {
	if context == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%T", context)
}
