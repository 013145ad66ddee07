package initialization

import (
	"fmt"
	"reflect"
	"sync"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// HandlerMarker declares that a handler must run before a test method.
type HandlerMarker struct {
	// Handler is the type of the handler to construct.
	Handler reflect.Type
	// Arguments are passed to the handler's constructor.
	Arguments []ldvalue.Value
	// Priority determines the execution order: higher runs earlier. The default is 0.
	Priority int
}

// HandlerMarkerFor creates a HandlerMarker for the type of handler, which is normally a zero
// value such as StartApplication{} or (*StartApplication)(nil).
func HandlerMarkerFor(handler interface{}, args ...ldvalue.Value) HandlerMarker {
	return HandlerMarker{
		Handler:   elemType(reflect.TypeOf(handler)),
		Arguments: append([]ldvalue.Value(nil), args...),
	}
}

// WithPriority returns a copy of the marker with the given priority.
func (m HandlerMarker) WithPriority(priority int) HandlerMarker {
	m.Priority = priority
	return m
}

func (m HandlerMarker) String() string {
	return fmt.Sprintf("%s%v@%d", HandlerID(m.Handler), m.Arguments, m.Priority)
}

// HandlerID returns the stable identity string of a handler type.
func HandlerID(t reflect.Type) string {
	t = elemType(t)
	if t == nil {
		return "<nil>"
	}
	if t.Name() == "" || t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

type methodKey struct {
	declaringType reflect.Type
	name          string
}

// Registry holds the markers declared on types and methods. Declarations are expected to
// happen during program initialization; lookups may happen concurrently from any number of
// goroutines.
type Registry struct {
	types   map[reflect.Type][]HandlerMarker
	methods map[methodKey][]HandlerMarker
	lock    sync.RWMutex
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		types:   make(map[reflect.Type][]HandlerMarker),
		methods: make(map[methodKey][]HandlerMarker),
	}
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the process-wide registry used by DeclareType and DeclareMethod.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// DeclareType adds markers to the type of sample in the default registry.
func DeclareType(sample interface{}, markers ...HandlerMarker) {
	defaultRegistry.DeclareType(reflect.TypeOf(sample), markers...)
}

// DeclareMethod adds markers to a method of the type of sample in the default registry.
func DeclareMethod(sample interface{}, method string, markers ...HandlerMarker) {
	defaultRegistry.DeclareMethod(reflect.TypeOf(sample), method, markers...)
}

// DeclareType appends markers to those already declared on t. Declaring markers on a pointer
// type is the same as declaring them on its element type.
func (r *Registry) DeclareType(t reflect.Type, markers ...HandlerMarker) {
	t = elemType(t)
	if t == nil {
		panic("initialization: cannot declare markers on a nil type")
	}
	r.lock.Lock()
	r.types[t] = append(r.types[t], copyMarkers(markers)...)
	r.lock.Unlock()
}

// DeclareMethod appends markers to those already declared on the named method of t. It panics
// if t has no such method, or if the method is promoted from an embedded type, since markers
// on a promoted method belong to the type that declares it.
func (r *Registry) DeclareMethod(t reflect.Type, method string, markers ...HandlerMarker) {
	t = elemType(t)
	if t == nil {
		panic("initialization: cannot declare markers on a nil type")
	}
	if _, ok := t.MethodByName(method); !ok {
		if _, ok := reflect.PtrTo(t).MethodByName(method); !ok {
			panic(fmt.Sprintf("initialization: type %s has no method %q", t, method))
		}
	}
	if owner, _ := methodOwner(t, method, make(map[reflect.Type]bool)); owner != nil && owner != t {
		panic(fmt.Sprintf("initialization: method %q of %s is promoted from %s; declare its markers there",
			method, t, owner))
	}
	key := methodKey{declaringType: t, name: method}
	r.lock.Lock()
	r.methods[key] = append(r.methods[key], copyMarkers(markers)...)
	r.lock.Unlock()
}

// TypeMarkers returns the markers visible on t: those declared on t itself, followed by those
// visible on each embedded type in field order. A type embedded along two paths contributes
// its markers once per path.
func (r *Registry) TypeMarkers(t reflect.Type) []HandlerMarker {
	r.lock.RLock()
	defer r.lock.RUnlock()
	var result []HandlerMarker
	r.collectTypeMarkers(elemType(t), make(map[reflect.Type]bool), &result)
	return result
}

// onPath holds the types being visited above t, which only pointer embedding can revisit.
func (r *Registry) collectTypeMarkers(t reflect.Type, onPath map[reflect.Type]bool, result *[]HandlerMarker) {
	if t == nil || onPath[t] {
		return
	}
	onPath[t] = true
	defer delete(onPath, t)
	*result = append(*result, r.types[t]...)
	if t.Kind() != reflect.Struct {
		return
	}
	for i := 0; i < t.NumField(); i++ {
		if f := t.Field(i); f.Anonymous {
			r.collectTypeMarkers(elemType(f.Type), onPath, result)
		}
	}
}

// MethodMarkers returns the markers declared directly on a method.
func (r *Registry) MethodMarkers(m MethodDescriptor) []HandlerMarker {
	key := methodKey{declaringType: elemType(m.DeclaringType), name: m.Name}
	r.lock.RLock()
	defer r.lock.RUnlock()
	return append([]HandlerMarker(nil), r.methods[key]...)
}

func copyMarkers(markers []HandlerMarker) []HandlerMarker {
	ret := make([]HandlerMarker, 0, len(markers))
	for _, m := range markers {
		if m.Handler == nil {
			panic("initialization: marker has no handler type")
		}
		m.Handler = elemType(m.Handler)
		m.Arguments = append([]ldvalue.Value(nil), m.Arguments...)
		ret = append(ret, m)
	}
	return ret
}
