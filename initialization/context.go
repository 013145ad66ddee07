package initialization

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"
)

// MethodDescriptor identifies a method of a test type.
type MethodDescriptor struct {
	// DeclaringType is the type the method belongs to. Pointer types are normalized to their
	// element type, so that markers do not depend on the receiver kind.
	DeclaringType reflect.Type
	Name          string
	// ParameterTypes does not include the receiver.
	ParameterTypes []reflect.Type
}

// MethodOf returns the descriptor of the named method in the method set of instance. The
// second return value is false if there is no such exported method.
//
// If the method is promoted from an embedded field, DeclaringType is the embedded type that
// declares it, so that markers declared on that method apply to every type embedding it.
func MethodOf(instance interface{}, name string) (MethodDescriptor, bool) {
	if instance == nil {
		return MethodDescriptor{}, false
	}
	t := reflect.TypeOf(instance)
	m, ok := t.MethodByName(name)
	if !ok {
		return MethodDescriptor{}, false
	}
	var params []reflect.Type
	for i := 1; i < m.Type.NumIn(); i++ { // skip the receiver
		params = append(params, m.Type.In(i))
	}
	declaring := elemType(t)
	if owner, _ := methodOwner(declaring, name, make(map[reflect.Type]bool)); owner != nil {
		declaring = owner
	}
	return MethodDescriptor{
		DeclaringType:  declaring,
		Name:           name,
		ParameterTypes: params,
	}, true
}

// methodOwner returns the type that declares the named method promoted into t, and its
// embedding depth relative to t. As in the Go selector rules, the shallowest declaration wins.
func methodOwner(t reflect.Type, name string, onPath map[reflect.Type]bool) (reflect.Type, int) {
	if declaresMethod(t, name) {
		return t, 0
	}
	if t.Kind() != reflect.Struct || onPath[t] {
		return nil, 0
	}
	onPath[t] = true
	defer delete(onPath, t)
	var owner reflect.Type
	depth := -1
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.Anonymous {
			continue
		}
		if o, d := methodOwner(elemType(f.Type), name, onPath); o != nil && (depth < 0 || d+1 < depth) {
			owner, depth = o, d+1
		}
	}
	return owner, depth
}

// declaresMethod reports whether t itself declares the method, as opposed to having it promoted
// from an embedded field. Promoted methods, and pointer-receiver forms of value methods, are
// compiler-generated wrappers.
func declaresMethod(t reflect.Type, name string) bool {
	if t.Kind() == reflect.Interface {
		_, ok := t.MethodByName(name)
		return ok
	}
	if m, ok := t.MethodByName(name); ok {
		return !isGeneratedWrapper(m)
	}
	if m, ok := reflect.PtrTo(t).MethodByName(name); ok {
		return !isGeneratedWrapper(m)
	}
	return false
}

func isGeneratedWrapper(m reflect.Method) bool {
	fn := runtime.FuncForPC(m.Func.Pointer())
	if fn == nil {
		return false
	}
	file, _ := fn.FileLine(fn.Entry())
	return file == "<autogenerated>"
}

// Equal reports whether both descriptors name the same method with the same parameters.
func (m MethodDescriptor) Equal(other MethodDescriptor) bool {
	if m.DeclaringType != other.DeclaringType || m.Name != other.Name ||
		len(m.ParameterTypes) != len(other.ParameterTypes) {
		return false
	}
	for i, p := range m.ParameterTypes {
		if p != other.ParameterTypes[i] {
			return false
		}
	}
	return true
}

func (m MethodDescriptor) String() string {
	params := make([]string, 0, len(m.ParameterTypes))
	for _, p := range m.ParameterTypes {
		params = append(params, p.String())
	}
	typeName := "<nil>"
	if m.DeclaringType != nil {
		typeName = m.DeclaringType.String()
	}
	return fmt.Sprintf("%s.%s(%s)", typeName, m.Name, strings.Join(params, ", "))
}

// InvocationContext describes one pending call of a test method. It is immutable; every
// Action produced for it refers back to the same *InvocationContext.
type InvocationContext struct {
	instance  interface{}
	method    MethodDescriptor
	arguments []interface{}
}

// NewInvocationContext creates an InvocationContext. The arguments slice is copied; the
// instance and the argument values themselves are held by reference.
func NewInvocationContext(instance interface{}, method MethodDescriptor, arguments ...interface{}) *InvocationContext {
	return &InvocationContext{
		instance:  instance,
		method:    method,
		arguments: append([]interface{}(nil), arguments...),
	}
}

// Instance returns the test object that owns the method.
func (c *InvocationContext) Instance() interface{} { return c.instance }

// Method returns the method about to be invoked.
func (c *InvocationContext) Method() MethodDescriptor { return c.method }

// Arguments returns a copy of the actual arguments of the call.
func (c *InvocationContext) Arguments() []interface{} {
	return append([]interface{}(nil), c.arguments...)
}

// Equal compares two contexts structurally. Instances held by pointer are compared by
// identity; anything else, including the arguments, is compared deeply.
func (c *InvocationContext) Equal(other *InvocationContext) bool {
	if c == other {
		return true
	}
	if c == nil || other == nil {
		return false
	}
	return sameInstance(c.instance, other.instance) &&
		c.method.Equal(other.method) &&
		reflect.DeepEqual(c.arguments, other.arguments)
}

func (c *InvocationContext) String() string {
	return fmt.Sprintf("%s with %d argument(s)", c.method, len(c.arguments))
}

func sameInstance(a, b interface{}) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	switch ta.Kind() {
	case reflect.Ptr, reflect.Chan, reflect.UnsafePointer:
		return a == b
	}
	return reflect.DeepEqual(a, b)
}

func elemType(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}
