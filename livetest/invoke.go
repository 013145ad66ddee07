package livetest

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/livetesting/live-tests/initialization"
)

var tType = reflect.TypeOf((*T)(nil))

// FromContext returns the *T that a test method is being invoked with.
func FromContext(context *initialization.InvocationContext) (*T, bool) {
	if context == nil {
		return nil, false
	}
	for _, arg := range context.Arguments() {
		if t, ok := arg.(*T); ok && t != nil {
			return t, true
		}
	}
	return nil, false
}

// RunMethod invokes a method of instance within the current test. The method receives t
// followed by args. Its initialization actions are discovered and executed first; if that
// fails, the test fails and the method is not called.
func (t *T) RunMethod(instance interface{}, method string, args ...interface{}) {
	descriptor, ok := initialization.MethodOf(instance, method)
	if !ok {
		t.Errorf("%T has no exported method %q", instance, method)
		t.FailNow()
	}
	callArgs := append([]interface{}{t}, args...)
	fn := reflect.ValueOf(instance).MethodByName(method)
	in, err := methodArguments(fn.Type(), callArgs)
	if err != nil {
		t.Errorf("cannot call %s: %s", descriptor, err)
		t.FailNow()
	}

	context := initialization.NewInvocationContext(instance, descriptor, callArgs...)
	actions, err := t.env.config.Discoverer.GetInitializationActions(context)
	if err != nil {
		t.Errorf("initialization discovery failed for %s: %s", descriptor, err)
		t.FailNow()
	}
	if len(actions) > 0 {
		ids := make([]string, 0, len(actions))
		for _, a := range actions {
			ids = append(ids, a.ID)
		}
		t.Debug("Initializing %s: %s", descriptor, strings.Join(ids, ", "))
	}
	if err := t.env.config.Executor.Execute(actions); err != nil {
		t.Errorf("initialization failed for %s: %s", descriptor, err)
		t.FailNow()
	}

	fn.Call(in)
}

// RunClass runs every exported method of the type that newInstance returns whose signature
// is func(*T), each as a subtest of a test with the given name. Every method gets its own
// instance.
func (t *T) RunClass(name string, newInstance func() interface{}) {
	methods := testMethods(reflect.TypeOf(newInstance()))
	t.Run(name, func(t *T) {
		for _, m := range methods {
			method := m
			t.Run(method, func(t *T) {
				t.RunMethod(newInstance(), method)
			})
		}
	})
}

func testMethods(instanceType reflect.Type) []string {
	var names []string
	for i := 0; i < instanceType.NumMethod(); i++ {
		m := instanceType.Method(i)
		if m.Type.NumIn() == 2 && m.Type.In(1) == tType && m.Type.NumOut() == 0 {
			names = append(names, m.Name)
		}
	}
	sort.Strings(names)
	return names
}

func methodArguments(fnType reflect.Type, args []interface{}) ([]reflect.Value, error) {
	if fnType.IsVariadic() {
		return nil, fmt.Errorf("variadic test methods are not supported")
	}
	if fnType.NumIn() != len(args) {
		return nil, fmt.Errorf("method takes %d argument(s) but was given %d", fnType.NumIn(), len(args))
	}
	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		paramType := fnType.In(i)
		if arg == nil {
			switch paramType.Kind() {
			case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
				in[i] = reflect.Zero(paramType)
				continue
			}
			return nil, fmt.Errorf("argument %d is nil but parameter type is %s", i, paramType)
		}
		v := reflect.ValueOf(arg)
		if !v.Type().AssignableTo(paramType) {
			return nil, fmt.Errorf("argument %d is %s, not assignable to %s", i, v.Type(), paramType)
		}
		in[i] = v
	}
	return in, nil
}
