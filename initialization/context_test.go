package initialization

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMethodOf(t *testing.T) {
	m, ok := MethodOf(&sampleTest{}, "TestMethod")
	require.True(t, ok)
	assert.Equal(t, reflect.TypeOf(sampleTest{}), m.DeclaringType)
	assert.Equal(t, "TestMethod", m.Name)
	assert.Equal(t, []reflect.Type{reflect.TypeOf("")}, m.ParameterTypes)
	assert.Equal(t, "initialization.sampleTest.TestMethod(string)", m.String())

	_, ok = MethodOf(&sampleTest{}, "Missing")
	assert.False(t, ok)
	_, ok = MethodOf(nil, "TestMethod")
	assert.False(t, ok)
}

func TestInvocationContextEquality(t *testing.T) {
	test := &sampleTest{}
	method := mustMethod(t, test, "TestMethod")
	other := mustMethod(t, test, "TestMethodWithPrioritizedHandler")

	c := NewInvocationContext(test, method, "a", []int{1})
	assert.True(t, c.Equal(NewInvocationContext(test, method, "a", []int{1})))
	assert.False(t, c.Equal(NewInvocationContext(&sampleTest{}, method, "a", []int{1})), "different instance")
	assert.False(t, c.Equal(NewInvocationContext(test, other, "a", []int{1})), "different method")
	assert.False(t, c.Equal(NewInvocationContext(test, method, "a", []int{2})), "different arguments")
	assert.False(t, c.Equal(nil))

	byValue := NewInvocationContext(map[string]int{"x": 1}, method)
	assert.True(t, byValue.Equal(NewInvocationContext(map[string]int{"x": 1}, method)))
}

func TestInvocationContextIsImmutable(t *testing.T) {
	args := []interface{}{"a", "b"}
	c := NewInvocationContext(&sampleTest{}, mustMethod(t, &sampleTest{}, "TestMethod"), args...)
	args[0] = "changed"
	got := c.Arguments()
	got[1] = "changed"
	assert.Equal(t, []interface{}{"a", "b"}, c.Arguments())
}

func TestHandlerID(t *testing.T) {
	assert.Equal(t, "github.com/livetesting/live-tests/initialization.handler1", HandlerID(reflect.TypeOf(handler1{})))
	assert.Equal(t, HandlerID(reflect.TypeOf(handler1{})), HandlerID(reflect.TypeOf(&handler1{})))
	assert.Equal(t, "[]string", HandlerID(reflect.TypeOf([]string{})))
	assert.Equal(t, "<nil>", HandlerID(nil))
}
