package livetest

import (
	"errors"
	"reflect"
	"testing"

	"github.com/livetesting/live-tests/apphost"
	"github.com/livetesting/live-tests/framework"
	"github.com/livetesting/live-tests/initialization"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

var events []string

type recordEvent struct {
	name string
}

func (h *recordEvent) Configure(args []ldvalue.Value) error {
	h.name = args[0].StringValue()
	return nil
}

func (h *recordEvent) Initialize(context *initialization.InvocationContext) error {
	t, ok := FromContext(context)
	if !ok {
		return errors.New("no T in context")
	}
	events = append(events, t.ID().String()+":"+h.name)
	return nil
}

type failInitialization struct{}

func (failInitialization) Initialize(*initialization.InvocationContext) error {
	return errors.New("cannot initialize")
}

type skipInitialization struct{}

func (skipInitialization) Initialize(context *initialization.InvocationContext) error {
	t, _ := FromContext(context)
	t.RequireCapability("missing-capability")
	return nil
}

type sampleTests struct{}

func (s *sampleTests) First(t *T) {
	events = append(events, t.ID().String()+":method")
}

func (s *sampleTests) Second(t *T) {
	events = append(events, t.ID().String()+":method")
	assert.Equal(t, 1, 2)
}

func (s *sampleTests) Third(t *T) {
	events = append(events, t.ID().String()+":method")
}

func (s *sampleTests) Fourth(t *T) {
	events = append(events, t.ID().String()+":method")
}

func (s *sampleTests) NotATest(x int) {}

func (s *sampleTests) WithArgument(t *T, value string) {
	events = append(events, "argument:"+value)
}

func sampleRegistry() *initialization.Registry {
	r := initialization.NewRegistry()
	st := reflect.TypeOf(sampleTests{})
	r.DeclareType(st, initialization.HandlerMarkerFor(recordEvent{}, ldvalue.String("type")))
	r.DeclareMethod(st, "First", initialization.HandlerMarkerFor(recordEvent{}, ldvalue.String("early")).WithPriority(10))
	r.DeclareMethod(st, "Third", initialization.HandlerMarkerFor(failInitialization{}))
	r.DeclareMethod(st, "Fourth", initialization.HandlerMarkerFor(skipInitialization{}).WithPriority(100))
	return r
}

func runSample(t *testing.T, action func(*T)) framework.Results {
	events = nil
	manager, err := apphost.NewTestApplicationManager[*apphost.Application](apphost.NewLocalHost(nil), apphost.NewApplication)
	require.NoError(t, err)
	config := Config{
		Applications: manager,
		Discoverer:   initialization.NewActionDiscoverer(sampleRegistry()),
	}
	return Run(nil, nil, config, action)
}

func failedIDs(results framework.Results) []string {
	var ret []string
	for _, f := range results.Failures {
		ret = append(ret, f.TestID.String())
	}
	return ret
}

func TestRunClassRunsHandlersBeforeEachMethod(t *testing.T) {
	results := runSample(t, func(t *T) {
		t.RunClass("sample", func() interface{} { return &sampleTests{} })
	})

	assert.Equal(t, []string{
		"sample/First:early",
		"sample/First:type",
		"sample/First:method",
		// Fourth is skipped by a higher-priority handler before anything else runs
		"sample/Second:type",
		"sample/Second:method",
		"sample/Third:type",
	}, events)

	assert.Equal(t, []string{"sample/Second", "sample/Third"}, failedIDs(results))

	var skipped []string
	for _, r := range results.Tests {
		if r.Skipped {
			skipped = append(skipped, r.TestID.String())
		}
	}
	assert.Equal(t, []string{"sample/Fourth"}, skipped)
}

func TestFailedInitializationReportsTheHandler(t *testing.T) {
	results := runSample(t, func(t *T) {
		t.Run("third", func(t *T) {
			t.RunMethod(&sampleTests{}, "Third")
		})
	})
	require.Len(t, results.Failures, 1)
	require.Len(t, results.Failures[0].Errors, 1)
	assert.Contains(t, results.Failures[0].Errors[0].Error(), "cannot initialize")
	assert.Contains(t, results.Failures[0].Errors[0].Error(), initialization.HandlerID(reflect.TypeOf(failInitialization{})))
}

func TestRunMethodPassesArguments(t *testing.T) {
	results := runSample(t, func(t *T) {
		t.Run("with argument", func(t *T) {
			t.RunMethod(&sampleTests{}, "WithArgument", "hello")
		})
		t.Run("wrong argument", func(t *T) {
			t.RunMethod(&sampleTests{}, "WithArgument", 3)
		})
		t.Run("missing method", func(t *T) {
			t.RunMethod(&sampleTests{}, "Missing")
		})
	})
	assert.Equal(t, []string{"with argument:type", "argument:hello"}, events)
	assert.Equal(t, []string{"wrong argument", "missing method"}, failedIDs(results))
}

func TestFromContext(t *testing.T) {
	_, ok := FromContext(nil)
	assert.False(t, ok)

	m, _ := initialization.MethodOf(&sampleTests{}, "First")
	_, ok = FromContext(initialization.NewInvocationContext(&sampleTests{}, m, "not a T"))
	assert.False(t, ok)

	tt := &T{}
	got, ok := FromContext(initialization.NewInvocationContext(&sampleTests{}, m, tt))
	assert.True(t, ok)
	assert.Same(t, tt, got)
}

func TestTestMethods(t *testing.T) {
	assert.Equal(t, []string{"First", "Fourth", "Second", "Third"}, testMethods(reflect.TypeOf(&sampleTests{})))
}
