package livetest

import (
	"fmt"

	"github.com/livetesting/live-tests/apphost"
	"github.com/livetesting/live-tests/framework"
	"github.com/livetesting/live-tests/initialization"
)

// Config is the environment shared by all tests in a run.
type Config struct {
	// Applications starts and stops the applications that tests run against. Required.
	Applications *apphost.TestApplicationManager[*apphost.Application]

	// ApplicationHost is the default application definition. Handlers usually copy it and
	// set their own application ID.
	ApplicationHost apphost.ApplicationHost

	// Capabilities are the optional features supported by the application host.
	Capabilities []string

	// Discoverer resolves initialization actions. The default is an ActionDiscoverer over the
	// default registry.
	Discoverer initialization.Discoverer

	// Executor runs initialization actions. The default is an Executor with no factories.
	Executor *initialization.Executor
}

type environment struct {
	config Config
}

// T represents a test or subtest in a live test run.
//
// It implements the same basic functionality as Go's testing.T, but in an environment that is
// outside of the Go test runner. To make test assertions, use the assert and require packages,
// passing the *T as if it were a *testing.T.
type T struct {
	context *framework.Context
	env     *environment
}

// Run starts a test run. The action receives the root T and is expected to call Run or
// RunClass for each top-level test.
func Run(
	filter framework.Filter,
	testLogger framework.TestLogger,
	config Config,
	action func(*T),
) framework.Results {
	if config.Discoverer == nil {
		config.Discoverer = initialization.NewActionDiscoverer(nil)
	}
	if config.Executor == nil {
		config.Executor = initialization.NewExecutor(nil)
	}
	env := &environment{config: config}
	return framework.Run(filter, testLogger, func(c *framework.Context) {
		action(&T{context: c, env: env})
	})
}

// ID returns the identifier of this test.
func (t *T) ID() framework.TestID {
	return t.context.ID()
}

// Run runs a subtest. This is equivalent to the Run method of testing.T.
func (t *T) Run(name string, action func(*T)) {
	t.context.Run(name, func(c *framework.Context) {
		action(&T{context: c, env: t.env})
	})
}

// Errorf is called by assertions to log a test failure. It does not cause an immediate exit.
func (t *T) Errorf(format string, args ...interface{}) {
	t.context.Errorf(format, args...)
}

// FailNow is called by assertions when a test should fail and immediately exit. The methods in
// the require package call FailNow.
func (t *T) FailNow() {
	t.context.FailNow()
}

// Failed reports whether the test has failed so far.
func (t *T) Failed() bool {
	return t.context.Failed()
}

// Skip stops the test and marks it as skipped.
func (t *T) Skip() {
	t.context.Skip()
}

// SkipWithReason stops the test and marks it as skipped, with an explanation.
func (t *T) SkipWithReason(reason string) {
	t.context.SkipWithReason(reason)
}

// Defer schedules a cleanup function to run when the test ends.
func (t *T) Defer(fn func()) {
	t.context.Defer(fn)
}

// Debug logs some debug output for the test. The output will be passed to the test logger at
// the end of the test.
func (t *T) Debug(format string, args ...interface{}) {
	t.context.Debug(format, args...)
}

// DebugLogger returns a Logger that writes to the test's debug output.
func (t *T) DebugLogger() framework.Logger {
	return t.context.DebugLogger()
}

// Applications returns the manager for starting and stopping applications.
func (t *T) Applications() *apphost.TestApplicationManager[*apphost.Application] {
	return t.env.config.Applications
}

// ApplicationHost returns a copy of the default application definition.
func (t *T) ApplicationHost() apphost.ApplicationHost {
	return t.env.config.ApplicationHost
}

// HasCapability returns true if the application host supports the capability.
func (t *T) HasCapability(capability string) bool {
	for _, c := range t.env.config.Capabilities {
		if c == capability {
			return true
		}
	}
	return false
}

// RequireCapability skips this test if the application host did not declare that it supports
// the specified capability.
func (t *T) RequireCapability(capability string) {
	if !t.HasCapability(capability) {
		t.SkipWithReason(fmt.Sprintf("application host does not have capability %q", capability))
	}
}
