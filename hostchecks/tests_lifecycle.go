package hostchecks

import (
	"errors"

	"github.com/livetesting/live-tests/apphost"
	"github.com/livetesting/live-tests/livetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// LifecycleTests start a single application before each test.
type LifecycleTests struct {
	hostTest
}

func (s *LifecycleTests) StartedApplicationIsRunning(t *livetest.T) {
	app := s.app(t, "lifecycle")

	found, err := t.Applications().GetRunningApplication(&apphost.ApplicationHost{ApplicationID: app.ID()})
	require.NoError(t, err)
	require.NotNil(t, found, "started application was not found")
	assert.Equal(t, app.ID(), found.ID())
	assert.Equal(t, app.VirtualPath(), found.VirtualPath())
}

func (s *LifecycleTests) StartingAgainReturnsTheRunningApplication(t *livetest.T) {
	app := s.app(t, "lifecycle")

	again, err := t.Applications().StartApplication(&apphost.ApplicationHost{
		ApplicationID: app.ID(),
		VirtualPath:   app.VirtualPath(),
		PhysicalPath:  app.PhysicalPath(),
	})
	require.NoError(t, err)
	assert.Equal(t, app.ID(), again.ID())

	running, err := t.Applications().GetRunningApplications()
	require.NoError(t, err)
	count := 0
	for _, r := range running {
		if r.ID() == app.ID() {
			count++
		}
	}
	assert.Equal(t, 1, count, "application should be listed exactly once")
}

func (s *LifecycleTests) StartingAgainWithFailIfExistsFails(t *livetest.T) {
	app := s.app(t, "lifecycle")
	manager := t.Applications()

	_, err := manager.Host().CreateObject(app.ID(), manager.ApplicationType(), app.VirtualPath(), app.PhysicalPath(), true, true)
	assert.True(t, errors.Is(err, apphost.ErrApplicationExists), "expected ErrApplicationExists, got %v", err)
}

func (s *LifecycleTests) StoppedApplicationIsNotRunning(t *livetest.T) {
	app := s.app(t, "lifecycle")

	require.NoError(t, t.Applications().StopApplication(app))

	found, err := t.Applications().GetRunningApplication(&apphost.ApplicationHost{ApplicationID: app.ID()})
	require.NoError(t, err)
	assert.Nil(t, found, "stopped application is still running")

	running, err := t.Applications().GetRunningApplications()
	require.NoError(t, err)
	for _, r := range running {
		assert.NotEqual(t, app.ID(), r.ID(), "stopped application is still listed")
	}
}

func (s *LifecycleTests) StoppingTwiceFails(t *livetest.T) {
	app := s.app(t, "lifecycle")

	require.NoError(t, t.Applications().StopApplication(app))
	err := t.Applications().StopApplication(app)
	assert.True(t, errors.Is(err, apphost.ErrApplicationNotFound), "expected ErrApplicationNotFound, got %v", err)
}
