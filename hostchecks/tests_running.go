package hostchecks

import (
	"github.com/livetesting/live-tests/apphost"
	"github.com/livetesting/live-tests/livetest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// foreignObject is created by tests to check that listings are filtered by type.
type foreignObject struct {
	id string
}

func (f *foreignObject) ID() string { return f.id }

// RunningApplicationsTests check the listing of running applications.
type RunningApplicationsTests struct {
	hostTest
}

func (s *RunningApplicationsTests) ListsEveryStartedApplication(t *livetest.T) {
	assert.Equal(t, []string{"first", "second"}, s.order, "applications were started in the wrong order")
	first, second := s.app(t, "first"), s.app(t, "second")

	running, err := t.Applications().GetRunningApplications()
	require.NoError(t, err)
	ids := make(map[string]bool)
	for _, r := range running {
		ids[r.ID()] = true
	}
	assert.True(t, ids[first.ID()], "first application is not listed")
	assert.True(t, ids[second.ID()], "second application is not listed")
}

func (s *RunningApplicationsTests) OtherObjectTypesAreNotListed(t *livetest.T) {
	typed := s.app(t, "typed")

	foreign, err := apphost.NewTestApplicationManager[*foreignObject](t.Applications().Host(),
		func(info apphost.ApplicationInfo) *foreignObject { return &foreignObject{id: info.ID} })
	require.NoError(t, err)

	definition := t.ApplicationHost()
	definition.ApplicationID = "foreign-" + uuid.NewString()
	obj, err := foreign.StartApplication(&definition)
	require.NoError(t, err)
	t.Defer(func() { _ = foreign.StopApplication(obj) })

	running, err := t.Applications().GetRunningApplications()
	require.NoError(t, err)
	var ids []string
	for _, r := range running {
		ids = append(ids, r.ID())
	}
	assert.Contains(t, ids, typed.ID())
	assert.NotContains(t, ids, obj.ID())

	foreignRunning, err := foreign.GetRunningApplications()
	require.NoError(t, err)
	var foreignIDs []string
	for _, r := range foreignRunning {
		foreignIDs = append(foreignIDs, r.ID())
	}
	assert.Equal(t, []string{obj.ID()}, foreignIDs)
}
