package apphost

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/livetesting/live-tests/servicedef"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withHostService(t *testing.T, host HostManager, onStop func(), action func(*ServiceHost)) {
	info := servicedef.StatusResponse{
		Description:  "test host",
		Capabilities: []string{servicedef.CapabilityFailIfExists},
	}
	httphelpers.WithServer(NewServiceHandler(host, info, nil, onStop), func(server *httptest.Server) {
		var output bytes.Buffer
		h, err := ConnectServiceHost(server.URL, time.Second, nil, &output)
		require.NoError(t, err)
		assert.Contains(t, output.String(), "Status query returned metadata")
		action(h)
	})
}

func TestServiceHostReadsStatus(t *testing.T) {
	withHostService(t, NewLocalHost(nil), nil, func(h *ServiceHost) {
		assert.Equal(t, "test host", h.Info().Description)
		assert.True(t, h.HasCapability(servicedef.CapabilityFailIfExists))
		assert.False(t, h.HasCapability(servicedef.CapabilityShutdownService))
	})
}

func TestServiceHostRoundTrip(t *testing.T) {
	local := NewLocalHost(nil)
	withHostService(t, local, nil, func(h *ServiceHost) {
		m := newManager(t, h)

		app, err := m.StartApplication(&ApplicationHost{ApplicationID: "site/1", VirtualPath: "/", PhysicalPath: "/srv/site"})
		require.NoError(t, err)
		assert.Equal(t, "site/1", app.ID())
		assert.Equal(t, "/srv/site", app.PhysicalPath())

		found, err := m.GetRunningApplication(&ApplicationHost{ApplicationID: "site/1"})
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "site/1", found.ID())

		missing, err := m.GetRunningApplication(&ApplicationHost{ApplicationID: "nope"})
		require.NoError(t, err)
		assert.Nil(t, missing)

		running, err := m.GetRunningApplications()
		require.NoError(t, err)
		require.Len(t, running, 1)
		assert.Equal(t, "site/1", running[0].ID())

		require.NoError(t, m.StopApplication(app))
		infos, err := local.GetRunningApplications()
		require.NoError(t, err)
		assert.Len(t, infos, 0)

		err = m.StopApplication(app)
		assert.True(t, errors.Is(err, ErrApplicationNotFound))
	})
}

func TestServiceHostFailIfExists(t *testing.T) {
	withHostService(t, NewLocalHost(nil), nil, func(h *ServiceHost) {
		_, err := h.CreateObject("app", testAppType, "/", "/srv", true, true)
		require.NoError(t, err)
		_, err = h.CreateObject("app", testAppType, "/", "/srv", true, true)
		assert.True(t, errors.Is(err, ErrApplicationExists))
		obj, err := h.CreateObject("app", testAppType, "/", "/srv", true, false)
		assert.NoError(t, err)
		assert.Nil(t, obj)
	})
}

func TestServiceHostStopService(t *testing.T) {
	stopped := make(chan struct{}, 1)
	withHostService(t, NewLocalHost(nil), func() { stopped <- struct{}{} }, func(h *ServiceHost) {
		assert.True(t, h.HasCapability(servicedef.CapabilityShutdownService))
		require.NoError(t, h.StopService())
		select {
		case <-stopped:
		case <-time.After(time.Second):
			assert.Fail(t, "service was not stopped")
		}
	})
}

func TestServiceHostReportsUnexpectedStatus(t *testing.T) {
	handler := httphelpers.HandlerWithJSONResponse(servicedef.StatusResponse{Description: "broken"}, nil)
	errorHandler := httphelpers.HandlerWithStatus(http.StatusInternalServerError)
	rh, requests := httphelpers.RecordingHandler(errorHandler)
	mux := http.NewServeMux()
	mux.Handle("/", handler)
	mux.Handle(servicedef.ApplicationsPath, rh)

	httphelpers.WithServer(mux, func(server *httptest.Server) {
		h, err := ConnectServiceHost(server.URL, time.Second, nil, nil)
		require.NoError(t, err)

		_, err = h.GetRunningApplications()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "500")
		require.Len(t, requests, 1)
		assert.Equal(t, http.MethodGet, (<-requests).Request.Method)
	})
}

func TestConnectServiceHostTimesOut(t *testing.T) {
	server := httptest.NewServer(httphelpers.HandlerWithStatus(http.StatusOK))
	url := server.URL
	server.Close()

	_, err := ConnectServiceHost(url, time.Millisecond*200, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
}
