package hostchecks

import (
	"bytes"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/livetesting/live-tests/apphost"
	"github.com/livetesting/live-tests/framework"
	"github.com/livetesting/live-tests/initialization"
	"github.com/livetesting/live-tests/livetest"
	"github.com/livetesting/live-tests/servicedef"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeConfig(t *testing.T, host apphost.HostManager, capabilities []string) livetest.Config {
	manager, err := apphost.NewTestApplicationManager[*apphost.Application](host, apphost.NewApplication)
	require.NoError(t, err)
	return livetest.Config{
		Applications:    manager,
		ApplicationHost: apphost.ApplicationHost{VirtualPath: "/checks", PhysicalPath: t.TempDir()},
		Capabilities:    capabilities,
	}
}

// resultIDs returns the IDs of individual tests, leaving out the test type groups.
func resultIDs(results []framework.TestResult, skipped bool) []string {
	var ret []string
	for _, r := range results {
		if len(r.TestID.Path) > 1 && r.Skipped == skipped {
			ret = append(ret, r.TestID.String())
		}
	}
	return ret
}

func assertNoFailures(t *testing.T, results framework.Results) {
	for _, f := range results.Failures {
		assert.Fail(t, "contract test failed", "%s: %v", f.TestID, f.Errors)
	}
}

func TestSuitePassesAgainstLocalHost(t *testing.T) {
	host := apphost.NewLocalHost(nil)
	results := RunTestSuite(makeConfig(t, host, AllCapabilities), nil, nil)

	assertNoFailures(t, results)
	assert.Len(t, resultIDs(results.Tests, false), 7)
	assert.Len(t, resultIDs(results.Tests, true), 0)

	infos, err := host.GetRunningApplications()
	require.NoError(t, err)
	assert.Len(t, infos, 0, "tests should stop every application they start")
}

func TestSuitePassesAgainstServiceHost(t *testing.T) {
	local := apphost.NewLocalHost(nil)
	info := servicedef.StatusResponse{Description: "in-process host", Capabilities: AllCapabilities}
	httphelpers.WithServer(apphost.NewServiceHandler(local, info, nil, nil), func(server *httptest.Server) {
		var output bytes.Buffer
		host, err := apphost.ConnectServiceHost(server.URL, time.Second, nil, &output)
		require.NoError(t, err)

		results := RunTestSuite(makeConfig(t, host, host.Info().Capabilities), nil, nil)
		assertNoFailures(t, results)
		assert.Len(t, resultIDs(results.Tests, false), 7)

		infos, err := local.GetRunningApplications()
		require.NoError(t, err)
		assert.Len(t, infos, 0)
	})
}

func TestTestsNeedingMissingCapabilityAreSkipped(t *testing.T) {
	results := RunTestSuite(makeConfig(t, apphost.NewLocalHost(nil), nil), nil, nil)

	assertNoFailures(t, results)
	assert.Equal(t, []string{"lifecycle/StartingAgainWithFailIfExistsFails"}, resultIDs(results.Tests, true))
}

func TestFilterSelectsTests(t *testing.T) {
	var filters framework.RegexFilters
	require.NoError(t, filters.MustMatch.Set("^running applications$/"))

	results := RunTestSuite(makeConfig(t, apphost.NewLocalHost(nil), AllCapabilities), filters.AsFilter, nil)

	assertNoFailures(t, results)
	assert.Equal(t, []string{
		"running applications/ListsEveryStartedApplication",
		"running applications/OtherObjectTypesAreNotListed",
	}, resultIDs(results.Tests, false))
}

func TestApplicationsGetUniqueIDsAndPaths(t *testing.T) {
	host := apphost.NewLocalHost(nil)
	config := makeConfig(t, host, AllCapabilities)
	var seen []*apphost.Application

	livetest.Run(nil, nil, config, func(t *livetest.T) {
		t.Run("probe", func(t *livetest.T) {
			s := &RunningApplicationsTests{}
			t.RunMethod(s, "ListsEveryStartedApplication")
			seen = append(seen, s.apps["first"], s.apps["second"])
		})
	})

	require.Len(t, seen, 2)
	require.NotNil(t, seen[0])
	require.NotNil(t, seen[1])
	assert.NotEqual(t, seen[0].ID(), seen[1].ID())
	assert.Regexp(t, "^first-[0-9a-f-]{36}$", seen[0].ID())
	assert.Equal(t, "/checks/first", seen[0].VirtualPath())
	assert.Equal(t, "/checks/second", seen[1].VirtualPath())
}

func TestStartApplicationRequiresName(t *testing.T) {
	h := &StartApplication{}
	assert.Error(t, h.Configure(nil))
	assert.Error(t, h.Configure([]ldvalue.Value{ldvalue.Int(1)}))
	assert.NoError(t, h.Configure([]ldvalue.Value{ldvalue.String("app")}))
	assert.Equal(t, "app", h.name)
}

func TestHandlersOutsideLiveTestFail(t *testing.T) {
	context := initialization.NewInvocationContext(&LifecycleTests{}, initialization.MethodDescriptor{Name: "x"})
	assert.Equal(t, errNoTestContext, (&StartApplication{name: "app"}).Initialize(context))
	assert.Equal(t, errNoTestContext, (&RequireCapability{}).Initialize(context))
	assert.Equal(t, errNoTestContext, DescribeInvocation{}.Initialize(context))
}
