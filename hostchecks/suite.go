package hostchecks

import (
	"github.com/livetesting/live-tests/apphost"
	"github.com/livetesting/live-tests/framework"
	"github.com/livetesting/live-tests/initialization"
	"github.com/livetesting/live-tests/livetest"
	"github.com/livetesting/live-tests/servicedef"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// AllCapabilities lists the optional host service capabilities that some tests require.
var AllCapabilities = []string{
	servicedef.CapabilityFailIfExists,
}

func init() {
	initialization.DeclareType(hostTest{},
		initialization.HandlerMarkerFor(DescribeInvocation{}).WithPriority(1000))

	initialization.DeclareType(LifecycleTests{},
		initialization.HandlerMarkerFor(StartApplication{}, ldvalue.String("lifecycle")))
	initialization.DeclareMethod(LifecycleTests{}, "StartingAgainWithFailIfExistsFails",
		initialization.HandlerMarkerFor(RequireCapability{}, ldvalue.String(servicedef.CapabilityFailIfExists)).
			WithPriority(100))

	initialization.DeclareMethod(RunningApplicationsTests{}, "ListsEveryStartedApplication",
		initialization.HandlerMarkerFor(StartApplication{}, ldvalue.String("first")).WithPriority(10),
		initialization.HandlerMarkerFor(StartApplication{}, ldvalue.String("second")).WithPriority(-10))
	initialization.DeclareMethod(RunningApplicationsTests{}, "OtherObjectTypesAreNotListed",
		initialization.HandlerMarkerFor(StartApplication{}, ldvalue.String("typed")))
}

// RunTestSuite runs all of the host contract tests.
func RunTestSuite(
	config livetest.Config,
	filter framework.Filter,
	testLogger framework.TestLogger,
) framework.Results {
	return livetest.Run(filter, testLogger, config, func(t *livetest.T) {
		t.RunClass("lifecycle", func() interface{} { return &LifecycleTests{} })
		t.RunClass("running applications", func() interface{} { return &RunningApplicationsTests{} })
	})
}

// hostTest is embedded by every test type. Markers declared on it apply to all of them.
type hostTest struct {
	apps  map[string]*apphost.Application
	order []string
}

func (h *hostTest) receiveApplication(name string, app *apphost.Application) {
	if h.apps == nil {
		h.apps = make(map[string]*apphost.Application)
	}
	h.apps[name] = app
	h.order = append(h.order, name)
}

func (h *hostTest) app(t *livetest.T, name string) *apphost.Application {
	app := h.apps[name]
	if app == nil {
		t.Errorf("no application %q was started for this test", name)
		t.FailNow()
	}
	return app
}
