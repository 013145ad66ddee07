package hostchecks

import (
	"errors"
	"fmt"
	"path"

	"github.com/livetesting/live-tests/apphost"
	"github.com/livetesting/live-tests/initialization"
	"github.com/livetesting/live-tests/livetest"

	"github.com/google/uuid"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

var errNoTestContext = errors.New("handler was invoked outside of a live test")

// applicationReceiver is implemented by test types that want the applications started for them.
type applicationReceiver interface {
	receiveApplication(name string, app *apphost.Application)
}

// StartApplication starts an application with a unique ID for the test, and stops it when the
// test ends. Its one argument is the application's name, which is also used as the last
// segment of its virtual path.
type StartApplication struct {
	name string
}

func (h *StartApplication) Configure(args []ldvalue.Value) error {
	if len(args) != 1 || args[0].Type() != ldvalue.StringType || args[0].StringValue() == "" {
		return fmt.Errorf("StartApplication needs an application name, got %v", args)
	}
	h.name = args[0].StringValue()
	return nil
}

func (h *StartApplication) Initialize(context *initialization.InvocationContext) error {
	t, ok := livetest.FromContext(context)
	if !ok {
		return errNoTestContext
	}
	if h.name == "" {
		return errors.New("StartApplication has no application name")
	}
	definition := t.ApplicationHost()
	definition.ApplicationID = h.name + "-" + uuid.NewString()
	definition.VirtualPath = path.Join("/", definition.VirtualPath, h.name)

	app, err := t.Applications().StartApplication(&definition)
	if err != nil {
		return err
	}
	t.Debug("Started application %s", app)
	t.Defer(func() {
		if err := t.Applications().StopApplication(app); err != nil && !errors.Is(err, apphost.ErrApplicationNotFound) {
			t.Debug("Could not stop application %s: %s", app.ID(), err)
		}
	})
	if r, ok := context.Instance().(applicationReceiver); ok {
		r.receiveApplication(h.name, app)
	}
	return nil
}

// RequireCapability skips the test if the host service does not have the capability named by
// its argument.
type RequireCapability struct {
	capability string
}

func (h *RequireCapability) Configure(args []ldvalue.Value) error {
	if len(args) != 1 || args[0].Type() != ldvalue.StringType {
		return fmt.Errorf("RequireCapability needs a capability name, got %v", args)
	}
	h.capability = args[0].StringValue()
	return nil
}

func (h *RequireCapability) Initialize(context *initialization.InvocationContext) error {
	t, ok := livetest.FromContext(context)
	if !ok {
		return errNoTestContext
	}
	t.RequireCapability(h.capability)
	return nil
}

// DescribeInvocation writes the method and its arguments to the test's debug output.
type DescribeInvocation struct{}

func (DescribeInvocation) Initialize(context *initialization.InvocationContext) error {
	t, ok := livetest.FromContext(context)
	if !ok {
		return errNoTestContext
	}
	t.Debug("Invoking %s", context)
	return nil
}
