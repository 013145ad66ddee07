package apphost

import (
	"reflect"

	"github.com/livetesting/live-tests/servicedef"
)

// ApplicationInfo describes a running application.
type ApplicationInfo = servicedef.ApplicationInfo

// ApplicationHost is the definition of an application to start.
type ApplicationHost struct {
	ApplicationID string
	VirtualPath   string
	PhysicalPath  string
}

// TestApplication is implemented by the objects that represent hosted applications.
type TestApplication interface {
	ID() string
}

// ApplicationType tells a HostManager what kind of object to create inside an application.
type ApplicationType struct {
	// Name identifies the type across processes.
	Name string
	// New creates the object. A HostManager calls it once per application and type.
	New func(info ApplicationInfo) interface{}
}

// HostManager manages isolated hosted applications. Implementations must be safe for
// concurrent use; TestApplicationManager does no locking of its own.
type HostManager interface {
	// CreateObject creates an object of the given type in the application, starting the
	// application if needed. If the object already exists it is returned, unless failIfExists
	// is set. If throwOnError is false, failures are reported as a nil object and nil error.
	CreateObject(
		applicationID string,
		appType ApplicationType,
		virtualPath string,
		physicalPath string,
		failIfExists bool,
		throwOnError bool,
	) (interface{}, error)

	// GetObject returns the object of the given type in the application, or nil if either
	// does not exist.
	GetObject(applicationID string, appType ApplicationType) (interface{}, error)

	// GetRunningApplications lists the applications that are currently running.
	GetRunningApplications() ([]ApplicationInfo, error)

	// ShutdownApplication stops an application and discards its objects.
	ShutdownApplication(applicationID string) error
}

// Application is a general-purpose TestApplication that just records what the host reported.
type Application struct {
	info ApplicationInfo
}

// NewApplication is an ApplicationFactory for *Application.
func NewApplication(info ApplicationInfo) *Application {
	info.Types = append([]string(nil), info.Types...)
	return &Application{info: info}
}

func (a *Application) ID() string { return a.info.ID }

func (a *Application) VirtualPath() string { return a.info.VirtualPath }

func (a *Application) PhysicalPath() string { return a.info.PhysicalPath }

func (a *Application) String() string { return a.info.ID + " (" + a.info.VirtualPath + ")" }

// TypeName returns the name a TestApplicationManager uses for an application type.
func TypeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	if t.Kind() == reflect.Ptr {
		return "*" + TypeName(t.Elem())
	}
	if t.Name() == "" || t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}
