package apphost

import (
	"fmt"
	"path/filepath"
	"reflect"
)

// ApplicationFactory creates the object that represents an application inside its host.
type ApplicationFactory[T TestApplication] func(info ApplicationInfo) T

// TestApplicationManager starts, finds and stops applications whose hosted object is a T.
type TestApplicationManager[T TestApplication] struct {
	host    HostManager
	appType ApplicationType
}

// NewTestApplicationManager creates a TestApplicationManager. Both arguments are required.
func NewTestApplicationManager[T TestApplication](
	host HostManager,
	factory ApplicationFactory[T],
) (*TestApplicationManager[T], error) {
	if host == nil {
		return nil, nullArgument("host")
	}
	if factory == nil {
		return nil, nullArgument("factory")
	}
	return &TestApplicationManager[T]{
		host: host,
		appType: ApplicationType{
			Name: TypeName(reflect.TypeOf((*T)(nil)).Elem()),
			New:  func(info ApplicationInfo) interface{} { return factory(info) },
		},
	}, nil
}

// Host returns the underlying HostManager.
func (m *TestApplicationManager[T]) Host() HostManager {
	return m.host
}

// ApplicationType returns the type descriptor passed to the HostManager.
func (m *TestApplicationManager[T]) ApplicationType() ApplicationType {
	return m.appType
}

// StartApplication starts the application described by applicationHost, or returns the
// existing one if it is already running. The physical path is made absolute first.
func (m *TestApplicationManager[T]) StartApplication(applicationHost *ApplicationHost) (T, error) {
	var zero T
	if applicationHost == nil {
		return zero, nullArgument("applicationHost")
	}
	physicalPath, err := filepath.Abs(applicationHost.PhysicalPath)
	if err != nil {
		return zero, err
	}
	obj, err := m.host.CreateObject(
		applicationHost.ApplicationID,
		m.appType,
		applicationHost.VirtualPath,
		physicalPath,
		false,
		true,
	)
	if err != nil {
		return zero, err
	}
	return m.cast(applicationHost.ApplicationID, obj)
}

// GetRunningApplication returns the application that corresponds to applicationHost, or the
// zero T if it is not running.
func (m *TestApplicationManager[T]) GetRunningApplication(applicationHost *ApplicationHost) (T, error) {
	var zero T
	if applicationHost == nil {
		return zero, nullArgument("applicationHost")
	}
	obj, err := m.host.GetObject(applicationHost.ApplicationID, m.appType)
	if err != nil || obj == nil {
		return zero, err
	}
	return m.cast(applicationHost.ApplicationID, obj)
}

// StopApplication shuts down the application.
func (m *TestApplicationManager[T]) StopApplication(application T) error {
	if isNil(application) {
		return nullArgument("application")
	}
	return m.host.ShutdownApplication(application.ID())
}

// GetRunningApplications returns the running applications whose hosted object is a T.
// Applications hosting anything else are left out.
func (m *TestApplicationManager[T]) GetRunningApplications() ([]T, error) {
	infos, err := m.host.GetRunningApplications()
	if err != nil {
		return nil, err
	}
	var result []T
	for _, info := range infos {
		obj, err := m.host.GetObject(info.ID, m.appType)
		if err != nil {
			return nil, err
		}
		if candidate, ok := obj.(T); ok && !isNil(candidate) {
			result = append(result, candidate)
		}
	}
	return result, nil
}

func (m *TestApplicationManager[T]) cast(applicationID string, obj interface{}) (T, error) {
	app, ok := obj.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("host returned %T for application %q, expected %s", obj, applicationID, m.appType.Name)
	}
	return app, nil
}

func isNil(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
