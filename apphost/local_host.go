package apphost

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/livetesting/live-tests/framework"
)

// LocalHost is a HostManager that keeps applications in the current process.
type LocalHost struct {
	apps   map[string]*localApplication
	logger framework.Logger
	lock   sync.Mutex
}

type localApplication struct {
	info    ApplicationInfo
	objects map[string]interface{}
	types   []string
}

// NewLocalHost creates an empty LocalHost. If logger is nil, nothing is logged.
func NewLocalHost(logger framework.Logger) *LocalHost {
	if logger == nil {
		logger = framework.NullLogger()
	}
	return &LocalHost{
		apps:   make(map[string]*localApplication),
		logger: logger,
	}
}

func (h *LocalHost) CreateObject(
	applicationID string,
	appType ApplicationType,
	virtualPath string,
	physicalPath string,
	failIfExists bool,
	throwOnError bool,
) (interface{}, error) {
	obj, err := h.createObject(applicationID, appType, virtualPath, physicalPath, failIfExists)
	if err != nil {
		h.logger.Printf("Could not create %s in application %q: %s", appType.Name, applicationID, err)
		if !throwOnError {
			return nil, nil
		}
		return nil, err
	}
	return obj, nil
}

func (h *LocalHost) createObject(
	applicationID string,
	appType ApplicationType,
	virtualPath string,
	physicalPath string,
	failIfExists bool,
) (interface{}, error) {
	if applicationID == "" {
		return nil, errors.New("application ID must not be empty")
	}
	if appType.Name == "" || appType.New == nil {
		return nil, errors.New("application type must have a name and a constructor")
	}

	h.lock.Lock()
	defer h.lock.Unlock()

	app := h.apps[applicationID]
	if app != nil {
		if existing, ok := app.objects[appType.Name]; ok {
			if failIfExists {
				return nil, fmt.Errorf("%w: %q already hosts %s", ErrApplicationExists, applicationID, appType.Name)
			}
			return existing, nil
		}
	} else {
		app = &localApplication{
			info: ApplicationInfo{
				ID:           applicationID,
				VirtualPath:  virtualPath,
				PhysicalPath: physicalPath,
			},
			objects: make(map[string]interface{}),
		}
		h.apps[applicationID] = app
		h.logger.Printf("Started application %q at %s (%s)", applicationID, virtualPath, physicalPath)
	}
	app.types = append(app.types, appType.Name)
	obj := appType.New(app.snapshot())
	app.objects[appType.Name] = obj
	return obj, nil
}

func (h *LocalHost) GetObject(applicationID string, appType ApplicationType) (interface{}, error) {
	h.lock.Lock()
	defer h.lock.Unlock()
	if app := h.apps[applicationID]; app != nil {
		return app.objects[appType.Name], nil
	}
	return nil, nil
}

// GetRunningApplications returns the running applications sorted by ID.
func (h *LocalHost) GetRunningApplications() ([]ApplicationInfo, error) {
	h.lock.Lock()
	defer h.lock.Unlock()
	ret := make([]ApplicationInfo, 0, len(h.apps))
	for _, app := range h.apps {
		ret = append(ret, app.snapshot())
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].ID < ret[j].ID })
	return ret, nil
}

func (h *LocalHost) ShutdownApplication(applicationID string) error {
	h.lock.Lock()
	defer h.lock.Unlock()
	if h.apps[applicationID] == nil {
		return fmt.Errorf("%w: %q", ErrApplicationNotFound, applicationID)
	}
	delete(h.apps, applicationID)
	h.logger.Printf("Stopped application %q", applicationID)
	return nil
}

func (a *localApplication) snapshot() ApplicationInfo {
	info := a.info
	info.Types = append([]string(nil), a.types...)
	return info
}
