package apphost

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/livetesting/live-tests/framework"
	"github.com/livetesting/live-tests/servicedef"
)

// serviceHandler exposes a HostManager as an application host service.
type serviceHandler struct {
	host   HostManager
	info   servicedef.StatusResponse
	logger framework.Logger
	onStop func()
}

// hostedObject is what the service creates inside an application: the service only needs to
// remember that an object of that type exists.
type hostedObject struct {
	typeName string
	info     ApplicationInfo
}

// NewServiceHandler returns an http.Handler that implements the application host service
// protocol on top of host. If onStop is not nil, it is called when a client asks the service
// to exit, and the service reports the shutdown-service capability.
func NewServiceHandler(
	host HostManager,
	info servicedef.StatusResponse,
	logger framework.Logger,
	onStop func(),
) http.Handler {
	if logger == nil {
		logger = framework.NullLogger()
	}
	info.Capabilities = append([]string(nil), info.Capabilities...)
	if onStop != nil && !hasCapability(info.Capabilities, servicedef.CapabilityShutdownService) {
		info.Capabilities = append(info.Capabilities, servicedef.CapabilityShutdownService)
	}
	return &serviceHandler{host: host, info: info, logger: logger, onStop: onStop}
}

func (s *serviceHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	path := strings.TrimSuffix(req.URL.EscapedPath(), "/")
	switch {
	case path == "":
		s.serveRoot(w, req)
	case path == servicedef.ApplicationsPath:
		s.serveApplications(w, req)
	case strings.HasPrefix(path, servicedef.ApplicationsPath+"/"):
		id, err := url.PathUnescape(strings.TrimPrefix(path, servicedef.ApplicationsPath+"/"))
		if err != nil || id == "" {
			writeError(w, http.StatusBadRequest, "invalid application ID")
			return
		}
		s.serveApplication(w, req, id)
	default:
		s.logger.Printf("Received request for unrecognized URL path %s", req.URL.Path)
		w.WriteHeader(http.StatusNotFound)
	}
}

func (s *serviceHandler) serveRoot(w http.ResponseWriter, req *http.Request) {
	switch req.Method {
	case http.MethodGet, http.MethodHead:
		writeJSON(w, http.StatusOK, s.info)
	case http.MethodDelete:
		if s.onStop == nil {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		s.logger.Printf("Service shutdown requested")
		w.WriteHeader(http.StatusNoContent)
		s.onStop()
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *serviceHandler) serveApplications(w http.ResponseWriter, req *http.Request) {
	switch req.Method {
	case http.MethodGet:
		infos, err := s.host.GetRunningApplications()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if infos == nil {
			infos = []ApplicationInfo{}
		}
		writeJSON(w, http.StatusOK, infos)
	case http.MethodPost:
		s.createApplicationObject(w, req)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *serviceHandler) createApplicationObject(w http.ResponseWriter, req *http.Request) {
	data, err := io.ReadAll(req.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var params servicedef.CreateApplicationParams
	if err := json.Unmarshal(data, &params); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("malformed parameters: %s", err))
		return
	}
	if params.ApplicationID == "" || params.Type == "" {
		writeError(w, http.StatusBadRequest, "applicationId and type are required")
		return
	}
	s.logger.Printf("Creating %s in application %q", params.Type, params.ApplicationID)

	obj, err := s.host.CreateObject(
		params.ApplicationID,
		hostedType(params.Type),
		params.VirtualPath,
		params.PhysicalPath,
		params.FailIfExists,
		true,
	)
	switch {
	case errors.Is(err, ErrApplicationExists):
		writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	info := objectInfo(obj, params)
	w.Header().Set("Location", servicedef.ApplicationsPath+"/"+url.PathEscape(info.ID))
	writeJSON(w, http.StatusCreated, info)
}

func (s *serviceHandler) serveApplication(w http.ResponseWriter, req *http.Request, id string) {
	switch req.Method {
	case http.MethodGet:
		typeName := req.URL.Query().Get(servicedef.TypeQueryParam)
		obj, err := s.host.GetObject(id, hostedType(typeName))
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if obj == nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, objectInfo(obj, servicedef.CreateApplicationParams{ApplicationID: id}))
	case http.MethodDelete:
		err := s.host.ShutdownApplication(id)
		switch {
		case errors.Is(err, ErrApplicationNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case err != nil:
			writeError(w, http.StatusInternalServerError, err.Error())
		default:
			w.WriteHeader(http.StatusNoContent)
		}
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func hostedType(name string) ApplicationType {
	return ApplicationType{
		Name: name,
		New: func(info ApplicationInfo) interface{} {
			return &hostedObject{typeName: name, info: info}
		},
	}
}

func objectInfo(obj interface{}, params servicedef.CreateApplicationParams) ApplicationInfo {
	if h, ok := obj.(*hostedObject); ok {
		return h.info
	}
	return ApplicationInfo{
		ID:           params.ApplicationID,
		VirtualPath:  params.VirtualPath,
		PhysicalPath: params.PhysicalPath,
		Types:        []string{params.Type},
	}
}

func writeJSON(w http.ResponseWriter, status int, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, servicedef.ErrorResponse{Error: message})
}

func hasCapability(capabilities []string, desired string) bool {
	for _, c := range capabilities {
		if c == desired {
			return true
		}
	}
	return false
}
