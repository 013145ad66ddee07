// Package servicedef defines the JSON protocol spoken between the test runner and an
// application host service.
package servicedef

const (
	// ApplicationsPath is the collection resource for hosted applications.
	ApplicationsPath = "/applications"

	// TypeQueryParam selects the object type when getting a single application.
	TypeQueryParam = "type"
)

const (
	// CapabilityFailIfExists means the service honors CreateApplicationParams.FailIfExists.
	CapabilityFailIfExists = "fail-if-exists"

	// CapabilityShutdownService means the service exits when it receives DELETE on its root URL.
	CapabilityShutdownService = "shutdown-service"
)

// StatusResponse is returned by GET on the service's root URL.
type StatusResponse struct {
	Description  string   `json:"description"`
	Capabilities []string `json:"capabilities"`
}

// CreateApplicationParams is the body of POST /applications. It asks the service to create an
// object of the named type inside the application, starting the application if necessary.
type CreateApplicationParams struct {
	ApplicationID string `json:"applicationId"`
	Type          string `json:"type"`
	VirtualPath   string `json:"virtualPath"`
	PhysicalPath  string `json:"physicalPath"`
	FailIfExists  bool   `json:"failIfExists,omitempty"`
}

// ApplicationInfo describes a running application.
type ApplicationInfo struct {
	ID           string   `json:"id"`
	VirtualPath  string   `json:"virtualPath"`
	PhysicalPath string   `json:"physicalPath"`
	Types        []string `json:"types,omitempty"`
}

// ErrorResponse is the body of any non-success response.
type ErrorResponse struct {
	Error string `json:"error"`
}
