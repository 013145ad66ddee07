package apphost

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/livetesting/live-tests/framework"
	"github.com/livetesting/live-tests/servicedef"
)

const statusPollInterval = time.Millisecond * 100

// ServiceHost is a HostManager backed by an application host service.
type ServiceHost struct {
	baseURL string
	info    servicedef.StatusResponse
	client  *http.Client
	logger  framework.Logger
}

// ConnectServiceHost creates a ServiceHost, and verifies that the host service is responding
// by querying its status resource until it answers or the timeout elapses. Progress is written
// to output.
func ConnectServiceHost(
	baseURL string,
	timeout time.Duration,
	logger framework.Logger,
	output io.Writer,
) (*ServiceHost, error) {
	if logger == nil {
		logger = framework.NullLogger()
	}
	if output == nil {
		output = io.Discard
	}
	h := &ServiceHost{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  http.DefaultClient,
		logger:  logger,
	}
	info, err := h.queryStatus(timeout, output)
	if err != nil {
		return nil, err
	}
	h.info = info
	return h, nil
}

func (h *ServiceHost) queryStatus(timeout time.Duration, output io.Writer) (servicedef.StatusResponse, error) {
	fmt.Fprintf(output, "Connecting to application host service at %s", h.baseURL)

	deadline := time.Now().Add(timeout)
	for {
		fmt.Fprintf(output, ".")
		resp, err := h.client.Get(h.baseURL)
		if err == nil {
			fmt.Fprintln(output)
			respData, err := readBody(resp)
			if err != nil {
				return servicedef.StatusResponse{}, err
			}
			if resp.StatusCode != http.StatusOK {
				return servicedef.StatusResponse{}, fmt.Errorf("host service returned status code %d", resp.StatusCode)
			}
			if len(respData) == 0 {
				fmt.Fprintf(output, "Status query successful, but service provided no metadata\n")
				return servicedef.StatusResponse{}, nil
			}
			fmt.Fprintf(output, "Status query returned metadata: %s\n", string(respData))
			var info servicedef.StatusResponse
			if err := json.Unmarshal(respData, &info); err != nil {
				return servicedef.StatusResponse{}, fmt.Errorf("malformed status response from host service: %s", string(respData))
			}
			return info, nil
		}
		if !time.Now().Before(deadline) {
			fmt.Fprintln(output)
			return servicedef.StatusResponse{}, fmt.Errorf("timed out, result of last query was: %w", err)
		}
		time.Sleep(statusPollInterval)
	}
}

// Info returns the status information reported by the host service when we connected.
func (h *ServiceHost) Info() servicedef.StatusResponse {
	return h.info
}

// HasCapability returns true if the host service reported the capability.
func (h *ServiceHost) HasCapability(desired string) bool {
	return hasCapability(h.info.Capabilities, desired)
}

func (h *ServiceHost) CreateObject(
	applicationID string,
	appType ApplicationType,
	virtualPath string,
	physicalPath string,
	failIfExists bool,
	throwOnError bool,
) (interface{}, error) {
	params := servicedef.CreateApplicationParams{
		ApplicationID: applicationID,
		Type:          appType.Name,
		VirtualPath:   virtualPath,
		PhysicalPath:  physicalPath,
		FailIfExists:  failIfExists,
	}
	obj, err := h.createObject(params, appType)
	if err != nil {
		h.logger.Printf("Could not create %s in application %q: %s", appType.Name, applicationID, err)
		if !throwOnError {
			return nil, nil
		}
		return nil, err
	}
	return obj, nil
}

func (h *ServiceHost) createObject(params servicedef.CreateApplicationParams, appType ApplicationType) (interface{}, error) {
	if appType.New == nil {
		return nil, errors.New("application type must have a constructor")
	}
	data, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}
	h.logger.Printf("Creating application object with parameters: %s", string(data))
	resp, err := h.client.Post(h.baseURL+servicedef.ApplicationsPath, "application/json", bytes.NewBuffer(data))
	if err != nil {
		return nil, err
	}
	respData, err := readBody(resp)
	if err != nil {
		return nil, err
	}
	switch {
	case resp.StatusCode == http.StatusConflict:
		return nil, fmt.Errorf("%w: %s", ErrApplicationExists, errorMessage(respData))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, unexpectedStatus(resp.StatusCode, respData)
	}
	var info ApplicationInfo
	if err := json.Unmarshal(respData, &info); err != nil {
		return nil, fmt.Errorf("malformed application response from host service: %s", string(respData))
	}
	return appType.New(info), nil
}

func (h *ServiceHost) GetObject(applicationID string, appType ApplicationType) (interface{}, error) {
	resp, err := h.client.Get(h.applicationURL(applicationID) + "?" + servicedef.TypeQueryParam + "=" + url.QueryEscape(appType.Name))
	if err != nil {
		return nil, err
	}
	respData, err := readBody(resp)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, unexpectedStatus(resp.StatusCode, respData)
	}
	var info ApplicationInfo
	if err := json.Unmarshal(respData, &info); err != nil {
		return nil, fmt.Errorf("malformed application response from host service: %s", string(respData))
	}
	if appType.New == nil {
		return nil, errors.New("application type must have a constructor")
	}
	return appType.New(info), nil
}

func (h *ServiceHost) GetRunningApplications() ([]ApplicationInfo, error) {
	resp, err := h.client.Get(h.baseURL + servicedef.ApplicationsPath)
	if err != nil {
		return nil, err
	}
	respData, err := readBody(resp)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, unexpectedStatus(resp.StatusCode, respData)
	}
	var infos []ApplicationInfo
	if err := json.Unmarshal(respData, &infos); err != nil {
		return nil, fmt.Errorf("malformed application list from host service: %s", string(respData))
	}
	return infos, nil
}

func (h *ServiceHost) ShutdownApplication(applicationID string) error {
	req, err := http.NewRequest(http.MethodDelete, h.applicationURL(applicationID), nil)
	if err != nil {
		return err
	}
	h.logger.Printf("Shutting down application %q", applicationID)
	resp, err := h.client.Do(req)
	if err != nil {
		return err
	}
	respData, err := readBody(resp)
	if err != nil {
		return err
	}
	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return fmt.Errorf("%w: %q", ErrApplicationNotFound, applicationID)
	default:
		return unexpectedStatus(resp.StatusCode, respData)
	}
}

// StopService tells the host service that it should exit.
func (h *ServiceHost) StopService() error {
	req, _ := http.NewRequest(http.MethodDelete, h.baseURL, nil)
	resp, err := h.client.Do(req)
	if err == nil {
		_ = resp.Body.Close()
		if resp.StatusCode >= 300 {
			return fmt.Errorf("service returned HTTP %d", resp.StatusCode)
		}
	}
	// It's normal for the request to return an I/O error if the service immediately quit before sending a response
	return nil
}

func (h *ServiceHost) applicationURL(applicationID string) string {
	return h.baseURL + servicedef.ApplicationsPath + "/" + url.PathEscape(applicationID)
}

func readBody(resp *http.Response) ([]byte, error) {
	if resp.Body == nil {
		return nil, nil
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

func errorMessage(body []byte) string {
	var e servicedef.ErrorResponse
	if err := json.Unmarshal(body, &e); err == nil && e.Error != "" {
		return e.Error
	}
	return string(body)
}

func unexpectedStatus(status int, body []byte) error {
	var message string
	if len(body) > 0 {
		message = ": " + errorMessage(body)
	}
	return fmt.Errorf("unexpected response status %d from host service%s", status, message)
}
