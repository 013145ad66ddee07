package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/livetesting/live-tests/apphost"
	"github.com/livetesting/live-tests/framework"
	"github.com/livetesting/live-tests/hostchecks"
	"github.com/livetesting/live-tests/initialization"
	"github.com/livetesting/live-tests/livetest"
	"github.com/livetesting/live-tests/servicedef"
)

const statusQueryTimeout = time.Second * 10

func main() {
	var params commandParams
	if !params.Read(os.Args) {
		os.Exit(1)
	}

	mainDebugLogger := framework.NullLogger()
	if params.debugAll {
		mainDebugLogger = framework.NewWriterLogger(os.Stdout, "")
	}

	if params.serveAddress != "" {
		if err := serve(params.serveAddress, mainDebugLogger); err != nil {
			fmt.Fprintf(os.Stderr, "Host service error: %s\n", err)
			os.Exit(1)
		}
		return
	}

	host, err := apphost.ConnectServiceHost(params.serviceURL, statusQueryTimeout, mainDebugLogger, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Host service error: %s\n", err)
		os.Exit(1)
	}

	applications, err := apphost.NewTestApplicationManager[*apphost.Application](host, apphost.NewApplication)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Host service error: %s\n", err)
		os.Exit(1)
	}

	fmt.Println()
	framework.PrintFilterDescription(os.Stdout, params.filters, host.Info().Capabilities, hostchecks.AllCapabilities)

	fmt.Println("Running test suite")

	testLogger := framework.ConsoleTestLogger{
		Out:                  os.Stdout,
		DebugOutputOnFailure: params.debug || params.debugAll,
		DebugOutputOnSuccess: params.debugAll,
	}
	config := livetest.Config{
		Applications: applications,
		ApplicationHost: apphost.ApplicationHost{
			VirtualPath:  params.virtualPath,
			PhysicalPath: params.physicalPath,
		},
		Capabilities: host.Info().Capabilities,
		Executor:     initialization.NewExecutor(mainDebugLogger),
	}

	results := hostchecks.RunTestSuite(config, params.filters.AsFilter, testLogger)

	fmt.Println()
	framework.PrintResults(os.Stdout, results)

	if params.stopServiceAtEnd {
		fmt.Println("Stopping host service")
		if err := host.StopService(); err != nil {
			fmt.Fprintf(os.Stderr, "Error when stopping host service: %s\n", err)
		}
	}

	if !results.OK() {
		fmt.Println()
		fmt.Println("To rerun the failed tests:")
		fmt.Println("  " + params.rerunCommand(os.Args[0], results.Failures))
		os.Exit(1)
	}
}

// serve runs a host service backed by a LocalHost until a client asks it to stop.
func serve(address string, logger framework.Logger) error {
	stopCh := make(chan struct{})
	var stopOnce sync.Once
	info := servicedef.StatusResponse{
		Description:  "local application host",
		Capabilities: []string{servicedef.CapabilityFailIfExists},
	}
	handler := apphost.NewServiceHandler(apphost.NewLocalHost(logger), info, logger, func() { stopOnce.Do(func() { close(stopCh) }) })
	server := &http.Server{Addr: address, Handler: handler, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()
	fmt.Printf("Application host service listening on %s\n", address)

	select {
	case err := <-errCh:
		return err
	case <-stopCh:
	}
	fmt.Println("Application host service stopping")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
