package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/livetesting/live-tests/framework"

	"github.com/alessio/shellescape"
)

type commandParams struct {
	serviceURL       string
	serveAddress     string
	virtualPath      string
	physicalPath     string
	filters          framework.RegexFilters
	stopServiceAtEnd bool
	debug            bool
	debugAll         bool
}

func (c *commandParams) Read(args []string) bool {
	fs := flag.NewFlagSet("", flag.ExitOnError)
	fs.StringVar(&c.serviceURL, "url", "", "application host service URL")
	fs.StringVar(&c.serveAddress, "serve", "", "run a local application host service at this address instead of testing one")
	fs.StringVar(&c.virtualPath, "virtual-path", "/", "virtual path under which test applications are created")
	fs.StringVar(&c.physicalPath, "physical-path", ".", "physical path of test applications")
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select tests to run")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select tests not to run")
	fs.BoolVar(&c.stopServiceAtEnd, "stop-service-at-end", false, "tell host service to exit after the test run")
	fs.BoolVar(&c.debug, "debug", false, "enable debug logging for failed tests")
	fs.BoolVar(&c.debugAll, "debug-all", false, "enable debug logging for all tests")

	if err := fs.Parse(args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fs.Usage()
		return false
	}
	if (c.serviceURL == "") == (c.serveAddress == "") {
		fmt.Fprintln(os.Stderr, "exactly one of -url or -serve is required")
		fs.Usage()
		return false
	}
	return true
}

// rerunCommand returns a command line that runs only the given tests, with the same service
// and path parameters as this run.
func (c *commandParams) rerunCommand(program string, failures []framework.TestResult) string {
	var cmd commandBuilder
	cmd.add(program, "-url", c.serviceURL)
	if c.virtualPath != "/" {
		cmd.add("-virtual-path", c.virtualPath)
	}
	if c.physicalPath != "." {
		cmd.add("-physical-path", c.physicalPath)
	}
	for _, f := range failures {
		cmd.add("-run", framework.QuoteTestID(f.TestID))
	}
	if c.debug || c.debugAll {
		cmd.add("-debug")
	}
	return cmd.String()
}

type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}
