package framework

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

type Results struct {
	Tests    []TestResult
	Failures []TestResult
}

type TestResult struct {
	TestID  TestID
	Errors  []error
	Skipped bool
}

func (r Results) OK() bool {
	return len(r.Failures) == 0
}

type TestID struct {
	Path []string
}

// Plus returns a new TestID for a subtest of this one. The receiver is not modified.
func (t TestID) Plus(name string) TestID {
	path := make([]string, 0, len(t.Path)+1)
	path = append(path, t.Path...)
	return TestID{Path: append(path, name)}
}

func (t TestID) String() string {
	return strings.Join(t.Path, "/")
}

// PrintResults writes a summary of the test run.
func PrintResults(out io.Writer, results Results) {
	var ran, skipped int
	for _, r := range results.Tests {
		if r.Skipped {
			skipped++
		} else {
			ran++
		}
	}
	if results.OK() {
		color.New(color.FgGreen).Fprintf(out, "All tests passed (%d run, %d skipped)\n", ran, skipped)
		return
	}
	color.New(color.FgRed).Fprintf(out, "FAILED TESTS (%d of %d):\n", len(results.Failures), ran)
	for _, f := range results.Failures {
		fmt.Fprintf(out, "  * %s\n", f.TestID)
	}
}
