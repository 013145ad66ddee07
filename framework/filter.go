package framework

import (
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Filter is a function that can determine whether to run a specific test or not.
type Filter func(TestID) bool

// RegexFilters selects tests by matching regular expressions against test IDs. As with "go test
// -run", a pattern is split on unbracketed slashes and each element is matched against the
// corresponding element of the test path.
type RegexFilters struct {
	MustMatch    RegexList
	MustNotMatch RegexList
}

// AsFilter reports whether the test should run. A parent test passes MustMatch if its path is
// consistent with the start of some pattern, so that its subtests can be reached. A test fails
// MustNotMatch only if every element of some pattern matches.
func (r RegexFilters) AsFilter(id TestID) bool {
	if r.MustMatch.IsDefined() && !r.MustMatch.anyPrefixMatch(id.Path) {
		return false
	}
	return !r.MustNotMatch.anyFullMatch(id.Path)
}

type RegexList struct {
	patterns []regexPattern
}

type regexPattern struct {
	source   string
	elements []*regexp.Regexp
}

func (r RegexList) String() string {
	var ss []string
	for _, p := range r.patterns {
		ss = append(ss, `"`+p.source+`"`)
	}
	return strings.Join(ss, " or ")
}

// Set is called by the command line parser; RegexList implements flag.Value.
func (r *RegexList) Set(value string) error {
	p := regexPattern{source: value}
	for _, e := range splitRegex(value) {
		rx, err := regexp.Compile(e)
		if err != nil {
			return fmt.Errorf("invalid regex: %w", err)
		}
		p.elements = append(p.elements, rx)
	}
	r.patterns = append(r.patterns, p)
	return nil
}

func (r RegexList) IsDefined() bool {
	return len(r.patterns) != 0
}

// AnyMatch reports whether any pattern matches the whole test path.
func (r RegexList) AnyMatch(id TestID) bool {
	return r.anyFullMatch(id.Path)
}

func (r RegexList) anyPrefixMatch(path []string) bool {
	for _, p := range r.patterns {
		if p.matchElements(path) {
			return true
		}
	}
	return false
}

func (r RegexList) anyFullMatch(path []string) bool {
	for _, p := range r.patterns {
		if len(path) >= len(p.elements) && p.matchElements(path) {
			return true
		}
	}
	return false
}

func (p regexPattern) matchElements(path []string) bool {
	for i, name := range path {
		if i >= len(p.elements) {
			break
		}
		if !p.elements[i].MatchString(name) {
			return false
		}
	}
	return true
}

// splitRegex splits a pattern on slashes that are not inside brackets or parentheses.
func splitRegex(s string) []string {
	var elements []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '[', '(':
			depth++
		case ']', ')':
			if depth > 0 {
				depth--
			}
		case '/':
			if depth == 0 {
				elements = append(elements, s[start:i])
				start = i + 1
			}
		}
	}
	return append(elements, s[start:])
}

// QuoteTestID returns a pattern that matches exactly the given test and its subtests.
func QuoteTestID(id TestID) string {
	elements := make([]string, 0, len(id.Path))
	for _, name := range id.Path {
		elements = append(elements, "^"+strings.ReplaceAll(regexp.QuoteMeta(name), "/", "[/]")+"$")
	}
	return strings.Join(elements, "/")
}

// PrintFilterDescription explains which tests may be skipped, either because of the filter
// parameters or because the host service lacks some of the capabilities that tests can ask for.
func PrintFilterDescription(out io.Writer, filters RegexFilters, serviceCapabilities, allCapabilities []string) {
	if filters.MustMatch.IsDefined() || filters.MustNotMatch.IsDefined() {
		fmt.Fprintln(out, "Some tests will be skipped based on the filter criteria for this test run:")
		if filters.MustMatch.IsDefined() {
			fmt.Fprintf(out, "  skip any not matching %s\n", filters.MustMatch)
		}
		if filters.MustNotMatch.IsDefined() {
			fmt.Fprintf(out, "  skip any matching %s\n", filters.MustNotMatch)
		}
		fmt.Fprintln(out)
	}

	var missingCapabilities []string
	for _, c := range allCapabilities {
		if !hasString(serviceCapabilities, c) {
			missingCapabilities = append(missingCapabilities, c)
		}
	}
	if len(missingCapabilities) > 0 {
		fmt.Fprintln(out, "Some tests may be skipped because the host service does not support the following capabilities:")
		fmt.Fprintf(out, "  %s\n", strings.Join(missingCapabilities, ", "))
		fmt.Fprintln(out)
	}
}

func hasString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
