// Package framework contains the low-level test infrastructure that the live test layer is
// built on. It knows nothing about applications or initialization handlers.
//
// There is a general notion of a test context which is similar to Go's *testing.T, allowing
// pieces of test logic to be associated with a test identifier and to accumulate
// success/failure results. Tests can be selected with regex filters, and each test gets its
// own capturing debug logger whose output is passed to the TestLogger when the test ends.
package framework
