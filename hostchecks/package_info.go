// Package hostchecks contains contract tests for application host services: starting,
// finding, listing and stopping applications through the apphost protocol.
//
// The tests are live test types. Applications are started for them by the StartApplication
// initialization handler, declared on the types and methods in this package's init function.
package hostchecks
