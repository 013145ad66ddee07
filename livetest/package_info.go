// Package livetest runs test methods against hosted applications, executing the
// initialization handlers declared for each method first.
//
// A test type is any type whose exported methods have the signature func(*livetest.T).
// RunClass creates a fresh instance of the type for every such method and runs the method
// as a subtest. Before the method is called, the markers declared with the initialization
// package are resolved into actions and executed; handlers can get the *T from the
// invocation context with FromContext.
//
// Lower-level test infrastructure, such as results and filtering, is in the framework
// package. Starting and stopping applications is done by the apphost package.
package livetest
