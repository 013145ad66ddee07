// Package apphost starts, finds and stops the isolated applications that live tests run in.
//
// The actual hosting is done by a HostManager. LocalHost keeps applications in the current
// process; ServiceHost talks to a separate application host service over HTTP, and
// NewServiceHandler implements such a service on top of any HostManager.
//
// TestApplicationManager is the typed front end used by tests. It is pure composition over a
// HostManager: it checks its arguments, forwards each call, and returns host errors unchanged.
package apphost
