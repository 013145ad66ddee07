// Package initialization resolves and runs the initialization handlers that must execute
// before a test method is invoked.
//
// Handlers are declared with HandlerMarkers, which are registered against a test type or
// against one of its methods, usually from an init function:
//
//	func init() {
//		initialization.DeclareType(MyTests{},
//			initialization.HandlerMarkerFor(StartApplication{}, ldvalue.String("site")))
//		initialization.DeclareMethod(MyTests{}, "TestLogin",
//			initialization.HandlerMarkerFor(SeedUsers{}).WithPriority(100))
//	}
//
// Before a method runs, the caller builds an InvocationContext and asks a Discoverer for
// the ordered list of Actions. Markers are ordered by priority, highest first; markers with
// equal priority keep their discovery order, type-level markers before method-level ones.
// An Executor then constructs each handler and calls it.
package initialization
