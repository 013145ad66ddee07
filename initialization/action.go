package initialization

import (
	"reflect"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Action is one resolved request to run an initialization handler.
type Action struct {
	// ID identifies the handler, for diagnostics. Several actions in one sequence may share it.
	ID string
	// State is whatever the executor needs to construct and run the handler. For actions
	// produced by ActionDiscoverer it is a HandlerState.
	State interface{}
	// Context is the context the action was discovered for. For actions produced by
	// ActionDiscoverer it is the caller's *InvocationContext itself.
	Context interface{}
}

// HandlerState is the Action state produced by ActionDiscoverer.
type HandlerState struct {
	Handler   reflect.Type
	Arguments []ldvalue.Value
}

func newAction(marker HandlerMarker, context *InvocationContext) Action {
	return Action{
		ID: HandlerID(marker.Handler),
		State: HandlerState{
			Handler:   marker.Handler,
			Arguments: append([]ldvalue.Value(nil), marker.Arguments...),
		},
		Context: context,
	}
}
