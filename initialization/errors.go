package initialization

import (
	"errors"
	"fmt"
)

// ErrUnsupportedContextKind is matched (with errors.Is) by the error a Discoverer returns when
// it is given a context it does not know how to handle.
var ErrUnsupportedContextKind = errors.New("unsupported initialization context kind")

// ErrUnsupportedState is returned by an Executor for an Action that was not produced by an
// ActionDiscoverer.
var ErrUnsupportedState = errors.New("unsupported initialization action state")

// ErrHandlerNotConstructible is returned by an Executor when it has no way to build a handler.
var ErrHandlerNotConstructible = errors.New("initialization handler cannot be constructed")

// UnsupportedContextKindError describes a rejected context.
type UnsupportedContextKindError struct {
	// Kind is the Go type of the rejected context, or "<nil>".
	Kind string
}

func (e *UnsupportedContextKindError) Error() string {
	return fmt.Sprintf("%s: %s", ErrUnsupportedContextKind, e.Kind)
}

func (e *UnsupportedContextKindError) Is(target error) bool {
	return target == ErrUnsupportedContextKind
}
