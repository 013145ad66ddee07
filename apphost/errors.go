package apphost

import (
	"errors"
	"fmt"
)

// ErrNullArgument is matched (with errors.Is) by errors for missing required arguments.
var ErrNullArgument = errors.New("required argument is missing")

// ErrApplicationExists is returned when creating an object that already exists with
// failIfExists set.
var ErrApplicationExists = errors.New("application already exists")

// ErrApplicationNotFound is returned when shutting down an application that is not running.
var ErrApplicationNotFound = errors.New("application not found")

// NullArgumentError identifies the missing argument.
type NullArgumentError struct {
	Name string
}

func (e *NullArgumentError) Error() string {
	return fmt.Sprintf("%s: %s", ErrNullArgument, e.Name)
}

func (e *NullArgumentError) Is(target error) bool {
	return target == ErrNullArgument
}

func nullArgument(name string) error {
	return &NullArgumentError{Name: name}
}
