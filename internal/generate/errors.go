package generate

import "errors"

// ErrNoBackend is returned when a request needs the default backend but none
// is configured.
var ErrNoBackend = errors.New("no default backend configured")

// InvalidArgumentError reports missing or unusable user input. Its message
// is safe to show to the user.
type InvalidArgumentError struct {
	Message string
}

func (e *InvalidArgumentError) Error() string {
	return e.Message
}

func invalidArgument(msg string) error {
	return &InvalidArgumentError{Message: msg}
}
