package proxy

import (
	"errors"
	"fmt"
)

const (
	ActionCreate  = "create consumer instance"
	ActionConsume = "consume messages"
	ActionCommit  = "commit offsets"
	ActionDestroy = "destroy consumer instance"
)

var ErrTransportReleased = errors.New("transport has been released")

// StatusError is returned when the proxy answered with a status code other
// than the one expected for the action.
type StatusError struct {
	Action string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Unable to %s. Proxy returned %d", e.Action, e.Code)
}

// TransportError is returned when the call could not complete: connection
// failures, timeouts, malformed responses or a released transport.
type TransportError struct {
	Action string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("Unable to %s. Proxy error.", e.Action)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
