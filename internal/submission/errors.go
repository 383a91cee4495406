package submission

import (
	"errors"
	"fmt"
)

// ErrBusy is returned when Submit is called while another submission is in flight
var ErrBusy = errors.New("submission already in progress")

// LocalValidationError is a lead rejected before any network call
type LocalValidationError struct {
	Field   string
	Message string
}

func (e *LocalValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// TransportError covers an unreachable endpoint, a timeout, an open circuit,
// a non-2xx status without detail or a response that could not be decoded.
type TransportError struct {
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("lead submission failed with status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("lead submission failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ServerRejection is a failure payload returned by the lead endpoint. Detail is
// shown to the user verbatim when present.
type ServerRejection struct {
	StatusCode int
	Detail     string
}

func (e *ServerRejection) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("lead rejected with status %d", e.StatusCode)
	}
	return fmt.Sprintf("lead rejected with status %d: %s", e.StatusCode, e.Detail)
}
