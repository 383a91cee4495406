package submission

import "errors"

// FailureKind classifies a failed submission
type FailureKind int

const (
	NotFailed FailureKind = iota
	LocalValidation
	Transport
	Rejected
	Busy
)

func (k FailureKind) String() string {
	switch k {
	case LocalValidation:
		return "local_validation"
	case Transport:
		return "transport"
	case Rejected:
		return "server_rejection"
	case Busy:
		return "busy"
	default:
		return "none"
	}
}

// Result is the outcome of one submit action: either a success carrying the
// server message or a failure carrying the message shown to the user and the
// underlying error.
type Result struct {
	OK      bool
	Message string
	Err     error
}

// Success builds a successful result
func Success(message string) Result {
	return Result{OK: true, Message: message}
}

// Failure builds a failed result with the user-facing message derived from err
func Failure(err error) Result {
	return Result{Message: UserMessage(err), Err: err}
}

// Kind reports which failure path produced the result
func (r Result) Kind() FailureKind {
	if r.OK {
		return NotFailed
	}
	return classify(r.Err)
}

func classify(err error) FailureKind {
	var local *LocalValidationError
	var rejected *ServerRejection
	switch {
	case errors.Is(err, ErrBusy):
		return Busy
	case errors.As(err, &local):
		return LocalValidation
	case errors.As(err, &rejected):
		return Rejected
	default:
		return Transport
	}
}

// UserMessage maps an error to the text shown in the notification
func UserMessage(err error) string {
	var local *LocalValidationError
	var rejected *ServerRejection
	switch {
	case errors.Is(err, ErrBusy):
		return MsgBusy
	case errors.As(err, &local):
		return local.Message
	case errors.As(err, &rejected) && rejected.Detail != "":
		return rejected.Detail
	default:
		return MsgFallback
	}
}
