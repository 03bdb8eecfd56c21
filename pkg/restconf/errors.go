package restconf

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies adapter failures. Callers branch on the kind, never on
// HTTP status codes.
type Kind int

const (
	KindUnknown Kind = iota
	KindDeviceUnreachable
	KindAuthFailure
	KindNotFound
	KindValidation
	KindMalformedResponse
	KindDeviceError
)

func (k Kind) String() string {
	switch k {
	case KindDeviceUnreachable:
		return "device_unreachable"
	case KindAuthFailure:
		return "auth_failure"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation_error"
	case KindMalformedResponse:
		return "malformed_response"
	case KindDeviceError:
		return "device_error"
	}
	return "unknown"
}

// Sentinel errors, one per Kind, for errors.Is checks
var (
	ErrDeviceUnreachable = errors.New("device unreachable")
	ErrAuthFailure       = errors.New("authentication failed")
	ErrNotFound          = errors.New("resource not found")
	ErrValidation        = errors.New("request rejected by device")
	ErrMalformedResponse = errors.New("malformed response")
	ErrDeviceError       = errors.New("device error")
)

func (k Kind) sentinel() error {
	switch k {
	case KindDeviceUnreachable:
		return ErrDeviceUnreachable
	case KindAuthFailure:
		return ErrAuthFailure
	case KindNotFound:
		return ErrNotFound
	case KindValidation:
		return ErrValidation
	case KindMalformedResponse:
		return ErrMalformedResponse
	}
	return ErrDeviceError
}

// Error is returned by every Client operation that fails.
type Error struct {
	Kind    Kind
	Op      string // e.g. "GET ietf-interfaces:interfaces"
	Status  int    // HTTP status, 0 when no response was received
	Message string // device-supplied error-message, if any
	Err     error  // underlying transport or decode error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Op, e.Kind.sentinel())
	if e.Status != 0 {
		msg += fmt.Sprintf(" (HTTP %d)", e.Status)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	} else if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind.sentinel()}
	}
	return []error{e.Kind.sentinel(), e.Err}
}

// KindOf returns the Kind of err, or KindUnknown when err did not come
// from this package.
func KindOf(err error) Kind {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind
	}
	return KindUnknown
}

// kindForStatus maps a non-2xx HTTP status to a Kind.
func kindForStatus(status int) Kind {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindAuthFailure
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusBadRequest, http.StatusConflict, http.StatusPreconditionFailed, http.StatusUnprocessableEntity:
		return KindValidation
	}
	return KindDeviceError
}
