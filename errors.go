package dispatch

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/modseven/dispatch/message"
)

// ErrorCode classifies dispatch pipeline errors.
type ErrorCode int

const (
	// ErrCodeNotFound indicates no handler is registered for the request route.
	ErrCodeNotFound ErrorCode = iota
	// ErrCodeDispatch indicates a malformed handler or one that returned no response.
	ErrCodeDispatch
	// ErrCodeTransport indicates an I/O or transport fault, wrapping its cause.
	ErrCodeTransport
	// ErrCodeRecursion indicates the redirect/callback depth guard tripped.
	ErrCodeRecursion
	// ErrCodeRedirect indicates a malformed redirect target.
	ErrCodeRedirect
)

// String returns the error code name.
func (c ErrorCode) String() string {
	switch c {
	case ErrCodeNotFound:
		return "not_found"
	case ErrCodeDispatch:
		return "dispatch"
	case ErrCodeTransport:
		return "transport"
	case ErrCodeRecursion:
		return "recursion"
	case ErrCodeRedirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// Error is a structured dispatch error with classification.
type Error struct {
	// Code classifies the error.
	Code ErrorCode
	// Message describes the error.
	Message string
	// URI is the request target involved, if known.
	URI string
	// Depth is the callback depth reached, for recursion errors.
	Depth int
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.URI != "" {
		return fmt.Sprintf("dispatch: %s: %s (uri: %s)", e.Code, e.Message, e.URI)
	}
	return fmt.Sprintf("dispatch: %s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Response renders the error as a response message when it maps to an HTTP
// status; handler-resolution failures map to 404, dispatch failures to 500.
// It satisfies the errors.Responder contract consumed by the internal
// transport.
func (e *Error) Response() *message.Response {
	resp := message.NewResponse()
	switch e.Code {
	case ErrCodeNotFound:
		resp.Status = http.StatusNotFound
	default:
		resp.Status = http.StatusInternalServerError
	}
	resp.Header.Set("Content-Type", "text/plain; charset=utf-8")
	resp.Body = []byte(e.Message)
	return resp
}

// NewNotFoundError creates an error for an unresolvable handler route.
func NewNotFoundError(uri string) *Error {
	return &Error{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("unable to find a handler to serve %s", uri),
		URI:     uri,
	}
}

// NewDispatchError creates an error for a malformed handler.
func NewDispatchError(msg string) *Error {
	return &Error{
		Code:    ErrCodeDispatch,
		Message: msg,
	}
}

// NewTransportError creates an error wrapping an underlying I/O fault.
func NewTransportError(msg string, err error) *Error {
	return &Error{
		Code:    ErrCodeTransport,
		Message: msg,
		Err:     err,
	}
}

// NewRecursionError creates an error for a tripped callback depth guard.
func NewRecursionError(uri string, depth int) *Error {
	return &Error{
		Code:    ErrCodeRecursion,
		Message: fmt.Sprintf("could not execute request to %s: maximum callback depth reached at %d", uri, depth),
		URI:     uri,
		Depth:   depth,
	}
}

// NewRedirectError creates an error for a malformed redirect target.
func NewRedirectError(location string, err error) *Error {
	return &Error{
		Code:    ErrCodeRedirect,
		Message: fmt.Sprintf("malformed redirect target %q", location),
		URI:     location,
		Err:     err,
	}
}

// IsNotFound checks if an error is a handler-not-found error.
func IsNotFound(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeNotFound
}

// IsDispatch checks if an error is a dispatch error.
func IsDispatch(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeDispatch
}

// IsTransport checks if an error is a transport error.
func IsTransport(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeTransport
}

// IsRecursion checks if an error is a recursion guard error.
func IsRecursion(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeRecursion
}

// IsRedirect checks if an error is a redirect policy error.
func IsRedirect(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeRedirect
}
