package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/modseven/dispatch/message"
)

// Responder is implemented by errors that know how to render themselves as a
// response message. The internal transport converts such errors via this
// contract instead of translating them generically.
type Responder interface {
	error
	Response() *message.Response
}

var _ Responder = (*AppError)(nil)

// ErrorBody contains the error details serialized to clients.
type ErrorBody struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Response renders the error as a response message with its HTTP status and
// a JSON body.
func (e *AppError) Response() *message.Response {
	resp := message.NewResponse()
	resp.Status = e.HTTPStatus
	if resp.Status == 0 {
		resp.Status = StatusForCode(e.Code)
	}
	resp.Header.Set("Content-Type", "application/json")
	body, err := json.Marshal(map[string]ErrorBody{"error": {
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	}})
	if err != nil {
		resp.Status = http.StatusInternalServerError
		resp.Body = []byte(`{"error":{"code":"INTERNAL_ERROR","message":"An unexpected error occurred."}}`)
		return resp
	}
	resp.Body = body
	return resp
}

// Translate converts any error into a response message, best effort. Errors
// implementing Responder render themselves; everything else maps to a
// 500-equivalent internal error response.
func Translate(err error) *message.Response {
	var r Responder
	if stderrors.As(err, &r) {
		return r.Response()
	}
	return Internal(err).Response()
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
