package errcodes

import (
	"fmt"
	"net/http"
)

// Error is an error that the handler renders as-is: HTTPCode becomes the
// response status, and Code and Message are sent in the body.
type Error struct {
	HTTPCode int
	Message  string
	Code     string
}

func newError(status int, code, msg string) *Error {
	return &Error{HTTPCode: status, Message: msg, Code: code}
}

func (err *Error) Error() string {
	return err.Message
}

// Is reports whether target carries the same status, code and message, so
// that freshly built errors like NotFound("Book") compare equal.
func (err *Error) Is(target error) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	return *te == *err
}

// NotFound returns a 404 error with a message indicating the given resource.
func NotFound(resource string) error {
	return newError(http.StatusNotFound, "not_found", resource+" not found.")
}

// UnsupportedMediaType is returned for bodies that aren't JSON on routes that
// don't opt out of the check.
func UnsupportedMediaType() error {
	return newError(http.StatusUnsupportedMediaType, "unsupported_media_type", "Unsupported Media Type")
}

func UnknownParameter(param string) error {
	return newError(http.StatusBadRequest, "unknown_parameter", fmt.Sprintf("Unknown Parameter %q", param))
}

// ValidationTypeError is a 400 for a value of the wrong JSON or query type.
func ValidationTypeError(msg string) error {
	return newError(http.StatusBadRequest, "validation_type_error", msg)
}

// ValidationError returns a 400 error for a payload that decoded fine but is
// missing required values.
func ValidationError(msg string) error {
	return newError(http.StatusBadRequest, "validation_error", msg)
}

func MalformedPayload() error {
	return newError(http.StatusBadRequest, "malformed_payload", "Malformed Payload")
}

func EmptyRequestBody() error {
	return newError(http.StatusBadRequest, "empty_request_body", "Request body can't be empty.")
}
