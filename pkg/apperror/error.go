package apperror

import (
	"errors"
	"net/http"
)

// AppError is the only error type the error middleware renders with its own
// status and message. Anything else becomes a 500.
type AppError struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	Redirect string `json:"redirect,omitempty"`
	Err      error  `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithRedirect tells the client which screen to move to after the failure.
func (e *AppError) WithRedirect(route string) *AppError {
	e.Redirect = route
	return e
}

func New(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func BadRequest(message string) *AppError {
	return New(http.StatusBadRequest, message, nil)
}

func Unauthorized(message string) *AppError {
	return New(http.StatusUnauthorized, message, nil)
}

func Forbidden(message string) *AppError {
	return New(http.StatusForbidden, message, nil)
}

func NotFound(message string) *AppError {
	return New(http.StatusNotFound, message, nil)
}

func Conflict(message string) *AppError {
	return New(http.StatusConflict, message, nil)
}

func Internal(err error) *AppError {
	return New(http.StatusInternalServerError, "Internal Server Error", err)
}

// InternalMessage is a 500 whose message is safe to show the caller as is.
func InternalMessage(message string, err error) *AppError {
	return New(http.StatusInternalServerError, message, err)
}

// As unwraps err into an *AppError if there is one in the chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
