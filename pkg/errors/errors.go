package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a unique error code
type ErrorCode int

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Status  int       `json:"-"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode is the HTTP status the console server answers with.
func (e *AppError) StatusCode() int {
	if e.Status != 0 {
		return e.Status
	}
	switch e.Code {
	case ErrNotFound:
		return http.StatusNotFound
	case ErrBadRequest, ErrValidation:
		return http.StatusBadRequest
	case ErrUnsupported:
		return http.StatusMethodNotAllowed
	case ErrTransport, ErrShape:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Common error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrBadRequest
	ErrUnauthorized
	ErrForbidden
	ErrInternal
	// ErrValidation: a required field is missing, no request was sent.
	ErrValidation
	// ErrTransport: the request never produced a response.
	ErrTransport
	// ErrServer: the API answered with a non-2xx status.
	ErrServer
	// ErrShape: a 2xx body that does not match the expected envelope.
	ErrShape
	ErrUnsupported
)

// Error constructors
func NewNotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func NewBadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    ErrBadRequest,
		Message: message,
		Err:     err,
	}
}

func NewInternal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}

func NewValidation(message string) *AppError {
	return &AppError{
		Code:    ErrValidation,
		Message: message,
	}
}

// NewTransport keeps the caller-facing message generic; the cause stays in Err.
func NewTransport(message string, err error) *AppError {
	return &AppError{
		Code:    ErrTransport,
		Message: message,
		Err:     err,
	}
}

// NewServer carries the upstream status so the console can mirror 4xx answers.
func NewServer(status int, message string) *AppError {
	code := http.StatusBadGateway
	if status >= 400 && status < 500 {
		code = status
	}
	return &AppError{
		Code:    ErrServer,
		Message: message,
		Status:  code,
	}
}

func NewShape(message string) *AppError {
	return &AppError{
		Code:    ErrShape,
		Message: message,
	}
}

func NewUnsupported(message string) *AppError {
	return &AppError{
		Code:    ErrUnsupported,
		Message: message,
	}
}

// Common errors
func NotFound(resource string, err error) *AppError {
	return NewNotFound(resource, err)
}

func BadRequest(message string, err error) *AppError {
	return NewBadRequest(message, err)
}

func Internal(err error) *AppError {
	return NewInternal(err)
}

// CodeOf returns the code of the first AppError in the chain, or ErrInternal.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal
}

// MessageOf returns the user-facing message of err.
func MessageOf(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

func IsValidation(err error) bool { return CodeOf(err) == ErrValidation }

func IsTransport(err error) bool { return CodeOf(err) == ErrTransport }

func IsServer(err error) bool { return CodeOf(err) == ErrServer }

func IsShape(err error) bool { return CodeOf(err) == ErrShape }

func IsNotFound(err error) bool { return CodeOf(err) == ErrNotFound }
