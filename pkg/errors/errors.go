package errors

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeNotFound     = "NOT_FOUND"
	CodeValidation   = "VALIDATION_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeConflict     = "CONFLICT"
	CodeInternal     = "INTERNAL_ERROR"
	CodeBadRequest   = "BAD_REQUEST"
	CodeTimeout      = "TIMEOUT"
	CodeUnavailable  = "SERVICE_UNAVAILABLE"
	CodeInvalidInput = "INVALID_INPUT"

	CodeRoomUnavailable          = "ROOM_UNAVAILABLE"
	CodeRoomNotFound             = "ROOM_NOT_FOUND"
	CodeInvalidDateRange         = "INVALID_DATE_RANGE"
	CodeInvalidStateTransition   = "INVALID_STATE_TRANSITION"
	CodeCancellationWindowClosed = "CANCELLATION_WINDOW_CLOSED"
	CodeNoHotelFound             = "NO_HOTEL_FOUND"
	CodeHotelAlreadyRegistered   = "HOTEL_ALREADY_REGISTERED"
)

// Kind is what callers branch on. Codes are finer grained and meant for
// clients.
type Kind string

const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
	KindState      Kind = "state"
	KindAuth       Kind = "auth"
	KindDependency Kind = "dependency"
)

type AppError struct {
	Kind       Kind
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Success bool           `json:"success"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Code + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
}

func (e *AppError) Unwrap() error { return e.Err }

func (e *AppError) StatusCode() int { return e.HTTPStatus }

func (e *AppError) Response() ErrorResponse {
	return ErrorResponse{Code: e.Code, Message: e.Message, Details: e.Details}
}

func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// WithCause keeps errors.Is working across layers.
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

func New(kind Kind, code, message string, httpStatus int) *AppError {
	return &AppError{Kind: kind, Code: code, Message: message, HTTPStatus: httpStatus}
}

func Wrap(err error, kind Kind, code, message string, httpStatus int) *AppError {
	return New(kind, code, message, httpStatus).WithCause(err)
}

func NotFound(resource string) *AppError {
	return New(KindNotFound, CodeNotFound, resource+" not found", http.StatusNotFound)
}

func NotFoundWithID(resource, id string) *AppError {
	e := NotFound(resource)
	e.Details = map[string]any{"resource": resource, "id": id}
	return e
}

func Validation(message string, details map[string]any) *AppError {
	e := New(KindValidation, CodeValidation, message, http.StatusBadRequest)
	e.Details = details
	return e
}

func InvalidInput(message string) *AppError {
	return New(KindValidation, CodeInvalidInput, message, http.StatusBadRequest)
}

func Unauthorized(message string) *AppError {
	return New(KindAuth, CodeUnauthorized, message, http.StatusUnauthorized)
}

func Forbidden(message string) *AppError {
	return New(KindAuth, CodeForbidden, message, http.StatusForbidden)
}

func Conflict(message string) *AppError {
	return New(KindConflict, CodeConflict, message, http.StatusConflict)
}

// State rejects an operation the resource's current state does not allow.
func State(code, message string) *AppError {
	return New(KindState, code, message, http.StatusBadRequest)
}

func Internal(message string, err error) *AppError {
	return Wrap(err, KindDependency, CodeInternal, message, http.StatusInternalServerError)
}

func Timeout(message string) *AppError {
	return New(KindDependency, CodeTimeout, message, http.StatusGatewayTimeout)
}

func Unavailable(service string) *AppError {
	return New(KindDependency, CodeUnavailable, service+" is temporarily unavailable", http.StatusServiceUnavailable)
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError returns the AppError in err's chain, or an internal error that
// keeps err as its cause.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("An unexpected error occurred", err)
}

func IsKind(err error, kind Kind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == kind
}

func HasCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}
