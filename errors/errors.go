package errors

import (
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ValidationError              ErrorType = "VALIDATION_ERROR"
	NotFoundError                ErrorType = "NOT_FOUND"
	APIError                     ErrorType = "API_ERROR"
	ForbiddenError               ErrorType = "FORBIDDEN"
	InvalidStatusTransitionError ErrorType = "INVALID_STATUS_TRANSITION"
	StaleResponseError           ErrorType = "STALE_RESPONSE"
	RealtimeError                ErrorType = "REALTIME_ERROR"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType `json:"type"`
	Code       string    `json:"code"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	HTTPStatus int       `json:"-"`
	Raw        error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap exposes the underlying error for errors.Is/As chains.
func (e *AppError) Unwrap() error {
	return e.Raw
}

// New creates a new AppError
func New(errType ErrorType, message string, detail string) *AppError {
	return &AppError{
		Type:       errType,
		Message:    message,
		Detail:     detail,
		HTTPStatus: getHTTPStatus(errType),
	}
}

// Wrap wraps a raw error with AppError context
func Wrap(err error, errType ErrorType, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Type:       errType,
		Message:    message,
		Detail:     err.Error(),
		HTTPStatus: getHTTPStatus(errType),
		Raw:        err,
	}
}

// Helper functions for common errors

func NotFound(entity string, id interface{}) *AppError {
	return &AppError{
		Type:       NotFoundError,
		Message:    fmt.Sprintf("%s not found", entity),
		Detail:     fmt.Sprintf("ID: %v", id),
		HTTPStatus: http.StatusNotFound,
	}
}

func ValidationFailed(message string, details string) *AppError {
	return &AppError{
		Type:       ValidationError,
		Message:    message,
		Detail:     details,
		HTTPStatus: http.StatusBadRequest,
	}
}

// APIFailed wraps a failed call to the BillKhata API, carrying the upstream
// HTTP status so callers can distinguish client from server failures.
func APIFailed(status int, operation string, detail string) *AppError {
	return &AppError{
		Type:       APIError,
		Message:    fmt.Sprintf("%s failed", operation),
		Detail:     detail,
		HTTPStatus: status,
	}
}

func Forbidden(message string, details string) *AppError {
	return &AppError{
		Type:       ForbiddenError,
		Message:    message,
		Detail:     details,
		HTTPStatus: http.StatusForbidden,
	}
}

func InvalidStatusTransition(current, next string) *AppError {
	return &AppError{
		Type:       InvalidStatusTransitionError,
		Message:    "Invalid status transition",
		Detail:     fmt.Sprintf("Cannot transition from %s to %s", current, next),
		HTTPStatus: http.StatusBadRequest,
	}
}

// StaleResponse marks a fetch result that arrived after the selected period
// changed. It is informational: the caller discards the payload.
func StaleResponse(requested, current string) *AppError {
	return &AppError{
		Type:       StaleResponseError,
		Message:    "Stale fetch discarded",
		Detail:     fmt.Sprintf("Fetched period %s but current period is %s", requested, current),
		HTTPStatus: http.StatusConflict,
	}
}

func getHTTPStatus(errType ErrorType) int {
	switch errType {
	case ValidationError:
		return http.StatusBadRequest
	case NotFoundError:
		return http.StatusNotFound
	case ForbiddenError:
		return http.StatusForbidden
	case InvalidStatusTransitionError:
		return http.StatusBadRequest
	case StaleResponseError:
		return http.StatusConflict
	case APIError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
