package api

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrorCodeTransport        ErrorCode = "transport_error"
	ErrorCodeUnauthorized     ErrorCode = "unauthorized"
	ErrorCodeForbidden        ErrorCode = "forbidden"
	ErrorCodeNotFound         ErrorCode = "not_found"
	ErrorCodeValidationFailed ErrorCode = "validation_failed"
	ErrorCodeServerError      ErrorCode = "server_error"
	ErrorCodeInvalidResponse  ErrorCode = "invalid_response"
)

// APIError is any failed exchange with the backend. Message carries the
// server-provided message when there was one.
type APIError struct {
	Code       ErrorCode
	Message    string
	StatusCode int
	Err        error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

func NewAPIError(code ErrorCode, message string, statusCode int) *APIError {
	return &APIError{Code: code, Message: message, StatusCode: statusCode}
}

func codeForStatus(status int) ErrorCode {
	switch {
	case status == http.StatusUnauthorized:
		return ErrorCodeUnauthorized
	case status == http.StatusForbidden:
		return ErrorCodeForbidden
	case status == http.StatusNotFound:
		return ErrorCodeNotFound
	case status >= 400 && status < 500:
		return ErrorCodeValidationFailed
	default:
		return ErrorCodeServerError
	}
}

func codeOf(err error) ErrorCode {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return ""
}

func IsUnauthorized(err error) bool {
	return codeOf(err) == ErrorCodeUnauthorized
}

func IsNotFound(err error) bool {
	return codeOf(err) == ErrorCodeNotFound
}

// MessageOf returns the server message carried by err, or fallback when
// there is none (transport failures included).
func MessageOf(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Code != ErrorCodeTransport && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
