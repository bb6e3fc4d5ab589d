/*
Package errs provides custom error types and application-level error code constants.

This file defines the CustomError struct, which implements the standard Go error interface
and carries a business code, a readable message, an HTTP status and, for remote failures,
the provider's status and response body.
*/
package errs

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"anychat/internal/pkg/logx"
)

// CustomError is the error type returned by every SDK operation.
type CustomError struct {
	// Code is the business error code (see constants definition).
	Code int

	// Message is the human readable error description.
	Message string

	// Status is the HTTP status the gateway answers with for this error.
	Status int

	// Operation names the remote operation that failed, e.g. "create room".
	Operation string

	// RemoteStatus is the status code reported by the provider (0 for transport failures).
	RemoteStatus int

	// Body is the decoded provider response body or the transport error text.
	Body any
}

// Error implements the standard Go error interface.
func (e *CustomError) Error() string {
	if e.Code == ErrRemoteOperationFailed && e.Body != nil {
		return fmt.Sprintf("Error Code %d: %s Error: %s", e.Code, e.Message, encodeBody(e.Body))
	}
	return fmt.Sprintf("Error Code %d: %s", e.Code, e.Message)
}

// Is reports whether target is a *CustomError with the same code, so sentinel
// values built with NewError work with errors.Is.
func (e *CustomError) Is(target error) bool {
	var t *CustomError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewError constructs a *CustomError from a predefined error code.
// The optional details are printf arguments for the message template. If an unknown
// code is provided, it defaults to returning ErrUnknown.
func NewError(code int, details ...any) *CustomError {
	templateErr, ok := errorMap[code]

	if !ok {
		logx.Error(
			fmt.Errorf("attempted to create an error with an unknown code in errorMap"),
			"Unknown error code requested",
			"requested_code", code,
		)

		unknownErr := errorMap[ErrUnknown]
		return &CustomError{
			Code:    unknownErr.Code,
			Message: unknownErr.Message,
			Status:  http.StatusInternalServerError,
		}
	}

	customErr := templateErr

	if customErr.Status == 0 {
		customErr.Status = http.StatusInternalServerError
	}

	if len(details) > 0 {
		if strings.Contains(customErr.Message, "%") {
			customErr.Message = fmt.Sprintf(customErr.Message, details...)
		} else if originalErr, ok := details[0].(error); ok {
			logx.Error(originalErr, "Wrapped error details", "code", code)
		}
	}

	return &customErr
}

// Remote builds the RemoteOperationFailed error for a failed provider call.
func Remote(operation string, status int, body any) *CustomError {
	customErr := NewError(ErrRemoteOperationFailed, capitalize(operation), status)
	customErr.Operation = operation
	customErr.RemoteStatus = status
	customErr.Body = body
	return customErr
}

// IsCode reports whether err is, or wraps, a *CustomError carrying code.
func IsCode(err error, code int) bool {
	var customErr *CustomError
	if errors.As(err, &customErr) {
		return customErr.Code == code
	}
	return false
}

// As extracts the *CustomError from err, wrapping unknown errors as ErrUnknown.
func As(err error) *CustomError {
	if err == nil {
		return nil
	}
	var customErr *CustomError
	if errors.As(err, &customErr) {
		return customErr
	}
	return NewError(ErrUnknown, err)
}

func encodeBody(body any) string {
	if s, ok := body.(string); ok {
		return s
	}
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Sprint(body)
	}
	return string(b)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
