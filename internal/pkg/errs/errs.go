package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"guildchat/internal/pkg/logx"
)

// CustomError is the application error carried to HTTP and websocket clients.
type CustomError struct {
	// Code is the business error code (see constants definition).
	Code int

	// Message is the user-facing description.
	Message string

	// Status is the HTTP status code used when the error is written as a response.
	Status int
}

// Error implements the error interface.
func (e CustomError) Error() string {
	return fmt.Sprintf("Error Code %d (HTTP %d): %s", e.Code, e.Status, e.Message)
}

// NewError builds a *CustomError from a registered code.
// details are printf arguments for the message template; for ErrUnknown the first
// detail may be the underlying error, which is logged and not exposed.
// Unregistered codes fall back to ErrUnknown.
func NewError(code int, details ...any) *CustomError {
	template, ok := errorMap[code]
	if !ok {
		logx.Error(
			fmt.Errorf("unknown error code %d", code),
			"Unknown error code requested",
			"requested_code", code,
		)
		template = errorMap[ErrUnknown]
	}

	customErr := template
	if customErr.Status == 0 {
		customErr.Status = http.StatusOK
	}

	switch {
	case len(details) == 0:
	case code == ErrUnknown:
		if cause, ok := details[0].(error); ok {
			logx.Error(cause, "Handling ErrUnknown with underlying error")
		}
	case strings.Contains(customErr.Message, "%"):
		customErr.Message = fmt.Sprintf(customErr.Message, details...)
	default:
		logx.Warn("Error details ignored: message template has no placeholders.", "code", code)
	}

	return &customErr
}

// CodeOf returns the business code carried by err, or ErrUnknown.
func CodeOf(err error) int {
	var customErr *CustomError
	if errors.As(err, &customErr) {
		return customErr.Code
	}
	return ErrUnknown
}
