package errs

import "net/http"

// errorMap holds the CustomError template for every application error code.
var errorMap = map[int]CustomError{
	ErrInvalidParams:     {Code: ErrInvalidParams, Message: "Invalid request parameters.", Status: http.StatusBadRequest},
	ErrRateLimitExceeded: {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	ErrChannelInvalid:        {Code: ErrChannelInvalid, Message: "Invalid channel.", Status: http.StatusBadRequest},
	ErrMessageContentTooLong: {Code: ErrMessageContentTooLong, Message: "Message is too long (max %d bytes)."},
	ErrMessageContentEmpty:   {Code: ErrMessageContentEmpty, Message: "Message text is required."},

	ErrUnauthorized: {Code: ErrUnauthorized, Message: "Not authorized.", Status: http.StatusUnauthorized},

	ErrUnknown:            {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
	ErrMessageStoreFailed: {Code: ErrMessageStoreFailed, Message: "Failed to save message", Status: http.StatusServiceUnavailable},
}
