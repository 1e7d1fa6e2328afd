/*
Package errs provides custom error types and application-level error code constants.

These codes identify business and system errors both inside the server and in
HTTP responses returned to clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1007
)

// 2xxx: Channel and Message Errors
const (
	// ErrChannelInvalid indicates that the channel identifier is missing or malformed.
	ErrChannelInvalid = 2103

	// ErrMessageContentTooLong indicates that the message text exceeded the maximum length.
	ErrMessageContentTooLong = 2201

	// ErrMessageContentEmpty indicates that the message text was empty after trimming.
	ErrMessageContentEmpty = 2202
)

// 3xxx: Identity and Session Errors
const (
	// ErrUnauthorized indicates a missing, malformed or expired bearer credential.
	ErrUnauthorized = 3005
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000

	// ErrMessageStoreFailed indicates the message store could not serve the request.
	ErrMessageStoreFailed = 5001
)
