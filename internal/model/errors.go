// Package model defines domain models and errors for FactVault.
// This package contains the core data structures (Fact, ContextComment,
// APIKey, BlobMetadata) and custom error types used throughout the
// persistence and indexing layer.
package model

import "errors"

// Domain-specific errors for FactVault operations.
// These errors allow handlers to return appropriate HTTP status codes
// and messages to clients.
var (
	// ErrFactNotFound is returned when a requested fact doesn't exist
	ErrFactNotFound = errors.New("fact not found")

	// ErrCommentNotFound is returned when a requested comment doesn't exist
	ErrCommentNotFound = errors.New("comment not found")

	// ErrBlobNotFound is returned when the backend has no blob for the given id
	ErrBlobNotFound = errors.New("blob not found")

	// ErrAPIKeyNotFound is returned when no API key exists with the given id
	ErrAPIKeyNotFound = errors.New("API key not found")

	// ErrInvalidFactID is returned when a fact ID is missing or malformed
	ErrInvalidFactID = errors.New("invalid fact ID")

	// ErrInvalidCommentID is returned when a comment ID is missing or malformed
	ErrInvalidCommentID = errors.New("invalid comment ID")

	// ErrInvalidKeyName is returned when an API key is created without a name
	ErrInvalidKeyName = errors.New("API key name must not be empty")

	// ErrInvalidPermission is returned when an API key is created with a
	// permission outside the supported set (read, write, analytics)
	ErrInvalidPermission = errors.New("invalid API key permission")

	// ErrInvalidTier is returned when an API key is created with an unknown tier
	ErrInvalidTier = errors.New("invalid API key tier")

	// ErrKeyRevoked is returned when an operation is attempted with a revoked key
	ErrKeyRevoked = errors.New("API key has been revoked")

	// ErrPermissionDenied is returned when a key lacks the required permission
	ErrPermissionDenied = errors.New("API key lacks required permission")

	// ErrRateLimited is returned when a key has exhausted its hourly quota
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrBackendUnavailable is returned when the blob backend is unreachable
	// or erroring. The health check degrades status instead of failing.
	ErrBackendUnavailable = errors.New("blob backend unavailable")

	// ErrIndexUnavailable is returned when the index manager failed to
	// initialize and aggregate queries cannot be served
	ErrIndexUnavailable = errors.New("index unavailable")
)

// IsNotFound returns true if the error indicates a resource was not found.
// This is useful for handlers to determine the appropriate HTTP status code.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrFactNotFound) ||
		errors.Is(err, ErrCommentNotFound) ||
		errors.Is(err, ErrBlobNotFound) ||
		errors.Is(err, ErrAPIKeyNotFound)
}

// IsValidation returns true if the error is due to invalid input.
// This is useful for handlers to return HTTP 400 Bad Request.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidFactID) ||
		errors.Is(err, ErrInvalidCommentID) ||
		errors.Is(err, ErrInvalidKeyName) ||
		errors.Is(err, ErrInvalidPermission) ||
		errors.Is(err, ErrInvalidTier)
}

// IsUnavailable returns true if the error originates at the blob backend
// boundary. Handlers translate this into a server error; the health check
// translates it into a degraded status instead.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrBackendUnavailable)
}

// IsRateLimited returns true if the error indicates quota exhaustion.
// Handlers return HTTP 429 Too Many Requests and never retry automatically.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsForbidden returns true if the error indicates the operation is not
// allowed for the presented key.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrKeyRevoked) || errors.Is(err, ErrPermissionDenied)
}
