package services

import "errors"

var (
	// ErrInvalidCredentials is returned by Authenticate for an unknown
	// username or a wrong password, without saying which.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrInvalidSession is returned for unknown, revoked or expired tokens.
	ErrInvalidSession = errors.New("invalid or expired session")
)

// Custom errors
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "Validation error"
}

// DuplicateError reports a username or email that is already registered.
type DuplicateError struct {
	Field   string
	Message string
}

func (e *DuplicateError) Error() string { return e.Message }

type NotFoundError struct{ Message string }

func (e *NotFoundError) Error() string { return e.Message }

type UnauthorizedError struct{ Message string }

func (e *UnauthorizedError) Error() string { return e.Message }

type ForbiddenError struct{ Message string }

func (e *ForbiddenError) Error() string { return e.Message }

type RateLimitError struct{ Message string }

func (e *RateLimitError) Error() string { return e.Message }

// ExtractionError wraps a failure to read text out of an uploaded document.
type ExtractionError struct{ Err error }

func (e *ExtractionError) Error() string { return "failed to extract text: " + e.Err.Error() }

func (e *ExtractionError) Unwrap() error { return e.Err }

// UpstreamError wraps a failure of the remote summary generator.
type UpstreamError struct{ Err error }

func (e *UpstreamError) Error() string { return "summary generator failed: " + e.Err.Error() }

func (e *UpstreamError) Unwrap() error { return e.Err }
