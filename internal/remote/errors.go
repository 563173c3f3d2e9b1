package remote

import (
	"errors"
	"fmt"
)

// ConnectionError means the remote job service could not be reached at the
// transport level. Recoverable; the poller backs off and retries.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("remote service unreachable: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// TimeoutError means the call produced no response within its budget.
type TimeoutError struct {
	Op string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: request timed out", e.Op)
}

// ServiceError carries an application-level failure reported by the service
// (HTTP status >= 400, or a success response missing required fields).
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("remote service error (%d): %s", e.StatusCode, e.Message)
	}
	return "remote service error: " + e.Message
}

// ParseError means the response body was not decodable while the HTTP status
// did not indicate success. Treated like a connection error for retries.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse response: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Retryable reports whether the error is a transport-level failure that a
// poll loop should retry with backoff rather than surface to the user.
func Retryable(err error) bool {
	var connErr *ConnectionError
	var timeoutErr *TimeoutError
	var parseErr *ParseError
	return errors.As(err, &connErr) || errors.As(err, &timeoutErr) || errors.As(err, &parseErr)
}
