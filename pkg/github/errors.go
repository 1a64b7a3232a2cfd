package github

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Common errors returned by the client.
var (
	// ErrMissingToken is returned by New when no access token is configured.
	// This is checked before any network call is attempted.
	ErrMissingToken = errors.New("github access token is not set (export TOKEN_GITHUB)")
)

// ErrorClass represents a classification of request errors.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassRateLimit represents a 403 with an exhausted rate limit quota.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"
)

// ClassifyStatus categorizes an HTTP status code for observability and handling.
func ClassifyStatus(status int) ErrorClass {
	switch {
	case status >= 400 && status < 500:
		return ErrorClassClient
	case status >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}

// APIError represents a non-2xx GitHub API response.
type APIError struct {
	StatusCode int
	Class      ErrorClass
	Endpoint   string
	Body       string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("github %s error (status %d) on %s: %s",
		e.Class, e.StatusCode, e.Endpoint, e.Body)
}

// RateLimitError signals that the API rate limit quota is exhausted.
// The request that triggered it can be retried after WaitDuration.
type RateLimitError struct {
	// ResetAt is when the provider resets the quota window,
	// taken from the X-RateLimit-Reset header.
	ResetAt time.Time
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	return fmt.Sprintf("github rate limit exceeded, resets at %s", e.ResetAt.Format(time.RFC3339))
}

// WaitDuration returns how long to sleep before retrying: the time until
// the quota resets plus one second of safety margin.
func (e *RateLimitError) WaitDuration() time.Duration {
	wait := time.Until(e.ResetAt)
	if wait < 0 {
		wait = 0
	}
	return wait + time.Second
}

// IsRateLimit reports whether err is (or wraps) a RateLimitError.
func IsRateLimit(err error) bool {
	var rl *RateLimitError
	return errors.As(err, &rl)
}

// IsAlreadyExists reports whether a repository creation response signals
// that the repository already exists. GitHub answers 422 with a message
// containing "name already exists" in that case.
func IsAlreadyExists(statusCode int, body string) bool {
	return statusCode == 422 && strings.Contains(body, "name already exists")
}
