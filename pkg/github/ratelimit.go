package github

import (
	"net/http"
	"strconv"
	"time"
)

// Rate limit headers set by the GitHub REST API.
const (
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
	HeaderRateLimitReset     = "X-RateLimit-Reset"
)

// RateLimit represents the quota state reported by a single response.
type RateLimit struct {
	// Remaining is the number of requests left in the current window.
	Remaining int

	// ResetAt is when the window resets (epoch seconds in the header).
	ResetAt time.Time
}

// ParseRateLimit extracts rate limit state from response headers.
// The second return value is false when the headers are absent or malformed.
func ParseRateLimit(h http.Header) (RateLimit, bool) {
	remainStr := h.Get(HeaderRateLimitRemaining)
	if remainStr == "" {
		return RateLimit{}, false
	}

	remaining, err := strconv.Atoi(remainStr)
	if err != nil {
		return RateLimit{}, false
	}

	resetStr := h.Get(HeaderRateLimitReset)
	if resetStr == "" {
		return RateLimit{}, false
	}

	resetEpoch, err := strconv.ParseInt(resetStr, 10, 64)
	if err != nil {
		return RateLimit{}, false
	}

	return RateLimit{
		Remaining: remaining,
		ResetAt:   time.Unix(resetEpoch, 0),
	}, true
}

// Exhausted reports whether the quota window has no requests left.
func (r RateLimit) Exhausted() bool {
	return r.Remaining == 0
}
