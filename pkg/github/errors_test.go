package github

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status   int
		expected ErrorClass
	}{
		{400, ErrorClassClient},
		{404, ErrorClassClient},
		{422, ErrorClassClient},
		{499, ErrorClassClient},
		{500, ErrorClassServer},
		{503, ErrorClassServer},
		{200, ""},
		{304, ""},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status_%d", tt.status), func(t *testing.T) {
			if got := ClassifyStatus(tt.status); got != tt.expected {
				t.Errorf("ClassifyStatus(%d) = %q, want %q", tt.status, got, tt.expected)
			}
		})
	}
}

func TestIsAlreadyExists(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		expected bool
	}{
		{
			name:     "github already exists response",
			status:   422,
			body:     `{"message": "Repository creation failed.", "errors": [{"message": "name already exists on this account"}]}`,
			expected: true,
		},
		{
			name:     "422 with different message",
			status:   422,
			body:     `{"message": "Validation Failed"}`,
			expected: false,
		},
		{
			name:     "matching message but different status",
			status:   409,
			body:     `name already exists`,
			expected: false,
		},
		{
			name:     "empty body",
			status:   422,
			body:     "",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAlreadyExists(tt.status, tt.body); got != tt.expected {
				t.Errorf("IsAlreadyExists(%d, %q) = %v, want %v", tt.status, tt.body, got, tt.expected)
			}
		})
	}
}

func TestRateLimitError_WaitDuration(t *testing.T) {
	t.Run("future reset", func(t *testing.T) {
		err := &RateLimitError{ResetAt: time.Now().Add(10 * time.Second)}
		wait := err.WaitDuration()

		if wait < 10*time.Second || wait > 12*time.Second {
			t.Errorf("WaitDuration() = %v, want ~11s", wait)
		}
	})

	t.Run("reset already passed", func(t *testing.T) {
		err := &RateLimitError{ResetAt: time.Now().Add(-time.Minute)}
		wait := err.WaitDuration()

		// Negative remainders clamp to zero, leaving only the safety margin.
		if wait != time.Second {
			t.Errorf("WaitDuration() = %v, want 1s", wait)
		}
	})
}

func TestIsRateLimit(t *testing.T) {
	rl := &RateLimitError{ResetAt: time.Now()}

	if !IsRateLimit(rl) {
		t.Error("IsRateLimit(rl) = false, want true")
	}
	if !IsRateLimit(fmt.Errorf("wrapped: %w", rl)) {
		t.Error("IsRateLimit(wrapped) = false, want true")
	}
	if IsRateLimit(errors.New("other")) {
		t.Error("IsRateLimit(other) = true, want false")
	}
}

func TestAPIError_Error(t *testing.T) {
	err := &APIError{
		StatusCode: 503,
		Class:      ErrorClassServer,
		Endpoint:   "/users/acme/repos",
		Body:       "unavailable",
	}

	msg := err.Error()
	for _, want := range []string{"503", "server", "/users/acme/repos", "unavailable"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}
}
