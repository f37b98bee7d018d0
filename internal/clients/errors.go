package clients

import (
	"fmt"
	"net/http"
)

// ConfigurationError is a fatal misconfiguration (missing encryption key or
// platform credentials). It is never retried.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Message
}

// UnauthorizedError means the access token is invalid or expired. The
// orchestrator responds by attempting a refresh, not by retrying the call.
type UnauthorizedError struct {
	Message string
}

func (e *UnauthorizedError) Error() string {
	return "unauthorized: " + e.Message
}

// ForbiddenError means the platform revoked permissions for the account.
// Terminal for the account; reconnecting requires user action.
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string {
	return "forbidden: " + e.Message
}

// RateLimitError triggers the platform-wide cooldown.
type RateLimitError struct {
	Message string
}

func (e *RateLimitError) Error() string {
	return "rate limited: " + e.Message
}

// APIError is any other non-2xx platform response or transport failure. The
// task queue's backoff policy retries these.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Message)
	}
	return "api error: " + e.Message
}

type UnsupportedPlatformError struct {
	Platform string
}

func (e *UnsupportedPlatformError) Error() string {
	return "unsupported platform: " + e.Platform
}

// classifyStatus maps a platform HTTP status to the error taxonomy. The
// mapping is uniform across all platform clients.
func classifyStatus(statusCode int, body string) error {
	switch statusCode {
	case http.StatusUnauthorized:
		return &UnauthorizedError{Message: "access token is invalid or expired"}
	case http.StatusForbidden:
		return &ForbiddenError{Message: "insufficient permissions"}
	case http.StatusTooManyRequests:
		return &RateLimitError{Message: "rate limit exceeded"}
	default:
		return &APIError{StatusCode: statusCode, Message: body}
	}
}
