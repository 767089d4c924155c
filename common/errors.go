package common

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Error kinds returned by the platform client. Match them with errors.Is.
var (
	// ErrAuthentication means the session is missing, invalid or expired (HTTP 401).
	ErrAuthentication = errors.New("authentication required")
	// ErrAuthorization means the session lacks the privilege for the call (HTTP 403).
	ErrAuthorization = errors.New("permission denied")
	// ErrRateLimited means the API asked us to slow down (HTTP 429).
	ErrRateLimited = errors.New("rate limited")
	// ErrTimeout means no response arrived within the request timeout.
	ErrTimeout = errors.New("request timed out")
	// ErrHTTP covers every other non-2xx response.
	ErrHTTP = errors.New("http error")
	// ErrNetwork is a transport failure that is not a timeout.
	ErrNetwork = errors.New("network error")
	// ErrDecode means a 2xx body could not be decoded into the expected record.
	ErrDecode = errors.New("decode error")
)

// APIError is the error returned for every failed platform call.
type APIError struct {
	Kind       error
	StatusCode int
	Message    string
	Endpoint   string
	RequestID  string
	RetryAfter time.Duration
	Body       []byte
	Cause      error
}

func (e *APIError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Message
	if msg == "" {
		msg = e.Kind.Error()
	}
	if e.StatusCode > 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Endpoint != "" {
		msg = fmt.Sprintf("%s: %s", e.Endpoint, msg)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying transport or decode error, if any.
func (e *APIError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is reports whether target is this error's kind.
func (e *APIError) Is(target error) bool {
	if e == nil {
		return false
	}
	return e.Kind == target
}

// KindForStatus maps a non-2xx status code onto an error kind.
func KindForStatus(status int) error {
	switch status {
	case http.StatusUnauthorized:
		return ErrAuthentication
	case http.StatusForbidden:
		return ErrAuthorization
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		return ErrHTTP
	}
}

// KindName is a short label for metrics and logs.
func KindName(kind error) string {
	switch kind {
	case ErrAuthentication:
		return "authentication"
	case ErrAuthorization:
		return "authorization"
	case ErrRateLimited:
		return "rate_limited"
	case ErrTimeout:
		return "timeout"
	case ErrNetwork:
		return "network"
	case ErrDecode:
		return "decode"
	default:
		return "http"
	}
}

// IsAuthError reports whether err requires the operator to log in again.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrAuthentication)
}

// IsRetryable reports whether a caller may reasonably retry err later.
// The client itself never retries.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRateLimited) || errors.Is(err, ErrTimeout) || errors.Is(err, ErrNetwork) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500
	}
	return false
}
