package errors

import (
	"encoding/json"
	"net/http"
)

// statusOverloaded is Anthropic's non-standard "overloaded" status.
const statusOverloaded = 529

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// ToJSON renders the {success:false,error,details} envelope.
func (e *APIError) ToJSON() ([]byte, error) {
	return json.Marshal(e.Envelope())
}

func (e *APIError) Envelope() Envelope {
	return Envelope{Success: false, Error: e.Message, Details: e.Details}
}

func New(httpStatus int, code, errType, message string) *APIError {
	return &APIError{HTTPStatus: httpStatus, Code: code, Type: errType, Message: message}
}

func (e *APIError) WithDetails(details string) *APIError {
	e.Details = details
	return e
}

func (e *APIError) IsRetryable() bool {
	if e.Code == "request_canceled" {
		return false
	}
	switch e.HTTPStatus {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
		http.StatusRequestTimeout,
		statusOverloaded:
		return true
	}
	switch e.Code {
	case "timeout", "connection_error", "network_error", "dns_error":
		return true
	}
	return false
}

// GetRetryAfter returns the vendor's Retry-After hint in seconds, 0 when none was sent.
func (e *APIError) GetRetryAfter() int {
	if e == nil || e.RetryAfter < 0 {
		return 0
	}
	return e.RetryAfter
}

// IsCritical marks credential failures that retrying cannot fix.
func (e *APIError) IsCritical() bool {
	switch e.HTTPStatus {
	case http.StatusUnauthorized, http.StatusForbidden:
		return true
	}
	switch e.Code {
	case "invalid_api_key", "permission_denied":
		return true
	}
	return false
}
