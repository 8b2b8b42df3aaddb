package errors

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// statusClass describes how one vendor status is normalized.
type statusClass struct {
	code, errType, fallback string
}

var vendorStatuses = map[int]statusClass{
	http.StatusBadRequest:          {"invalid_request_error", "invalid_request_error", "Invalid request"},
	http.StatusUnauthorized:        {"invalid_api_key", "authentication_error", "Invalid authentication"},
	http.StatusForbidden:           {"permission_denied", "permission_error", "Permission denied"},
	http.StatusNotFound:            {"not_found", "invalid_request_error", "Resource not found"},
	http.StatusTooManyRequests:     {"rate_limit_exceeded", "rate_limit_error", "Rate limit exceeded"},
	http.StatusInternalServerError: {"server_error", "server_error", "Internal server error"},
	http.StatusBadGateway:          {"bad_gateway", "server_error", "Bad gateway"},
	http.StatusServiceUnavailable:  {"service_unavailable", "server_error", "Service temporarily unavailable"},
	http.StatusGatewayTimeout:      {"timeout", "timeout_error", "Request timeout"},
	statusOverloaded:               {"overloaded", "overloaded_error", "Upstream overloaded"},
}

// maxBodyMessage bounds how much of a non-JSON vendor body becomes the message.
const maxBodyMessage = 200

// MapHTTPError normalizes a failed vendor response. The vendor's own message
// (error.message for both OpenAI and Anthropic) wins over the generic one.
func MapHTTPError(statusCode int, upstreamBody []byte) *APIError {
	class, ok := vendorStatuses[statusCode]
	if !ok {
		class = statusClass{"unknown_error", "server_error", fmt.Sprintf("HTTP %d error", statusCode)}
	}
	msg := vendorMessage(upstreamBody)
	if msg == "" {
		msg = class.fallback
	}
	return New(statusCode, class.code, class.errType, msg)
}

// WithRetryAfterHeader records a Retry-After header given in seconds.
// HTTP-date values are ignored.
func (e *APIError) WithRetryAfterHeader(v string) *APIError {
	if secs, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && secs > 0 {
		e.RetryAfter = secs
	}
	return e
}

func vendorMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if gjson.ValidBytes(body) {
		for _, path := range []string{"error.message", "message"} {
			if msg := gjson.GetBytes(body, path).String(); msg != "" {
				return msg
			}
		}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > maxBodyMessage {
		return msg[:maxBodyMessage] + "..."
	}
	return msg
}
