package logging

import (
	"errors"

	apperrors "tonetranslate-go/internal/errors"
)

// ErrorKind normalizes vendor failures into a short label for logs and metrics.
func ErrorKind(err error) string {
	if err == nil {
		return "ok"
	}
	var apiErr *apperrors.APIError
	if !errors.As(err, &apiErr) {
		return "error"
	}
	status := apiErr.HTTPStatus
	switch {
	case apiErr.Code == "request_canceled":
		return "canceled"
	case apiErr.Code == "timeout" || status == 504:
		return "timeout"
	case status == 0 || isNetworkCode(apiErr.Code):
		return "network_error"
	case status == 429:
		return "upstream_429"
	case status == 401:
		return "upstream_401"
	case status == 403:
		return "upstream_403"
	case status >= 500:
		return "upstream_5xx"
	case status >= 400:
		return "upstream_4xx"
	}
	return "error"
}

func isNetworkCode(code string) bool {
	switch code {
	case "connection_error", "dns_error", "tls_error", "network_error":
		return true
	}
	return false
}
