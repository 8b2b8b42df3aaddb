package errors

import (
	"context"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapHTTPErrorExtractsVendorMessage(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode string
		wantMsg  string
	}{
		{"openai rate limit", http.StatusTooManyRequests, `{"error":{"message":"API rate limit exceeded","type":"requests"}}`, "rate_limit_exceeded", "API rate limit exceeded"},
		{"anthropic auth", http.StatusUnauthorized, `{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`, "invalid_api_key", "invalid x-api-key"},
		{"anthropic overloaded", 529, `{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`, "overloaded", "Overloaded"},
		{"plain text body", http.StatusBadGateway, "upstream down", "bad_gateway", "upstream down"},
		{"empty body", http.StatusServiceUnavailable, "", "service_unavailable", "Service temporarily unavailable"},
		{"unknown status", 418, "", "unknown_error", "HTTP 418 error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MapHTTPError(tt.status, []byte(tt.body))
			assert.Equal(t, tt.status, err.HTTPStatus)
			assert.Equal(t, tt.wantCode, err.Code)
			assert.Equal(t, tt.wantMsg, err.Message)
			assert.Equal(t, tt.wantMsg, err.Error())
		})
	}
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, MapHTTPError(http.StatusTooManyRequests, nil).IsRetryable())
	assert.True(t, MapHTTPError(529, nil).IsRetryable())
	assert.True(t, MapHTTPError(http.StatusInternalServerError, nil).IsRetryable())
	assert.False(t, MapHTTPError(http.StatusBadRequest, nil).IsRetryable())
	assert.False(t, MapHTTPError(http.StatusUnauthorized, nil).IsRetryable())
	assert.True(t, MapNetworkError(fmt.Errorf("dial tcp: connection refused")).IsRetryable())
	assert.False(t, MapNetworkError(context.Canceled).IsRetryable())
}

func TestMapNetworkError(t *testing.T) {
	assert.Nil(t, MapNetworkError(nil))
	assert.Equal(t, "timeout", MapNetworkError(context.DeadlineExceeded).Code)
	assert.Equal(t, "request_canceled", MapNetworkError(fmt.Errorf("wrapped: %w", context.Canceled)).Code)
	assert.Equal(t, "dns_error", MapNetworkError(fmt.Errorf("lookup api.example: no such host")).Code)
	assert.Equal(t, "network_error", MapNetworkError(fmt.Errorf("boom")).Code)
}

func TestMapNetworkErrorTyped(t *testing.T) {
	dns := &net.DNSError{Err: "server misbehaving", Name: "api.example"}
	assert.Equal(t, "dns_error", MapNetworkError(dns).Code)

	refused := &net.OpError{Op: "dial", Net: "tcp", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)}
	assert.Equal(t, "connection_error", MapNetworkError(refused).Code)

	timeout := &net.DNSError{Err: "i/o", Name: "api.example", IsTimeout: true}
	assert.Equal(t, "timeout", MapNetworkError(timeout).Code)

	assert.Equal(t, "connection_error", MapNetworkError(fmt.Errorf("read: %w", io.ErrUnexpectedEOF)).Code)
	assert.Equal(t, "tls_error", MapNetworkError(x509.UnknownAuthorityError{}).Code)
}

func TestRetryAfter(t *testing.T) {
	err := MapHTTPError(http.StatusTooManyRequests, nil).WithRetryAfterHeader("7")
	assert.Equal(t, 7, err.GetRetryAfter())
	assert.Zero(t, MapHTTPError(http.StatusTooManyRequests, nil).WithRetryAfterHeader("soon").GetRetryAfter())
	assert.Zero(t, New(http.StatusBadRequest, "x", "x", "x").GetRetryAfter())
}

func TestIsCritical(t *testing.T) {
	assert.True(t, MapHTTPError(http.StatusUnauthorized, nil).IsCritical())
	assert.True(t, MapHTTPError(http.StatusForbidden, nil).IsCritical())
	assert.False(t, MapHTTPError(http.StatusTooManyRequests, nil).IsCritical())
	assert.False(t, MapNetworkError(fmt.Errorf("dial tcp: connection refused")).IsCritical())
}

func TestToJSONEnvelope(t *testing.T) {
	payload, err := New(http.StatusInternalServerError, "translation_failed", "server_error", "Translation failed").
		WithDetails("API rate limit exceeded").ToJSON()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, false, decoded["success"])
	assert.Equal(t, "Translation failed", decoded["error"])
	assert.Equal(t, "API rate limit exceeded", decoded["details"])

	payload, err = New(http.StatusBadRequest, "invalid_request", "invalid_request_error", "Text is required").ToJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"error":"Text is required"}`, string(payload))
}
