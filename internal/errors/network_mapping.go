package errors

import (
	"context"
	"crypto/x509"
	stderrors "errors"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"
)

// MapNetworkError normalizes a vendor call that produced no HTTP response.
// Typed checks come first; the substring fallbacks cover errors that were
// flattened to text by a vendor SDK.
func MapNetworkError(err error) *APIError {
	if err == nil {
		return nil
	}
	msg := err.Error()

	var dnsErr *net.DNSError
	var netErr net.Error
	var certErr x509.UnknownAuthorityError
	var hostErr x509.HostnameError

	switch {
	case stderrors.Is(err, context.Canceled):
		return New(http.StatusRequestTimeout, "request_canceled", "timeout_error", "Request was canceled")
	case stderrors.Is(err, context.DeadlineExceeded),
		stderrors.As(err, &netErr) && netErr.Timeout(),
		containsAny(msg, "timeout", "deadline exceeded"):
		return New(http.StatusGatewayTimeout, "timeout", "timeout_error", "Request timeout: "+msg)
	case stderrors.As(err, &dnsErr), containsAny(msg, "no such host", "name resolution"):
		return New(http.StatusBadGateway, "dns_error", "server_error", "DNS resolution error: "+msg)
	case stderrors.Is(err, syscall.ECONNREFUSED), containsAny(msg, "connection refused"):
		return New(http.StatusBadGateway, "connection_error", "server_error", "Connection refused: "+msg)
	case stderrors.Is(err, io.EOF), stderrors.Is(err, io.ErrUnexpectedEOF), stderrors.Is(err, syscall.ECONNRESET),
		containsAny(msg, "EOF", "connection reset"):
		return New(http.StatusBadGateway, "connection_error", "server_error", "Connection error: "+msg)
	case stderrors.As(err, &certErr), stderrors.As(err, &hostErr), containsAny(msg, "certificate", "tls"):
		return New(http.StatusBadGateway, "tls_error", "server_error", "TLS/Certificate error: "+msg)
	default:
		return New(http.StatusBadGateway, "network_error", "server_error", "Network error: "+msg)
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
