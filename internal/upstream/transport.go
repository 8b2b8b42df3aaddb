package upstream

import (
	"net"
	"net/http"
	"net/url"
	"time"

	"tonetranslate-go/internal/config"
	"tonetranslate-go/internal/constants"
)

func durationOrDefault(seconds int, fallback time.Duration) time.Duration {
	if seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return fallback
}

// NewHTTPClient builds the pooled client shared by both vendors. It is safe
// for concurrent use; per-call deadlines come from the request context.
func NewHTTPClient(p config.ProvidersConfig) *http.Client {
	tr := &http.Transport{
		Proxy: proxyFunc(p.ProxyURL),
		DialContext: (&net.Dialer{
			Timeout:   durationOrDefault(p.DialTimeoutSec, constants.DefaultDialTimeout),
			KeepAlive: constants.DefaultKeepAlive,
		}).DialContext,
		TLSHandshakeTimeout:   durationOrDefault(p.TLSHandshakeTimeoutSec, constants.DefaultTLSHandshakeTimeout),
		ResponseHeaderTimeout: durationOrDefault(p.ResponseHeaderTimeoutSec, constants.DefaultResponseHeaderTimeout),
		ExpectContinueTimeout: constants.DefaultExpectContinueTimeout,
		MaxIdleConns:          constants.BaseMaxIdleConns,
		MaxIdleConnsPerHost:   constants.BaseMaxIdleConnsPerHost,
		IdleConnTimeout:       constants.BaseIdleConnTimeout,
		ForceAttemptHTTP2:     true,
	}
	return &http.Client{Transport: tr}
}

// proxyFunc prefers the configured proxy and falls back to HTTP(S)_PROXY.
func proxyFunc(proxyURL string) func(*http.Request) (*url.URL, error) {
	if proxyURL != "" {
		if parsed, err := url.Parse(proxyURL); err == nil {
			return http.ProxyURL(parsed)
		}
	}
	return http.ProxyFromEnvironment
}
