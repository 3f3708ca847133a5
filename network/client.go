// Package network provides the shared HTTP client used for direct downloads and release checks.
package network

import (
	"net/http"
	"time"

	"github.com/epget-cli/epget/constant"
)

// Client is the HTTP client shared across the application.
// It has no overall timeout: a transfer may legitimately stream for a long time,
// so only the wait for response headers is bounded.
var Client = &http.Client{
	Transport: &userAgentTransport{base: newTransport()},
}

func newTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 10
	t.MaxIdleConnsPerHost = 2
	t.IdleConnTimeout = 30 * time.Second
	t.ResponseHeaderTimeout = 30 * time.Second
	t.ExpectContinueTimeout = 30 * time.Second
	return t
}

// userAgentTransport sets a browser-like User-Agent on requests that have none.
type userAgentTransport struct {
	base http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", constant.UserAgent)
	}
	return t.base.RoundTrip(req)
}
