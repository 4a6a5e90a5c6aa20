// Package httpclient configures the HTTP client the command line tools use
// to call the dashboard.
package httpclient

import (
	"net"
	"net/http"
	"time"
)

// NewOutbound creates a pooled client sized for concurrent workers. A
// non-positive timeout falls back to 30s.
func NewOutbound(timeout time.Duration, maxPerHost int) *http.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if maxPerHost <= 0 {
		maxPerHost = 128
	}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:          2 * maxPerHost,
		MaxIdleConnsPerHost:   maxPerHost,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}
