package httputil

import (
	"net/http"
	"time"
)

const DefaultTimeout = 30 * time.Second

// UserAgent identifies the gateway to upstream services. The weather agency
// rejects requests that omit one.
const UserAgent = "wxgate/1.0 (NWS grid gateway)"

// NewClient returns an HTTP client with standard timeout configuration.
func NewClient() *http.Client {
	return &http.Client{
		Timeout: DefaultTimeout,
	}
}

// NewClientTimeout returns an HTTP client with a caller-chosen timeout,
// used by the webhook dispatcher where the default is too generous.
func NewClientTimeout(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
	}
}
