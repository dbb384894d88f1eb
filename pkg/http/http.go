package http

import (
	"crypto/tls"
	"net/http"

	"github.com/webbreaker/webinspect/version"
)

// HTTPClient provides an interface for working with Go's http client or
// swapping it out with other types for testing
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Options controls how the transport of a single API client is built
type Options struct {
	// InsecureSkipVerify disables TLS certificate verification
	InsecureSkipVerify bool
	// Certificates are presented when the server asks for a client cert
	Certificates []tls.Certificate
	// UserAgent is sent when a request doesn't already carry one
	UserAgent string
}

// NewClient creates a http client with preferred configuration. Each call
// returns a new client so that TLS settings never leak between API clients.
func NewClient(opts Options) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{
		InsecureSkipVerify: opts.InsecureSkipVerify, // #nosec G402 -- opt-in per client
		Certificates:       opts.Certificates,
		MinVersion:         tls.VersionTLS12,
	}

	userAgent := opts.UserAgent
	if len(userAgent) == 0 {
		userAgent = version.GlobalUserAgent
	}

	return &http.Client{
		Transport: &customRoundTripper{
			rt:        transport,
			userAgent: userAgent,
		},
	}
}

type customRoundTripper struct {
	rt        http.RoundTripper
	userAgent string
}

func (rt *customRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if len(req.Header.Get("User-Agent")) > 0 {
		return rt.rt.RoundTrip(req)
	}

	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", rt.userAgent)
	return rt.rt.RoundTrip(req)
}
