// Package webinspect is a client for the WebInspect REST API.
//
// Every endpoint method performs exactly one HTTP request and returns a
// *Response. Failures (TLS, connection, timeout, HTTP errors, unreadable
// upload files, undecodable bodies) never surface as panics or returned
// errors; they are carried by the Response and exposed through Err so that a
// caller can tell them apart:
//
//	client, err := webinspect.NewClient(webinspect.Config{
//		Host:     "https://webinspect.example.com:8083",
//		Username: "admin",
//		Password: "secret",
//	})
//	if err != nil {
//		return err
//	}
//	data, err := client.ListScans(ctx).Result()
package webinspect

import (
	"crypto/tls"
	"errors"
	"strings"
	"time"

	httpclient "github.com/webbreaker/webinspect/pkg/http"
	"github.com/webbreaker/webinspect/pkg/logger"
	"github.com/webbreaker/webinspect/version"
)

// Config holds everything needed to build a Client. It is copied by NewClient
// and never consulted again.
type Config struct {
	// Host is the base URL of the WebInspect API (e.g. https://wi:8083)
	Host string
	// Username selects basic auth when set
	Username string
	Password string
	// CertFile selects client certificate auth when Username is empty. The
	// private key is read from KeyFile, or from CertFile when KeyFile is empty.
	CertFile string
	KeyFile  string
	// InsecureSkipVerify turns off TLS certificate verification for the
	// requests made by this client only
	InsecureSkipVerify bool
	// UserAgent defaults to version.UserAgent()
	UserAgent string
	// Timeout applies to every request; zero means no timeout
	Timeout time.Duration
	// HTTPClient replaces the transport built from the settings above
	HTTPClient httpclient.HTTPClient
}

// Client exposes one method per WebInspect API endpoint. Its configuration is
// fixed at construction. It holds no per-call state but provides no locking
// either; give each goroutine its own Client.
type Client struct {
	auth      Auth
	client    httpclient.HTTPClient
	host      string
	timeout   time.Duration
	userAgent string
}

// NewClient validates the config, settles the auth mode and builds the
// transport
func NewClient(cfg Config) (*Client, error) {
	host := strings.TrimRight(cfg.Host, "/")
	if len(host) == 0 {
		return nil, errors.New("missing required field: field=\"host\"")
	}

	auth, err := selectAuth(cfg)
	if err != nil {
		return nil, err
	}

	userAgent := cfg.UserAgent
	if len(userAgent) == 0 {
		userAgent = version.UserAgent()
	}

	client := cfg.HTTPClient
	if client == nil {
		opts := httpclient.Options{
			InsecureSkipVerify: cfg.InsecureSkipVerify,
			UserAgent:          userAgent,
		}

		if certAuth, ok := auth.(CertificateAuth); ok {
			opts.Certificates = []tls.Certificate{certAuth.Certificate}
		}

		client = httpclient.NewClient(opts)
	}

	if cfg.InsecureSkipVerify {
		logger.Warning("tls certificate verification is disabled for this client: host=%q", host)
	}

	return &Client{
		auth:      auth,
		client:    client,
		host:      host,
		timeout:   cfg.Timeout,
		userAgent: userAgent,
	}, nil
}

// AuthType reports how the client authenticates
func (c *Client) AuthType() AuthType {
	return c.auth.Type()
}

// Host returns the base URL requests are sent to
func (c *Client) Host() string {
	return c.host
}

// UserAgent returns the User-Agent header sent with every request
func (c *Client) UserAgent() string {
	return c.userAgent
}
