package webinspect

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestHeaders(t *testing.T) {
	tests := []struct {
		name        string
		call        func(*Client) *Response
		contentType string
	}{
		{
			name:        "GET",
			call:        func(c *Client) *Response { return c.ListScans(context.Background()) },
			contentType: MIMEJSON,
		},
		{
			name:        "POST",
			call:        func(c *Client) *Response { return c.StopScan(context.Background(), "scan-1") },
			contentType: MIMEJSON,
		},
		{
			name:        "DELETE",
			call:        func(c *Client) *Response { return c.DeleteScan(context.Background(), "scan-1") },
			contentType: "",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			client, spy := newSpyClient(t, respondWith(http.StatusOK, ""))
			test.call(client)

			require.Len(t, spy.requests, 1)
			header := spy.requests[0].Header
			assert.Equal(t, MIMEJSON, header.Get("Accept"))
			assert.Equal(t, test.contentType, header.Get("Content-Type"))
			assert.Equal(t, client.UserAgent(), header.Get("User-Agent"))
		})
	}

	t.Run("ExplicitHeadersCantOverrideUserAgent", func(t *testing.T) {
		client, spy := newSpyClient(t, respondWith(http.StatusOK, ""))
		client.do(context.Background(), http.MethodGet, "/x", request{
			headers: http.Header{"User-Agent": {"spoofed"}, "Accept": {"text/xml"}},
		})

		header := spy.requests[0].Header
		assert.Equal(t, client.UserAgent(), header.Get("User-Agent"))
		assert.Equal(t, "text/xml", header.Get("Accept"))
		assert.Empty(t, header.Get("Content-Type"))
	})

	t.Run("QueryParamsJoinExistingQuery", func(t *testing.T) {
		client, spy := newSpyClient(t, respondWith(http.StatusOK, ""))
		client.do(context.Background(), http.MethodGet, "/x?action=a", request{
			params: url.Values{"b": {"c d"}},
		})

		assert.Equal(t, "https://webinspect.example.com:8083/x?action=a&b=c+d", spy.requests[0].URL.String())
	})
}

func TestResponseDecoding(t *testing.T) {
	t.Run("JSON", func(t *testing.T) {
		client, _ := newSpyClient(t, respondWith(http.StatusOK, `{"ScanId": "abc", "count": 2}`))
		resp := client.GetCurrentStatus(context.Background(), "abc")

		assert.True(t, resp.Success())
		assert.Equal(t, 200, resp.ResponseCode())
		assert.Equal(t, "OK", resp.Message())
		assert.Equal(t, map[string]any{"ScanId": "abc", "count": float64(2)}, resp.Data())
		assert.NoError(t, resp.Err())
	})

	t.Run("EmptyBody", func(t *testing.T) {
		client, _ := newSpyClient(t, respondWith(http.StatusNoContent, ""))
		resp := client.DeleteScan(context.Background(), "abc")

		assert.True(t, resp.Success())
		assert.Equal(t, 204, resp.ResponseCode())
		assert.Equal(t, "", resp.Data())
	})

	t.Run("RawBody", func(t *testing.T) {
		client, _ := newSpyClient(t, respondWith(http.StatusOK, "<Settings><Name>x</Name></Settings>"))
		resp := client.DownloadSettings(context.Background(), "x")

		assert.True(t, resp.Success())
		assert.Equal(t, []byte("<Settings><Name>x</Name></Settings>"), resp.Data())
	})

	t.Run("InvalidJSON", func(t *testing.T) {
		client, _ := newSpyClient(t, respondWith(http.StatusOK, `{"ScanId": "ab`))
		resp := client.GetCurrentStatus(context.Background(), "abc")

		assert.False(t, resp.Success())
		assert.Contains(t, resp.Message(), "JSON response could not be decoded")

		var wiErr *Error
		require.ErrorAs(t, resp.Err(), &wiErr)
		assert.Equal(t, DecodeError, wiErr.Kind)
	})

	t.Run("TruncatedJSONValues", func(t *testing.T) {
		for _, body := range []string{`"abc`, `tru`, `12.`, `-`, `[1, 2`} {
			client, _ := newSpyClient(t, respondWith(http.StatusOK, body))
			resp := client.GetCurrentStatus(context.Background(), "abc")

			assert.False(t, resp.Success(), body)

			var wiErr *Error
			require.ErrorAs(t, resp.Err(), &wiErr, body)
			assert.Equal(t, DecodeError, wiErr.Kind, body)
		}
	})

	t.Run("TextIsNotJSON", func(t *testing.T) {
		for _, body := range []string{"404 page not found", "<Settings/>", "trusted"} {
			client, _ := newSpyClient(t, respondWith(http.StatusOK, body))
			resp := client.DownloadSettings(context.Background(), "x")

			assert.True(t, resp.Success(), body)
			assert.Equal(t, []byte(body), resp.Data(), body)
		}
	})

	t.Run("NonErrorNon2xx", func(t *testing.T) {
		client, _ := newSpyClient(t, respondWith(http.StatusNotModified, ""))
		resp := client.ListScans(context.Background())

		assert.False(t, resp.Success())
		assert.Equal(t, 304, resp.ResponseCode())
		assert.Error(t, resp.Err())
	})
}

func TestStatusFailures(t *testing.T) {
	t.Run("Unauthorized", func(t *testing.T) {
		client, _ := newSpyClient(t, respondWith(http.StatusUnauthorized, "denied"))
		resp := client.ListPolicies(context.Background())

		assert.False(t, resp.Success())
		assert.Equal(t, 401, resp.ResponseCode())
		assert.Equal(t, "401 Client Error: Unauthorized for url: https://webinspect.example.com:8083/webinspect/securebase/policy", resp.Message())

		var wiErr *Error
		require.ErrorAs(t, resp.Err(), &wiErr)
		assert.Equal(t, UnauthorizedError, wiErr.Kind)
	})

	t.Run("ServerError", func(t *testing.T) {
		client, _ := newSpyClient(t, respondWith(http.StatusInternalServerError, "scan engine unavailable"))
		resp := client.ListScans(context.Background())

		assert.False(t, resp.Success())
		assert.Equal(t, NoResponseCode, resp.ResponseCode())
		assert.Equal(t, "There was an error while handling the request. scan engine unavailable", resp.Message())

		var wiErr *Error
		require.ErrorAs(t, resp.Err(), &wiErr)
		assert.Equal(t, HTTPStatusError, wiErr.Kind)
		assert.Equal(t, 500, wiErr.StatusCode)
	})
}

func TestTransportFailures(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		kind    ErrorKind
		message string
	}{
		{
			name:    "CertificateVerification",
			err:     &url.Error{Op: "Get", URL: "https://wi", Err: &tls.CertificateVerificationError{Err: x509.UnknownAuthorityError{}}},
			kind:    SSLError,
			message: "An SSL error occurred.",
		},
		{
			name:    "RecordHeader",
			err:     tls.RecordHeaderError{Msg: "first record does not look like a TLS handshake"},
			kind:    SSLError,
			message: "An SSL error occurred.",
		},
		{
			name:    "RemoteAlert",
			err:     &net.OpError{Op: "remote error", Err: errors.New("tls: bad certificate")},
			kind:    SSLError,
			message: "An SSL error occurred.",
		},
		{
			name:    "Refused",
			err:     &url.Error{Op: "Get", URL: "https://wi", Err: &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}},
			kind:    ConnectionError,
			message: "A connection error occurred.",
		},
		{
			name:    "DNS",
			err:     &net.DNSError{Err: "no such host", Name: "wi"},
			kind:    ConnectionError,
			message: "A connection error occurred.",
		},
		{
			name:    "Timeout",
			err:     &url.Error{Op: "Get", URL: "https://wi", Err: context.DeadlineExceeded},
			kind:    TimeoutError,
			message: "The request timed out after 0s.",
		},
		{
			name:    "Other",
			err:     errors.New("unsupported protocol scheme"),
			kind:    TransportError,
			message: "There was an error while handling the request. unsupported protocol scheme",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			client, _ := newSpyClient(t, failWith(test.err))
			resp := client.ListScans(context.Background())

			assert.False(t, resp.Success())
			assert.Equal(t, NoResponseCode, resp.ResponseCode())
			assert.Equal(t, test.message, resp.Message())

			var wiErr *Error
			require.ErrorAs(t, resp.Err(), &wiErr)
			assert.Equal(t, test.kind, wiErr.Kind)
			assert.ErrorIs(t, resp.Err(), test.err)
		})
	}
}

func TestLiveServer(t *testing.T) {
	t.Run("UntrustedCertificate", func(t *testing.T) {
		ts := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = fmt.Fprint(w, "[]")
		}))
		defer ts.Close()

		client, err := NewClient(Config{Host: ts.URL})
		require.NoError(t, err)

		resp := client.ListScans(context.Background())
		assert.False(t, resp.Success())
		assert.Equal(t, "An SSL error occurred.", resp.Message())

		insecure, err := NewClient(Config{Host: ts.URL, InsecureSkipVerify: true})
		require.NoError(t, err)

		resp = insecure.ListScans(context.Background())
		assert.True(t, resp.Success())
		assert.Equal(t, []any{}, resp.Data())
	})

	t.Run("ConnectionRefused", func(t *testing.T) {
		ts := httptest.NewServer(http.NotFoundHandler())
		host := ts.URL
		ts.Close()

		client, err := NewClient(Config{Host: host})
		require.NoError(t, err)

		resp := client.ListScans(context.Background())
		assert.False(t, resp.Success())
		assert.Equal(t, "A connection error occurred.", resp.Message())
	})

	t.Run("Timeout", func(t *testing.T) {
		release := make(chan struct{})
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer ts.Close()
		defer close(release)

		client, err := NewClient(Config{Host: ts.URL, Timeout: 50 * time.Millisecond})
		require.NoError(t, err)

		resp := client.WaitForStatusChange(context.Background(), "scan-1")
		assert.False(t, resp.Success())
		assert.Equal(t, "The request timed out after 50ms.", resp.Message())
	})
}
