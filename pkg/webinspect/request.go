package webinspect

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"

	"github.com/webbreaker/webinspect/pkg/logger"
)

const (
	// MIMEJSON is sent as Accept on every request
	MIMEJSON = "application/json"

	sslErrorMessage        = "An SSL error occurred."
	connectionErrorMessage = "A connection error occurred."
	requestErrorPrefix     = "There was an error while handling the request."
)

// request holds the optional parts of a call handed to the executor
type request struct {
	// params are appended to the query string
	params url.Values
	// headers replace the default headers when set
	headers http.Header
	body    []byte
	// contentType is set by bodies that carry their own (multipart)
	contentType string
}

// do performs exactly one HTTP request and turns whatever happens into a
// Response
func (c *Client) do(ctx context.Context, method, path string, r request) *Response {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	reqURL := c.host + path
	if len(r.params) > 0 {
		separator := "?"
		if strings.Contains(path, "?") {
			separator = "&"
		}
		reqURL += separator + r.params.Encode()
	}

	var body io.Reader
	if r.body != nil {
		body = bytes.NewReader(r.body)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return newFailure(RequestError, NoResponseCode, fmt.Sprintf("%s %v", requestErrorPrefix, err), err)
	}

	c.setHeaders(req, r)
	c.auth.authorize(req)

	logger.Debug("sending request: method=%s url=%q auth=%s", method, reqURL, c.auth.Type())
	resp, err := c.client.Do(req)
	if err != nil {
		logger.Debug("request failed: method=%s url=%q error=%q", method, reqURL, err)
		return c.transportFailure(err, nil)
	}
	defer resp.Body.Close()

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Debug("could not read response body: method=%s url=%q error=%q", method, reqURL, err)
		return c.transportFailure(err, content)
	}

	logger.Debug("received response: method=%s url=%q status_code=%d", method, reqURL, resp.StatusCode)

	if resp.StatusCode >= http.StatusBadRequest {
		return statusFailure(resp.StatusCode, reqURL, content)
	}

	return decodeResponse(resp.StatusCode, content)
}

// setHeaders applies the default headers. Content-Type is only defaulted to
// JSON for GET and POST without explicit headers so multipart boundaries
// survive. The user agent goes last so callers can't override it.
func (c *Client) setHeaders(req *http.Request, r request) {
	if r.headers != nil {
		for name, values := range r.headers {
			for _, value := range values {
				req.Header.Add(name, value)
			}
		}
	} else {
		req.Header.Set("Accept", MIMEJSON)
		if req.Method == http.MethodGet || req.Method == http.MethodPost {
			req.Header.Set("Content-Type", MIMEJSON)
		}
	}

	if len(r.contentType) > 0 {
		req.Header.Set("Content-Type", r.contentType)
	}

	req.Header.Set("User-Agent", c.userAgent)
}

// transportFailure classifies errors that happened before a status was read
// or while reading the body
func (c *Client) transportFailure(err error, content []byte) *Response {
	switch {
	case isSSLError(err):
		return newFailure(SSLError, NoResponseCode, sslErrorMessage, err)
	case isConnectionError(err):
		return newFailure(ConnectionError, NoResponseCode, connectionErrorMessage, err)
	case isTimeout(err):
		return newFailure(TimeoutError, NoResponseCode, fmt.Sprintf("The request timed out after %s.", c.timeout), err)
	}

	detail := err.Error()
	if len(content) > 0 {
		detail = string(content)
	}

	return newFailure(TransportError, NoResponseCode, fmt.Sprintf("%s %s", requestErrorPrefix, detail), err)
}

// statusFailure handles 4xx and 5xx statuses. Only 401 keeps its status code
// as the response code; the others keep it on the Error.
func statusFailure(statusCode int, reqURL string, content []byte) *Response {
	class := "Client"
	if statusCode >= http.StatusInternalServerError {
		class = "Server"
	}

	statusErr := fmt.Errorf("%d %s Error: %s for url: %s", statusCode, class, http.StatusText(statusCode), reqURL)

	if statusCode == http.StatusUnauthorized {
		return newFailure(UnauthorizedError, statusCode, statusErr.Error(), statusErr)
	}

	resp := newFailure(HTTPStatusError, NoResponseCode, fmt.Sprintf("%s %s", requestErrorPrefix, content), statusErr)
	resp.err.StatusCode = statusCode
	return resp
}

// decodeResponse handles everything below 400. An empty body becomes "", a
// JSON body is decoded, a body that starts like JSON but doesn't decode is a
// failure and anything else is handed back as raw bytes.
func decodeResponse(statusCode int, content []byte) *Response {
	success := statusCode/100 == 2

	if len(content) == 0 {
		return NewResponse(success, statusCode, DefaultMessage, "")
	}

	var data any
	if err := json.Unmarshal(content, &data); err != nil {
		if looksLikeJSON(content) {
			return newFailure(DecodeError, NoResponseCode, fmt.Sprintf("JSON response could not be decoded %v.", err), err)
		}

		return NewResponse(success, statusCode, DefaultMessage, content)
	}

	return NewResponse(success, statusCode, DefaultMessage, data)
}

// looksLikeJSON reports whether a body that failed to decode was meant to be
// JSON: an object, array or string, or a truncated literal or number
func looksLikeJSON(content []byte) bool {
	trimmed := bytes.TrimSpace(content)
	if len(trimmed) == 0 {
		return false
	}

	switch c := trimmed[0]; {
	case c == '{', c == '[', c == '"':
		return true
	case c == '-', c >= '0' && c <= '9':
		return isJSONNumberPrefix(trimmed)
	}

	for _, literal := range []string{"true", "false", "null"} {
		if len(trimmed) < len(literal) && strings.HasPrefix(literal, string(trimmed)) {
			return true
		}
	}

	return false
}

// isJSONNumberPrefix is true when the body only holds number characters, so
// "12." is a broken number while "404 page not found" is text
func isJSONNumberPrefix(content []byte) bool {
	for _, c := range content {
		if !(c >= '0' && c <= '9') && c != '.' && c != 'e' && c != 'E' && c != '+' && c != '-' {
			return false
		}
	}

	return true
}

func isSSLError(err error) bool {
	var (
		verificationErr *tls.CertificateVerificationError
		recordErr       tls.RecordHeaderError
		alertErr        tls.AlertError
		authorityErr    x509.UnknownAuthorityError
		hostnameErr     x509.HostnameError
		invalidErr      x509.CertificateInvalidError
		opErr           *net.OpError
	)

	// Alerts sent by the server during the handshake come back as a
	// "remote error" op error
	if errors.As(err, &opErr) && opErr.Op == "remote error" {
		return true
	}

	return errors.As(err, &verificationErr) ||
		errors.As(err, &recordErr) ||
		errors.As(err, &alertErr) ||
		errors.As(err, &authorityErr) ||
		errors.As(err, &hostnameErr) ||
		errors.As(err, &invalidErr)
}

func isConnectionError(err error) bool {
	var (
		opErr  *net.OpError
		dnsErr *net.DNSError
	)

	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}

	return errors.As(err, &dnsErr) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
