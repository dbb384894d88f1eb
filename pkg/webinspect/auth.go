package webinspect

import (
	"crypto/tls"
	"fmt"
	"net/http"
)

// AuthType names the way a Client authenticates
type AuthType int

const (
	// Unauthenticated sends neither credentials nor a client certificate
	Unauthenticated AuthType = iota
	// Basic sends HTTP basic auth credentials
	Basic
	// Certificate presents a client certificate during the TLS handshake
	Certificate
)

var authTypeNames = [...]string{"unauthenticated", "basic", "certificate"}

func (a AuthType) String() string {
	if a >= 0 && int(a) < len(authTypeNames) {
		return authTypeNames[a]
	}
	return "invalid"
}

// Auth is the authentication mode bound to a Client. The concrete types are
// BasicAuth, CertificateAuth and NoAuth.
type Auth interface {
	Type() AuthType
	authorize(req *http.Request)
}

// BasicAuth sends a username and password with each request
type BasicAuth struct {
	Username string
	Password string
}

func (a BasicAuth) Type() AuthType {
	return Basic
}

func (a BasicAuth) authorize(req *http.Request) {
	req.SetBasicAuth(a.Username, a.Password)
}

// CertificateAuth carries the client certificate. It is wired into the TLS
// config of the transport so requests themselves are left untouched.
type CertificateAuth struct {
	Certificate tls.Certificate
}

func (a CertificateAuth) Type() AuthType {
	return Certificate
}

func (a CertificateAuth) authorize(*http.Request) {}

// NoAuth is used when neither a username nor a certificate is configured
type NoAuth struct{}

func (NoAuth) Type() AuthType {
	return Unauthenticated
}

func (NoAuth) authorize(*http.Request) {}

// selectAuth picks basic auth when a username is set, then certificate auth
// when a cert is set, and otherwise no auth
func selectAuth(cfg Config) (Auth, error) {
	switch {
	case len(cfg.Username) > 0:
		return BasicAuth{Username: cfg.Username, Password: cfg.Password}, nil
	case len(cfg.CertFile) > 0:
		keyFile := cfg.KeyFile
		if len(keyFile) == 0 {
			keyFile = cfg.CertFile
		}

		cert, err := tls.LoadX509KeyPair(cfg.CertFile, keyFile)
		if err != nil {
			return nil, fmt.Errorf("could not load client certificate: cert_file=%q key_file=%q: %w", cfg.CertFile, keyFile, err)
		}

		return CertificateAuth{Certificate: cert}, nil
	default:
		return NoAuth{}, nil
	}
}
