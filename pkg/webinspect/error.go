package webinspect

import "fmt"

// ErrorKind classifies why a request failed
type ErrorKind int

const (
	// NoError means the kind hasn't been set
	NoError ErrorKind = iota
	// FileError means a file to upload could not be read
	FileError
	// SSLError means TLS negotiation or certificate verification failed
	SSLError
	// ConnectionError means the host could not be reached
	ConnectionError
	// TimeoutError means the request took longer than the client timeout
	TimeoutError
	// UnauthorizedError means the server answered 401
	UnauthorizedError
	// HTTPStatusError means the server answered with any other 4xx/5xx status
	HTTPStatusError
	// TransportError covers the remaining failures while talking to the server
	TransportError
	// DecodeError means the body looked like JSON but could not be decoded
	DecodeError
	// RequestError means the request could not be built
	RequestError
)

var errorNames = [...]string{
	"NoError",
	"FileError",
	"SSLError",
	"ConnectionError",
	"TimeoutError",
	"UnauthorizedError",
	"HTTPStatusError",
	"TransportError",
	"DecodeError",
	"RequestError",
}

func (k ErrorKind) String() string {
	if k >= 0 && int(k) < len(errorNames) {
		return errorNames[k]
	}
	return "UnknownError"
}

// Error is the failure carried by an unsuccessful Response
type Error struct {
	Kind ErrorKind `json:"kind"`
	// StatusCode is the HTTP status when the server answered, otherwise -1
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
	// Err is the underlying cause when there is one
	Err error `json:"-"`
}

// Error is defined to implement the error interface
func (e *Error) Error() string {
	return e.String()
}

// String provides a string representation of the error
func (e *Error) String() string {
	return fmt.Sprintf("error occurred, code %d (%s): %s", e.Kind, e.Kind, e.Message)
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Err
}
