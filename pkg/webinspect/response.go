package webinspect

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
)

// DefaultMessage is the message of a response that didn't fail
const DefaultMessage = "OK"

// NoResponseCode is reported when a request never got an HTTP status back
const NoResponseCode = -1

// Response is the result of every Client call, successful or not. It can't be
// changed after it is built.
type Response struct {
	data         any
	err          *Error
	message      string
	responseCode int
	success      bool
}

// NewResponse builds a response by hand. Data is whatever the API returned:
// decoded JSON, raw bytes or the empty string for an empty body.
func NewResponse(success bool, responseCode int, message string, data any) *Response {
	if len(message) == 0 {
		message = DefaultMessage
	}

	return &Response{
		data:         data,
		message:      message,
		responseCode: responseCode,
		success:      success,
	}
}

// newFailure builds an unsuccessful response around an Error
func newFailure(kind ErrorKind, responseCode int, message string, cause error) *Response {
	return &Response{
		err: &Error{
			Kind:       kind,
			StatusCode: responseCode,
			Message:    message,
			Err:        cause,
		},
		message:      message,
		responseCode: responseCode,
	}
}

// Success is true when the status code is 2xx and nothing else went wrong
func (r *Response) Success() bool {
	return r.success
}

// ResponseCode is the HTTP status or NoResponseCode
func (r *Response) ResponseCode() int {
	return r.responseCode
}

// Message describes the outcome ("OK" unless something failed)
func (r *Response) Message() string {
	return r.message
}

// Data is the decoded payload: a JSON value, raw []byte for non JSON bodies
// or "" for an empty body
func (r *Response) Data() any {
	return r.data
}

// Err returns a *Error describing the failure, or nil when the response
// succeeded. Responses that are unsuccessful without a transport failure
// (e.g. a 3xx status) report an HTTPStatusError.
func (r *Response) Err() error {
	if r.err != nil {
		return r.err
	}

	if !r.success {
		return &Error{
			Kind:       HTTPStatusError,
			StatusCode: r.responseCode,
			Message:    r.message,
		}
	}

	return nil
}

// Result returns the payload along with the failure so both get handled
func (r *Response) Result() (any, error) {
	return r.data, r.Err()
}

// String returns the payload as text if there is one, otherwise the message
func (r *Response) String() string {
	if isEmptyData(r.data) {
		return r.message
	}

	switch data := r.data.(type) {
	case string:
		return data
	case []byte:
		return string(data)
	}

	out, err := r.DataJSON(false)
	if err != nil {
		return r.message
	}

	return out
}

// DataJSON renders the payload as JSON. Pretty output is indented by four
// spaces with the keys sorted. Raw bytes are rendered as a JSON string.
func (r *Response) DataJSON(pretty bool) (string, error) {
	data := r.data
	if raw, ok := data.([]byte); ok {
		data = string(raw)
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)

	if pretty {
		encoder.SetIndent("", "    ")
	}

	if err := encoder.Encode(data); err != nil {
		return "", err
	}

	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func isEmptyData(data any) bool {
	if data == nil {
		return true
	}

	value := reflect.ValueOf(data)
	switch value.Kind() {
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		return value.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return value.IsNil()
	case reflect.Bool, reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return value.IsZero()
	default:
		return false
	}
}
