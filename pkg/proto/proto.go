package proto

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/webbreaker/webinspect/pkg/logger"
	"github.com/webbreaker/webinspect/pkg/webinspect"
)

// Request is one line read in listen mode
type Request struct {
	ID        string
	Operation string
	Priority  int
	Args      Args
}

// UnmarshalJSON sets r to a copy of data
func (r *Request) UnmarshalJSON(data []byte) error {
	if r == nil {
		return errors.New("Request: UnmarshalJSON on nil pointer")
	}

	var tmp struct {
		ID        string `json:"id"`
		Operation string `json:"operation"`
		Priority  int    `json:"priority"`
		Args      Args   `json:"args"`
	}

	if err := json.Unmarshal(data, &tmp); err != nil {
		logger.Debug("Request:\n%s", data)
		return fmt.Errorf("could not unmarshal request: %w", err)
	}

	if len(strings.TrimSpace(tmp.Operation)) == 0 {
		return errors.New("missing required field: field=\"operation\"")
	}

	r.ID = tmp.ID
	r.Operation = tmp.Operation
	r.Priority = tmp.Priority
	r.Args = tmp.Args

	if r.Args == nil {
		r.Args = Args{}
	}

	return nil
}

// RequestID pulls the id out of a line that could not be parsed as a
// Request so the failure can still be answered. It is empty when the line
// isn't a JSON object with a string id.
func RequestID(data []byte) string {
	var tmp struct {
		ID string `json:"id"`
	}

	if err := json.Unmarshal(data, &tmp); err != nil {
		return ""
	}

	return tmp.ID
}

// Args are the operation arguments of a request
type Args map[string]any

// String returns a required string argument. Numbers are accepted too since
// IDs are often sent unquoted.
func (a Args) String(name string) (string, error) {
	value, ok := a[name]
	if !ok || value == nil {
		return "", fmt.Errorf("missing required arg: arg=%q", name)
	}

	switch v := value.(type) {
	case string:
		if len(v) == 0 {
			return "", fmt.Errorf("missing required arg: arg=%q", name)
		}
		return v, nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("invalid arg type: arg=%q type=%T", name, value)
	}
}

// StringOr returns an optional string argument or fallback
func (a Args) StringOr(name, fallback string) string {
	if value, err := a.String(name); err == nil {
		return value
	}

	return fallback
}

// Int returns a required integer argument
func (a Args) Int(name string) (int, error) {
	value, ok := a[name]
	if !ok || value == nil {
		return 0, fmt.Errorf("missing required arg: arg=%q", name)
	}

	switch v := value.(type) {
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("invalid arg value: arg=%q value=%v", name, v)
		}
		return int(v), nil
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid arg value: arg=%q value=%q", name, v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("invalid arg type: arg=%q type=%T", name, value)
	}
}

// Value returns an argument untouched
func (a Args) Value(name string) any {
	return a[name]
}

// Error describes why a response failed
type Error struct {
	Kind    string `json:"kind"    toml:"kind"    yaml:"kind"`
	Message string `json:"message" toml:"message" yaml:"message"`
	// StatusCode is set when the server answered with an error status
	StatusCode int `json:"status_code,omitempty" toml:"status_code,omitempty" yaml:"status_code,omitempty"`
}

// Response is the printable form of a webinspect.Response
type Response struct {
	ID           string `json:"id,omitempty"         toml:"id,omitempty"         yaml:"id,omitempty"`
	RequestID    string `json:"request_id,omitempty" toml:"request_id,omitempty" yaml:"request_id,omitempty"`
	Success      bool   `json:"success"              toml:"success"              yaml:"success"`
	ResponseCode int    `json:"response_code"        toml:"response_code"        yaml:"response_code"`
	Message      string `json:"message"              toml:"message"              yaml:"message"`
	Data         any    `json:"data,omitempty"       toml:"data,omitempty"       yaml:"data,omitempty"`
	Error        *Error `json:"error,omitempty"      toml:"error,omitempty"      yaml:"error,omitempty"`
}

// NewResponse copies a client response. Raw bodies are turned into text so
// they print as the server sent them.
func NewResponse(requestID string, resp *webinspect.Response) *Response {
	out := &Response{
		RequestID:    requestID,
		Success:      resp.Success(),
		ResponseCode: resp.ResponseCode(),
		Message:      resp.Message(),
		Data:         resp.Data(),
	}

	if raw, ok := out.Data.([]byte); ok {
		out.Data = string(raw)
	}

	if s, ok := out.Data.(string); ok && len(s) == 0 {
		out.Data = nil
	}

	var wiErr *webinspect.Error
	if err := resp.Err(); errors.As(err, &wiErr) {
		out.Error = &Error{
			Kind:    wiErr.Kind.String(),
			Message: wiErr.Message,
		}

		if wiErr.StatusCode > 0 {
			out.Error.StatusCode = wiErr.StatusCode
		}
	}

	return out
}

// NewErrorResponse builds a failed response for a request that never reached
// the client
func NewErrorResponse(requestID string, err error) *Response {
	return &Response{
		RequestID:    requestID,
		ResponseCode: webinspect.NoResponseCode,
		Message:      err.Error(),
		Error: &Error{
			Kind:    webinspect.RequestError.String(),
			Message: err.Error(),
		},
	}
}
