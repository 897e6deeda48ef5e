package cloud

import (
	"fmt"
	"net/http"

	"github.com/aws/smithy-go"
)

// RequestError is returned when the metadata service could not be reached,
// e.g. connection refused or timed out when not running on EC2.
type RequestError struct {
	Method string
	Path   string
	Err    error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s %s: could not reach instance metadata service: %v", e.Method, e.Path, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// StatusError is returned when the metadata service answers with a non-2xx status.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

var _ smithy.APIError = &StatusError{}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s %s: incorrect status code %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: incorrect status code %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
}

// ErrorCode returns the HTTP status text, e.g. "Not Found".
func (e *StatusError) ErrorCode() string {
	return http.StatusText(e.StatusCode)
}

func (e *StatusError) ErrorMessage() string {
	return e.Message
}

// ErrorFault blames the caller for 4xx and the metadata service for 5xx.
func (e *StatusError) ErrorFault() smithy.ErrorFault {
	switch {
	case e.StatusCode >= 400 && e.StatusCode < 500:
		return smithy.FaultClient
	case e.StatusCode >= 500:
		return smithy.FaultServer
	default:
		return smithy.FaultUnknown
	}
}

// ParseError is returned when a response body does not have the expected shape.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("could not parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
