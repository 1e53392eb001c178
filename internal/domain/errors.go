package domain

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnknownAction   = errors.New("unknown action")
	ErrTimeout         = errors.New("timeout")
	ErrEmptyResult     = errors.New("empty result from completion api")
	ErrConfiguration   = errors.New("configuration error")
	ErrContentNotFound = errors.New("content not found")
)

// InvalidInputError names the request field that failed validation.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *InvalidInputError) Unwrap() error { return ErrInvalidInput }

// FetchClass groups extraction failures by how they surface to clients.
type FetchClass int

const (
	FetchConnection FetchClass = iota
	FetchTimeout
	FetchStatus
)

func (c FetchClass) String() string {
	switch c {
	case FetchTimeout:
		return "timeout"
	case FetchStatus:
		return "status"
	default:
		return "connection"
	}
}

// FetchError describes a failed article download.
type FetchError struct {
	URL        string
	Class      FetchClass
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Class == FetchStatus {
		return fmt.Sprintf("fetch %s: upstream returned %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Class, e.Err)
}

func (e *FetchError) Unwrap() []error {
	if e.Class == FetchTimeout {
		return []error{ErrTimeout, e.Err}
	}
	return []error{e.Err}
}

// ClientStatus maps the failure onto the status returned by the extract endpoint.
func (e *FetchError) ClientStatus() int {
	switch e.Class {
	case FetchTimeout:
		return http.StatusGatewayTimeout
	case FetchConnection:
		return http.StatusServiceUnavailable
	}
	switch {
	case e.StatusCode == http.StatusNotFound:
		return http.StatusNotFound
	case e.StatusCode == http.StatusUnauthorized, e.StatusCode == http.StatusForbidden:
		return http.StatusForbidden
	case e.StatusCode >= 500:
		return http.StatusBadGateway
	case e.StatusCode >= 400:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// UpstreamError is a non-2xx answer from the completion API.
type UpstreamError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("completion api returned %d: %s", e.StatusCode, e.Message)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// ClientStatus maps the upstream status onto the status shown to callers.
func (e *UpstreamError) ClientStatus() int {
	switch {
	case e.StatusCode == http.StatusUnauthorized:
		return http.StatusUnauthorized
	case e.StatusCode == http.StatusTooManyRequests:
		return http.StatusTooManyRequests
	case e.StatusCode >= 400 && e.StatusCode < 500:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
