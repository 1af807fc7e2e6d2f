package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrValidation    = errors.New("validation")
	ErrNetwork       = errors.New("network")
	ErrHTTP          = errors.New("http")
	ErrMalformed     = errors.New("malformed_response")
	ErrNothingStaged = errors.New("nothing_staged")
	ErrNotOpen       = errors.New("not_open")
	ErrUnsupported   = errors.New("unsupported")
)

// ValidationError lists the local field checks that failed. It blocks the
// network call.
type ValidationError struct {
	Fields map[string]string // field -> reason
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NetworkError means the request never got an answer from the server.
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error        { return e.Err }
func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

// HTTPError is a non-2xx answer. Message is the server-provided message, if any.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("http status %d", e.Status)
	}
	return fmt.Sprintf("http status %d: %s", e.Status, e.Message)
}

func (e *HTTPError) Is(target error) bool { return target == ErrHTTP }

// DecodeError is returned when a 2xx body does not match the expected record shape.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error        { return e.Err }
func (e *DecodeError) Is(target error) bool { return target == ErrMalformed }

// UserMessage turns err into the single string shown to the operator.
func UserMessage(err error, fallback string) string {
	var herr *HTTPError
	if errors.As(err, &herr) && herr.Message != "" {
		return herr.Message
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Error()
	}
	return fallback
}
