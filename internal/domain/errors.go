package domain

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned by any SessionStore for an unknown id.
var ErrSessionNotFound = errors.New("session not found")

// TransportError covers network failures, non-success statuses and timeouts
// when calling an external data provider.
type TransportError struct {
	Provider string
	Cause    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport error: %v", e.Provider, e.Cause)
}

func (e *TransportError) Unwrap() error { return e.Cause }

// DecodeError means the provider answered but the payload did not match the
// expected shape. Adapters never hand out partial records; a decode failure
// discards the whole result.
type DecodeError struct {
	Provider string
	Cause    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: decode error: %v", e.Provider, e.Cause)
}

func (e *DecodeError) Unwrap() error { return e.Cause }

// GenerativeBackendError wraps a failed chat completion.
type GenerativeBackendError struct {
	Cause error
}

func (e *GenerativeBackendError) Error() string {
	return fmt.Sprintf("generative backend: %v", e.Cause)
}

func (e *GenerativeBackendError) Unwrap() error { return e.Cause }
