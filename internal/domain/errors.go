package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation signals caller input that violates an allow-list or a required field.
	ErrValidation = errors.New("validation error")
	// ErrTransport signals an exhausted retry budget or a non-retryable backend status.
	ErrTransport = errors.New("transport error")
	// ErrBackendData signals a backend payload that cannot be normalized.
	ErrBackendData = errors.New("backend data error")
	// ErrNotFound signals a content identifier without a manifest.
	ErrNotFound = errors.New("not found")
)

// Kind values reported in error envelopes.
const (
	KindValidation  = "validation_error"
	KindTransport   = "transport_error"
	KindBackendData = "backend_data_error"
	KindNotFound    = "not_found"
	KindInternal    = "internal_error"
)

// ValidationError carries every problem found in the caller's parameters.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), strings.Join(e.Problems, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError wraps a non-empty problem list.
func NewValidationError(problems []string) error {
	return &ValidationError{Problems: append([]string(nil), problems...)}
}

// TransportError is returned by the backend transport once it gives up.
// StatusCode is zero when no HTTP response was received.
type TransportError struct {
	Attempts   int
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	var b strings.Builder
	b.WriteString(ErrTransport.Error())
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": backend returned status %d", e.StatusCode)
	}
	fmt.Fprintf(&b, " after %d attempt(s)", e.Attempts)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *TransportError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrTransport}
	}
	return []error{ErrTransport, e.Err}
}

// NotFoundError reports a missing backend resource.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NewNotFound creates a not-found error for resource/id.
func NewNotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// Kind classifies err into one of the envelope kinds.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrBackendData):
		return KindBackendData
	case errors.Is(err, ErrTransport):
		return KindTransport
	default:
		return KindInternal
	}
}
