package sunbird

import (
	"errors"

	"github.com/kailas-cloud/sunbird/internal/domain"
)

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrValidation  = domain.ErrValidation
	ErrTransport   = domain.ErrTransport
	ErrBackendData = domain.ErrBackendData
	ErrNotFound    = domain.ErrNotFound

	ErrUnknownSource = errors.New("sunbird: unknown source")
)

// OperationError is an unsuccessful search or resolution.
type OperationError struct {
	Kind    string // validation_error, transport_error, backend_data_error, not_found, internal_error
	Message string
}

func (e *OperationError) Error() string { return e.Kind + ": " + e.Message }

// Unwrap maps Kind back to its sentinel.
func (e *OperationError) Unwrap() error {
	switch e.Kind {
	case domain.KindValidation:
		return ErrValidation
	case domain.KindTransport:
		return ErrTransport
	case domain.KindBackendData:
		return ErrBackendData
	case domain.KindNotFound:
		return ErrNotFound
	default:
		return nil
	}
}
