package services

import (
	"errors"
	"fmt"

	"github.com/mrlokans/schooldesk/internal/entities"
)

// ErrUnauthenticated indicates an adapter call without a live session.
// Recoverable by reloading the account.
var ErrUnauthenticated = errors.New("account has no live session")

// ErrPeriodNotFound indicates the requested period is not in the provider's
// own period list.
var ErrPeriodNotFound = errors.New("period not found")

// ErrCapabilityUnsupported indicates the provider or account does not serve
// the requested domain.
var ErrCapabilityUnsupported = errors.New("capability not supported")

// ErrDecodeAmbiguity indicates an upstream shape the decoder cannot classify.
var ErrDecodeAmbiguity = errors.New("ambiguous upstream payload")

// ErrServiceNotImplemented indicates no adapter is registered for a service.
var ErrServiceNotImplemented = errors.New("service not implemented")

// ErrHandleMissing indicates a follow-up call needs a provider handle that is
// no longer known (e.g. after a restart). Refetch the parent list first.
var ErrHandleMissing = errors.New("provider handle missing")

// ErrConnectorMissing indicates no provider SDK connector was configured.
var ErrConnectorMissing = errors.New("provider connector not configured")

// DecodeError carries the upstream value a decoder refused to classify.
// It matches ErrDecodeAmbiguity with errors.Is.
type DecodeError struct {
	Service entities.Service
	Field   string
	Value   any
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: %s decoder cannot classify %s=%v", ErrDecodeAmbiguity, e.Service, e.Field, e.Value)
}

func (e *DecodeError) Is(target error) bool {
	return target == ErrDecodeAmbiguity
}
