package domain

import (
	"errors"
	"fmt"
)

// Routing/execution error taxonomy. Only ErrNoProvidersAvailable reaches
// callers of Route; admission denials and transport failures trigger
// fallback internally, and fallback exhaustion is expressed as a failed
// Response rather than an error.
var (
	ErrNoProvidersAvailable = errors.New("no providers available")
	ErrAdmissionDenied      = errors.New("admission denied")
	ErrProviderNotFound     = errors.New("provider not found")
)

// TransportError wraps a provider call failure with the provider that
// produced it.
type TransportError struct {
	ProviderID string
	Err        error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure on provider %s: %v", e.ProviderID, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
