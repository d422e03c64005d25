// Package faults defines the error classes shared across pipeline stages.
// Stage code wraps these with fmt.Errorf("...: %w", ...) so callers can
// classify failures with errors.Is without depending on stage internals.
package faults

import "errors"

var (
	// ErrNotFound marks a missing input file (PDF, text, reference audio).
	ErrNotFound = errors.New("not found")

	// ErrOutOfRange marks a page index beyond the document's page count.
	ErrOutOfRange = errors.New("out of range")

	// ErrInvalidInput marks empty text or a missing required identifier.
	// These raise immediately instead of degrading to a nil result.
	ErrInvalidInput = errors.New("invalid input")

	// ErrExternalService marks a non-200 hosted API response or a local
	// model inference failure.
	ErrExternalService = errors.New("external service failure")

	// ErrDecodeFailure marks reference audio that no decoding strategy
	// could read.
	ErrDecodeFailure = errors.New("decode failure")
)
