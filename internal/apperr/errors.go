package apperr

import "errors"

// Sentinel error kinds shared across services and controllers. Call sites
// wrap these with fmt.Errorf("...: %w", err) so errors.Is keeps working.
var (
	// ErrValidation rejects malformed input before any side effect.
	ErrValidation = errors.New("invalid input")

	// ErrNotFound covers unknown ids and ownership mismatches alike, so a
	// caller cannot probe for entities it does not own.
	ErrNotFound = errors.New("not found")

	// ErrTemplate marks a prompt template that cannot be rendered because a
	// required variable is missing. Resolution falls back one tier on it.
	ErrTemplate = errors.New("prompt template cannot be rendered")

	// ErrProvider marks a generative call that failed after its retry. It is
	// handled by the degradation paths and never reaches HTTP callers raw.
	ErrProvider = errors.New("generative provider unavailable")

	// ErrGradingFailure means an answer could not be graded at all: the
	// provider was unreachable and no reference answer exists for fallback
	// marking. Callers must surface "not graded", never a tier.
	ErrGradingFailure = errors.New("answer could not be graded")

	// ErrPersistence marks a per-request storage failure on the durable
	// backend.
	ErrPersistence = errors.New("storage unavailable")
)
