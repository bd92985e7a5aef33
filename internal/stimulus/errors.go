package stimulus

import "errors"

// Validation errors are deterministic input errors: they are reported before
// any series computation starts and are never retried. Callers match them
// with errors.Is.
var (
	// ErrInvalidInput marks an unrecognised model kind or a malformed
	// numeric input such as a non-finite speed profile.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMissingParameter marks a required parameter that was not supplied.
	ErrMissingParameter = errors.New("missing parameter")

	// ErrOutOfRange marks a frame index beyond the series bounds.
	ErrOutOfRange = errors.New("out of range")

	// ErrUnextractable marks a request for the angular velocity at the
	// first frame, where the backward difference is undefined.
	ErrUnextractable = errors.New("unextractable")

	// ErrInvalidConfig marks an unrecognised configuration value such as an
	// unknown expansion policy.
	ErrInvalidConfig = errors.New("invalid config")
)
