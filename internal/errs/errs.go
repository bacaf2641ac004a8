package errs

import "errors"

// Sentinel errors for the failure taxonomy surfaced over HTTP. Services wrap
// these with %w and handlers map them to status codes with errors.Is.
var (
	// ErrValidation marks malformed or missing required input.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks an unknown identifier.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized marks a missing or invalid credential.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrConflict marks a uniqueness violation (duplicate email).
	ErrConflict = errors.New("conflict")

	// ErrGateway marks a caller-fault payment gateway failure, detected
	// before any remote call is attempted.
	ErrGateway = errors.New("gateway rejected input")

	// ErrGatewayUnavailable marks a failed remote gateway call. No payment
	// outcome exists when this is returned.
	ErrGatewayUnavailable = errors.New("gateway unavailable")

	// ErrPersistence marks a database failure after validation passed. The
	// enclosing transaction has been rolled back.
	ErrPersistence = errors.New("persistence failed")
)
