package embedder

import "errors"

var (
	// ErrConfiguration indicates missing or invalid credentials/base URL.
	// Surfaced verbatim so the user can correct their settings.
	ErrConfiguration = errors.New("embedder configuration error")

	// ErrProvider indicates the backend call failed or returned malformed
	// data. The core does not retry; retry policy belongs to the backend.
	ErrProvider = errors.New("embedding provider error")
)
