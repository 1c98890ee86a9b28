package wynn

import "errors"

var (
	// ErrTimeout indicates the API did not respond within the client deadline.
	ErrTimeout = errors.New("wynncraft api timed out")

	// ErrBadRequest indicates a malformed or unknown identifier (HTTP 400/404).
	ErrBadRequest = errors.New("wynncraft api rejected the request")
)
