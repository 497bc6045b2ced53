package entity

import "errors"

// Error kinds shared across store and adapter boundaries. Callers classify
// failures with errors.Is instead of matching message text.
var (
	// ErrNotFound: session or file lookup miss.
	ErrNotFound = errors.New("not found")
	// ErrTransport: network or timeout failure talking to an external API.
	ErrTransport = errors.New("transport failure")
	// ErrValidation: malformed inbound payload.
	ErrValidation = errors.New("invalid payload")
	// ErrConfiguration: missing required credential or setting. Fatal at startup.
	ErrConfiguration = errors.New("configuration error")
	// ErrPersistence: store read/write failure. Never reported as a not-found.
	ErrPersistence = errors.New("persistence failure")
)
