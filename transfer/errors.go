package transfer

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned when caller input fails validation
	// before any connection is opened.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound is returned when the remote object or path does not exist.
	ErrNotFound = errors.New("not found")
	// ErrScheme is returned when a URL has an unsupported scheme.
	ErrScheme = errors.New("unsupported URL scheme")
	// ErrNoBackend is returned when no backend is configured for a
	// requested storage scheme.
	ErrNoBackend = errors.New("no transfer backend configured")
)

// KeyError identifies a missing remote object by its container (bucket
// or host) and key. It wraps ErrNotFound so errors.Is works.
type KeyError struct {
	Container string
	Key       string
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("key %q does not exist in %q", e.Key, e.Container)
}

func (e *KeyError) Unwrap() error {
	return ErrNotFound
}
