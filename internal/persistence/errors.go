package persistence

import (
	"errors"
	"fmt"
)

var (
	// ErrDocumentNotFound means no document has been stored yet.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrEndpointUnreachable means the document endpoint could not be reached at all.
	ErrEndpointUnreachable = errors.New("document endpoint unreachable")
	// ErrDocumentTooLarge means the stored document exceeds the client's read limit.
	ErrDocumentTooLarge = errors.New("document too large")
)

// ServerError is a non-2xx answer from the document endpoint.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("document endpoint returned %d: %s", e.StatusCode, e.Message)
}
