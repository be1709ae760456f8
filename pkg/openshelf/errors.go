package openshelf

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrBookNotFound indicates no catalog entry matched the requested id.
	ErrBookNotFound = errors.New("book not found")

	// ErrUnauthorized indicates the presented admin credential did not
	// match the configured shared secret.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrCatalogConflict indicates the catalog document kept changing
	// under a read-modify-write cycle until the retry budget ran out.
	ErrCatalogConflict = errors.New("catalog modified concurrently")
)

// ValidationError reports a missing or invalid request field. It is
// always returned before any remote call is attempted.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
