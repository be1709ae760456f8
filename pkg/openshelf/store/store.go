// Package store defines the versioned file store contract the catalog
// service is built on. A store exposes optimistic-concurrency file
// semantics: a fetch returns content together with an opaque revision
// token, and a write must present the revision it read or be rejected
// when the file changed in between.
package store

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates no object exists at the requested path.
	ErrNotFound = errors.New("object not found")

	// ErrRevisionConflict indicates the presented revision token is stale:
	// the object changed since it was fetched. The caller must re-fetch
	// and reapply its change.
	ErrRevisionConflict = errors.New("revision conflict")
)

// File is the content of a stored object paired with the revision token
// it was read at. Revision tokens are opaque and change on every
// successful write to the path; they are compared, never interpreted.
type File struct {
	Content  []byte
	Revision string
}

// WriteOptions carries the commit message and the concurrency witness
// for a write. An empty Revision means create-or-overwrite-blind, used
// only when no revision exists yet (first creation). A non-empty
// Revision must match the store's current revision for the path or the
// write fails with ErrRevisionConflict.
type WriteOptions struct {
	Message  string
	Revision string
}

// Store is the versioned get/put contract implemented by all backends.
// Every successful Write is externally durable and visible to
// subsequent Fetches; there is no caching layer, each call is a fresh
// round trip.
type Store interface {
	// Fetch returns the object at path, or ErrNotFound.
	Fetch(ctx context.Context, path string) (*File, error)

	// Write stores content at path and returns the new revision token.
	Write(ctx context.Context, path string, content []byte, opts WriteOptions) (string, error)
}

// RequestError represents a non-success, non-404 response from a remote
// store backend, carrying the status and response body for logging.
type RequestError struct {
	Backend string
	Path    string
	Status  int
	Body    string
	Err     error
}

func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("store request for %s on backend %s failed: %v", e.Path, e.Backend, e.Err)
	}
	return fmt.Sprintf("store request for %s on backend %s failed: status %d: %s", e.Path, e.Backend, e.Status, e.Body)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}
