// Package memory is an in-memory implementation of the versioned store
// contract, used for development and tests.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/openshelf/openshelf/pkg/openshelf/store"
)

type object struct {
	content  []byte
	revision string
}

// Store keeps objects in a map and enforces the same compare-and-swap
// write semantics as the remote backends. Revision tokens are freshly
// minted UUIDs, opaque by contract.
type Store struct {
	mu      sync.RWMutex
	objects map[string]object
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{objects: make(map[string]object)}
}

// Fetch returns the object at path, or store.ErrNotFound.
func (s *Store) Fetch(ctx context.Context, path string) (*store.File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.objects[path]
	if !ok {
		return nil, store.ErrNotFound
	}

	content := make([]byte, len(obj.content))
	copy(content, obj.content)
	return &store.File{Content: content, Revision: obj.revision}, nil
}

// Write stores content at path. A non-empty opts.Revision must match
// the current revision for the path or the write is rejected with
// store.ErrRevisionConflict.
func (s *Store) Write(ctx context.Context, path string, content []byte, opts store.WriteOptions) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if opts.Revision != "" {
		cur, ok := s.objects[path]
		if !ok || cur.revision != opts.Revision {
			return "", store.ErrRevisionConflict
		}
	}

	stored := make([]byte, len(content))
	copy(stored, content)

	revision := uuid.NewString()
	s.objects[path] = object{content: stored, revision: revision}
	return revision, nil
}
