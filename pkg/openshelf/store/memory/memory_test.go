package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/openshelf/pkg/openshelf/store"
	"github.com/openshelf/openshelf/pkg/openshelf/store/memory"
)

func TestFetchNotFound(t *testing.T) {
	s := memory.New()

	_, err := s.Fetch(context.Background(), "missing.json")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestWriteFetchRoundTrip(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	rev, err := s.Write(ctx, "books/a.pdf", []byte("payload"), store.WriteOptions{Message: "create"})
	require.NoError(t, err)
	require.NotEmpty(t, rev)

	f, err := s.Fetch(ctx, "books/a.pdf")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), f.Content)
	assert.Equal(t, rev, f.Revision)
}

func TestWriteAdvancesRevision(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	rev1, err := s.Write(ctx, "catalog.json", []byte("[]"), store.WriteOptions{})
	require.NoError(t, err)

	rev2, err := s.Write(ctx, "catalog.json", []byte("[1]"), store.WriteOptions{Revision: rev1})
	require.NoError(t, err)
	assert.NotEqual(t, rev1, rev2)
}

func TestStaleRevisionRejected(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	rev1, err := s.Write(ctx, "catalog.json", []byte("[]"), store.WriteOptions{})
	require.NoError(t, err)

	// Two writers read the same revision; the first wins, the second
	// must get a conflict rather than silently losing the first write.
	_, err = s.Write(ctx, "catalog.json", []byte("[1]"), store.WriteOptions{Revision: rev1})
	require.NoError(t, err)

	_, err = s.Write(ctx, "catalog.json", []byte("[2]"), store.WriteOptions{Revision: rev1})
	assert.ErrorIs(t, err, store.ErrRevisionConflict)

	f, err := s.Fetch(ctx, "catalog.json")
	require.NoError(t, err)
	assert.Equal(t, []byte("[1]"), f.Content)
}

func TestBlindWriteOverwrites(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	_, err := s.Write(ctx, "books/a.pdf", []byte("v1"), store.WriteOptions{})
	require.NoError(t, err)

	// Blind write overwrites without a concurrency check.
	_, err = s.Write(ctx, "books/a.pdf", []byte("v2"), store.WriteOptions{})
	require.NoError(t, err)

	f, err := s.Fetch(ctx, "books/a.pdf")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), f.Content)
}

func TestRevisionAgainstMissingObject(t *testing.T) {
	s := memory.New()

	_, err := s.Write(context.Background(), "gone.json", []byte("x"), store.WriteOptions{Revision: "stale"})
	assert.ErrorIs(t, err, store.ErrRevisionConflict)
}
