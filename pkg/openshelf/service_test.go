package openshelf_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/openshelf/pkg/openshelf"
	"github.com/openshelf/openshelf/pkg/openshelf/store"
	"github.com/openshelf/openshelf/pkg/openshelf/store/memory"
)

const adminToken = "test-secret"

func newService(t *testing.T, st store.Store) openshelf.Service {
	t.Helper()
	svc, err := openshelf.New(
		openshelf.WithCatalogStore(st),
		openshelf.WithConfig(openshelf.Config{AdminToken: adminToken}),
	)
	require.NoError(t, err)
	return svc
}

func uploadRequest(title, author string) openshelf.UploadBookRequest {
	return openshelf.UploadBookRequest{
		FileName: "book.pdf",
		Data:     make([]byte, 2048),
		Title:    title,
		Author:   author,
		Genre:    "Fiction",
	}
}

// countingStore records how many store calls a request caused.
type countingStore struct {
	inner   store.Store
	fetches int
	writes  int
}

func (c *countingStore) Fetch(ctx context.Context, path string) (*store.File, error) {
	c.fetches++
	return c.inner.Fetch(ctx, path)
}

func (c *countingStore) Write(ctx context.Context, path string, content []byte, opts store.WriteOptions) (string, error) {
	c.writes++
	return c.inner.Write(ctx, path, content, opts)
}

func TestServiceCreation(t *testing.T) {
	tests := []struct {
		name        string
		options     []openshelf.Option
		expectError bool
	}{
		{
			name:        "no options should fail",
			options:     []openshelf.Option{},
			expectError: true,
		},
		{
			name: "store without admin token should fail",
			options: []openshelf.Option{
				openshelf.WithCatalogStore(memory.New()),
			},
			expectError: true,
		},
		{
			name: "store and admin token should succeed",
			options: []openshelf.Option{
				openshelf.WithCatalogStore(memory.New()),
				openshelf.WithConfig(openshelf.Config{AdminToken: adminToken}),
			},
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := openshelf.New(tt.options...)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, svc)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, svc)
			}
		})
	}
}

func TestUploadBook(t *testing.T) {
	st := memory.New()
	svc := newService(t, st)
	ctx := context.Background()

	result, err := svc.UploadBook(ctx, openshelf.UploadBookRequest{
		FileName: "whale.pdf",
		Data:     make([]byte, 2048),
		Title:    "Moby Dick",
		Author:   "Herman Melville",
		Genre:    "Fiction",
		Year:     1851,
	})
	require.NoError(t, err)
	require.NotNil(t, result)

	book := result.Book
	assert.Equal(t, 1, book.ID)
	assert.Equal(t, "Moby Dick", book.Title)
	assert.Equal(t, "Herman Melville", book.Author)
	assert.Equal(t, "books/moby-dick-herman-melville.pdf", book.File)
	assert.Equal(t, openshelf.FormatPDF, book.Format)
	assert.Equal(t, "#9c3d2e", book.Color)
	assert.Equal(t, "2.0 KB", book.Size)
	assert.Equal(t, "English", book.Language)
	assert.Equal(t, 1851, book.Year)
	assert.False(t, book.UploadedAt.IsZero())
	assert.Equal(t, 1, result.Total)

	// The blob landed at the derived path.
	blob, err := st.Fetch(ctx, "books/moby-dick-herman-melville.pdf")
	require.NoError(t, err)
	assert.Len(t, blob.Content, 2048)

	// Round-trip: the appended book comes back from a fresh list with
	// all derived fields intact.
	books, err := svc.ListBooks(ctx)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, book, books[0])
}

func TestUploadBookEpub(t *testing.T) {
	svc := newService(t, memory.New())

	result, err := svc.UploadBook(context.Background(), openshelf.UploadBookRequest{
		FileName: "dunes.EPUB",
		Data:     []byte("epub-bytes"),
		Title:    "Dune",
		Author:   "Frank Herbert",
		Genre:    "Science Fiction",
	})
	require.NoError(t, err)
	assert.Equal(t, openshelf.FormatEPUB, result.Book.Format)
	assert.Equal(t, "books/dune-frank-herbert.epub", result.Book.File)
}

func TestUploadAllocatesMonotonicIDs(t *testing.T) {
	svc := newService(t, memory.New())
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		result, err := svc.UploadBook(ctx, uploadRequest(fmt.Sprintf("Title %d", i), "Author"))
		require.NoError(t, err)
		assert.Equal(t, i, result.Book.ID)
		assert.Equal(t, i, result.Total)
	}

	// Deleting the max-id entry frees its id for the next upload; ids
	// are catalog-internal ordinals, not stable references.
	_, err := svc.DeleteBook(ctx, 3, adminToken)
	require.NoError(t, err)

	result, err := svc.UploadBook(ctx, uploadRequest("Title 4", "Author"))
	require.NoError(t, err)
	assert.Equal(t, 3, result.Book.ID)
}

func TestUploadValidationMakesNoStoreCalls(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*openshelf.UploadBookRequest)
		field  string
	}{
		{
			name:   "missing title",
			mutate: func(r *openshelf.UploadBookRequest) { r.Title = "  " },
			field:  "title",
		},
		{
			name:   "missing author",
			mutate: func(r *openshelf.UploadBookRequest) { r.Author = "" },
			field:  "author",
		},
		{
			name:   "missing genre",
			mutate: func(r *openshelf.UploadBookRequest) { r.Genre = "" },
			field:  "genre",
		},
		{
			name:   "unsupported extension",
			mutate: func(r *openshelf.UploadBookRequest) { r.FileName = "book.mobi" },
			field:  "file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counting := &countingStore{inner: memory.New()}
			svc := newService(t, counting)

			req := uploadRequest("Some Title", "Some Author")
			tt.mutate(&req)

			_, err := svc.UploadBook(context.Background(), req)

			var vErr *openshelf.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
			assert.Zero(t, counting.fetches, "validation failure must not reach the store")
			assert.Zero(t, counting.writes, "validation failure must not reach the store")
		})
	}
}

func TestUploadSameSlugOverwritesBlob(t *testing.T) {
	st := memory.New()
	svc := newService(t, st)
	ctx := context.Background()

	first := uploadRequest("Moby Dick", "Herman Melville")
	first.Data = []byte("first edition")
	_, err := svc.UploadBook(ctx, first)
	require.NoError(t, err)

	second := uploadRequest("Moby Dick", "Herman Melville")
	second.Data = []byte("second edition")
	result, err := svc.UploadBook(ctx, second)
	require.NoError(t, err)

	// Same path, overwritten content, but a fresh catalog entry.
	assert.Equal(t, 2, result.Book.ID)
	assert.Equal(t, 2, result.Total)

	blob, err := st.Fetch(ctx, "books/moby-dick-herman-melville.pdf")
	require.NoError(t, err)
	assert.Equal(t, []byte("second edition"), blob.Content)
}

func TestDeleteBook(t *testing.T) {
	st := memory.New()
	svc := newService(t, st)
	ctx := context.Background()

	uploaded, err := svc.UploadBook(ctx, uploadRequest("Moby Dick", "Herman Melville"))
	require.NoError(t, err)

	t.Run("wrong credential", func(t *testing.T) {
		counting := &countingStore{inner: st}
		guarded := newService(t, counting)

		_, err := guarded.DeleteBook(ctx, uploaded.Book.ID, "wrong")
		assert.ErrorIs(t, err, openshelf.ErrUnauthorized)
		assert.Zero(t, counting.fetches, "authorization runs before any store access")
		assert.Zero(t, counting.writes, "authorization runs before any store access")

		books, err := svc.ListBooks(ctx)
		require.NoError(t, err)
		assert.Len(t, books, 1)
	})

	t.Run("nonexistent id", func(t *testing.T) {
		_, err := svc.DeleteBook(ctx, 999, adminToken)
		assert.ErrorIs(t, err, openshelf.ErrBookNotFound)

		books, err := svc.ListBooks(ctx)
		require.NoError(t, err)
		assert.Len(t, books, 1)
	})

	t.Run("success", func(t *testing.T) {
		removed, err := svc.DeleteBook(ctx, uploaded.Book.ID, adminToken)
		require.NoError(t, err)
		assert.Equal(t, uploaded.Book.ID, removed.ID)
		assert.Equal(t, "Moby Dick", removed.Title)

		books, err := svc.ListBooks(ctx)
		require.NoError(t, err)
		assert.Empty(t, books)
	})
}

// interferingStore simulates a competing writer: right before the first
// revision-checked catalog write goes through, it rewrites the document
// out of band so the caller's revision is stale.
type interferingStore struct {
	inner      store.Store
	path       string
	interfered bool
}

func (s *interferingStore) Fetch(ctx context.Context, path string) (*store.File, error) {
	return s.inner.Fetch(ctx, path)
}

func (s *interferingStore) Write(ctx context.Context, path string, content []byte, opts store.WriteOptions) (string, error) {
	if path == s.path && opts.Revision != "" && !s.interfered {
		s.interfered = true
		cur, err := s.inner.Fetch(ctx, path)
		if err != nil {
			return "", err
		}
		if _, err := s.inner.Write(ctx, path, cur.Content, store.WriteOptions{Message: "competing writer"}); err != nil {
			return "", err
		}
	}
	return s.inner.Write(ctx, path, content, opts)
}

func TestUploadRetriesOnCatalogConflict(t *testing.T) {
	st := memory.New()
	ctx := context.Background()

	// Seed the catalog so subsequent saves carry a revision witness.
	seeding := newService(t, st)
	_, err := seeding.UploadBook(ctx, uploadRequest("Seed Title", "Seed Author"))
	require.NoError(t, err)

	interfering := &interferingStore{inner: st, path: openshelf.DefaultCatalogPath}
	svc := newService(t, interfering)

	result, err := svc.UploadBook(ctx, uploadRequest("Raced Title", "Raced Author"))
	require.NoError(t, err)
	assert.True(t, interfering.interfered, "test did not exercise the conflict path")
	assert.Equal(t, 2, result.Book.ID)
	assert.Equal(t, 2, result.Total)
}

// conflictingStore rejects every revision-checked write to one path.
type conflictingStore struct {
	inner  store.Store
	path   string
	writes int
}

func (s *conflictingStore) Fetch(ctx context.Context, path string) (*store.File, error) {
	return s.inner.Fetch(ctx, path)
}

func (s *conflictingStore) Write(ctx context.Context, path string, content []byte, opts store.WriteOptions) (string, error) {
	if path == s.path && opts.Revision != "" {
		s.writes++
		return "", store.ErrRevisionConflict
	}
	return s.inner.Write(ctx, path, content, opts)
}

func TestUploadConflictRetriesAreBounded(t *testing.T) {
	st := memory.New()
	ctx := context.Background()

	seeding := newService(t, st)
	_, err := seeding.UploadBook(ctx, uploadRequest("Seed Title", "Seed Author"))
	require.NoError(t, err)

	conflicting := &conflictingStore{inner: st, path: openshelf.DefaultCatalogPath}
	svc, err := openshelf.New(
		openshelf.WithCatalogStore(conflicting),
		openshelf.WithConfig(openshelf.Config{AdminToken: adminToken, MaxWriteAttempts: 3}),
	)
	require.NoError(t, err)

	_, err = svc.UploadBook(ctx, uploadRequest("Doomed Title", "Doomed Author"))
	assert.ErrorIs(t, err, openshelf.ErrCatalogConflict)
	assert.Equal(t, 3, conflicting.writes, "retry budget not honored")
}
