package openshelf

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/openshelf/openshelf/pkg/openshelf/store"
)

// Catalog is the decoded catalog document paired with the revision it
// was read at. Revision is empty when the document does not exist yet;
// the first save then creates it without a concurrency witness.
type Catalog struct {
	Books    []Book
	Revision string
}

// NextID allocates the next book id: 1 for an empty catalog, otherwise
// the maximum existing id plus one. Ids freed by deleting the max-id
// entry are reused; they are catalog-internal ordinals, not stable
// external references.
func (c *Catalog) NextID() int {
	next := 1
	for _, b := range c.Books {
		if b.ID >= next {
			next = b.ID + 1
		}
	}
	return next
}

// FindByID returns the first entry with the given id.
func (c *Catalog) FindByID(id int) (Book, bool) {
	for _, b := range c.Books {
		if b.ID == id {
			return b, true
		}
	}
	return Book{}, false
}

// RemoveByID removes the first entry with the given id and returns it.
func (c *Catalog) RemoveByID(id int) (Book, bool) {
	for i, b := range c.Books {
		if b.ID == id {
			c.Books = append(c.Books[:i], c.Books[i+1:]...)
			return b, true
		}
	}
	return Book{}, false
}

// CatalogRepository loads and saves the single JSON catalog document
// through a versioned store. The catalog is only ever rewritten whole;
// there are no partial updates.
type CatalogRepository struct {
	store store.Store
	path  string
}

// NewCatalogRepository creates a repository for the catalog document at
// the given store path.
func NewCatalogRepository(s store.Store, path string) *CatalogRepository {
	return &CatalogRepository{store: s, path: path}
}

// Load fetches and decodes the catalog. An absent document is an empty
// catalog, not an error.
func (r *CatalogRepository) Load(ctx context.Context) (*Catalog, error) {
	f, err := r.store.Fetch(ctx, r.path)
	if errors.Is(err, store.ErrNotFound) {
		return &Catalog{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}

	var books []Book
	if err := json.Unmarshal(f.Content, &books); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return &Catalog{Books: books, Revision: f.Revision}, nil
}

// Save encodes the catalog and writes it back, presenting the revision
// it was loaded at. On success the catalog's revision is advanced to
// the store's new token. A store.ErrRevisionConflict is returned
// unwrapped so callers can re-fetch and retry.
func (r *CatalogRepository) Save(ctx context.Context, cat *Catalog, message string) error {
	books := cat.Books
	if books == nil {
		books = []Book{}
	}
	data, err := json.MarshalIndent(books, "", "  ")
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}

	revision, err := r.store.Write(ctx, r.path, data, store.WriteOptions{
		Message:  message,
		Revision: cat.Revision,
	})
	if err != nil {
		return err
	}
	cat.Revision = revision
	return nil
}
